package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var unitMap = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)\s*([a-zA-Z]*)$`)

// ParseValue parses a SPICE-style number with an optional unit suffix:
// "1k" -> 1000, "2.2u" -> 2.2e-6, "3meg" -> 3e6. Trailing unit names
// after the factor ("10kOhm", "5V") are tolerated.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	suffix := strings.ToLower(matches[2])
	if suffix == "" {
		return num, nil
	}
	if strings.HasPrefix(suffix, "meg") {
		return num * 1e6, nil
	}
	// "M" means milli in SPICE regardless of case; only the leading
	// letter carries the factor, the rest is a unit name.
	if mult, ok := unitMap[suffix[:1]]; ok {
		return num * mult, nil
	}
	return num, nil
}

// FormatValue renders a number compactly with a SPICE unit suffix where
// one fits exactly: 1000 -> "1k", 4.7e-6 -> "4.7u".
func FormatValue(value float64) string {
	abs := math.Abs(value)
	type factor struct {
		mult   float64
		suffix string
	}
	factors := []factor{
		{1e12, "t"}, {1e9, "g"}, {1e6, "meg"}, {1e3, "k"},
		{1, ""}, {1e-3, "m"}, {1e-6, "u"}, {1e-9, "n"}, {1e-12, "p"},
	}
	if abs == 0 {
		return "0"
	}
	for _, f := range factors {
		if abs >= f.mult {
			scaled := value / f.mult
			if scaled == math.Trunc(scaled) || f.suffix != "" {
				return strconv.FormatFloat(scaled, 'g', -1, 64) + f.suffix
			}
			break
		}
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

package netlist

import (
	"strings"
)

// Tokenize splits a card into fields, keeping a parenthesized span glued
// to the token that opens it, so "SIN(0 5 1k)" stays one token.
func Tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && depth == 0:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// waveformNames is the canonical detection set, shared by the netlist
// and schematic importers. SINE is LTspice spelling for SIN.
var waveformNames = []string{"SINE", "SIN", "PULSE", "EXP", "PWL"}

// DetectWaveform scans a source value for a waveform function and
// returns its canonical type and parameter list. "SIN(0 5 1k)" yields
// ("SIN", ["0","5","1k"], true).
func DetectWaveform(value string) (string, []string, bool) {
	upper := strings.ToUpper(value)
	for _, name := range waveformNames {
		idx := strings.Index(upper, name)
		if idx < 0 {
			continue
		}
		canonical := name
		if canonical == "SINE" {
			canonical = "SIN"
		}
		rest := value[idx+len(name):]
		open := strings.Index(rest, "(")
		if open < 0 {
			return canonical, nil, true
		}
		end := strings.Index(rest[open:], ")")
		inner := rest[open+1:]
		if end >= 0 {
			inner = rest[open+1 : open+end]
		}
		return canonical, strings.Fields(inner), true
	}
	return "", nil, false
}

// FormatWaveform renders a waveform type and parameters in SPICE
// function syntax.
func FormatWaveform(wtype string, params []string) string {
	t := strings.ToUpper(wtype)
	if t == "SINE" {
		t = "SIN"
	}
	return t + "(" + strings.Join(params, " ") + ")"
}

// Package param handles .param directives and {expr} parametric
// component values.
package param

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var braceRe = regexp.MustCompile(`\{([^{}]*)\}`)

// Processor collects named parameter definitions and resolves parametric
// expressions against them.
type Processor struct {
	defs  map[string]string
	order []string
}

func NewProcessor() *Processor {
	return &Processor{defs: make(map[string]string)}
}

// Define sets a parameter. The value may be a literal ("5", "1k") or a
// braced expression ("{a*2}"). Redefinition overwrites.
func (p *Processor) Define(name, value string) {
	if _, exists := p.defs[name]; !exists {
		p.order = append(p.order, name)
	}
	p.defs[name] = strings.TrimSpace(value)
}

// Names returns the defined parameter names in definition order.
func (p *Processor) Names() []string {
	return append([]string(nil), p.order...)
}

// ParseDirectives scans netlist text for ".param name = value" lines and
// defines each one. Both ".param x=5" and ".param x = {y*2}" forms are
// accepted.
func (p *Processor) ParseDirectives(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), ".param") {
			continue
		}
		rest := strings.TrimSpace(line[len(".param"):])
		eq := strings.Index(rest, "=")
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(rest[:eq])
		value := strings.TrimSpace(rest[eq+1:])
		if name == "" || value == "" {
			continue
		}
		p.Define(name, value)
	}
}

// IsParametric reports whether a value string contains a braced
// expression.
func (p *Processor) IsParametric(value string) bool {
	return braceRe.MatchString(value)
}

// ResolveAll evaluates every definition to a number. Definitions may
// reference each other in any order; resolution iterates until a pass
// makes no progress. The error for a stuck set lists the unresolved
// names.
func (p *Processor) ResolveAll() (map[string]float64, error) {
	env := make(map[string]float64)
	pending := make(map[string]string, len(p.defs))
	for name, value := range p.defs {
		pending[name] = stripBraces(value)
	}

	for len(pending) > 0 {
		progress := false
		for name, expr := range pending {
			v, err := Eval(expr, env)
			if err != nil {
				var undef *undefinedError
				if errors.As(err, &undef) {
					continue // may resolve on a later pass
				}
				return nil, fmt.Errorf("parameter %s: %w", name, err)
			}
			env[name] = v
			delete(pending, name)
			progress = true
		}
		if !progress {
			stuck := make([]string, 0, len(pending))
			for name := range pending {
				stuck = append(stuck, name)
			}
			sort.Strings(stuck)
			return nil, fmt.Errorf("unresolved parameters: %s", strings.Join(stuck, ", "))
		}
	}
	return env, nil
}

// Substitute replaces every {expr} span in a value string with its
// numeric result. Non-parametric values pass through unchanged.
func (p *Processor) Substitute(value string) (string, error) {
	if !p.IsParametric(value) {
		return value, nil
	}
	env, err := p.ResolveAll()
	if err != nil {
		return "", err
	}
	var evalErr error
	out := braceRe.ReplaceAllStringFunc(value, func(m string) string {
		v, err := Eval(stripBraces(m), env)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return m
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	})
	if evalErr != nil {
		return "", evalErr
	}
	return out, nil
}

// EmitDirectives renders the definitions back as .param lines in
// definition order.
func (p *Processor) EmitDirectives() []string {
	lines := make([]string, 0, len(p.order))
	for _, name := range p.order {
		lines = append(lines, fmt.Sprintf(".param %s = %s", name, p.defs[name]))
	}
	return lines
}

func stripBraces(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

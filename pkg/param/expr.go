package param

import (
	"fmt"
	"math"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"spicecad/pkg/util"
)

// exprLexer tokenizes parameter arithmetic. Numbers keep any trailing
// SPICE unit suffix ("1k", "2.2meg") as part of the token.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:[eE][-+]?\d+)?[a-zA-Z]*|\.\d+(?:[eE][-+]?\d+)?[a-zA-Z]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `[-+*/^()]`},
})

// Grammar: expression -> term (("+"|"-") term)*
//          term       -> power (("*"|"/") power)*
//          power      -> atom ("^" atom)?
//          atom       -> Number | Ident | "-" atom | "(" expression ")"

type expression struct {
	Left *term     `parser:"@@"`
	Rest []*exprOp `parser:"@@*"`
}

type exprOp struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *term  `parser:"@@"`
}

type term struct {
	Left *power    `parser:"@@"`
	Rest []*termOp `parser:"@@*"`
}

type termOp struct {
	Op    string `parser:"@(\"*\" | \"/\")"`
	Power *power `parser:"@@"`
}

type power struct {
	Base *atom `parser:"@@"`
	Exp  *atom `parser:"(\"^\" @@)?"`
}

type atom struct {
	Number *string     `parser:"@Number"`
	Ident  *string     `parser:"| @Ident"`
	Neg    *atom       `parser:"| \"-\" @@"`
	Sub    *expression `parser:"| \"(\" @@ \")\""`
}

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Eval parses and evaluates one arithmetic expression against the given
// name environment.
func Eval(src string, env map[string]float64) (float64, error) {
	ast, err := exprParser.ParseString("", src)
	if err != nil {
		return 0, fmt.Errorf("parse error in %q: %w", src, err)
	}
	return ast.eval(env)
}

func (e *expression) eval(env map[string]float64) (float64, error) {
	v, err := e.Left.eval(env)
	if err != nil {
		return 0, err
	}
	for _, op := range e.Rest {
		rhs, err := op.Term.eval(env)
		if err != nil {
			return 0, err
		}
		if op.Op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (t *term) eval(env map[string]float64) (float64, error) {
	v, err := t.Left.eval(env)
	if err != nil {
		return 0, err
	}
	for _, op := range t.Rest {
		rhs, err := op.Power.eval(env)
		if err != nil {
			return 0, err
		}
		if op.Op == "*" {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		}
	}
	return v, nil
}

func (p *power) eval(env map[string]float64) (float64, error) {
	base, err := p.Base.eval(env)
	if err != nil {
		return 0, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := p.Exp.eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (a *atom) eval(env map[string]float64) (float64, error) {
	switch {
	case a.Number != nil:
		return util.ParseValue(*a.Number)
	case a.Ident != nil:
		v, ok := env[*a.Ident]
		if !ok {
			return 0, &undefinedError{Name: *a.Ident}
		}
		return v, nil
	case a.Neg != nil:
		v, err := a.Neg.eval(env)
		return -v, err
	case a.Sub != nil:
		return a.Sub.eval(env)
	}
	return 0, fmt.Errorf("empty expression")
}

// undefinedError marks an unresolved name reference, so the fixpoint
// loop can distinguish "try again later" from a hard syntax error.
type undefinedError struct {
	Name string
}

func (e *undefinedError) Error() string {
	return fmt.Sprintf("undefined parameter %s", e.Name)
}

// Package models holds the built-in op-amp subcircuit library.
package models

import "strings"

// Subcircuit pin order for every body is: noninv inv out.
var opampBodies = map[string]string{
	"Ideal": `.subckt Ideal 1 2 3
E1 3 0 1 2 1e6
.ends Ideal`,
	"LM741": `.subckt LM741 1 2 3
Rin 1 2 2meg
E1 4 0 1 2 200k
Rp 4 5 1k
Cp 5 0 1.6u
E2 6 0 5 0 1
Rout 6 3 75
.ends LM741`,
	"TL081": `.subckt TL081 1 2 3
Rin 1 2 1000meg
E1 4 0 1 2 200k
Rp 4 5 1k
Cp 5 0 10n
E2 6 0 5 0 1
Rout 6 3 100
.ends TL081`,
	"LM358": `.subckt LM358 1 2 3
Rin 1 2 10meg
E1 4 0 1 2 100k
Rp 4 5 1k
Cp 5 0 1.2u
E2 6 0 5 0 1
Rout 6 3 50
.ends LM358`,
}

// OpAmpModel resolves a model name (case-insensitive) to its canonical
// name and subcircuit body. Unknown names fall back to Ideal.
func OpAmpModel(name string) (string, string) {
	for canonical, body := range opampBodies {
		if strings.EqualFold(canonical, name) {
			return canonical, body
		}
	}
	return "Ideal", opampBodies["Ideal"]
}

// OpAmpModelNames lists the available model names.
func OpAmpModelNames() []string {
	return []string{"Ideal", "LM741", "TL081", "LM358"}
}

// IsOpAmpModel reports whether the name is one of the built-in op-amp
// models.
func IsOpAmpModel(name string) bool {
	for canonical := range opampBodies {
		if strings.EqualFold(canonical, name) {
			return true
		}
	}
	return false
}

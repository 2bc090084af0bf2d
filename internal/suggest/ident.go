// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

// cKeywords is the reserved-word set of the target language. Membership here
// is part of the identifier grammar itself, not configuration.
var cKeywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extern": {}, "float": {}, "for": {}, "goto": {},
	"if": {}, "int": {}, "long": {}, "register": {}, "return": {},
	"short": {}, "signed": {}, "sizeof": {}, "static": {}, "struct": {},
	"switch": {}, "typedef": {}, "union": {}, "unsigned": {}, "void": {},
	"volatile": {}, "while": {},
}

// IsValidIdentifier reports whether name can legally serve as a C identifier:
// non-empty, an ASCII letter or underscore first, ASCII letters, digits and
// underscores after, and not a reserved keyword. Only the ASCII definitions
// apply — no locale or Unicode letter classes — so any non-ASCII byte fails.
// The predicate is pure and total.
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}
	_, reserved := cKeywords[name]
	return !reserved
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

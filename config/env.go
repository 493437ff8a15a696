// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"regexp"
	"strings"
)

// envRef matches ${NAME}, ${NAME:-default} and $NAME.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// Expand replaces variable references in s using getenv. Unset variables
// without a default expand to the empty string.
func Expand(s string, getenv func(string) string) string {
	return envRef.ReplaceAllStringFunc(s, func(m string) string {
		if !strings.HasPrefix(m, "${") {
			return getenv(m[1:])
		}
		inner := m[2 : len(m)-1]
		if name, def, ok := strings.Cut(inner, ":-"); ok {
			if v := getenv(name); v != "" {
				return v
			}
			return def
		}
		return getenv(inner)
	})
}

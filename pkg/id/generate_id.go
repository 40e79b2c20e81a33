// Package id issues the public identifiers used across the API surface:
// 32-char lowercase hex, no separators or prefixes. Internal numeric PKs
// never leave the service; these do.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var reID32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a fresh 32-char lowercase hex identifier.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s is a well-formed public identifier.
func IsID32(s string) bool { return reID32.MatchString(s) }

// Package gate implements the fixed-passcode check that fronts privileged
// gallery actions. It is a UX speed-bump, not an authorization boundary:
// the secret ships with the client and any caller can bypass it. Real
// access control has to live server-side and is out of scope here.
package gate

import "crypto/subtle"

// Gate compares submitted passcodes against one fixed secret.
type Gate struct {
	secret string
}

// New builds a gate for the given secret. An empty secret disables the
// gate: every check passes.
func New(secret string) *Gate {
	return &Gate{secret: secret}
}

// Verify reports whether input matches the secret.
func (g *Gate) Verify(input string) bool {
	if g.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(g.secret)) == 1
}

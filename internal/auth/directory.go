// Package auth issues bearer tokens to the operators the deployment knows.
// Credentials are not stored: an operator is recognised by username alone.
package auth

import (
	"strings"

	"employeeapp/pkg/domain"
)

// Operator is an account allowed to log in.
type Operator struct {
	Username string
	Identity domain.Identity
}

// Directory resolves usernames to identities. Lookups are case-insensitive.
type Directory struct {
	operators map[string]domain.Identity
}

func NewDirectory(operators ...Operator) *Directory {
	d := &Directory{operators: make(map[string]domain.Identity, len(operators))}
	for _, op := range operators {
		username := normalizeUsername(op.Username)
		if username == "" || op.Identity.IsZero() {
			continue
		}
		d.operators[username] = op.Identity
	}
	return d
}

func (d *Directory) Lookup(username string) (domain.Identity, bool) {
	identity, ok := d.operators[normalizeUsername(username)]
	return identity, ok
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

package ledger

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what deleting a category does to the transactions
// still filed under its name.
type DeletePolicy string

const (
	// PolicyProtect refuses to delete a category that is still in use.
	PolicyProtect DeletePolicy = "protect"
	// PolicyBlank deletes the category and clears the category of every
	// transaction that used it.
	PolicyBlank DeletePolicy = "blank"
)

// IsValid reports whether p is a known policy.
func (p DeletePolicy) IsValid() bool {
	return p == PolicyProtect || p == PolicyBlank
}

func (p DeletePolicy) String() string {
	return string(p)
}

// ParseDeletePolicy parses a policy name from configuration.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	p := DeletePolicy(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid delete policy %q: must be %q or %q", s, PolicyProtect, PolicyBlank)
	}
	return p, nil
}

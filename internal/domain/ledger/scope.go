package ledger

import (
	"fmt"
	"strings"

	"github.com/bioinsight/backend/internal/domain/shared"
)

// ScopeKind identifies what kind of partition a scope key names
type ScopeKind string

const (
	ScopeOrganization ScopeKind = "organization"
	ScopeGuest        ScopeKind = "guest"
	ScopeSession      ScopeKind = "session"
)

// IsValid checks if the kind is known
func (k ScopeKind) IsValid() bool {
	switch k {
	case ScopeOrganization, ScopeGuest, ScopeSession:
		return true
	}
	return false
}

// Scope is the partition under which quotes and ledger rows are isolated
type Scope struct {
	Kind ScopeKind
	ID   string
}

// NewScope creates a validated scope
func NewScope(kind ScopeKind, id string) (Scope, error) {
	id = strings.TrimSpace(id)
	if !kind.IsValid() {
		return Scope{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown scope kind %q", kind))
	}
	if id == "" {
		return Scope{}, shared.ErrInvalidInput.WithMessage("scope id cannot be empty")
	}
	return Scope{Kind: kind, ID: id}, nil
}

// ParseScope parses the canonical "<kind>:<id>" form
func ParseScope(key string) (Scope, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(key), ":")
	if !ok {
		return Scope{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("malformed scope key %q", key))
	}
	return NewScope(ScopeKind(strings.ToLower(kind)), id)
}

// String returns the canonical key stored in scope_key columns
func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID
}

// IsZero reports whether the scope is unset
func (s Scope) IsZero() bool {
	return s.Kind == "" && s.ID == ""
}

package entity

import (
	"errors"
	"fmt"
	"strings"
)

const compositeKeySeparator = "|"

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier identifies one entity of a kind. Composite identifiers are structs that join their parts.
type Identifier interface {
	IdentityKey() string
}

// ID is a simple string Identifier.
type ID string

func (id ID) IdentityKey() string {
	return string(id)
}

func (id ID) String() string {
	return string(id)
}

// ParseID parses a non-empty string into an ID.
func ParseID(raw string) (ID, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.Join(ErrInvalidIdentifier, errors.New("identifier must not be empty"))
	}

	return ID(raw), nil
}

// ValidateIdentifier fails for an identity key that is blank or has a blank composite part.
// Criteria built from such an identifier lose their tag and select the streams of every entity of the kind.
func ValidateIdentifier(id Identifier) error {
	if id == nil {
		return errors.Join(ErrInvalidIdentifier, errors.New("identifier must not be nil"))
	}

	key := id.IdentityKey()
	if strings.TrimSpace(key) == "" {
		return errors.Join(ErrInvalidIdentifier, errors.New("identifier must not be empty"))
	}

	for _, part := range strings.Split(key, compositeKeySeparator) {
		if strings.TrimSpace(part) == "" {
			return errors.Join(ErrInvalidIdentifier, fmt.Errorf("composite key %q has an empty part", key))
		}
	}

	return nil
}

// CompositeKey joins the parts of a composite identifier into one identity key.
func CompositeKey(parts ...string) string {
	return strings.Join(parts, compositeKeySeparator)
}

// SplitCompositeKey is the inverse of CompositeKey, it fails if the number of parts is not n.
func SplitCompositeKey(raw string, n int) ([]string, error) {
	parts := strings.Split(raw, compositeKeySeparator)
	if len(parts) != n {
		return nil, errors.Join(ErrInvalidIdentifier, errors.New("unexpected number of composite key parts"))
	}

	for _, p := range parts {
		if p == "" {
			return nil, errors.Join(ErrInvalidIdentifier, errors.New("composite key part must not be empty"))
		}
	}

	return parts, nil
}

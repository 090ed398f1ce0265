// Package validation checks entity payloads before they reach persistence.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/localfirst/offsync/internal/models"
)

// ErrValidation is wrapped by every validation failure so callers can
// classify rejections with errors.Is.
var ErrValidation = errors.New("validation failed")

// IDPattern defines the allowed entity id format: letters, digits,
// underscore, hyphen, 1-128 characters.
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// TypePattern defines the allowed entity type format: lowercase letters,
// digits, underscore, 1-64 characters.
var TypePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

const (
	// MaxEntityIDLen is the maximum allowed entity id length
	MaxEntityIDLen = 128
	// MaxEntityTypeLen is the maximum allowed entity type length
	MaxEntityTypeLen = 64
)

// Entity checks an entity payload. Malformed entities are rejected before
// persistence; the returned error wraps ErrValidation.
func Entity(e *models.Entity) error {
	if e == nil {
		return fmt.Errorf("%w: entity is nil", ErrValidation)
	}

	if e.ID == "" {
		return fmt.Errorf("%w: entity id cannot be empty", ErrValidation)
	}
	if !IDPattern.MatchString(e.ID) {
		return fmt.Errorf("%w: entity id %q must contain only letters, digits, underscores and hyphens (max %d characters)",
			ErrValidation, e.ID, MaxEntityIDLen)
	}

	if e.Type == "" {
		return fmt.Errorf("%w: entity type cannot be empty", ErrValidation)
	}
	if !TypePattern.MatchString(e.Type) {
		return fmt.Errorf("%w: entity type %q must contain only lowercase letters, digits and underscores (max %d characters)",
			ErrValidation, e.Type, MaxEntityTypeLen)
	}

	if e.Data == nil {
		return fmt.Errorf("%w: entity data cannot be nil", ErrValidation)
	}

	return nil
}

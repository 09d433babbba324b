// Package moderation screens user-authored text against a fixed denylist.
package moderation

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

// denylist is matched in order; the first hit wins.
var denylist = []string{
	"fuck", "shit", "bitch", "ass", "dick", "pussy", "cock", "cunt",
	"whore", "slut", "nigger", "faggot", "retard", "idiot", "stupid",
	"dumb", "moron",
}

// Validate reports whether text is acceptable. Matching is a case-insensitive
// substring search, so "class" is rejected for containing "ass".
func Validate(text string) (bool, string) {
	lowered := strings.ToLower(text)
	for _, term := range denylist {
		if strings.Contains(lowered, term) {
			return false, fmt.Sprintf("Content contains inappropriate language: '%s'", term)
		}
	}
	return true, ""
}

// Check is Validate expressed as an error wrapping shared.ErrValidation.
func Check(text string) error {
	if ok, reason := Validate(text); !ok {
		return fmt.Errorf("%w: %s", shared.ErrValidation, reason)
	}
	return nil
}

// CheckAll runs Check over several fields and returns the first rejection.
func CheckAll(texts ...string) error {
	for _, text := range texts {
		if err := Check(text); err != nil {
			return err
		}
	}
	return nil
}

package service

import (
	"fmt"
	"regexp"
	"strings"

	"agora/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	nonSlug         = regexp.MustCompile(`[^a-z0-9]+`)
)

// invalid wraps an ozzo error as a domain validation error
func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// notBlank rejects strings that are empty after trimming. nil pointers pass.
func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

// voteValue accepts 1, -1 and 0
var voteValue = validation.In(1, -1, 0).Error("must be 1, -1 or 0")

// slugify derives a slug from a display name
func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// trimmed returns a trimmed copy of a non-nil string pointer
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

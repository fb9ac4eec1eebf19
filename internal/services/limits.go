package services

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/energycommunities/backend/internal/models"
)

// Column limits of the MySQL schema (migrations/). VARCHAR limits count characters, TEXT limits count bytes.
const (
	maxUsernameLength        = 100
	maxEmailLength           = 255
	maxPersonNameLength      = 255
	maxCommunityNameLength   = 255
	maxLocationLength        = 255
	maxTitleLength           = 255
	maxExcerptLength         = 500
	maxCategoryLength        = 100
	maxImageURLLength        = 1024
	maxIconLength            = 100
	maxBackgroundColorLength = 50
	maxTextBytes             = 65535
	maxIntColumn             = math.MaxInt32

	// bcrypt only hashes the first 72 bytes and rejects longer input
	maxPasswordBytes = 72
)

// fieldLimit is a length check for a single field
type fieldLimit struct {
	field string
	value string
	max   int
}

// checkLengths returns a validation error for the first value longer than its limit in characters
func checkLengths(limits ...fieldLimit) error {
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return models.NewValidationError(fmt.Sprintf("%s must be at most %d characters long", l.field, l.max))
		}
	}
	return nil
}

// checkTextBytes returns a validation error when value does not fit a TEXT column
func checkTextBytes(field, value string) error {
	if len(value) > maxTextBytes {
		return models.NewValidationError(fmt.Sprintf("%s must be at most %d bytes long", field, maxTextBytes))
	}
	return nil
}

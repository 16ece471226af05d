package messaging

import (
	"fmt"
	"unicode/utf16"
)

const (
	minContentUnits = 1
	maxContentUnits = 2000

	maxGroupNameLen = 100

	defaultPageSize = 50
	maxPageSize     = 200
)

// validateContent bounds message content to 1..2000 UTF-16 code units, the
// unit clients enforce on their side.
func validateContent(content string) error {
	units := len(utf16.Encode([]rune(content)))
	if units < minContentUnits || units > maxContentUnits {
		return fmt.Errorf("%w: content must be between %d and %d characters", ErrInvalidPayload, minContentUnits, maxContentUnits)
	}
	return nil
}

func validateGroupName(name string) error {
	if name == "" || len(name) > maxGroupNameLen {
		return fmt.Errorf("%w: group name must be between 1 and %d characters", ErrInvalidPayload, maxGroupNameLen)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

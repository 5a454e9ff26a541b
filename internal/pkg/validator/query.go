package validator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/futig/bms-rag/internal/entity"
)

const MaxQueryLength = 2000

// ValidateQuery trims the query in place and checks it is usable
func ValidateQuery(req *entity.QueryRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	if n := utf8.RuneCountInString(req.Query); n > MaxQueryLength {
		return fmt.Errorf("%w: query is %d characters, maximum %d", entity.ErrInvalidParameter, n, MaxQueryLength)
	}
	return nil
}

// ParseLimit reads an optional non-negative limit; empty means 0 (no limit).
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer, got %q", entity.ErrInvalidParameter, raw)
	}
	return limit, nil
}

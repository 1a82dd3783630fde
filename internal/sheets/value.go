// Package sheets implements the read path against the remote tabular store:
// full-table fetches, header normalization, cell value coercion and
// identifier backfill.
package sheets

import (
	"strconv"
	"strings"

	"cedi-api/internal/models"
	"cedi-api/internal/schema"
)

// ParseCell converts raw cell text into a typed value. Empty cells become
// the empty string. "true"/"sí" and "false"/"no" become booleans. Numeric
// text becomes a number unless it starts with a leading zero, which keeps
// codes like "007" textual; a bare "0" is still the number zero. Everything
// else is the trimmed original text.
func ParseCell(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	switch strings.ToLower(s) {
	case "true", "sí":
		return true
	case "false", "no":
		return false
	}

	if s == "0" {
		return float64(0)
	}
	if !strings.HasPrefix(s, "0") {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	}

	return s
}

// ParseCellFor applies the per-entity always-text exemptions on top of
// ParseCell, so fields like code or phone are never coerced to numbers.
func ParseCellFor(entity, field, raw string) any {
	if schema.IsTextField(entity, field) {
		s := strings.TrimSpace(raw)
		switch strings.ToLower(s) {
		case "true", "sí":
			return true
		case "false", "no":
			return false
		}
		return s
	}
	return ParseCell(raw)
}

// FormatCell renders a typed value back to cell text. Inverse of ParseCell
// for booleans and numbers; strings pass through verbatim.
func FormatCell(v any) string {
	return models.Stringify(v)
}

package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"true", "true", true},
		{"true spanish", "sí", true},
		{"true mixed case", "TRUE", true},
		{"false", "false", false},
		{"false spanish", "no", false},
		{"integer", "42", float64(42)},
		{"decimal", "38.5", 38.5},
		{"negative", "-3", float64(-3)},
		{"bare zero is numeric", "0", float64(0)},
		{"leading zero stays text", "007", "007"},
		{"leading zero decimal stays text", "0.5", "0.5"},
		{"plain text", "Paracetamol", "Paracetamol"},
		{"trimmed text", "  Kilogramo  ", "Kilogramo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCell(tt.raw))
		})
	}
}

func TestParseCellFor(t *testing.T) {
	// Text-exempt fields keep numeric-looking content as text
	assert.Equal(t, "12345", ParseCellFor("docks", "code", "12345"))
	assert.Equal(t, "55512345", ParseCellFor("suppliers", "contact_phone", "55512345"))

	// Booleans still coerce on exempt fields
	assert.Equal(t, true, ParseCellFor("docks", "code", "true"))

	// Non-exempt fields coerce normally
	assert.Equal(t, float64(12), ParseCellFor("docks", "capacity", "12"))
}

func TestFormatCellRoundTrip(t *testing.T) {
	assert.Equal(t, "TRUE", FormatCell(true))
	assert.Equal(t, "FALSE", FormatCell(false))
	assert.Equal(t, "42", FormatCell(float64(42)))
	assert.Equal(t, "38.5", FormatCell(38.5))
	assert.Equal(t, "texto", FormatCell("texto"))
	assert.Equal(t, "", FormatCell(nil))
}

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFolderPath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"single segment", "Invoices", []string{"Invoices"}},
		{"two segments", "Invoices{{Folder}}2026", []string{"Invoices", "2026"}},
		{"deep chain", "a{{Folder}}b{{Folder}}c{{Folder}}d", []string{"a", "b", "c", "d"}},
		{"blank segment preserved", "Invoices{{Folder}}{{Folder}}2026", []string{"Invoices", "", "2026"}},
		{"segments keep spaces", " Invoices {{Folder}} 2026 ", []string{" Invoices ", " 2026 "}},
		{"plain slash is not a delimiter", "Invoices/2026", []string{"Invoices/2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFolderPath(tt.raw))
		})
	}
}

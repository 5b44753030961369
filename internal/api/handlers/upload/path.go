package handlers

import (
	"strings"
)

// FolderDelimiter separates segments in the wire encoding of a folder
// path, e.g. "Invoices{{Folder}}2026". The convention stops at this
// boundary; everything past the handlers works on the parsed list.
const FolderDelimiter = "{{Folder}}"

// ParseFolderPath splits the wire encoding into ordered segments. Blank
// segments survive here untrimmed; the resolver skips them.
func ParseFolderPath(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, FolderDelimiter)
}

package tool

import (
	"math"
	"regexp"
	"strings"
)

// Boundary validation limits.
const (
	MinTableRows    = 1
	MaxTableRows    = 100
	MinTableColumns = 1
	MaxTableColumns = 20
)

// documentNamePattern admits plain file names, including dots and spaces in
// the stem, but no path separators; traversal is additionally rejected by
// workspace resolution.
var documentNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9 ._-]*\.[A-Za-z0-9]+$`)

// wordExtensions are the document extensions operations accept.
var wordExtensions = map[string]bool{
	"doc":  true,
	"docx": true,
	"docm": true,
	"dot":  true,
	"dotx": true,
	"dotm": true,
}

// validateDocumentName checks the name's shape and extension before any
// path resolution or file I/O happens.
func validateDocumentName(name, code string) *OpError {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return validationError(code, "document_name is required")
	}
	if !documentNamePattern.MatchString(clean) {
		return validationError(code, "invalid document name %q: expected a plain file name with an extension", name)
	}
	ext := strings.ToLower(clean[strings.LastIndex(clean, ".")+1:])
	if !wordExtensions[ext] {
		return validationError(code, "unrecognized document extension %q", ext)
	}
	return nil
}

// Argument decoding helpers. Arguments arrive as a JSON-decoded map, so
// numbers are float64 and integers must be whole.

func requireString(args map[string]any, key, code string) (string, *OpError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", validationError(code, "%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", validationError(code, "%s must be a string", key)
	}
	return s, nil
}

func optionalString(args map[string]any, key, code string) (string, *OpError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", validationError(code, "%s must be a string", key)
	}
	return s, nil
}

func requireInt(args map[string]any, key, code string) (int, *OpError) {
	v, err := optionalInt(args, key, code)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, validationError(code, "%s is required", key)
	}
	return *v, nil
}

func optionalInt(args map[string]any, key, code string) (*int, *OpError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch n := raw.(type) {
	case int:
		return &n, nil
	case int64:
		v := int(n)
		return &v, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, validationError(code, "%s must be an integer", key)
		}
		v := int(n)
		return &v, nil
	default:
		return nil, validationError(code, "%s must be an integer", key)
	}
}

func optionalFloat(args map[string]any, key, code string) (*float64, *OpError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch n := raw.(type) {
	case int:
		v := float64(n)
		return &v, nil
	case int64:
		v := float64(n)
		return &v, nil
	case float64:
		return &n, nil
	default:
		return nil, validationError(code, "%s must be a number", key)
	}
}

func optionalBool(args map[string]any, key string, fallback bool, code string) (bool, *OpError) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, validationError(code, "%s must be a boolean", key)
	}
	return b, nil
}

// requireSectionZero accepts the optional section_index argument. Documents
// are modeled with a single section, so anything other than 0 is rejected
// rather than silently ignored.
func requireSectionZero(args map[string]any, code string) *OpError {
	idx, err := optionalInt(args, "section_index", code)
	if err != nil {
		return err
	}
	if idx != nil && *idx != 0 {
		return validationError(code, "section_index %d is out of range: only section 0 is addressable", *idx)
	}
	return nil
}

func validateTableDimensions(rows, columns int, code string) *OpError {
	if rows < MinTableRows || rows > MaxTableRows {
		return validationError(code, "rows must be between %d and %d, got %d", MinTableRows, MaxTableRows, rows)
	}
	if columns < MinTableColumns || columns > MaxTableColumns {
		return validationError(code, "columns must be between %d and %d, got %d", MinTableColumns, MaxTableColumns, columns)
	}
	return nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "\n"))
}

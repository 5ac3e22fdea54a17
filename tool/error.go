package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Kind codes cover failure categories shared across operations. They take
// precedence over family codes when the category matches.
const (
	CodeInvalidPath       = "INVALID_PATH"
	CodeUnknownOperation  = "UNKNOWN_OPERATION"
	CodeDocumentNotFound  = "DOCUMENT_NOT_FOUND"
	CodeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// Family codes identify the operation family that failed when no kind code
// applies.
const (
	CodeDocCreate  = "DOC_CREATE_ERROR"
	CodeDocLoad    = "DOC_LOAD_ERROR"
	CodeDocSave    = "DOC_SAVE_ERROR"
	CodeDocProtect = "DOC_PROTECT_ERROR"
	CodeDocReplace = "DOC_REPLACE_ERROR"
	CodeDocMerge   = "DOC_MERGE_ERROR"

	CodeTableCreate = "TABLE_CREATE_ERROR"
	CodeTableAdd    = "TABLE_ADD_ERROR"
	CodeTableDelete = "TABLE_DELETE_ERROR"
	CodeTableInfo   = "TABLE_INFO_ERROR"
	CodeTableCell   = "TABLE_CELL_ERROR"

	CodeParagraphText   = "PARAGRAPH_TEXT_ERROR"
	CodeParagraphDelete = "PARAGRAPH_DELETE_ERROR"
	CodeParagraphInfo   = "PARAGRAPH_INFO_ERROR"
	CodeParagraphAdd    = "PARAGRAPH_ADD_ERROR"
	CodeParagraphUpdate = "PARAGRAPH_UPDATE_ERROR"

	CodeConversion        = "CONVERSION_ERROR"
	CodeConversionStatus  = "CONVERSION_STATUS_ERROR"
	CodeConversionHistory = "CONVERSION_HISTORY_ERROR"

	CodeFormat     = "FORMAT_ERROR"
	CodeFormatInfo = "FORMAT_INFO_ERROR"
)

// OpError is the structured failure every handler produces. Nothing else
// escapes to the caller.
type OpError struct {
	Code    string
	Type    string
	Message string
	Cause   error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newOpError(code, message string, cause error) *OpError {
	msg := strings.TrimSpace(message)
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &OpError{
		Code:    code,
		Type:    errorTypeFor(code),
		Message: msg,
		Cause:   cause,
	}
}

// validationError marks a boundary validation failure under the operation's
// family code.
func validationError(code, format string, args ...any) *OpError {
	return &OpError{
		Code:    code,
		Type:    "ValidationError",
		Message: fmt.Sprintf(format, args...),
	}
}

func errorTypeFor(code string) string {
	switch code {
	case CodeInvalidPath:
		return "PathError"
	case CodeUnknownOperation:
		return "DispatchError"
	case CodeDocumentNotFound:
		return "DocumentError"
	case CodeIndexOutOfRange:
		return "IndexError"
	case CodeUnsupportedFormat:
		return "ConversionError"
	}
	switch {
	case strings.HasPrefix(code, "DOC_"):
		return "DocumentError"
	case strings.HasPrefix(code, "TABLE_"):
		return "TableError"
	case strings.HasPrefix(code, "PARAGRAPH_"):
		return "ParagraphError"
	case strings.HasPrefix(code, "CONVERSION_"):
		return "ConversionError"
	case strings.HasPrefix(code, "FORMAT_"):
		return "FormatError"
	}
	return "Error"
}

var suggestions = map[string]string{
	CodeInvalidPath:       "Use a bare file name without path separators or traversal sequences.",
	CodeUnknownOperation:  "Check the operation name against the tool listing.",
	CodeDocumentNotFound:  "Please check if the document exists in the configured root directory.",
	CodeIndexOutOfRange:   "Use an index within the document's current bounds.",
	CodeUnsupportedFormat: "Use one of the supported target formats.",

	CodeDocCreate:  "Please check if the document name is valid and you have write permissions.",
	CodeDocLoad:    "Please check if the document exists and is a valid Word file.",
	CodeDocSave:    "Please check if you have write permissions for the documents directory.",
	CodeDocProtect: "Please check if the protection level is valid and you have the necessary permissions.",
	CodeDocReplace: "Please check if the document exists and the search parameters are valid.",
	CodeDocMerge:   "Please check if both documents exist and are accessible.",

	CodeTableCreate: "Please check the table dimensions and that the document exists.",
	CodeTableAdd:    "Please check the table dimensions and the paragraph index.",
	CodeTableDelete: "Please check if the table index is valid.",
	CodeTableInfo:   "Please check if the table index is valid.",
	CodeTableCell:   "Please check if the table, row and column indices are valid.",

	CodeParagraphText:   "Please check if the paragraph index is valid.",
	CodeParagraphDelete: "Please check if the paragraph index is valid.",
	CodeParagraphInfo:   "Please check if the paragraph index is valid.",
	CodeParagraphAdd:    "Please check if the document exists and the text is valid.",
	CodeParagraphUpdate: "Please check if the paragraph index is valid.",

	CodeConversion:        "Please check if the document exists and the target format is supported.",
	CodeConversionStatus:  "Please check if the document name is valid.",
	CodeConversionHistory: "Please check if the document name is valid.",

	CodeFormat:     "Please check the formatting parameters and the paragraph index.",
	CodeFormatInfo: "Please check if the paragraph index is valid.",
}

func suggestionFor(code string) string {
	if s, ok := suggestions[code]; ok {
		return s
	}
	return "Check the operation arguments and try again."
}

// asOpError reports whether err carries an OpError anywhere in its chain.
func asOpError(err error) (*OpError, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}

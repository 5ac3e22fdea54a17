package engine

import "strings"

// Format is a document conversion target.
type Format string

const (
	FormatDoc      Format = "doc"
	FormatDocx     Format = "docx"
	FormatPDF      Format = "pdf"
	FormatRTF      Format = "rtf"
	FormatHTML     Format = "html"
	FormatTxt      Format = "txt"
	FormatEPub     Format = "epub"
	FormatODT      Format = "odt"
	FormatXML      Format = "xml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat normalizes a user-supplied format name. "md" is accepted as an
// alias for markdown.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doc":
		return FormatDoc, true
	case "docx":
		return FormatDocx, true
	case "pdf":
		return FormatPDF, true
	case "rtf":
		return FormatRTF, true
	case "html":
		return FormatHTML, true
	case "txt":
		return FormatTxt, true
	case "epub":
		return FormatEPub, true
	case "odt":
		return FormatODT, true
	case "xml":
		return FormatXML, true
	case "markdown", "md":
		return FormatMarkdown, true
	}
	return "", false
}

// Ext returns the file extension for the format, without a leading dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// SupportedFormats lists conversion targets in stable order.
func SupportedFormats() []string {
	return []string{"doc", "docx", "pdf", "rtf", "html", "txt", "epub", "odt", "xml", "markdown"}
}

// Protection is a document protection level.
type Protection string

const (
	ProtectionNone        Protection = "none"
	ProtectionReadOnly    Protection = "read_only"
	ProtectionFormFilling Protection = "form_filling"
	ProtectionComments    Protection = "comments"
	ProtectionRevisions   Protection = "revisions"
)

// ParseProtection normalizes a user-supplied protection level.
func ParseProtection(s string) (Protection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ProtectionNone, true
	case "read_only":
		return ProtectionReadOnly, true
	case "form_filling":
		return ProtectionFormFilling, true
	case "comments":
		return ProtectionComments, true
	case "revisions":
		return ProtectionRevisions, true
	}
	return "", false
}

// Alignment is a paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// ParseAlignment normalizes a user-supplied alignment value.
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right":
		return AlignRight, true
	case "justify":
		return AlignJustify, true
	}
	return "", false
}

// SpacingRule qualifies a line-spacing value.
type SpacingRule string

const (
	SpacingAtLeast  SpacingRule = "at_least"
	SpacingExactly  SpacingRule = "exactly"
	SpacingMultiple SpacingRule = "multiple"
)

// ParseSpacingRule normalizes a user-supplied line-spacing rule.
func ParseSpacingRule(s string) (SpacingRule, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "at_least":
		return SpacingAtLeast, true
	case "exactly":
		return SpacingExactly, true
	case "multiple":
		return SpacingMultiple, true
	}
	return "", false
}

// ParagraphFormat is the full formatting state of one paragraph. Distances
// are in points; LineSpacing is a multiplier when LineSpacingRule is
// multiple, points otherwise.
type ParagraphFormat struct {
	Alignment       Alignment   `json:"alignment"`
	FirstLineIndent float64     `json:"first_line_indent"`
	LeftIndent      float64     `json:"left_indent"`
	RightIndent     float64     `json:"right_indent"`
	LineSpacing     float64     `json:"line_spacing"`
	LineSpacingRule SpacingRule `json:"line_spacing_rule"`
	BeforeSpacing   float64     `json:"before_spacing"`
	AfterSpacing    float64     `json:"after_spacing"`
}

// FormatUpdate carries a partial formatting change; nil fields are left
// untouched.
type FormatUpdate struct {
	Alignment       *Alignment
	FirstLineIndent *float64
	LeftIndent      *float64
	RightIndent     *float64
	LineSpacing     *float64
	LineSpacingRule *SpacingRule
	BeforeSpacing   *float64
	AfterSpacing    *float64
}

// TableInfo summarizes one table's dimensions.
type TableInfo struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

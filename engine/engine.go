// Package engine defines the boundary to the document engine that performs
// all actual word-processing work. The adapter layer in package tool depends
// only on these interfaces; production bindings live in engine/ooxml and
// engine/convert.
package engine

import (
	"context"
	"errors"
)

var (
	// ErrIndexOutOfRange indicates a paragraph, table, row or column index
	// outside the document's current bounds.
	ErrIndexOutOfRange = errors.New("engine: index out of range")
	// ErrNotFound indicates the document file does not exist.
	ErrNotFound = errors.New("engine: document not found")
	// ErrBadDocument indicates the file could not be parsed as a document.
	ErrBadDocument = errors.New("engine: malformed document")
)

// Engine opens and creates documents on disk.
type Engine interface {
	// Create writes a new empty document at path. When templatePath is
	// non-empty the new document starts as a copy of the template.
	Create(path, templatePath string) (Document, error)
	// Open loads an existing document from path.
	Open(path string) (Document, error)
}

// Document is a transient handle over one loaded document. Handles live for
// the duration of a single operation; nothing caches them across calls.
type Document interface {
	ParagraphCount() int
	ParagraphText(index int) (string, error)
	// AddParagraph appends a paragraph and returns its index.
	AddParagraph(text string) int
	// InsertParagraph inserts a paragraph so that it occupies index.
	InsertParagraph(index int, text string) error
	// UpdateParagraphText replaces a paragraph's text, returning the old text.
	UpdateParagraphText(index int, text string) (string, error)
	// DeleteParagraph removes a paragraph, returning its former text.
	DeleteParagraph(index int) (string, error)

	ParagraphFormat(index int) (ParagraphFormat, error)
	FormatParagraph(index int, update FormatUpdate) error

	TableCount() int
	// AddTable appends a table and returns its table index.
	AddTable(rows, columns int, style string) int
	// InsertTableAfterParagraph places a table directly after the given
	// paragraph and returns its table index.
	InsertTableAfterParagraph(rows, columns, paragraphIndex int, style string) (int, error)
	TableInfo(index int) (TableInfo, error)
	// DeleteTable removes a table, returning its former dimensions.
	DeleteTable(index int) (TableInfo, error)
	// SetCellText replaces the text of one cell, returning the old text.
	SetCellText(table, row, column int, text string) (string, error)
	CellText(table, row, column int) (string, error)

	// Replace substitutes every occurrence of find and returns the count.
	Replace(find, replace string, matchCase, wholeWord bool) int

	SetProtection(level Protection, password string) error
	Protection() Protection

	// Text returns the document's full plain text.
	Text() string

	// Save persists the document to path. Implementations must not leave a
	// partially written file behind on failure.
	Save(path string) error
}

// Merger combines two documents into an output document. Engines that can
// append one document's content to another implement this alongside Engine.
type Merger interface {
	Merge(basePath, mergePath, outputPath string) error
}

// Converter renders a document into another format. The production
// implementation shells out to an external converter binary for formats the
// engine cannot write natively.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string, target Format) error
}

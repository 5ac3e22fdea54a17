// Package ooxml is the production engine binding. It reads and writes the
// WordprocessingML subset the adapter needs (paragraphs, tables, paragraph
// formatting, document protection) directly from the OOXML zip container.
// Container parts and body markup it does not understand are preserved
// byte-for-byte on save; only blocks an operation mutates are rewritten.
package ooxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrenlabs/docsmith/engine"
)

const (
	documentPart     = "word/document.xml"
	settingsPart     = "word/settings.xml"
	contentTypesPart = "[Content_Types].xml"
)

// Engine implements engine.Engine and engine.Merger over .docx files.
type Engine struct{}

// New returns the OOXML engine.
func New() *Engine {
	return &Engine{}
}

// Create writes a new document at path. With a template, the new document
// starts as a parsed copy of the template file.
func (e *Engine) Create(path, templatePath string) (engine.Document, error) {
	var doc *Document
	if strings.TrimSpace(templatePath) != "" {
		tpl, err := e.Open(templatePath)
		if err != nil {
			return nil, fmt.Errorf("ooxml: open template: %w", err)
		}
		doc = tpl.(*Document)
	} else {
		doc = emptyDocument()
	}
	if err := doc.Save(path); err != nil {
		return nil, err
	}
	return doc, nil
}

// Open loads a .docx file from path.
func (e *Engine) Open(path string) (engine.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ooxml: %q: %w", path, engine.ErrNotFound)
		}
		return nil, fmt.Errorf("ooxml: open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ooxml: stat %q: %w", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("ooxml: %q is not a document container: %w", path, engine.ErrBadDocument)
	}

	doc := &Document{foreign: make(map[string][]byte)}
	var mainPart []byte
	for _, entry := range zr.File {
		data, err := readZipEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("ooxml: read part %q: %w", entry.Name, err)
		}
		switch entry.Name {
		case documentPart:
			mainPart = data
		case settingsPart:
			doc.settingsRaw = data
			doc.protection, doc.protectionHash = parseProtection(data)
		case contentTypesPart:
			doc.contentTypes = data
		default:
			doc.foreign[entry.Name] = data
		}
	}
	if mainPart == nil {
		return nil, fmt.Errorf("ooxml: %q has no main document part: %w", path, engine.ErrBadDocument)
	}

	content, err := parseBody(mainPart)
	if err != nil {
		return nil, fmt.Errorf("ooxml: parse %q: %w", path, err)
	}
	doc.blocks = content.blocks
	doc.prologRaw = content.prolog
	doc.sectPrRaw = content.sectPr
	doc.epilogRaw = content.epilog
	return doc, nil
}

// Merge appends the content of mergePath to basePath and writes the result
// to outputPath. Foreign parts of the merged document are discarded; the
// base document's parts win.
func (e *Engine) Merge(basePath, mergePath, outputPath string) error {
	base, err := e.Open(basePath)
	if err != nil {
		return err
	}
	src, err := e.Open(mergePath)
	if err != nil {
		return err
	}
	doc := base.(*Document)
	// Merged blocks are rebuilt from their parsed form. Their raw bytes may
	// lean on namespace prefixes declared only in the source's document
	// element, which does not travel.
	for _, blk := range src.(*Document).blocks {
		switch v := blk.(type) {
		case *paragraph:
			cp := *v
			cp.raw = nil
			doc.blocks = append(doc.blocks, &cp)
		case *table:
			cp := *v
			cp.raw = nil
			doc.blocks = append(doc.blocks, &cp)
		}
	}
	return doc.Save(outputPath)
}

func emptyDocument() *Document {
	return &Document{foreign: make(map[string][]byte)}
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Save writes the document to path. The container is assembled in a temp
// file next to the target and renamed into place, so a concurrent reader
// never observes a truncated document.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docsmith-*")
	if err != nil {
		return fmt.Errorf("ooxml: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := d.writeContainer(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ooxml: write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ooxml: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ooxml: replace %q: %w", path, err)
	}
	return nil
}

func (d *Document) writeContainer(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := map[string][]byte{
		documentPart:     d.marshalBody(),
		contentTypesPart: d.marshalContentTypes(),
	}
	if settings := d.marshalSettings(); settings != nil {
		parts[settingsPart] = settings
	}
	if _, ok := d.foreign["_rels/.rels"]; !ok {
		parts["_rels/.rels"] = []byte(defaultRootRels)
	}
	if _, ok := d.foreign["word/_rels/document.xml.rels"]; !ok {
		parts["word/_rels/document.xml.rels"] = []byte(defaultDocumentRels)
	}
	for name, data := range d.foreign {
		if _, ok := parts[name]; !ok {
			parts[name] = data
		}
	}

	for _, name := range sortedPartNames(parts) {
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := f.Write(parts[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (d *Document) marshalContentTypes() []byte {
	if d.contentTypes == nil {
		return []byte(defaultContentTypes)
	}
	// An opened document may lack a settings override; splice one in when
	// protection forces us to emit a settings part it never had.
	if d.marshalSettings() != nil && !bytes.Contains(d.contentTypes, []byte("/word/settings.xml")) {
		return bytes.Replace(d.contentTypes, []byte("</Types>"),
			[]byte(settingsOverride+"</Types>"), 1)
	}
	return d.contentTypes
}

package ooxml

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/wrenlabs/docsmith/engine"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	wordNS    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	defaultContentTypes = xmlHeader +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		settingsOverride +
		`</Types>`

	settingsOverride = `<Override PartName="/word/settings.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"/>`

	defaultRootRels = xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	defaultDocumentRels = xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings" Target="settings.xml"/>` +
		`</Relationships>`
)

// marshalBody serializes the block list back into word/document.xml. Blocks
// still carrying their original bytes are emitted verbatim; only mutated or
// newly added blocks are rebuilt. The same goes for the document element,
// sectPr and the body close, so an edit never strips markup outside the
// blocks it touched.
func (d *Document) marshalBody() []byte {
	var b strings.Builder
	if d.prologRaw != nil {
		b.Write(d.prologRaw)
	} else {
		b.WriteString(xmlHeader)
		b.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)
	}
	for _, blk := range d.blocks {
		switch v := blk.(type) {
		case *paragraph:
			if v.raw != nil {
				b.Write(v.raw)
			} else {
				writeParagraph(&b, v)
			}
		case *table:
			if v.raw != nil {
				b.Write(v.raw)
			} else {
				writeTable(&b, v)
			}
		case *opaque:
			b.Write(v.raw)
		}
	}
	if d.sectPrRaw != nil {
		b.Write(d.sectPrRaw)
	} else {
		b.WriteString(`<w:sectPr/>`)
	}
	if d.epilogRaw != nil {
		b.Write(d.epilogRaw)
	} else {
		b.WriteString(`</w:body></w:document>`)
	}
	return []byte(b.String())
}

func writeParagraph(b *strings.Builder, p *paragraph) {
	b.WriteString(`<w:p>`)
	writeParagraphProps(b, p)
	writeRuns(b, p.text)
	b.WriteString(`</w:p>`)
}

func writeParagraphProps(b *strings.Builder, p *paragraph) {
	props := p.props
	hasInd := props.firstLine != nil || props.left != nil || props.right != nil
	hasSpacing := props.before != nil || props.after != nil || props.line != nil
	if p.style == "" && props.jc == "" && !hasInd && !hasSpacing {
		return
	}
	b.WriteString(`<w:pPr>`)
	if p.style != "" {
		b.WriteString(`<w:pStyle w:val="` + escapeAttr(p.style) + `"/>`)
	}
	if props.jc != "" {
		b.WriteString(`<w:jc w:val="` + escapeAttr(props.jc) + `"/>`)
	}
	if hasInd {
		b.WriteString(`<w:ind`)
		writeTwipAttr(b, "w:firstLine", props.firstLine)
		writeTwipAttr(b, "w:left", props.left)
		writeTwipAttr(b, "w:right", props.right)
		b.WriteString(`/>`)
	}
	if hasSpacing {
		b.WriteString(`<w:spacing`)
		writeTwipAttr(b, "w:before", props.before)
		writeTwipAttr(b, "w:after", props.after)
		writeTwipAttr(b, "w:line", props.line)
		if props.lineRule != "" {
			b.WriteString(` w:lineRule="` + escapeAttr(props.lineRule) + `"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</w:pPr>`)
}

// writeRuns emits a paragraph's text, turning embedded tabs and newlines
// back into their WordprocessingML elements.
func writeRuns(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteString(`<w:r>`)
	segment := strings.Builder{}
	flush := func() {
		if segment.Len() > 0 {
			b.WriteString(`<w:t xml:space="preserve">` + escapeText(segment.String()) + `</w:t>`)
			segment.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case '\t':
			flush()
			b.WriteString(`<w:tab/>`)
		case '\n':
			flush()
			b.WriteString(`<w:br/>`)
		default:
			segment.WriteRune(r)
		}
	}
	flush()
	b.WriteString(`</w:r>`)
}

func writeTable(b *strings.Builder, t *table) {
	b.WriteString(`<w:tbl><w:tblPr>`)
	if t.style != "" {
		b.WriteString(`<w:tblStyle w:val="` + escapeAttr(t.style) + `"/>`)
	}
	b.WriteString(`<w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	b.WriteString(`<w:tblGrid>`)
	for range t.columns() {
		b.WriteString(`<w:gridCol/>`)
	}
	b.WriteString(`</w:tblGrid>`)
	for _, row := range t.rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.WriteString(`<w:tc><w:tcPr/>`)
			for _, line := range strings.Split(cell, "\n") {
				b.WriteString(`<w:p>`)
				writeRuns(b, line)
				b.WriteString(`</w:p>`)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func writeTwipAttr(b *strings.Builder, name string, value *int) {
	if value == nil {
		return
	}
	b.WriteString(` ` + name + `="` + strconv.Itoa(*value) + `"`)
}

// marshalSettings emits word/settings.xml. Without protection the original
// settings part, if any, is passed through untouched.
func (d *Document) marshalSettings() []byte {
	if d.protection == engine.ProtectionNone || d.protection == "" {
		return d.settingsRaw
	}
	var edit string
	switch d.protection {
	case engine.ProtectionReadOnly:
		edit = "readOnly"
	case engine.ProtectionFormFilling:
		edit = "forms"
	case engine.ProtectionComments:
		edit = "comments"
	case engine.ProtectionRevisions:
		edit = "trackedChanges"
	}
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:settings xmlns:w="` + wordNS + `">`)
	b.WriteString(`<w:documentProtection w:edit="` + edit + `" w:enforcement="1"`)
	if d.protectionHash != "" {
		b.WriteString(` w:hash="` + escapeAttr(d.protectionHash) + `"`)
	}
	b.WriteString(`/></w:settings>`)
	return []byte(b.String())
}

func hashPassword(password string) string {
	if password == "" {
		return ""
	}
	sum := sha512.Sum512([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func sortedPartNames(parts map[string][]byte) []string {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeAttr(s string) string {
	return escapeText(s)
}

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wrenlabs/docsmith/engine"
)

// bodyContent is the parsed main part plus the raw slices marshalBody needs
// to re-emit everything it did not touch.
type bodyContent struct {
	blocks []block
	prolog []byte
	sectPr []byte
	epilog []byte
}

// parseBody extracts the ordered block list (paragraphs and tables) from
// word/document.xml. Every block keeps a slice of its original bytes, the
// document element and sectPr are kept verbatim, and unmodeled body children
// become opaque blocks, so documents produced by other tools survive an edit
// without losing markup the adapter does not understand.
func parseBody(data []byte) (bodyContent, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return bodyContent{}, fmt.Errorf("no body element: %w", engine.ErrBadDocument)
		}
		if err != nil {
			return bodyContent{}, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "body" {
			content := bodyContent{prolog: data[:dec.InputOffset()]}
			if err := parseBlocks(dec, data, &content); err != nil {
				return bodyContent{}, err
			}
			return content, nil
		}
	}
}

// parseBlocks reads body children until the closing body element.
func parseBlocks(dec *xml.Decoder, data []byte, content *bodyContent) error {
	for {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p, err := parseParagraph(dec)
				if err != nil {
					return err
				}
				p.raw = data[pos:dec.InputOffset()]
				content.blocks = append(content.blocks, p)
			case "tbl":
				tbl, err := parseTable(dec)
				if err != nil {
					return err
				}
				tbl.raw = data[pos:dec.InputOffset()]
				content.blocks = append(content.blocks, tbl)
			case "sectPr":
				if err := dec.Skip(); err != nil {
					return err
				}
				content.sectPr = data[pos:dec.InputOffset()]
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
				content.blocks = append(content.blocks, &opaque{raw: data[pos:dec.InputOffset()]})
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				content.epilog = data[pos:]
				return nil
			}
		}
	}
}

func parseParagraph(dec *xml.Decoder) (*paragraph, error) {
	p := &paragraph{}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := parseParagraphProps(dec, p); err != nil {
					return nil, err
				}
			case "t":
				s, err := collectText(dec, "t")
				if err != nil {
					return nil, err
				}
				text.WriteString(s)
			case "tab":
				text.WriteByte('\t')
			case "br":
				text.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				p.text = text.String()
				return p, nil
			}
		}
	}
}

func parseParagraphProps(dec *xml.Decoder, p *paragraph) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "jc":
				p.props.jc = attrValue(t, "val")
			case "pStyle":
				p.style = attrValue(t, "val")
			case "ind":
				p.props.firstLine = attrTwips(t, "firstLine")
				if v := attrTwips(t, "left"); v != nil {
					p.props.left = v
				} else {
					p.props.left = attrTwips(t, "start")
				}
				if v := attrTwips(t, "right"); v != nil {
					p.props.right = v
				} else {
					p.props.right = attrTwips(t, "end")
				}
			case "spacing":
				p.props.before = attrTwips(t, "before")
				p.props.after = attrTwips(t, "after")
				p.props.line = attrTwips(t, "line")
				p.props.lineRule = attrValue(t, "lineRule")
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return nil
			}
		}
	}
}

func parseTable(dec *xml.Decoder) (*table, error) {
	tbl := &table{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tblPr":
				style, err := parseTableStyle(dec)
				if err != nil {
					return nil, err
				}
				tbl.style = style
			case "tr":
				row, err := parseRow(dec)
				if err != nil {
					return nil, err
				}
				tbl.rows = append(tbl.rows, row)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tbl" {
				return tbl, nil
			}
		}
	}
}

func parseTableStyle(dec *xml.Decoder) (string, error) {
	var style string
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tblStyle" {
				style = attrValue(t, "val")
			}
		case xml.EndElement:
			if t.Name.Local == "tblPr" {
				return style, nil
			}
		}
	}
}

func parseRow(dec *xml.Decoder) ([]string, error) {
	var cells []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := parseCell(dec)
				if err != nil {
					return nil, err
				}
				cells = append(cells, cell)
			}
		case xml.EndElement:
			if t.Name.Local == "tr" {
				return cells, nil
			}
		}
	}
}

func parseCell(dec *xml.Decoder) (string, error) {
	var paras []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p, err := parseParagraph(dec)
				if err != nil {
					return "", err
				}
				paras = append(paras, p.text)
			case "tbl":
				// Nested tables are not addressable through the adapter.
				if err := dec.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tc" {
				return strings.Join(paras, "\n"), nil
			}
		}
	}
}

// collectText accumulates character data until the named end element.
func collectText(dec *xml.Decoder, until string) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == until {
				return b.String(), nil
			}
		}
	}
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrTwips(se xml.StartElement, name string) *int {
	raw := attrValue(se, name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseProtection reads the documentProtection element out of
// word/settings.xml, if any.
func parseProtection(data []byte) (engine.Protection, string) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return engine.ProtectionNone, ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "documentProtection" {
			continue
		}
		hash := attrValue(se, "hash")
		switch attrValue(se, "edit") {
		case "readOnly":
			return engine.ProtectionReadOnly, hash
		case "forms":
			return engine.ProtectionFormFilling, hash
		case "comments":
			return engine.ProtectionComments, hash
		case "trackedChanges":
			return engine.ProtectionRevisions, hash
		default:
			return engine.ProtectionNone, ""
		}
	}
}

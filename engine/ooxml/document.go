package ooxml

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/wrenlabs/docsmith/engine"
)

// Document holds one parsed .docx file. Blocks keep the raw bytes they were
// parsed from; a mutation drops the raw form and the block is rebuilt from
// its parsed state on save, so untouched content round-trips byte-for-byte.
type Document struct {
	blocks []block

	// Raw slices of the original main part: everything before the body's
	// first child, the sectPr element, and everything from </body> on.
	// All nil for documents built from scratch.
	prologRaw []byte
	sectPrRaw []byte
	epilogRaw []byte

	protection     engine.Protection
	protectionHash string
	settingsRaw    []byte
	contentTypes   []byte
	foreign        map[string][]byte
}

type block interface{ isBlock() }

// paragraph stores text with tabs and line breaks inlined as \t and \n.
// raw holds the paragraph's original XML until the paragraph is mutated.
type paragraph struct {
	text  string
	style string
	props paraProps
	raw   []byte
}

// paraProps carries raw WordprocessingML measurements in twentieths of a
// point; nil means the property is unset.
type paraProps struct {
	jc        string
	firstLine *int
	left      *int
	right     *int
	before    *int
	after     *int
	line      *int
	lineRule  string
}

type table struct {
	style string
	rows  [][]string
	raw   []byte
}

// opaque carries a body child the adapter does not model (sdt, bookmarks and
// the like) so it survives a save untouched. Opaque blocks are invisible to
// paragraph and table indexing.
type opaque struct {
	raw []byte
}

func (*paragraph) isBlock() {}
func (*table) isBlock()     {}
func (*opaque) isBlock()    {}

func (t *table) columns() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

var _ engine.Document = (*Document)(nil)

// ParagraphCount reports the number of body paragraphs.
func (d *Document) ParagraphCount() int {
	n := 0
	for _, blk := range d.blocks {
		if _, ok := blk.(*paragraph); ok {
			n++
		}
	}
	return n
}

// TableCount reports the number of body tables.
func (d *Document) TableCount() int {
	n := 0
	for _, blk := range d.blocks {
		if _, ok := blk.(*table); ok {
			n++
		}
	}
	return n
}

func (d *Document) paragraphAt(index int) (*paragraph, error) {
	if index < 0 {
		return nil, fmt.Errorf("paragraph index %d: %w", index, engine.ErrIndexOutOfRange)
	}
	n := 0
	for _, blk := range d.blocks {
		if p, ok := blk.(*paragraph); ok {
			if n == index {
				return p, nil
			}
			n++
		}
	}
	return nil, fmt.Errorf("paragraph index %d of %d: %w", index, n, engine.ErrIndexOutOfRange)
}

// blockPosition returns the position in d.blocks of the index-th block
// matched by want.
func (d *Document) blockPosition(index int, want func(block) bool) (int, int) {
	n := 0
	for pos, blk := range d.blocks {
		if want(blk) {
			if n == index {
				return pos, n
			}
			n++
		}
	}
	return -1, n
}

func isParagraph(b block) bool { _, ok := b.(*paragraph); return ok }
func isTable(b block) bool     { _, ok := b.(*table); return ok }

// ParagraphText returns the text of one paragraph.
func (d *Document) ParagraphText(index int) (string, error) {
	p, err := d.paragraphAt(index)
	if err != nil {
		return "", err
	}
	return p.text, nil
}

// AddParagraph appends a paragraph and returns its index.
func (d *Document) AddParagraph(text string) int {
	d.blocks = append(d.blocks, &paragraph{text: text})
	return d.ParagraphCount() - 1
}

// InsertParagraph inserts a paragraph so that it occupies index.
func (d *Document) InsertParagraph(index int, text string) error {
	count := d.ParagraphCount()
	if index < 0 || index > count {
		return fmt.Errorf("paragraph index %d of %d: %w", index, count, engine.ErrIndexOutOfRange)
	}
	if index == count {
		d.AddParagraph(text)
		return nil
	}
	pos, _ := d.blockPosition(index, isParagraph)
	d.blocks = append(d.blocks[:pos], append([]block{&paragraph{text: text}}, d.blocks[pos:]...)...)
	return nil
}

// UpdateParagraphText replaces a paragraph's text, returning the old text.
func (d *Document) UpdateParagraphText(index int, text string) (string, error) {
	p, err := d.paragraphAt(index)
	if err != nil {
		return "", err
	}
	old := p.text
	p.text = text
	p.raw = nil
	return old, nil
}

// DeleteParagraph removes a paragraph, returning its former text.
func (d *Document) DeleteParagraph(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("paragraph index %d: %w", index, engine.ErrIndexOutOfRange)
	}
	pos, seen := d.blockPosition(index, isParagraph)
	if pos < 0 {
		return "", fmt.Errorf("paragraph index %d of %d: %w", index, seen, engine.ErrIndexOutOfRange)
	}
	old := d.blocks[pos].(*paragraph).text
	d.blocks = append(d.blocks[:pos], d.blocks[pos+1:]...)
	return old, nil
}

// ParagraphFormat reports the effective formatting of one paragraph.
func (d *Document) ParagraphFormat(index int) (engine.ParagraphFormat, error) {
	p, err := d.paragraphAt(index)
	if err != nil {
		return engine.ParagraphFormat{}, err
	}
	return p.props.toFormat(), nil
}

// FormatParagraph applies a partial formatting update to one paragraph.
func (d *Document) FormatParagraph(index int, update engine.FormatUpdate) error {
	p, err := d.paragraphAt(index)
	if err != nil {
		return err
	}
	p.props.apply(update)
	p.raw = nil
	return nil
}

// AddTable appends an empty rows-by-columns table and returns its index.
func (d *Document) AddTable(rows, columns int, style string) int {
	d.blocks = append(d.blocks, newTable(rows, columns, style))
	return d.TableCount() - 1
}

// InsertTableAfterParagraph places a table directly after the given
// paragraph and returns its table index.
func (d *Document) InsertTableAfterParagraph(rows, columns, paragraphIndex int, style string) (int, error) {
	pos, seen := d.blockPosition(paragraphIndex, isParagraph)
	if paragraphIndex < 0 || pos < 0 {
		return 0, fmt.Errorf("paragraph index %d of %d: %w", paragraphIndex, seen, engine.ErrIndexOutOfRange)
	}
	tableIndex := 0
	for _, blk := range d.blocks[:pos+1] {
		if isTable(blk) {
			tableIndex++
		}
	}
	tbl := newTable(rows, columns, style)
	d.blocks = append(d.blocks[:pos+1], append([]block{tbl}, d.blocks[pos+1:]...)...)
	return tableIndex, nil
}

func newTable(rows, columns int, style string) *table {
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, columns)
	}
	return &table{style: style, rows: grid}
}

func (d *Document) tableAt(index int) (*table, error) {
	if index < 0 {
		return nil, fmt.Errorf("table index %d: %w", index, engine.ErrIndexOutOfRange)
	}
	pos, seen := d.blockPosition(index, isTable)
	if pos < 0 {
		return nil, fmt.Errorf("table index %d of %d: %w", index, seen, engine.ErrIndexOutOfRange)
	}
	return d.blocks[pos].(*table), nil
}

// TableInfo reports one table's dimensions.
func (d *Document) TableInfo(index int) (engine.TableInfo, error) {
	tbl, err := d.tableAt(index)
	if err != nil {
		return engine.TableInfo{}, err
	}
	return engine.TableInfo{Rows: len(tbl.rows), Columns: tbl.columns()}, nil
}

// DeleteTable removes a table, returning its former dimensions.
func (d *Document) DeleteTable(index int) (engine.TableInfo, error) {
	if index < 0 {
		return engine.TableInfo{}, fmt.Errorf("table index %d: %w", index, engine.ErrIndexOutOfRange)
	}
	pos, seen := d.blockPosition(index, isTable)
	if pos < 0 {
		return engine.TableInfo{}, fmt.Errorf("table index %d of %d: %w", index, seen, engine.ErrIndexOutOfRange)
	}
	tbl := d.blocks[pos].(*table)
	info := engine.TableInfo{Rows: len(tbl.rows), Columns: tbl.columns()}
	d.blocks = append(d.blocks[:pos], d.blocks[pos+1:]...)
	return info, nil
}

func (d *Document) cellAt(tableIndex, row, column int) (*table, error) {
	tbl, err := d.tableAt(tableIndex)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(tbl.rows) {
		return nil, fmt.Errorf("row %d of %d: %w", row, len(tbl.rows), engine.ErrIndexOutOfRange)
	}
	if column < 0 || column >= len(tbl.rows[row]) {
		return nil, fmt.Errorf("column %d of %d: %w", column, len(tbl.rows[row]), engine.ErrIndexOutOfRange)
	}
	return tbl, nil
}

// SetCellText replaces the text of one cell, returning the old text.
func (d *Document) SetCellText(tableIndex, row, column int, text string) (string, error) {
	tbl, err := d.cellAt(tableIndex, row, column)
	if err != nil {
		return "", err
	}
	old := tbl.rows[row][column]
	tbl.rows[row][column] = text
	tbl.raw = nil
	return old, nil
}

// CellText returns the text of one cell.
func (d *Document) CellText(tableIndex, row, column int) (string, error) {
	tbl, err := d.cellAt(tableIndex, row, column)
	if err != nil {
		return "", err
	}
	return tbl.rows[row][column], nil
}

// Replace substitutes every occurrence of find in paragraphs and table
// cells, returning the number of replacements.
func (d *Document) Replace(find, replace string, matchCase, wholeWord bool) int {
	if find == "" {
		return 0
	}
	pattern := regexp.QuoteMeta(find)
	if wholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !matchCase {
		pattern = `(?i)` + pattern
	}
	re := regexp.MustCompile(pattern)

	total := 0
	sub := func(s string) string {
		total += len(re.FindAllStringIndex(s, -1))
		return re.ReplaceAllLiteralString(s, replace)
	}
	for _, blk := range d.blocks {
		before := total
		switch v := blk.(type) {
		case *paragraph:
			v.text = sub(v.text)
			if total != before {
				v.raw = nil
			}
		case *table:
			for _, row := range v.rows {
				for i := range row {
					row[i] = sub(row[i])
				}
			}
			if total != before {
				v.raw = nil
			}
		}
	}
	return total
}

// SetProtection records the document protection level. Passwords are stored
// as an unsalted SHA-512 digest; level none clears protection.
func (d *Document) SetProtection(level engine.Protection, password string) error {
	d.protection = level
	if level == engine.ProtectionNone {
		d.protectionHash = ""
		d.settingsRaw = nil
		return nil
	}
	d.protectionHash = hashPassword(password)
	return nil
}

// Protection reports the current protection level.
func (d *Document) Protection() engine.Protection {
	if d.protection == "" {
		return engine.ProtectionNone
	}
	return d.protection
}

// Text returns the document's full plain text, paragraphs separated by
// newlines and table cells by tabs.
func (d *Document) Text() string {
	var lines []string
	for _, blk := range d.blocks {
		switch v := blk.(type) {
		case *paragraph:
			lines = append(lines, v.text)
		case *table:
			for _, row := range v.rows {
				lines = append(lines, strings.Join(row, "\t"))
			}
		}
	}
	return strings.Join(lines, "\n")
}

const (
	twipsPerPoint = 20
	// Line spacing with rule auto is in 240ths of a single line.
	autoLineUnit = 240
)

func (p *paraProps) toFormat() engine.ParagraphFormat {
	f := engine.ParagraphFormat{
		Alignment:       engine.AlignLeft,
		LineSpacing:     1.0,
		LineSpacingRule: engine.SpacingMultiple,
	}
	switch p.jc {
	case "center":
		f.Alignment = engine.AlignCenter
	case "right", "end":
		f.Alignment = engine.AlignRight
	case "both":
		f.Alignment = engine.AlignJustify
	}
	f.FirstLineIndent = twipsToPoints(p.firstLine)
	f.LeftIndent = twipsToPoints(p.left)
	f.RightIndent = twipsToPoints(p.right)
	f.BeforeSpacing = twipsToPoints(p.before)
	f.AfterSpacing = twipsToPoints(p.after)
	if p.line != nil {
		switch p.lineRule {
		case "atLeast":
			f.LineSpacing = float64(*p.line) / twipsPerPoint
			f.LineSpacingRule = engine.SpacingAtLeast
		case "exact":
			f.LineSpacing = float64(*p.line) / twipsPerPoint
			f.LineSpacingRule = engine.SpacingExactly
		default:
			f.LineSpacing = float64(*p.line) / autoLineUnit
			f.LineSpacingRule = engine.SpacingMultiple
		}
	}
	return f
}

func (p *paraProps) apply(update engine.FormatUpdate) {
	if update.Alignment != nil {
		switch *update.Alignment {
		case engine.AlignCenter:
			p.jc = "center"
		case engine.AlignRight:
			p.jc = "right"
		case engine.AlignJustify:
			p.jc = "both"
		default:
			p.jc = "left"
		}
	}
	if update.FirstLineIndent != nil {
		p.firstLine = pointsToTwips(*update.FirstLineIndent)
	}
	if update.LeftIndent != nil {
		p.left = pointsToTwips(*update.LeftIndent)
	}
	if update.RightIndent != nil {
		p.right = pointsToTwips(*update.RightIndent)
	}
	if update.BeforeSpacing != nil {
		p.before = pointsToTwips(*update.BeforeSpacing)
	}
	if update.AfterSpacing != nil {
		p.after = pointsToTwips(*update.AfterSpacing)
	}
	if update.LineSpacing != nil {
		rule := engine.SpacingMultiple
		if update.LineSpacingRule != nil {
			rule = *update.LineSpacingRule
		}
		switch rule {
		case engine.SpacingAtLeast:
			p.line = pointsToTwips(*update.LineSpacing)
			p.lineRule = "atLeast"
		case engine.SpacingExactly:
			p.line = pointsToTwips(*update.LineSpacing)
			p.lineRule = "exact"
		default:
			v := int(math.Round(*update.LineSpacing * autoLineUnit))
			p.line = &v
			p.lineRule = "auto"
		}
	}
}

func twipsToPoints(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v) / twipsPerPoint
}

func pointsToTwips(points float64) *int {
	v := int(math.Round(points * twipsPerPoint))
	return &v
}

package ooxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wrenlabs/docsmith/engine"
)

func createDocument(t *testing.T, path string) engine.Document {
	t.Helper()
	doc, err := New().Create(path, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return doc
}

func reopen(t *testing.T, path string) engine.Document {
	t.Helper()
	doc, err := New().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return doc
}

func TestCreateAndOpenEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	createDocument(t, path)

	doc := reopen(t, path)
	if n := doc.ParagraphCount(); n != 0 {
		t.Fatalf("ParagraphCount() = %d, want 0", n)
	}
	if n := doc.TableCount(); n != 0 {
		t.Fatalf("TableCount() = %d, want 0", n)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := New().Open(filepath.Join(t.TempDir(), "ghost.docx"))
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestOpenMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.docx")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	_, err := New().Open(path)
	if !errors.Is(err, engine.ErrBadDocument) {
		t.Fatalf("Open() error = %v, want ErrBadDocument", err)
	}
}

func TestParagraphRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paras.docx")
	doc := createDocument(t, path)

	texts := []string{"first paragraph", "second\twith tab", "third\nwith break"}
	for i, text := range texts {
		if idx := doc.AddParagraph(text); idx != i {
			t.Fatalf("AddParagraph(%q) = %d, want %d", text, idx, i)
		}
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := reopen(t, path)
	if n := got.ParagraphCount(); n != len(texts) {
		t.Fatalf("ParagraphCount() = %d, want %d", n, len(texts))
	}
	for i, want := range texts {
		text, err := got.ParagraphText(i)
		if err != nil {
			t.Fatalf("ParagraphText(%d) error = %v", i, err)
		}
		if text != want {
			t.Fatalf("ParagraphText(%d) = %q, want %q", i, text, want)
		}
	}
}

func TestInsertUpdateDeleteParagraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("a")
	doc.AddParagraph("c")

	if err := doc.InsertParagraph(1, "b"); err != nil {
		t.Fatalf("InsertParagraph() error = %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if text, _ := doc.ParagraphText(i); text != want {
			t.Fatalf("ParagraphText(%d) = %q, want %q", i, text, want)
		}
	}

	old, err := doc.UpdateParagraphText(1, "B")
	if err != nil {
		t.Fatalf("UpdateParagraphText() error = %v", err)
	}
	if old != "b" {
		t.Fatalf("UpdateParagraphText() old = %q, want b", old)
	}

	deleted, err := doc.DeleteParagraph(0)
	if err != nil {
		t.Fatalf("DeleteParagraph() error = %v", err)
	}
	if deleted != "a" {
		t.Fatalf("DeleteParagraph() = %q, want a", deleted)
	}
	if n := doc.ParagraphCount(); n != 2 {
		t.Fatalf("ParagraphCount() = %d, want 2", n)
	}

	if _, err := doc.UpdateParagraphText(9, "x"); !errors.Is(err, engine.ErrIndexOutOfRange) {
		t.Fatalf("UpdateParagraphText(9) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := doc.DeleteParagraph(-1); !errors.Is(err, engine.ErrIndexOutOfRange) {
		t.Fatalf("DeleteParagraph(-1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("styled")

	center := engine.AlignCenter
	firstLine := 18.0
	left := 36.0
	spacing := 1.5
	after := 12.0
	if err := doc.FormatParagraph(0, engine.FormatUpdate{
		Alignment:       &center,
		FirstLineIndent: &firstLine,
		LeftIndent:      &left,
		LineSpacing:     &spacing,
		AfterSpacing:    &after,
	}); err != nil {
		t.Fatalf("FormatParagraph() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	format, err := reopen(t, path).ParagraphFormat(0)
	if err != nil {
		t.Fatalf("ParagraphFormat() error = %v", err)
	}
	if format.Alignment != engine.AlignCenter {
		t.Fatalf("Alignment = %s, want center", format.Alignment)
	}
	if format.FirstLineIndent != 18 || format.LeftIndent != 36 {
		t.Fatalf("indents = %v/%v, want 18/36", format.FirstLineIndent, format.LeftIndent)
	}
	if format.LineSpacing != 1.5 || format.LineSpacingRule != engine.SpacingMultiple {
		t.Fatalf("line spacing = %v %s, want 1.5 multiple", format.LineSpacing, format.LineSpacingRule)
	}
	if format.AfterSpacing != 12 {
		t.Fatalf("AfterSpacing = %v, want 12", format.AfterSpacing)
	}
}

func TestFormatExactSpacingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exact.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("tight")

	spacing := 14.0
	rule := engine.SpacingExactly
	if err := doc.FormatParagraph(0, engine.FormatUpdate{
		LineSpacing:     &spacing,
		LineSpacingRule: &rule,
	}); err != nil {
		t.Fatalf("FormatParagraph() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	format, err := reopen(t, path).ParagraphFormat(0)
	if err != nil {
		t.Fatalf("ParagraphFormat() error = %v", err)
	}
	if format.LineSpacing != 14 || format.LineSpacingRule != engine.SpacingExactly {
		t.Fatalf("line spacing = %v %s, want 14 exactly", format.LineSpacing, format.LineSpacingRule)
	}
}

func TestTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("intro")

	if idx := doc.AddTable(2, 3, "TableGrid"); idx != 0 {
		t.Fatalf("AddTable() = %d, want 0", idx)
	}
	if _, err := doc.SetCellText(0, 1, 2, "corner"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := reopen(t, path)
	info, err := got.TableInfo(0)
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if info.Rows != 2 || info.Columns != 3 {
		t.Fatalf("TableInfo() = %+v, want 2x3", info)
	}
	cell, err := got.CellText(0, 1, 2)
	if err != nil {
		t.Fatalf("CellText() error = %v", err)
	}
	if cell != "corner" {
		t.Fatalf("CellText() = %q, want corner", cell)
	}

	if _, err := got.CellText(0, 2, 0); !errors.Is(err, engine.ErrIndexOutOfRange) {
		t.Fatalf("CellText(row 2) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := got.TableInfo(1); !errors.Is(err, engine.ErrIndexOutOfRange) {
		t.Fatalf("TableInfo(1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestInsertTableAfterParagraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("first")
	doc.AddParagraph("second")
	doc.AddTable(1, 1, "")

	idx, err := doc.InsertTableAfterParagraph(2, 2, 0, "")
	if err != nil {
		t.Fatalf("InsertTableAfterParagraph() error = %v", err)
	}
	if idx != 0 {
		t.Fatalf("InsertTableAfterParagraph() = %d, want 0 (before the trailing table)", idx)
	}
	if n := doc.TableCount(); n != 2 {
		t.Fatalf("TableCount() = %d, want 2", n)
	}
	info, err := doc.TableInfo(0)
	if err != nil {
		t.Fatalf("TableInfo(0) error = %v", err)
	}
	if info.Rows != 2 || info.Columns != 2 {
		t.Fatalf("inserted table = %+v, want 2x2", info)
	}

	if _, err := doc.InsertTableAfterParagraph(1, 1, 7, ""); !errors.Is(err, engine.ErrIndexOutOfRange) {
		t.Fatalf("InsertTableAfterParagraph(paragraph 7) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDeleteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "del.docx")
	doc := createDocument(t, path)
	doc.AddTable(3, 2, "")

	info, err := doc.DeleteTable(0)
	if err != nil {
		t.Fatalf("DeleteTable() error = %v", err)
	}
	if info.Rows != 3 || info.Columns != 2 {
		t.Fatalf("DeleteTable() = %+v, want 3x2", info)
	}
	if n := doc.TableCount(); n != 0 {
		t.Fatalf("TableCount() = %d, want 0", n)
	}
}

func TestReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replace.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("The Cat and the cat and the catalog")
	doc.AddTable(1, 1, "")
	if _, err := doc.SetCellText(0, 0, 0, "cat"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}

	cases := []struct {
		name      string
		matchCase bool
		wholeWord bool
		want      int
	}{
		{"case insensitive substring", false, false, 4},
		{"case sensitive substring", true, false, 3},
		{"case insensitive whole word", false, true, 3},
		{"case sensitive whole word", true, true, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fresh := createDocument(t, filepath.Join(t.TempDir(), "fresh.docx"))
			fresh.AddParagraph("The Cat and the cat and the catalog")
			fresh.AddTable(1, 1, "")
			if _, err := fresh.SetCellText(0, 0, 0, "cat"); err != nil {
				t.Fatalf("SetCellText() error = %v", err)
			}
			if got := fresh.Replace("cat", "dog", tc.matchCase, tc.wholeWord); got != tc.want {
				t.Fatalf("Replace() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProtectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protected.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("locked content")

	if err := doc.SetProtection(engine.ProtectionReadOnly, "hunter2"); err != nil {
		t.Fatalf("SetProtection() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := reopen(t, path)
	if p := got.Protection(); p != engine.ProtectionReadOnly {
		t.Fatalf("Protection() = %s, want read_only", p)
	}

	if err := got.SetProtection(engine.ProtectionNone, ""); err != nil {
		t.Fatalf("SetProtection(none) error = %v", err)
	}
	if err := got.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p := reopen(t, path).Protection(); p != engine.ProtectionNone {
		t.Fatalf("Protection() after clear = %s, want none", p)
	}
}

func TestForeignPartsPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("body")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Splice an extra part into the container the parser does not model.
	addZipPart(t, path, "word/media/logo.png", []byte{0x89, 'P', 'N', 'G'})

	edited := reopen(t, path)
	edited.AddParagraph("more body")
	if err := edited.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data := readZipPart(t, path, "word/media/logo.png")
	if string(data) != string([]byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("foreign part content changed: %v", data)
	}
}

const richMainPart = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml">
<w:body>
<w:p w14:paraId="11112222"><w:r><w:rPr><w:b/></w:rPr><w:t>bold text</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:i/></w:rPr><w:t>italic text</w:t></w:r></w:p>
<w:bookmarkStart w:id="0" w:name="intro"/>
<w:bookmarkEnd w:id="0"/>
<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="2880" w:bottom="2880" w:left="1440" w:right="1440"/></w:sectPr>
</w:body></w:document>`

// writeMainPart builds a minimal container around a hand-written main part,
// standing in for a file authored by another word processor.
func writeMainPart(t *testing.T, path, mainPart string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create container: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create main part: %v", err)
	}
	if _, err := w.Write([]byte(mainPart)); err != nil {
		t.Fatalf("write main part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close container: %v", err)
	}
}

func TestEditPreservesForeignMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authored.docx")
	writeMainPart(t, path, richMainPart)

	doc := reopen(t, path)
	doc.AddParagraph("appended")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	main := string(readZipPart(t, path, "word/document.xml"))
	for _, want := range []string{
		`<w:r><w:rPr><w:b/></w:rPr><w:t>bold text</w:t></w:r>`,
		`w14:paraId="11112222"`,
		`<w:pgMar w:top="2880"`,
		`<w:pgSz w:w="11906"`,
		`<w:bookmarkStart w:id="0" w:name="intro"/>`,
		`xmlns:w14=`,
		`appended`,
	} {
		if !strings.Contains(main, want) {
			t.Errorf("saved main part lost %q:\n%s", want, main)
		}
	}

	got := reopen(t, path)
	if n := got.ParagraphCount(); n != 3 {
		t.Fatalf("ParagraphCount() after edit = %d, want 3", n)
	}
	if text, _ := got.ParagraphText(2); text != "appended" {
		t.Fatalf("ParagraphText(2) = %q, want appended", text)
	}
}

func TestUpdateRewritesOnlyTouchedParagraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authored.docx")
	writeMainPart(t, path, richMainPart)

	doc := reopen(t, path)
	if _, err := doc.UpdateParagraphText(1, "changed"); err != nil {
		t.Fatalf("UpdateParagraphText() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	main := string(readZipPart(t, path, "word/document.xml"))
	if !strings.Contains(main, `<w:b/>`) {
		t.Errorf("untouched paragraph lost its run properties:\n%s", main)
	}
	if strings.Contains(main, `italic text`) {
		t.Errorf("updated paragraph kept its old text:\n%s", main)
	}
	if strings.Contains(main, `<w:i/>`) {
		t.Errorf("rebuilt paragraph kept stale run properties:\n%s", main)
	}
	if !strings.Contains(main, `<w:pgMar w:top="2880"`) {
		t.Errorf("page margins lost:\n%s", main)
	}
}

func TestReplaceKeepsUnmatchedBlocksVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authored.docx")
	writeMainPart(t, path, richMainPart)

	doc := reopen(t, path)
	if n := doc.Replace("italic", "oblique", true, false); n != 1 {
		t.Fatalf("Replace() = %d, want 1", n)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	main := string(readZipPart(t, path, "word/document.xml"))
	if !strings.Contains(main, `<w:r><w:rPr><w:b/></w:rPr><w:t>bold text</w:t></w:r>`) {
		t.Errorf("unmatched paragraph was rewritten:\n%s", main)
	}
	if !strings.Contains(main, "oblique text") {
		t.Errorf("matched paragraph not replaced:\n%s", main)
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.docx")
	extraPath := filepath.Join(dir, "extra.docx")
	outPath := filepath.Join(dir, "out.docx")

	base := createDocument(t, basePath)
	base.AddParagraph("base")
	if err := base.Save(basePath); err != nil {
		t.Fatalf("Save(base) error = %v", err)
	}
	extra := createDocument(t, extraPath)
	extra.AddParagraph("extra")
	extra.AddTable(1, 1, "")
	if err := extra.Save(extraPath); err != nil {
		t.Fatalf("Save(extra) error = %v", err)
	}

	if err := New().Merge(basePath, extraPath, outPath); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	merged := reopen(t, outPath)
	if n := merged.ParagraphCount(); n != 2 {
		t.Fatalf("merged ParagraphCount() = %d, want 2", n)
	}
	if n := merged.TableCount(); n != 1 {
		t.Fatalf("merged TableCount() = %d, want 1", n)
	}
	if text, _ := merged.ParagraphText(1); text != "extra" {
		t.Fatalf("merged ParagraphText(1) = %q, want extra", text)
	}
}

func TestText(t *testing.T) {
	doc := createDocument(t, filepath.Join(t.TempDir(), "text.docx"))
	doc.AddParagraph("one")
	doc.AddTable(1, 2, "")
	if _, err := doc.SetCellText(0, 0, 0, "a"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}
	if _, err := doc.SetCellText(0, 0, 1, "b"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}
	doc.AddParagraph("two")

	want := "one\na\tb\ntwo"
	if got := doc.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.docx")
	doc := createDocument(t, path)
	doc.AddParagraph("x")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".docsmith-") {
			t.Fatalf("temp file %q left behind", entry.Name())
		}
	}
}

func addZipPart(t *testing.T, path, name string, data []byte) {
	t.Helper()
	src, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer src.Close()

	out, err := os.Create(path + ".tmp")
	if err != nil {
		t.Fatalf("create temp zip: %v", err)
	}
	zw := zip.NewWriter(out)
	for _, entry := range src.File {
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry: %v", err)
		}
		w, err := zw.Create(entry.Name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			t.Fatalf("copy entry: %v", err)
		}
		rc.Close()
	}
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close temp zip: %v", err)
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		t.Fatalf("replace zip: %v", err)
	}
}

func readZipPart(t *testing.T, path, name string) []byte {
	t.Helper()
	src, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer src.Close()
	for _, entry := range src.File {
		if entry.Name == name {
			rc, err := entry.Open()
			if err != nil {
				t.Fatalf("open entry: %v", err)
			}
			defer rc.Close()
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, rc); err != nil {
				t.Fatalf("read entry: %v", err)
			}
			return buf.Bytes()
		}
	}
	t.Fatalf("part %q not found", name)
	return nil
}

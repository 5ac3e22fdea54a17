package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wrenlabs/docsmith/engine"
	"github.com/wrenlabs/docsmith/engine/ooxml"
)

// sampleDocument writes a document with two paragraphs and a 1x2 table so the
// exported text carries both plain and tab-separated lines.
func sampleDocument(t *testing.T, dir string) string {
	t.Helper()
	eng := ooxml.New()
	path := filepath.Join(dir, "input.docx")
	doc, err := eng.Create(path, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	doc.AddParagraph("alpha")
	doc.AddParagraph("beta <tag>")
	doc.AddTable(1, 2, "")
	if _, err := doc.SetCellText(0, 0, 0, "left"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}
	if _, err := doc.SetCellText(0, 0, 1, "right"); err != nil {
		t.Fatalf("SetCellText() error = %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

func newConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	if opts.Engine == nil {
		opts.Engine = ooxml.New()
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New() with nil engine succeeded, want error")
	}
}

func TestConvertDocxCopies(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "copy.docx")

	c := newConverter(t, Options{})
	if err := c.Convert(context.Background(), input, output, engine.FormatDocx); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc, err := ooxml.New().Open(output)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := doc.ParagraphCount(); got != 2 {
		t.Fatalf("ParagraphCount() = %d, want 2", got)
	}
	if got := doc.TableCount(); got != 1 {
		t.Fatalf("TableCount() = %d, want 1", got)
	}
}

func TestConvertTxt(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "out.txt")

	c := newConverter(t, Options{})
	if err := c.Convert(context.Background(), input, output, engine.FormatTxt); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "alpha\nbeta <tag>\nleft\tright\n"
	if string(data) != want {
		t.Fatalf("txt output = %q, want %q", data, want)
	}
}

func TestConvertMarkdown(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "out.md")

	c := newConverter(t, Options{})
	if err := c.Convert(context.Background(), input, output, engine.FormatMarkdown); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "alpha\n\n") {
		t.Errorf("markdown output missing paragraph line: %q", got)
	}
	if !strings.Contains(got, "| left | right |\n") {
		t.Errorf("markdown output missing pipe table row: %q", got)
	}
}

func TestConvertHTMLEscapes(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "out.html")

	c := newConverter(t, Options{})
	if err := c.Convert(context.Background(), input, output, engine.FormatHTML); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "<!DOCTYPE html>\n") {
		t.Errorf("html output missing doctype: %q", got)
	}
	if !strings.Contains(got, "<p>beta &lt;tag&gt;</p>") {
		t.Errorf("html output did not escape markup: %q", got)
	}
}

func TestConvertXMLExportsMainPart(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "out.xml")

	c := newConverter(t, Options{})
	if err := c.Convert(context.Background(), input, output, engine.FormatXML); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "alpha") {
		t.Errorf("xml output does not carry document text: %q", data)
	}
}

func TestConvertXMLRejectsNonContainer(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plain.docx")
	if err := os.WriteFile(input, []byte("not a container"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c := newConverter(t, Options{})
	err := c.Convert(context.Background(), input, filepath.Join(dir, "out.xml"), engine.FormatXML)
	if err == nil {
		t.Fatal("Convert() on a non-container succeeded, want error")
	}
}

func TestConvertUnsupportedTarget(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)

	c := newConverter(t, Options{})
	err := c.Convert(context.Background(), input, filepath.Join(dir, "out.wav"), engine.Format("wav"))
	if err == nil {
		t.Fatal("Convert() with unknown format succeeded, want error")
	}
}

// fakeSoffice writes a shell script that mimics the LibreOffice CLI contract:
// it takes --outdir and an input path and drops <stem>.<ext> into the outdir.
func fakeSoffice(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestConvertDelegatesToSoffice(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)
	output := filepath.Join(dir, "out.pdf")

	script := `#!/bin/sh
outdir="$6"
in="$7"
base=$(basename "$in")
printf 'pdf-bytes' > "$outdir/${base%.*}.pdf"
`
	c := newConverter(t, Options{SofficePath: fakeSoffice(t, script)})
	if err := c.Convert(context.Background(), input, output, engine.FormatPDF); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Fatalf("pdf output = %q, want %q", data, "pdf-bytes")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".docsmith-convert-") {
			t.Fatalf("scratch directory %q left behind", entry.Name())
		}
	}
}

func TestConvertSofficeFailure(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)

	script := `#!/bin/sh
echo "conversion broke" >&2
exit 1
`
	c := newConverter(t, Options{SofficePath: fakeSoffice(t, script)})
	err := c.Convert(context.Background(), input, filepath.Join(dir, "out.pdf"), engine.FormatPDF)
	if err == nil {
		t.Fatal("Convert() with failing binary succeeded, want error")
	}
	if !strings.Contains(err.Error(), "conversion broke") {
		t.Fatalf("Convert() error = %v, want captured binary output", err)
	}
}

func TestConvertSofficeProducesNothing(t *testing.T) {
	dir := t.TempDir()
	input := sampleDocument(t, dir)

	c := newConverter(t, Options{SofficePath: fakeSoffice(t, "#!/bin/sh\nexit 0\n")})
	err := c.Convert(context.Background(), input, filepath.Join(dir, "out.pdf"), engine.FormatPDF)
	if err == nil {
		t.Fatal("Convert() with silent binary succeeded, want error")
	}
	if !strings.Contains(err.Error(), "produced no output") {
		t.Fatalf("Convert() error = %v, want missing-output error", err)
	}
}

// Package convert implements engine.Converter. Text-shaped targets (txt,
// markdown, html, xml, docx) are exported natively from the parsed document;
// binary targets (pdf, doc, rtf, epub, odt) are delegated to an external
// LibreOffice binary.
package convert

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/wrenlabs/docsmith/engine"
)

const defaultTimeout = 2 * time.Minute

// Options configures a Converter.
type Options struct {
	// Engine parses documents for native exports.
	Engine engine.Engine
	// SofficePath locates the LibreOffice binary; defaults to "soffice".
	SofficePath string
	// Timeout bounds one external conversion; defaults to 2 minutes.
	Timeout time.Duration
}

// Converter renders documents into other formats.
type Converter struct {
	engine  engine.Engine
	soffice string
	timeout time.Duration
}

// New creates a Converter.
func New(opts Options) (*Converter, error) {
	if opts.Engine == nil {
		return nil, errors.New("convert: engine is required")
	}
	soffice := strings.TrimSpace(opts.SofficePath)
	if soffice == "" {
		soffice = "soffice"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Converter{engine: opts.Engine, soffice: soffice, timeout: timeout}, nil
}

var _ engine.Converter = (*Converter)(nil)

// Convert renders inputPath into target format at outputPath.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string, target engine.Format) error {
	switch target {
	case engine.FormatDocx:
		return c.copyDocument(inputPath, outputPath)
	case engine.FormatTxt:
		return c.exportText(inputPath, outputPath)
	case engine.FormatMarkdown:
		return c.exportMarkdown(inputPath, outputPath)
	case engine.FormatHTML:
		return c.exportHTML(inputPath, outputPath)
	case engine.FormatXML:
		return exportMainPart(inputPath, outputPath)
	case engine.FormatPDF, engine.FormatDoc, engine.FormatRTF, engine.FormatEPub, engine.FormatODT:
		return c.runSoffice(ctx, inputPath, outputPath, target)
	default:
		return fmt.Errorf("convert: unsupported target format %q", target)
	}
}

func (c *Converter) copyDocument(inputPath, outputPath string) error {
	doc, err := c.engine.Open(inputPath)
	if err != nil {
		return err
	}
	return doc.Save(outputPath)
}

func (c *Converter) exportText(inputPath, outputPath string) error {
	doc, err := c.engine.Open(inputPath)
	if err != nil {
		return err
	}
	return writeFile(outputPath, doc.Text()+"\n")
}

// exportMarkdown renders paragraphs as lines and tab-separated table rows as
// pipe tables.
func (c *Converter) exportMarkdown(inputPath, outputPath string) error {
	doc, err := c.engine.Open(inputPath)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, line := range strings.Split(doc.Text(), "\n") {
		if strings.Contains(line, "\t") {
			b.WriteString("| " + strings.Join(strings.Split(line, "\t"), " | ") + " |\n")
			continue
		}
		b.WriteString(line + "\n\n")
	}
	return writeFile(outputPath, b.String())
}

func (c *Converter) exportHTML(inputPath, outputPath string) error {
	doc, err := c.engine.Open(inputPath)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body>\n")
	for _, line := range strings.Split(doc.Text(), "\n") {
		b.WriteString("<p>" + html.EscapeString(line) + "</p>\n")
	}
	b.WriteString("</body></html>\n")
	return writeFile(outputPath, b.String())
}

// runSoffice converts through LibreOffice headless mode. LibreOffice only
// takes an output directory, so the conversion runs in a scratch dir and the
// produced file is moved to outputPath.
func (c *Converter) runSoffice(ctx context.Context, inputPath, outputPath string, target engine.Format) error {
	outDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".docsmith-convert-*")
	if err != nil {
		return fmt.Errorf("convert: create scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.soffice,
		"--headless", "--norestore",
		"--convert-to", target.Ext(),
		"--outdir", outDir,
		inputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("convert: %s failed: %w: %s", c.soffice, err, strings.TrimSpace(string(output)))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, base+"."+target.Ext())
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("convert: %s produced no output for %q: %s", c.soffice, inputPath, strings.TrimSpace(string(output)))
	}
	if err := os.Rename(produced, outputPath); err != nil {
		return fmt.Errorf("convert: move output: %w", err)
	}
	return nil
}

// exportMainPart copies word/document.xml out of the container.
func exportMainPart(inputPath, outputPath string) error {
	data, err := readMainPart(inputPath)
	if err != nil {
		return err
	}
	return writeFile(outputPath, string(data))
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("convert: write %q: %w", path, err)
	}
	return nil
}

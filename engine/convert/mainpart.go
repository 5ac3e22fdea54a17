package convert

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/wrenlabs/docsmith/engine"
)

// readMainPart pulls word/document.xml out of a .docx container without
// going through the engine's parser.
func readMainPart(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("convert: stat %q: %w", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("convert: %q is not a document container: %w", path, engine.ErrBadDocument)
	}
	for _, entry := range zr.File {
		if entry.Name != "word/document.xml" {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("convert: open main part: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("convert: %q has no main document part: %w", path, engine.ErrBadDocument)
}

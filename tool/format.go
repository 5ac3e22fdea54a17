package tool

import (
	"context"
	"fmt"

	"github.com/wrenlabs/docsmith/engine"
)

// formatUpdateFromArgs decodes the optional formatting fields. At least one
// must be present.
func formatUpdateFromArgs(args map[string]any, code string) (engine.FormatUpdate, *OpError) {
	var update engine.FormatUpdate

	if raw, verr := optionalString(args, "alignment", code); verr != nil {
		return update, verr
	} else if raw != "" {
		alignment, ok := engine.ParseAlignment(raw)
		if !ok {
			return update, validationError(code, "unknown alignment %q", raw)
		}
		update.Alignment = &alignment
	}

	if raw, verr := optionalString(args, "line_spacing_rule", code); verr != nil {
		return update, verr
	} else if raw != "" {
		rule, ok := engine.ParseSpacingRule(raw)
		if !ok {
			return update, validationError(code, "unknown line spacing rule %q", raw)
		}
		update.LineSpacingRule = &rule
	}

	numeric := []struct {
		key  string
		dest **float64
	}{
		{"first_line_indent", &update.FirstLineIndent},
		{"left_indent", &update.LeftIndent},
		{"right_indent", &update.RightIndent},
		{"line_spacing", &update.LineSpacing},
		{"before_spacing", &update.BeforeSpacing},
		{"after_spacing", &update.AfterSpacing},
	}
	for _, field := range numeric {
		v, verr := optionalFloat(args, field.key, code)
		if verr != nil {
			return update, verr
		}
		*field.dest = v
	}

	if update.Alignment == nil && update.LineSpacingRule == nil &&
		update.FirstLineIndent == nil && update.LeftIndent == nil &&
		update.RightIndent == nil && update.LineSpacing == nil &&
		update.BeforeSpacing == nil && update.AfterSpacing == nil {
		return update, validationError(code, "no formatting fields supplied")
	}
	return update, nil
}

func (d *Dispatcher) handleFormatParagraph(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeFormat)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeFormat)
	if !ok {
		return env
	}
	update, verr := formatUpdateFromArgs(args, CodeFormat)
	if verr != nil {
		return failure(verr, CodeFormat)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeFormat)
	if !ok {
		return env
	}
	if err := doc.FormatParagraph(index, update); err != nil {
		return failure(err, CodeFormat)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}
	format, err := doc.ParagraphFormat(index)
	if err != nil {
		return failure(err, CodeFormat)
	}

	return success(fmt.Sprintf("Paragraph %d formatted", index), map[string]any{
		"paragraph_index": index,
		"format":          format,
	})
}

func (d *Dispatcher) handleGetParagraphFormat(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeFormatInfo)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeFormatInfo)
	if !ok {
		return env
	}

	doc, _, env, ok := d.openDocument(name, CodeFormatInfo)
	if !ok {
		return env
	}
	format, err := doc.ParagraphFormat(index)
	if err != nil {
		return failure(err, CodeFormatInfo)
	}

	return success(fmt.Sprintf("Paragraph %d format retrieved", index), map[string]any{
		"paragraph_index": index,
		"format":          format,
	})
}

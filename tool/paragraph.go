package tool

import (
	"context"
	"fmt"
)

func (d *Dispatcher) handleAddParagraph(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeParagraphAdd)
	if !ok {
		return env
	}
	text, verr := requireString(args, "text", CodeParagraphAdd)
	if verr != nil {
		return failure(verr, CodeParagraphAdd)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeParagraphAdd)
	if !ok {
		return env
	}
	index := doc.AddParagraph(text)
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success("Paragraph added successfully", map[string]any{
		"paragraph_index":  index,
		"text":             text,
		"text_length":      len(text),
		"word_count":       wordCount(text),
		"total_paragraphs": doc.ParagraphCount(),
	})
}

func (d *Dispatcher) handleGetParagraphText(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeParagraphText)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeParagraphText)
	if !ok {
		return env
	}

	doc, _, env, ok := d.openDocument(name, CodeParagraphText)
	if !ok {
		return env
	}
	text, err := doc.ParagraphText(index)
	if err != nil {
		return failure(err, CodeParagraphText)
	}

	return success(fmt.Sprintf("Paragraph %d retrieved", index), map[string]any{
		"paragraph_index":  index,
		"text":             text,
		"text_length":      len(text),
		"word_count":       wordCount(text),
		"total_paragraphs": doc.ParagraphCount(),
	})
}

func (d *Dispatcher) handleGetParagraphInfo(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeParagraphInfo)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeParagraphInfo)
	if !ok {
		return env
	}

	doc, _, env, ok := d.openDocument(name, CodeParagraphInfo)
	if !ok {
		return env
	}
	text, err := doc.ParagraphText(index)
	if err != nil {
		return failure(err, CodeParagraphInfo)
	}
	format, err := doc.ParagraphFormat(index)
	if err != nil {
		return failure(err, CodeParagraphInfo)
	}

	return success(fmt.Sprintf("Paragraph %d info retrieved", index), map[string]any{
		"paragraph_index": index,
		"text":            text,
		"text_length":     len(text),
		"word_count":      wordCount(text),
		"line_count":      lineCount(text),
		"format":          format,
	})
}

func (d *Dispatcher) handleUpdateParagraphText(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeParagraphUpdate)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeParagraphUpdate)
	if !ok {
		return env
	}
	text, verr := requireString(args, "text", CodeParagraphUpdate)
	if verr != nil {
		return failure(verr, CodeParagraphUpdate)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeParagraphUpdate)
	if !ok {
		return env
	}
	oldText, err := doc.UpdateParagraphText(index, text)
	if err != nil {
		return failure(err, CodeParagraphUpdate)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Paragraph %d updated", index), map[string]any{
		"paragraph_index": index,
		"old_text":        oldText,
		"new_text":        text,
	})
}

func (d *Dispatcher) handleDeleteParagraph(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeParagraphDelete)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "paragraph_index", CodeParagraphDelete)
	if !ok {
		return env
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeParagraphDelete)
	if !ok {
		return env
	}
	deleted, err := doc.DeleteParagraph(index)
	if err != nil {
		return failure(err, CodeParagraphDelete)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Paragraph %d deleted", index), map[string]any{
		"paragraph_index":      index,
		"deleted_text":         deleted,
		"remaining_paragraphs": doc.ParagraphCount(),
	})
}

package tool

import (
	"context"
	"fmt"

	"github.com/wrenlabs/docsmith/engine"
)

func (d *Dispatcher) handleCreateDocument(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeDocCreate)
	if !ok {
		return env
	}
	template, verr := optionalString(args, "template_name", CodeDocCreate)
	if verr != nil {
		return failure(verr, CodeDocCreate)
	}

	path, err := d.ws.Resolve(name)
	if err != nil {
		return failure(err, CodeDocCreate)
	}
	templatePath := ""
	if template != "" {
		if verr := validateDocumentName(template, CodeDocCreate); verr != nil {
			return failure(verr, CodeDocCreate)
		}
		templatePath, err = d.ws.Resolve(template)
		if err != nil {
			return failure(err, CodeDocCreate)
		}
		if !d.ws.Exists(templatePath) {
			return failure(newOpError(CodeDocumentNotFound, fmt.Sprintf("template %s does not exist", template), nil), CodeDocCreate)
		}
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	if _, err := d.engine.Create(path, templatePath); err != nil {
		return failure(err, CodeDocCreate)
	}

	data := map[string]any{
		"document_name": name,
		"path":          path,
	}
	if template != "" {
		data["template_name"] = template
	}
	return success(fmt.Sprintf("Document %s created successfully", name), data)
}

func (d *Dispatcher) handleSetProtection(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeDocProtect)
	if !ok {
		return env
	}
	levelRaw, verr := requireString(args, "protection_type", CodeDocProtect)
	if verr != nil {
		return failure(verr, CodeDocProtect)
	}
	level, ok := engine.ParseProtection(levelRaw)
	if !ok {
		return failure(validationError(CodeDocProtect, "unknown protection type %q", levelRaw), CodeDocProtect)
	}
	password, verr := optionalString(args, "password", CodeDocProtect)
	if verr != nil {
		return failure(verr, CodeDocProtect)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeDocProtect)
	if !ok {
		return env
	}
	if err := doc.SetProtection(level, password); err != nil {
		return failure(err, CodeDocProtect)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Protection %s applied to %s", level, name), map[string]any{
		"document_name":   name,
		"protection_type": string(level),
	})
}

func (d *Dispatcher) handleGetProtection(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeDocProtect)
	if !ok {
		return env
	}

	doc, _, env, ok := d.openDocument(name, CodeDocProtect)
	if !ok {
		return env
	}
	level := doc.Protection()

	return success(fmt.Sprintf("Document %s protection is %s", name, level), map[string]any{
		"document_name":   name,
		"protection_type": string(level),
	})
}

func (d *Dispatcher) handleFindAndReplace(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeDocReplace)
	if !ok {
		return env
	}
	find, verr := requireString(args, "find_text", CodeDocReplace)
	if verr != nil {
		return failure(verr, CodeDocReplace)
	}
	if find == "" {
		return failure(validationError(CodeDocReplace, "find_text must not be empty"), CodeDocReplace)
	}
	replace, verr := optionalString(args, "replace_text", CodeDocReplace)
	if verr != nil {
		return failure(verr, CodeDocReplace)
	}
	matchCase, verr := optionalBool(args, "match_case", false, CodeDocReplace)
	if verr != nil {
		return failure(verr, CodeDocReplace)
	}
	wholeWord, verr := optionalBool(args, "whole_word", false, CodeDocReplace)
	if verr != nil {
		return failure(verr, CodeDocReplace)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeDocReplace)
	if !ok {
		return env
	}
	count := doc.Replace(find, replace, matchCase, wholeWord)
	if count > 0 {
		if err := doc.Save(path); err != nil {
			return failure(err, CodeDocSave)
		}
	}

	return success(fmt.Sprintf("Replaced %d occurrence(s) in %s", count, name), map[string]any{
		"document_name": name,
		"find_text":     find,
		"replace_text":  replace,
		"replacements":  count,
		"match_case":    matchCase,
		"whole_word":    wholeWord,
	})
}

func (d *Dispatcher) handleMergeDocuments(ctx context.Context, args map[string]any) Envelope {
	base, verr := requireString(args, "base_document", CodeDocMerge)
	if verr != nil {
		return failure(verr, CodeDocMerge)
	}
	merge, verr := requireString(args, "merge_document", CodeDocMerge)
	if verr != nil {
		return failure(verr, CodeDocMerge)
	}
	output, verr := optionalString(args, "output_document", CodeDocMerge)
	if verr != nil {
		return failure(verr, CodeDocMerge)
	}
	if output == "" {
		output = base
	}
	for _, n := range []string{base, merge, output} {
		if verr := validateDocumentName(n, CodeDocMerge); verr != nil {
			return failure(verr, CodeDocMerge)
		}
	}
	if d.merger == nil {
		return failure(newOpError(CodeDocMerge, "no merger configured", nil), CodeDocMerge)
	}

	basePath, err := d.ws.Resolve(base)
	if err != nil {
		return failure(err, CodeDocMerge)
	}
	mergePath, err := d.ws.Resolve(merge)
	if err != nil {
		return failure(err, CodeDocMerge)
	}
	outputPath, err := d.ws.Resolve(output)
	if err != nil {
		return failure(err, CodeDocMerge)
	}

	// Locks are taken in name order so two merges with swapped documents
	// cannot deadlock each other.
	names := []string{output}
	if base != output {
		names = append(names, base)
		if names[0] > names[1] {
			names[0], names[1] = names[1], names[0]
		}
	}
	for _, n := range names {
		unlock := d.locks.acquire(n)
		defer unlock()
	}

	if err := d.merger.Merge(basePath, mergePath, outputPath); err != nil {
		return failure(err, CodeDocMerge)
	}

	return success(fmt.Sprintf("Merged %s into %s", merge, output), map[string]any{
		"base_document":   base,
		"merge_document":  merge,
		"output_document": output,
	})
}

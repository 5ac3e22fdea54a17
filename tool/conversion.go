package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wrenlabs/docsmith/engine"
	"github.com/wrenlabs/docsmith/history"
)

func (d *Dispatcher) handleConvertDocument(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeConversion)
	if !ok {
		return env
	}
	formatRaw, verr := requireString(args, "target_format", CodeConversion)
	if verr != nil {
		return failure(verr, CodeConversion)
	}
	format, ok := engine.ParseFormat(formatRaw)
	if !ok {
		msg := fmt.Sprintf("unsupported target format %q, supported: %s", formatRaw, strings.Join(engine.SupportedFormats(), ", "))
		return failure(newOpError(CodeUnsupportedFormat, msg, nil), CodeConversion)
	}
	outputName, verr := optionalString(args, "output_name", CodeConversion)
	if verr != nil {
		return failure(verr, CodeConversion)
	}
	if outputName == "" {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		outputName = stem + "." + format.Ext()
	} else if strings.TrimSpace(outputName) == "" || strings.ContainsAny(outputName, `/\`) || strings.Contains(outputName, "..") {
		return failure(validationError(CodeConversion, "invalid output name %q", outputName), CodeConversion)
	}
	if d.converter == nil {
		return failure(newOpError(CodeConversion, "no converter configured", nil), CodeConversion)
	}

	inputPath, err := d.ws.Resolve(name)
	if err != nil {
		return failure(err, CodeConversion)
	}
	if !d.ws.Exists(inputPath) {
		return failure(newOpError(CodeDocumentNotFound, fmt.Sprintf("document %s does not exist", name), nil), CodeConversion)
	}
	outputPath := filepath.Join(d.ws.Root(), outputName)

	unlock := d.locks.acquire(name)
	defer unlock()

	entry := history.Entry{
		ID:           uuid.NewString(),
		Source:       name,
		SourceFormat: strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		TargetFormat: string(format),
		OutputPath:   outputPath,
		Timestamp:    d.clock(),
	}

	if err := d.converter.Convert(ctx, inputPath, outputPath, format); err != nil {
		entry.Success = false
		entry.Detail = err.Error()
		d.appendHistory(ctx, entry)
		return failure(err, CodeConversion)
	}

	entry.Success = true
	d.appendHistory(ctx, entry)

	return success(fmt.Sprintf("Document %s converted to %s", name, format), map[string]any{
		"document_name": name,
		"target_format": string(format),
		"output_file":   outputName,
		"conversion_id": entry.ID,
	})
}

// appendHistory records a conversion outcome. A store failure is logged but
// never changes the conversion result already produced.
func (d *Dispatcher) appendHistory(ctx context.Context, entry history.Entry) {
	if err := d.history.Append(ctx, entry); err != nil {
		d.logger.Error("history append failed", "source", entry.Source, "id", entry.ID, "error", err)
	}
}

func (d *Dispatcher) handleConversionStatus(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeConversionStatus)
	if !ok {
		return env
	}

	entry, found, err := d.history.Latest(ctx, name)
	if err != nil {
		return failure(err, CodeConversionStatus)
	}
	if !found {
		return success(fmt.Sprintf("No conversions recorded for %s", name), map[string]any{
			"document_name": name,
			"status":        "none",
		})
	}

	status := "completed"
	if !entry.Success {
		status = "failed"
	}
	data := map[string]any{
		"document_name": name,
		"status":        status,
		"conversion":    entry,
	}
	return success(fmt.Sprintf("Latest conversion for %s: %s", name, status), data)
}

func (d *Dispatcher) handleConversionHistory(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeConversionHistory)
	if !ok {
		return env
	}

	entries, err := d.history.List(ctx, name)
	if err != nil {
		return failure(err, CodeConversionHistory)
	}

	return success(fmt.Sprintf("%d conversion(s) recorded for %s", len(entries), name), map[string]any{
		"document_name": name,
		"count":         len(entries),
		"history":       entries,
	})
}

package tool

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/wrenlabs/docsmith/engine"
	"github.com/wrenlabs/docsmith/history"
	"github.com/wrenlabs/docsmith/workspace"
)

// Config carries dispatcher dependencies.
type Config struct {
	Workspace *workspace.Workspace
	Engine    engine.Engine
	Merger    engine.Merger
	Converter engine.Converter
	History   history.Store
	Logger    *slog.Logger
	// Clock supplies timestamps for history entries. Defaults to time.Now.
	Clock func() time.Time
}

type handlerFunc func(ctx context.Context, args map[string]any) Envelope

// Dispatcher routes named operations to their handlers and wraps every
// outcome in a response envelope.
type Dispatcher struct {
	ws        *workspace.Workspace
	engine    engine.Engine
	merger    engine.Merger
	converter engine.Converter
	history   history.Store
	logger    *slog.Logger
	clock     func() time.Time
	locks     *docLocks
	handlers  map[string]handlerFunc
}

// NewDispatcher builds a dispatcher with all document, paragraph, table,
// formatting and conversion operations registered.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Workspace == nil {
		return nil, errors.New("tool: dispatcher requires a workspace")
	}
	if cfg.Engine == nil {
		return nil, errors.New("tool: dispatcher requires an engine")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	hist := cfg.History
	if hist == nil {
		hist = history.NewMemStore()
	}
	d := &Dispatcher{
		ws:        cfg.Workspace,
		engine:    cfg.Engine,
		merger:    cfg.Merger,
		converter: cfg.Converter,
		history:   hist,
		logger:    logger,
		clock:     clock,
		locks:     newDocLocks(),
	}
	d.handlers = map[string]handlerFunc{
		"create_document":           d.handleCreateDocument,
		"set_document_protection":   d.handleSetProtection,
		"get_document_protection":   d.handleGetProtection,
		"find_and_replace":          d.handleFindAndReplace,
		"merge_documents":           d.handleMergeDocuments,
		"add_paragraph":             d.handleAddParagraph,
		"get_paragraph_text":        d.handleGetParagraphText,
		"get_paragraph_info":        d.handleGetParagraphInfo,
		"update_paragraph_text":     d.handleUpdateParagraphText,
		"delete_paragraph":          d.handleDeleteParagraph,
		"create_table":              d.handleCreateTable,
		"add_table_after_paragraph": d.handleAddTableAfterParagraph,
		"add_table_to_section":      d.handleAddTableToSection,
		"get_table_info":            d.handleGetTableInfo,
		"delete_table":              d.handleDeleteTable,
		"set_cell_text":             d.handleSetCellText,
		"format_paragraph":          d.handleFormatParagraph,
		"get_paragraph_format":      d.handleGetParagraphFormat,
		"convert_document":          d.handleConvertDocument,
		"get_conversion_status":     d.handleConversionStatus,
		"get_conversion_history":    d.handleConversionHistory,
	}
	return d, nil
}

// Operations returns the registered operation names in sorted order.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one named operation. Every outcome, including an unknown
// operation name, is reported through the envelope rather than an error.
func (d *Dispatcher) Dispatch(ctx context.Context, operation string, args map[string]any) Envelope {
	start := time.Now()
	handler, ok := d.handlers[operation]

	var env Envelope
	if !ok {
		env = failure(newOpError(CodeUnknownOperation, "unknown operation "+operation, nil), CodeUnknownOperation)
	} else {
		if args == nil {
			args = map[string]any{}
		}
		env = handler(ctx, args)
	}

	doc, _ := args["document_name"].(string)
	obs := OperationObservation{
		Operation:  operation,
		Document:   doc,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    env.Success,
	}
	if env.Error != nil {
		obs.ErrorCode = env.Error.Code
	}
	emitOperationObservation(obs)

	if env.Success {
		d.logger.Debug("operation complete", "operation", operation, "document", doc, "duration_ms", obs.DurationMS)
	} else {
		d.logger.Warn("operation failed", "operation", operation, "document", doc, "code", obs.ErrorCode, "details", env.Error.Details)
	}
	return env
}

// documentName extracts and validates the document_name argument.
func (d *Dispatcher) documentName(args map[string]any, code string) (string, Envelope, bool) {
	name, verr := requireString(args, "document_name", code)
	if verr != nil {
		return "", failure(verr, code), false
	}
	if verr := validateDocumentName(name, code); verr != nil {
		return "", failure(verr, code), false
	}
	return name, Envelope{}, true
}

// indexArg extracts a required non-negative index argument.
func indexArg(args map[string]any, key, code string) (int, Envelope, bool) {
	index, verr := requireInt(args, key, code)
	if verr != nil {
		return 0, failure(verr, code), false
	}
	if index < 0 {
		return 0, failure(validationError(code, "%s must be non-negative, got %d", key, index), code), false
	}
	return index, Envelope{}, true
}

// openDocument resolves a document name inside the workspace and opens it.
func (d *Dispatcher) openDocument(name, code string) (engine.Document, string, Envelope, bool) {
	path, err := d.ws.Resolve(name)
	if err != nil {
		return nil, "", failure(err, code), false
	}
	doc, err := d.engine.Open(path)
	if err != nil {
		return nil, "", failure(err, code), false
	}
	return doc, path, Envelope{}, true
}

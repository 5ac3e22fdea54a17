package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/docsmith/engine/ooxml"
	"github.com/wrenlabs/docsmith/tool"
	"github.com/wrenlabs/docsmith/workspace"
)

// operationSummaries maps operation names to one-line descriptions for the
// tools listing.
var operationSummaries = map[string]string{
	"create_document":           "Create a new document, optionally from a template",
	"set_document_protection":   "Apply a protection level to a document",
	"get_document_protection":   "Report a document's protection level",
	"find_and_replace":          "Replace every occurrence of a text",
	"merge_documents":           "Append one document's content to another",
	"add_paragraph":             "Append a paragraph",
	"get_paragraph_text":        "Read one paragraph's text",
	"get_paragraph_info":        "Read one paragraph's text and formatting",
	"update_paragraph_text":     "Replace one paragraph's text",
	"delete_paragraph":          "Delete one paragraph",
	"create_table":              "Append a table",
	"add_table_after_paragraph": "Insert a table after a paragraph",
	"add_table_to_section":      "Append a table to a section",
	"get_table_info":            "Report table dimensions",
	"delete_table":              "Delete one table",
	"set_cell_text":             "Replace one table cell's text",
	"format_paragraph":          "Change one paragraph's formatting",
	"get_paragraph_format":      "Read one paragraph's formatting",
	"convert_document":          "Convert a document to another format",
	"get_conversion_status":     "Report the latest conversion outcome",
	"get_conversion_history":    "List recorded conversions",
}

// NewToolsCmd creates the "tools" subcommand.
func NewToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the operations the server exposes",
		RunE:  runTools,
	}
}

func runTools(cmd *cobra.Command, _ []string) error {
	// The listing needs a dispatcher only for its operation registry; a
	// throwaway workspace keeps the command side-effect free.
	tmp, err := os.MkdirTemp("", "docsmith-tools-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	ws, err := workspace.New(tmp)
	if err != nil {
		return fmt.Errorf("preparing scratch workspace: %w", err)
	}
	eng := ooxml.New()
	dispatcher, err := tool.NewDispatcher(tool.Config{
		Workspace: ws,
		Engine:    eng,
		Merger:    eng,
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tDESCRIPTION")
	for _, op := range dispatcher.Operations() {
		fmt.Fprintf(w, "%s\t%s\n", op, operationSummaries[op])
	}
	return w.Flush()
}

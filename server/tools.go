package server

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wrenlabs/docsmith/engine"
)

func documentNameOpt() mcp.ToolOption {
	return mcp.WithString("document_name",
		mcp.Description("Document file name inside the documents root, e.g. report.docx"),
		mcp.Required(),
	)
}

func paragraphIndexOpt() mcp.ToolOption {
	return mcp.WithNumber("paragraph_index",
		mcp.Description("Zero-based paragraph index"),
		mcp.Required(),
	)
}

func tableDimensionOpts() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("rows",
			mcp.Description("Number of rows (1-100)"),
			mcp.Required(),
		),
		mcp.WithNumber("columns",
			mcp.Description("Number of columns (1-20)"),
			mcp.Required(),
		),
		mcp.WithString("style",
			mcp.Description("Optional table style name"),
		),
	}
}

// definitions declares every operation as an MCP tool. Names must match the
// dispatcher's registered operations exactly.
func definitions() []mcp.Tool {
	var defs []mcp.Tool

	defs = append(defs,
		mcp.NewTool("create_document",
			mcp.WithDescription("Create a new Word document, optionally copied from a template"),
			documentNameOpt(),
			mcp.WithString("template_name",
				mcp.Description("Optional existing document to copy as a starting point"),
			),
		),
		mcp.NewTool("set_document_protection",
			mcp.WithDescription("Apply a protection level to a document"),
			documentNameOpt(),
			mcp.WithString("protection_type",
				mcp.Description("Protection level: none, read_only, form_filling, comments, revisions"),
				mcp.Required(),
			),
			mcp.WithString("password",
				mcp.Description("Optional protection password"),
			),
		),
		mcp.NewTool("get_document_protection",
			mcp.WithDescription("Report a document's current protection level"),
			documentNameOpt(),
		),
		mcp.NewTool("find_and_replace",
			mcp.WithDescription("Replace every occurrence of a text in a document"),
			documentNameOpt(),
			mcp.WithString("find_text",
				mcp.Description("Text to search for"),
				mcp.Required(),
			),
			mcp.WithString("replace_text",
				mcp.Description("Replacement text (empty deletes the matches)"),
			),
			mcp.WithBoolean("match_case",
				mcp.Description("Match case exactly (default false)"),
			),
			mcp.WithBoolean("whole_word",
				mcp.Description("Match whole words only (default false)"),
			),
		),
		mcp.NewTool("merge_documents",
			mcp.WithDescription("Append one document's content to another"),
			mcp.WithString("base_document",
				mcp.Description("Document whose content comes first"),
				mcp.Required(),
			),
			mcp.WithString("merge_document",
				mcp.Description("Document whose content is appended"),
				mcp.Required(),
			),
			mcp.WithString("output_document",
				mcp.Description("Result document name (defaults to the base document)"),
			),
		),
	)

	defs = append(defs,
		mcp.NewTool("add_paragraph",
			mcp.WithDescription("Append a paragraph to a document"),
			documentNameOpt(),
			mcp.WithString("text",
				mcp.Description("Paragraph text"),
				mcp.Required(),
			),
		),
		mcp.NewTool("get_paragraph_text",
			mcp.WithDescription("Read the text of one paragraph"),
			documentNameOpt(),
			paragraphIndexOpt(),
		),
		mcp.NewTool("get_paragraph_info",
			mcp.WithDescription("Read one paragraph's text together with its formatting"),
			documentNameOpt(),
			paragraphIndexOpt(),
		),
		mcp.NewTool("update_paragraph_text",
			mcp.WithDescription("Replace the text of one paragraph"),
			documentNameOpt(),
			paragraphIndexOpt(),
			mcp.WithString("text",
				mcp.Description("New paragraph text"),
				mcp.Required(),
			),
		),
		mcp.NewTool("delete_paragraph",
			mcp.WithDescription("Delete one paragraph from a document"),
			documentNameOpt(),
			paragraphIndexOpt(),
		),
	)

	createTableOpts := []mcp.ToolOption{
		mcp.WithDescription("Append a table to a document"),
		documentNameOpt(),
	}
	createTableOpts = append(createTableOpts, tableDimensionOpts()...)
	afterParagraphOpts := []mcp.ToolOption{
		mcp.WithDescription("Insert a table directly after a paragraph"),
		documentNameOpt(),
		paragraphIndexOpt(),
	}
	afterParagraphOpts = append(afterParagraphOpts, tableDimensionOpts()...)
	sectionOpts := []mcp.ToolOption{
		mcp.WithDescription("Append a table to a document section"),
		documentNameOpt(),
		mcp.WithNumber("section_index",
			mcp.Description("Section index (only 0 is addressable)"),
		),
	}
	sectionOpts = append(sectionOpts, tableDimensionOpts()...)

	defs = append(defs,
		mcp.NewTool("create_table", createTableOpts...),
		mcp.NewTool("add_table_after_paragraph", afterParagraphOpts...),
		mcp.NewTool("add_table_to_section", sectionOpts...),
		mcp.NewTool("get_table_info",
			mcp.WithDescription("Report table dimensions, for one table or all tables"),
			documentNameOpt(),
			mcp.WithNumber("table_index",
				mcp.Description("Zero-based table index (omit to list all tables)"),
			),
		),
		mcp.NewTool("delete_table",
			mcp.WithDescription("Delete one table from a document"),
			documentNameOpt(),
			mcp.WithNumber("table_index",
				mcp.Description("Zero-based table index"),
				mcp.Required(),
			),
		),
		mcp.NewTool("set_cell_text",
			mcp.WithDescription("Replace the text of one table cell"),
			documentNameOpt(),
			mcp.WithNumber("table_index",
				mcp.Description("Zero-based table index"),
				mcp.Required(),
			),
			mcp.WithNumber("row",
				mcp.Description("Zero-based row index"),
				mcp.Required(),
			),
			mcp.WithNumber("column",
				mcp.Description("Zero-based column index"),
				mcp.Required(),
			),
			mcp.WithString("text",
				mcp.Description("New cell text"),
				mcp.Required(),
			),
		),
	)

	defs = append(defs,
		mcp.NewTool("format_paragraph",
			mcp.WithDescription("Change one paragraph's formatting; only supplied fields change"),
			documentNameOpt(),
			paragraphIndexOpt(),
			mcp.WithString("alignment",
				mcp.Description("Paragraph alignment: left, center, right, justify"),
			),
			mcp.WithNumber("first_line_indent",
				mcp.Description("First line indent in points"),
			),
			mcp.WithNumber("left_indent",
				mcp.Description("Left indent in points"),
			),
			mcp.WithNumber("right_indent",
				mcp.Description("Right indent in points"),
			),
			mcp.WithNumber("line_spacing",
				mcp.Description("Line spacing value (multiplier for rule multiple, points otherwise)"),
			),
			mcp.WithString("line_spacing_rule",
				mcp.Description("Line spacing rule: at_least, exactly, multiple"),
			),
			mcp.WithNumber("before_spacing",
				mcp.Description("Space before the paragraph in points"),
			),
			mcp.WithNumber("after_spacing",
				mcp.Description("Space after the paragraph in points"),
			),
		),
		mcp.NewTool("get_paragraph_format",
			mcp.WithDescription("Read one paragraph's formatting"),
			documentNameOpt(),
			paragraphIndexOpt(),
		),
	)

	defs = append(defs,
		mcp.NewTool("convert_document",
			mcp.WithDescription("Convert a document to another format"),
			documentNameOpt(),
			mcp.WithString("target_format",
				mcp.Description("Target format: "+strings.Join(engine.SupportedFormats(), ", ")),
				mcp.Required(),
			),
			mcp.WithString("output_name",
				mcp.Description("Output file name (defaults to the source name with the target extension)"),
			),
		),
		mcp.NewTool("get_conversion_status",
			mcp.WithDescription("Report the outcome of the latest conversion of a document"),
			documentNameOpt(),
		),
		mcp.NewTool("get_conversion_history",
			mcp.WithDescription("List all recorded conversions of a document"),
			documentNameOpt(),
		),
	)

	return defs
}

package tool

import (
	"context"
	"fmt"
)

func (d *Dispatcher) handleCreateTable(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableCreate)
	if !ok {
		return env
	}
	rows, verr := requireInt(args, "rows", CodeTableCreate)
	if verr != nil {
		return failure(verr, CodeTableCreate)
	}
	columns, verr := requireInt(args, "columns", CodeTableCreate)
	if verr != nil {
		return failure(verr, CodeTableCreate)
	}
	if verr := validateTableDimensions(rows, columns, CodeTableCreate); verr != nil {
		return failure(verr, CodeTableCreate)
	}
	style, verr := optionalString(args, "style", CodeTableCreate)
	if verr != nil {
		return failure(verr, CodeTableCreate)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeTableCreate)
	if !ok {
		return env
	}
	index := doc.AddTable(rows, columns, style)
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	data := map[string]any{
		"table_index":  index,
		"rows":         rows,
		"columns":      columns,
		"total_tables": doc.TableCount(),
	}
	if style != "" {
		data["style"] = style
	}
	return success(fmt.Sprintf("Table with %d rows and %d columns created", rows, columns), data)
}

func (d *Dispatcher) handleAddTableAfterParagraph(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableAdd)
	if !ok {
		return env
	}
	paragraphIndex, env, ok := indexArg(args, "paragraph_index", CodeTableAdd)
	if !ok {
		return env
	}
	rows, verr := requireInt(args, "rows", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}
	columns, verr := requireInt(args, "columns", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}
	if verr := validateTableDimensions(rows, columns, CodeTableAdd); verr != nil {
		return failure(verr, CodeTableAdd)
	}
	style, verr := optionalString(args, "style", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeTableAdd)
	if !ok {
		return env
	}
	index, err := doc.InsertTableAfterParagraph(rows, columns, paragraphIndex, style)
	if err != nil {
		return failure(err, CodeTableAdd)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Table inserted after paragraph %d", paragraphIndex), map[string]any{
		"table_index":     index,
		"paragraph_index": paragraphIndex,
		"rows":            rows,
		"columns":         columns,
		"total_tables":    doc.TableCount(),
	})
}

func (d *Dispatcher) handleAddTableToSection(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableAdd)
	if !ok {
		return env
	}
	if verr := requireSectionZero(args, CodeTableAdd); verr != nil {
		return failure(verr, CodeTableAdd)
	}
	rows, verr := requireInt(args, "rows", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}
	columns, verr := requireInt(args, "columns", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}
	if verr := validateTableDimensions(rows, columns, CodeTableAdd); verr != nil {
		return failure(verr, CodeTableAdd)
	}
	style, verr := optionalString(args, "style", CodeTableAdd)
	if verr != nil {
		return failure(verr, CodeTableAdd)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeTableAdd)
	if !ok {
		return env
	}
	index := doc.AddTable(rows, columns, style)
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Table added to section 0 of %s", name), map[string]any{
		"table_index":   index,
		"section_index": 0,
		"rows":          rows,
		"columns":       columns,
		"total_tables":  doc.TableCount(),
	})
}

func (d *Dispatcher) handleGetTableInfo(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableInfo)
	if !ok {
		return env
	}
	tableIndex, verr := optionalInt(args, "table_index", CodeTableInfo)
	if verr != nil {
		return failure(verr, CodeTableInfo)
	}

	doc, _, env, ok := d.openDocument(name, CodeTableInfo)
	if !ok {
		return env
	}

	if tableIndex == nil {
		count := doc.TableCount()
		tables := make([]map[string]any, 0, count)
		for i := 0; i < count; i++ {
			info, err := doc.TableInfo(i)
			if err != nil {
				return failure(err, CodeTableInfo)
			}
			tables = append(tables, map[string]any{
				"table_index": i,
				"rows":        info.Rows,
				"columns":     info.Columns,
			})
		}
		return success(fmt.Sprintf("Document %s has %d table(s)", name, count), map[string]any{
			"table_count": count,
			"tables":      tables,
		})
	}

	if *tableIndex < 0 {
		return failure(validationError(CodeTableInfo, "table_index must be non-negative, got %d", *tableIndex), CodeTableInfo)
	}
	info, err := doc.TableInfo(*tableIndex)
	if err != nil {
		return failure(err, CodeTableInfo)
	}
	return success(fmt.Sprintf("Table %d info retrieved", *tableIndex), map[string]any{
		"table_index": *tableIndex,
		"rows":        info.Rows,
		"columns":     info.Columns,
	})
}

func (d *Dispatcher) handleDeleteTable(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableDelete)
	if !ok {
		return env
	}
	index, env, ok := indexArg(args, "table_index", CodeTableDelete)
	if !ok {
		return env
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeTableDelete)
	if !ok {
		return env
	}
	info, err := doc.DeleteTable(index)
	if err != nil {
		return failure(err, CodeTableDelete)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Table %d deleted", index), map[string]any{
		"table_index":      index,
		"rows":             info.Rows,
		"columns":          info.Columns,
		"remaining_tables": doc.TableCount(),
	})
}

func (d *Dispatcher) handleSetCellText(ctx context.Context, args map[string]any) Envelope {
	name, env, ok := d.documentName(args, CodeTableCell)
	if !ok {
		return env
	}
	tableIndex, env, ok := indexArg(args, "table_index", CodeTableCell)
	if !ok {
		return env
	}
	row, env, ok := indexArg(args, "row", CodeTableCell)
	if !ok {
		return env
	}
	column, env, ok := indexArg(args, "column", CodeTableCell)
	if !ok {
		return env
	}
	text, verr := requireString(args, "text", CodeTableCell)
	if verr != nil {
		return failure(verr, CodeTableCell)
	}

	unlock := d.locks.acquire(name)
	defer unlock()

	doc, path, env, ok := d.openDocument(name, CodeTableCell)
	if !ok {
		return env
	}
	oldText, err := doc.SetCellText(tableIndex, row, column, text)
	if err != nil {
		return failure(err, CodeTableCell)
	}
	if err := doc.Save(path); err != nil {
		return failure(err, CodeDocSave)
	}

	return success(fmt.Sprintf("Cell (%d, %d) of table %d updated", row, column, tableIndex), map[string]any{
		"table_index":   tableIndex,
		"row":           row,
		"column":        column,
		"original_text": oldText,
		"new_text":      text,
	})
}

// Package document_repo provides PostgreSQL repositories for the
// commercial documents. Invoices and quotes share one documents table
// discriminated by doc_type, so the unique index on the document
// number spans both types, matching the numbering authority's scopes.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"moneta/internal/core/id"
	"moneta/internal/domain/documents"
	"moneta/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var lineCols = postgres.ExtractDBColumns[documents.Line]()

// getLines loads a document's lines ordered by line number.
func getLines(ctx context.Context, q postgres.Querier, docID id.ID) ([]documents.Line, error) {
	sql, args, err := builder().
		Select(lineCols...).
		From("document_lines").
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var lines []documents.Line
	if err := pgxscan.Select(ctx, q, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	return lines, nil
}

// replaceLines swaps the full line set of a document. Callers run this
// in the same transaction as the totals update so stored totals and
// lines never disagree.
func replaceLines(ctx context.Context, q postgres.Querier, docID id.ID, lines []documents.Line) error {
	delSQL, delArgs, err := builder().
		Delete("document_lines").
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := q.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	ins := builder().Insert("document_lines").Columns(lineCols...)
	for _, line := range lines {
		data := postgres.StructToMap(line)
		vals := make([]any, len(lineCols))
		for i, col := range lineCols {
			vals[i] = data[col]
		}
		ins = ins.Values(vals...)
	}

	insSQL, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := q.Exec(ctx, insSQL, insArgs...); err != nil {
		return postgres.TranslateError("insert", "document_lines", err)
	}
	return nil
}

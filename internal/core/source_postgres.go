package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// PostgresSource reads tables from PostgreSQL. Each registered table key is
// a table name; column names come from FieldSpec.DBColumn or are derived
// from the field name.
type PostgresSource struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresSource creates a row source over db (typically a *pgxpool.Pool).
func NewPostgresSource(db DBTX, logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{db: db, logger: logger}
}

// LoadAll implements RowSource.
func (s *PostgresSource) LoadAll(ctx context.Context, def TableDefinition, limit int) ([]TableRow, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selectColumns(def), ", "),
		quoteIdentifier(def.Info.Key),
		orderBy(def, grid.SortState{}),
	)
	var args []any
	if limit > 0 {
		// One extra row detects an oversized table without counting it.
		query += " LIMIT $1"
		args = append(args, limit+1)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	result, err := collectRows(rows, def)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(result) > limit {
		return nil, ErrRowLimitExceeded
	}
	return result, nil
}

// LoadPage implements RowSource.
func (s *PostgresSource) LoadPage(ctx context.Context, def TableDefinition, req PageRequest) (PageResult, error) {
	wb := filterWhere(def, req.Filters)
	whereClause, queryArgs := wb.Build()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quoteIdentifier(def.Info.Key), whereClause)
	var totalRows int64
	if err := s.db.QueryRow(ctx, countQuery, queryArgs...).Scan(&totalRows); err != nil {
		return PageResult{}, fmt.Errorf("count rows: %w", err)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = grid.DefaultPageSize
	}
	pageCount, pageIndex, offset := pageWindow(totalRows, pageSize, req.PageIndex)

	argIndex := wb.NextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		strings.Join(selectColumns(def), ", "),
		quoteIdentifier(def.Info.Key),
		whereClause,
		orderBy(def, req.Sort),
		argIndex,
		argIndex+1,
	)
	queryArgs = append(queryArgs, pageSize, offset)

	rows, err := s.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return PageResult{}, fmt.Errorf("query rows: %w", err)
	}
	result, err := collectRows(rows, def)
	if err != nil {
		return PageResult{}, err
	}

	s.logger.Debug("loaded page",
		"table", def.Info.Key,
		"page", pageIndex,
		"rows", len(result),
		"total", totalRows,
	)
	return PageResult{
		Rows:      result,
		TotalRows: totalRows,
		PageIndex: pageIndex,
		PageCount: pageCount,
	}, nil
}

// Distinct implements RowSource.
func (s *PostgresSource) Distinct(ctx context.Context, def TableDefinition, column string, limit int) ([]any, error) {
	spec, ok := def.Spec(column)
	if !ok {
		return nil, nil
	}
	col := quoteIdentifier(resolveDBColumn(spec.Name, def.FieldSpecs))

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s ASC NULLS LAST",
		col, quoteIdentifier(def.Info.Key), col)
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []any
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read distinct value: %w", err)
		}
		values = append(values, CellFromDB(raw[0], spec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return values, nil
}

// selectColumns returns the quoted database columns for the table's
// display columns.
func selectColumns(def TableDefinition) []string {
	return quoteColumns(resolveDBColumns(def.Info.Columns, def.FieldSpecs))
}

// filterWhere translates grid filters into set-membership conditions.
// A nil filter value matches NULL.
func filterWhere(def TableDefinition, fs grid.FilterState) *WhereBuilder {
	wb := NewWhereBuilder()
	for _, f := range activeFilters(def, fs) {
		var (
			values      []any
			includeNull bool
		)
		for _, v := range f.Values {
			if grid.IsNull(v) {
				includeNull = true
				continue
			}
			values = append(values, v)
		}
		wb.AddIn(quoteIdentifier(resolveDBColumn(f.ColumnID, def.FieldSpecs)), values, includeNull)
	}
	return wb
}

// orderBy returns the ORDER BY expression for a sort. Unsorted tables are
// ordered by their row key, or by the first column.
func orderBy(def TableDefinition, s grid.SortState) string {
	if spec, ok := sortColumn(def, s); ok {
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		return fmt.Sprintf("%s %s NULLS LAST", quoteIdentifier(resolveDBColumn(spec.Name, def.FieldSpecs)), dir)
	}

	keys := def.RowKey
	if len(keys) == 0 && len(def.Info.Columns) > 0 {
		keys = def.Info.Columns[:1]
	}
	return strings.Join(quoteColumns(resolveDBColumns(keys, def.FieldSpecs)), ", ")
}

// collectRows reads every row, keyed by display column, and closes rows.
func collectRows(rows pgx.Rows, def TableDefinition) ([]TableRow, error) {
	defer rows.Close()

	specs := make([]FieldSpec, len(def.Info.Columns))
	for i, col := range def.Info.Columns {
		specs[i], _ = def.Spec(col)
	}

	var result []TableRow
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		row := make(TableRow, len(specs))
		for i, col := range def.Info.Columns {
			row[col] = CellFromDB(values[i], specs[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

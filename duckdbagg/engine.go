// Package duckdbagg is an optional accelerated backend for the
// SUMIFS/COUNTIFS/AVERAGEIFS/MAXIFS/MINIFS function family, used by the
// evaluator's criteria dispatch (see gridcalc.AggregationBackend) when a
// Workbook opts in via gridcalc.WithAggregationBackend and the range
// being scanned is large enough to make a row-by-row scan the
// bottleneck. It loads the criteria and value columns into an in-memory
// DuckDB table and runs a single SQL aggregate, adapted from
// _examples/OmniMCP-AI-excelize/duckdb/engine.go's Engine type and
// duckdb/aggregation.go's criteria-to-SQL compilation — those assumed a
// live excelize.File with pre-loaded sheet tables, whereas this package
// loads straight from the []CalcResult column slices the evaluator has
// already materialized for one function call.
package duckdbagg

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/gridcalc/gridcalc"
)

// Engine wraps an in-memory DuckDB connection used to accelerate bulk
// criteria aggregation. It implements gridcalc.AggregationBackend.
type Engine struct {
	db      *sql.DB
	counter uint64
}

// NewEngine opens a fresh in-memory DuckDB database.
func NewEngine() (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("duckdbagg: opening DuckDB: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying DuckDB connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Aggregate implements gridcalc.AggregationBackend: it loads
// criteriaRanges and valueRange (already aligned row-for-row by the
// caller) into a scratch table, builds a WHERE clause from criteria,
// and runs the matching SQL aggregate.
func (e *Engine) Aggregate(op gridcalc.AggOp, criteriaRanges [][]gridcalc.CalcResult, criteria []gridcalc.Criteria, valueRange []gridcalc.CalcResult) (gridcalc.CalcResult, error) {
	table := fmt.Sprintf("agg_%d", atomic.AddUint64(&e.counter, 1))

	var cols []string
	for i := range criteriaRanges {
		cols = append(cols, fmt.Sprintf("c%d_num DOUBLE, c%d_txt VARCHAR", i, i))
	}
	cols = append(cols, "val DOUBLE")
	createSQL := fmt.Sprintf("CREATE TEMP TABLE %s (%s)", table, strings.Join(cols, ", "))
	if _, err := e.db.Exec(createSQL); err != nil {
		return gridcalc.CalcResult{}, fmt.Errorf("duckdbagg: create table: %w", err)
	}
	defer e.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))

	n := len(valueRange)
	for _, rng := range criteriaRanges {
		if len(rng) < n {
			n = len(rng)
		}
	}

	placeholders := make([]string, 0, len(criteriaRanges)*2+1)
	for range criteriaRanges {
		placeholders = append(placeholders, "?, ?")
	}
	placeholders = append(placeholders, "?")
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(placeholders, ", "))

	stmt, err := e.db.Prepare(insertSQL)
	if err != nil {
		return gridcalc.CalcResult{}, fmt.Errorf("duckdbagg: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		var args []interface{}
		for _, rng := range criteriaRanges {
			num, txt := cellSQLValues(rng[i])
			args = append(args, num, txt)
		}
		args = append(args, cellNumericValue(valueRange[i]))
		if _, err := stmt.Exec(args...); err != nil {
			return gridcalc.CalcResult{}, fmt.Errorf("duckdbagg: insert row %d: %w", i, err)
		}
	}

	var where []string
	for i, c := range criteria {
		where = append(where, criteriaSQL(i, c))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	aggExpr, wantsCount := aggregateExpr(op)
	query := fmt.Sprintf("SELECT %s FROM %s %s", aggExpr, table, whereClause)

	var result sql.NullFloat64
	if err := e.db.QueryRow(query).Scan(&result); err != nil {
		return gridcalc.CalcResult{}, fmt.Errorf("duckdbagg: query: %w", err)
	}
	if !result.Valid {
		if wantsCount {
			return gridcalc.Num(0), nil
		}
		return gridcalc.Num(0), nil
	}
	return gridcalc.Num(result.Float64), nil
}

func aggregateExpr(op gridcalc.AggOp) (expr string, isCount bool) {
	switch op {
	case gridcalc.AggSum:
		return "COALESCE(SUM(val), 0)", false
	case gridcalc.AggCount:
		return "COUNT(*)", true
	case gridcalc.AggAverage:
		return "AVG(val)", false
	case gridcalc.AggMax:
		return "MAX(val)", false
	case gridcalc.AggMin:
		return "MIN(val)", false
	}
	return "COUNT(*)", true
}

// cellSQLValues splits a CalcResult into its numeric and text SQL
// representations: a number fills only the numeric column, a string only
// the (upper-cased) text column, a boolean both (1/0 and "true"/"false"),
// and any other kind neither.
func cellSQLValues(v gridcalc.CalcResult) (num sql.NullFloat64, txt sql.NullString) {
	switch v.Kind {
	case gridcalc.KindNumber:
		return sql.NullFloat64{Float64: v.Number, Valid: true}, sql.NullString{}
	case gridcalc.KindBool:
		n := 0.0
		if v.Bool {
			n = 1
		}
		return sql.NullFloat64{Float64: n, Valid: true}, sql.NullString{Valid: true, String: strconv.FormatBool(v.Bool)}
	case gridcalc.KindString:
		return sql.NullFloat64{}, sql.NullString{String: strings.ToUpper(v.Str), Valid: true}
	default:
		return sql.NullFloat64{}, sql.NullString{}
	}
}

func cellNumericValue(v gridcalc.CalcResult) sql.NullFloat64 {
	if v.Kind != gridcalc.KindNumber {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v.Number, Valid: true}
}

// criteriaSQL translates a parsed Criteria (gridcalc/criteria.go) into a
// SQL predicate against the i-th criteria column pair, using the
// numeric column for comparisons and a DuckDB glob/LIKE translation of
// the text column for pattern criteria.
func criteriaSQL(i int, c gridcalc.Criteria) string {
	numCol := fmt.Sprintf("c%d_num", i)
	txtCol := fmt.Sprintf("c%d_txt", i)
	if c.HasNum {
		switch c.Op {
		case gridcalc.CritEq:
			return fmt.Sprintf("%s = %s", numCol, formatFloat(c.Num))
		case gridcalc.CritNe:
			return fmt.Sprintf("(%s IS NULL OR %s <> %s)", numCol, numCol, formatFloat(c.Num))
		case gridcalc.CritLt:
			return fmt.Sprintf("%s < %s", numCol, formatFloat(c.Num))
		case gridcalc.CritGt:
			return fmt.Sprintf("%s > %s", numCol, formatFloat(c.Num))
		case gridcalc.CritLe:
			return fmt.Sprintf("%s <= %s", numCol, formatFloat(c.Num))
		case gridcalc.CritGe:
			return fmt.Sprintf("%s >= %s", numCol, formatFloat(c.Num))
		}
	}
	pattern := strings.ReplaceAll(c.Pattern, "%", `\%`)
	pattern = strings.ReplaceAll(pattern, "_", `\_`)
	pattern = strings.ReplaceAll(pattern, "*", "%")
	pattern = strings.ReplaceAll(pattern, "?", "_")
	escaped := strings.ReplaceAll(pattern, "'", "''")
	switch c.Op {
	case gridcalc.CritNe:
		return fmt.Sprintf("(%s IS NULL OR %s NOT LIKE '%s' ESCAPE '\\')", txtCol, txtCol, escaped)
	default:
		return fmt.Sprintf("%s LIKE '%s' ESCAPE '\\'", txtCol, escaped)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

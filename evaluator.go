package gridcalc

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// evalCtx anchors evaluation of one expression tree: the sheet/cell the
// formula lives in, used to resolve unqualified references and to pick
// the intersecting cell for implicit intersection (spec.md §4.7).
type evalCtx struct {
	SheetID   int
	SheetName string
	Row, Col  int
}

func (c evalCtx) cellKey() string {
	return fmt.Sprintf("%s!%s", c.SheetName, FormatA1Ref(CellRef{Row: c.Row, Col: c.Col}))
}

// functionImpl implements one spreadsheet function. Args are passed
// unevaluated so each function controls its own evaluation order: IF,
// IFERROR, IFNA and IFS evaluate only the arguments they need, while AND
// and OR evaluate every argument and do not short-circuit.
type functionImpl func(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult

var functionRegistry = map[string]functionImpl{}

// registerFunction installs a function implementation under its
// canonical (English) name. Called from each functions_*.go file's
// init(), mirroring the teacher's formulaFuncs dispatch table
// (_examples/OmniMCP-AI-excelize/calc_custom.go).
func registerFunction(name string, fn functionImpl) {
	functionRegistry[strings.ToUpper(name)] = fn
}

// Evaluator walks Expr trees against a Workbook, resolving unevaluated
// formula cells recursively and guarding against circular references
// with an in-progress coordinate stack (spec.md §9 — deliberately not a
// precomputed dependency graph).
type Evaluator struct {
	wb *Workbook

	mu         sync.Mutex
	inProgress map[string]bool
}

// NewEvaluator constructs an Evaluator over wb.
func NewEvaluator(wb *Workbook) *Evaluator {
	return &Evaluator{wb: wb, inProgress: make(map[string]bool)}
}

// Evaluate computes the value of the cell at (sheet,row,col), evaluating
// its formula (recursively, through any operands that are themselves
// unevaluated formulas) if it holds one, and populating Cell.Cached with
// the result, error results included. A cached, still-current value is
// returned without
// re-evaluating it.
func (ev *Evaluator) Evaluate(sheet string, row, col int) CalcResult {
	s, ok := ev.wb.Sheet(sheet)
	if !ok {
		return Err(ErrRef, "", fmt.Sprintf("sheet %q not found", sheet))
	}
	return ev.evaluateCell(s, row, col)
}

func (ev *Evaluator) evaluateCell(s *Sheet, row, col int) CalcResult {
	c := s.CellAt(row, col)
	if c == nil {
		return Empty()
	}
	switch c.Kind {
	case CellNumber:
		return Num(c.Number)
	case CellBool:
		return Boolean(c.Bool)
	case CellErrorVal:
		return Err(c.ErrCode, fmt.Sprintf("%s!%s", s.Name, FormatA1Ref(CellRef{Row: row, Col: col})), "")
	case CellSharedString:
		str, _ := ev.wb.SharedString(c.StrIndex)
		return Txt(str)
	case CellFormula:
		return ev.evaluateFormulaCell(s, row, col, c)
	}
	return Empty()
}

func (ev *Evaluator) evaluateFormulaCell(s *Sheet, row, col int, c *Cell) CalcResult {
	key := fmt.Sprintf("%s!%s", s.Name, FormatA1Ref(CellRef{Row: row, Col: col}))

	ev.mu.Lock()
	if ev.inProgress[key] {
		ev.mu.Unlock()
		return Err(ErrCircular, key, "Circular reference detected")
	}
	if cached, ok := ev.wb.cache.Load(key); ok {
		ev.mu.Unlock()
		return cached
	}
	ev.inProgress[key] = true
	ev.mu.Unlock()

	defer func() {
		ev.mu.Lock()
		delete(ev.inProgress, key)
		ev.mu.Unlock()
	}()

	tree, ok := ev.wb.FormulaTree(s.ID, c.FormulaID)
	if !ok {
		return Err(ErrError, key, "missing formula tree")
	}
	ctx := evalCtx{SheetID: s.ID, SheetName: s.Name, Row: row, Col: col}
	result := ev.scalar(ctx, tree)
	if result.IsError() && result.ErrOrigin == "" {
		result.ErrOrigin = key
	}

	c.Cached = &result
	ev.wb.cache.Store(key, ev.wb.InstanceID, ev.wb.generation, result)
	return result
}

// Eval evaluates e to a CalcResult without forcing a range operand down
// to a scalar (spec.md §4.7); callers that require a scalar use scalar
// instead.
func (ev *Evaluator) Eval(ctx evalCtx, e *Expr) CalcResult {
	if e == nil {
		return EmptyArgument()
	}
	switch e.Kind {
	case NodeNumber:
		return Num(e.Number)
	case NodeString:
		return Txt(e.Str)
	case NodeBoolean:
		return Boolean(e.Bool)
	case NodeErrorLit:
		return Err(e.ErrVal, ctx.cellKey(), e.Msg)
	case NodeEmptyArg:
		return EmptyArgument()
	case NodeReference:
		return ev.evalReference(ctx, e.Ref)
	case NodeRangeNode:
		return ev.evalRange(ctx, e.RangeLeft, e.RangeRight)
	case NodeUnary:
		return ev.evalUnary(ctx, e)
	case NodeBinaryArith:
		return ev.evalArith(ctx, e)
	case NodeComparison:
		return ev.evalComparison(ctx, e)
	case NodeConcat:
		return ev.evalConcat(ctx, e)
	case NodePercent:
		return ev.evalPercent(ctx, e)
	case NodeFuncCall:
		return ev.evalFuncCall(ctx, e)
	case NodeDefinedName:
		return Err(ErrName, ctx.cellKey(), fmt.Sprintf("unknown name %q", e.Name))
	}
	return Err(ErrError, ctx.cellKey(), "unhandled expression node")
}

// scalar evaluates e and, if the result is a range, applies implicit
// intersection against ctx's anchor cell (spec.md §4.7).
func (ev *Evaluator) scalar(ctx evalCtx, e *Expr) CalcResult {
	r := ev.Eval(ctx, e)
	if r.Kind == KindRange {
		return ev.implicitIntersect(ctx, r)
	}
	return r
}

func (ev *Evaluator) evalReference(ctx evalCtx, ref Ref) CalcResult {
	sheetName := ctx.SheetName
	if ref.HasSheet {
		s, ok := ev.wb.SheetByID(ref.SheetID)
		if !ok {
			return Err(ErrRef, ctx.cellKey(), "deleted sheet reference")
		}
		sheetName = s.Name
	}
	return ev.Evaluate(sheetName, ref.Row, ref.Col)
}

func (ev *Evaluator) evalRange(ctx evalCtx, left, right Ref) CalcResult {
	sheetName := ctx.SheetName
	if left.HasSheet {
		s, ok := ev.wb.SheetByID(left.SheetID)
		if !ok {
			return Err(ErrRef, ctx.cellKey(), "deleted sheet reference")
		}
		sheetName = s.Name
	}
	minRow, maxRow := left.Row, right.Row
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	minCol, maxCol := left.Col, right.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	return CalcResult{
		Kind:       KindRange,
		RangeSheet: sheetName,
		RangeLeft:  CellCoord{Row: minRow, Col: minCol},
		RangeRight: CellCoord{Row: maxRow, Col: maxCol},
	}
}

// implicitIntersect narrows a whole-column or whole-row range result to
// the single cell that intersects ctx's row or column (spec.md §4.7,
// Open Question (c) per DESIGN.md: out-of-span intersection is VALUE).
func (ev *Evaluator) implicitIntersect(ctx evalCtx, r CalcResult) CalcResult {
	left, right := r.RangeLeft, r.RangeRight
	switch {
	case left.Col == right.Col:
		if ctx.Row < left.Row || ctx.Row > right.Row {
			return Err(ErrValue, ctx.cellKey(), "implicit intersection: row out of range span")
		}
		return ev.Evaluate(r.RangeSheet, ctx.Row, left.Col)
	case left.Row == right.Row:
		if ctx.Col < left.Col || ctx.Col > right.Col {
			return Err(ErrValue, ctx.cellKey(), "implicit intersection: column out of range span")
		}
		return ev.Evaluate(r.RangeSheet, left.Row, ctx.Col)
	}
	return Err(ErrValue, ctx.cellKey(), "implicit intersection requires a single row or column")
}

// RangeValues flattens a NodeRangeNode (or single NodeReference, treated
// as a 1x1 range) into row-major CalcResult values, fanning out across a
// worker pool for large ranges. The concurrency shape is grounded on
// _examples/OmniMCP-AI-excelize/cell_range.go's GetRangeValuesConcurrent,
// which chunks rows across runtime.NumCPU() workers behind a
// sync.WaitGroup.
func (ev *Evaluator) RangeValues(ctx evalCtx, e *Expr) ([]CalcResult, error) {
	left, right, sheetName, err := ev.rangeBounds(ctx, e)
	if err != nil {
		return nil, err
	}
	rows := right.Row - left.Row + 1
	cols := right.Col - left.Col + 1
	total := rows * cols
	out := make([]CalcResult, total)

	const concurrencyThreshold = 512
	if total < concurrencyThreshold {
		idx := 0
		for r := left.Row; r <= right.Row; r++ {
			for c := left.Col; c <= right.Col; c++ {
				out[idx] = ev.Evaluate(sheetName, r, c)
				idx++
			}
		}
		return out, nil
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	var wg sync.WaitGroup
	chunk := (rows + workers - 1) / workers
	for w := 0; w < workers; w++ {
		startRow := left.Row + w*chunk
		endRow := startRow + chunk - 1
		if endRow > right.Row {
			endRow = right.Row
		}
		if startRow > endRow {
			continue
		}
		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			for r := startRow; r <= endRow; r++ {
				base := (r - left.Row) * cols
				for c := left.Col; c <= right.Col; c++ {
					out[base+(c-left.Col)] = ev.Evaluate(sheetName, r, c)
				}
			}
		}(startRow, endRow)
	}
	wg.Wait()
	return out, nil
}

// RangeGrid is like RangeValues but preserves the 2-D row/col shape,
// for functions (VLOOKUP, HLOOKUP, INDEX) that address by row/column
// offset within the range rather than scanning it linearly.
func (ev *Evaluator) RangeGrid(ctx evalCtx, e *Expr) ([][]CalcResult, error) {
	left, right, sheetName, err := ev.rangeBounds(ctx, e)
	if err != nil {
		return nil, err
	}
	rows := right.Row - left.Row + 1
	grid := make([][]CalcResult, rows)
	for r := 0; r < rows; r++ {
		row := make([]CalcResult, right.Col-left.Col+1)
		for c := left.Col; c <= right.Col; c++ {
			row[c-left.Col] = ev.Evaluate(sheetName, left.Row+r, c)
		}
		grid[r] = row
	}
	return grid, nil
}

func (ev *Evaluator) rangeBounds(ctx evalCtx, e *Expr) (CellCoord, CellCoord, string, error) {
	switch e.Kind {
	case NodeRangeNode:
		r := ev.evalRange(ctx, e.RangeLeft, e.RangeRight)
		return r.RangeLeft, r.RangeRight, r.RangeSheet, nil
	case NodeReference:
		sheetName := ctx.SheetName
		if e.Ref.HasSheet {
			s, ok := ev.wb.SheetByID(e.Ref.SheetID)
			if !ok {
				return CellCoord{}, CellCoord{}, "", fmt.Errorf("deleted sheet reference")
			}
			sheetName = s.Name
		}
		coord := CellCoord{Row: e.Ref.Row, Col: e.Ref.Col}
		return coord, coord, sheetName, nil
	default:
		return CellCoord{}, CellCoord{}, "", fmt.Errorf("not a range expression")
	}
}

func (ev *Evaluator) evalUnary(ctx evalCtx, e *Expr) CalcResult {
	v := ev.scalar(ctx, e.Operands[0])
	n, errRes, ok := ToNumber(v, ctx.cellKey())
	if !ok {
		return errRes
	}
	if e.Op == OpSub {
		return Num(-n)
	}
	return Num(n)
}

func (ev *Evaluator) evalArith(ctx evalCtx, e *Expr) CalcResult {
	left := ev.scalar(ctx, e.Operands[0])
	if left.IsError() {
		return left
	}
	right := ev.scalar(ctx, e.Operands[1])
	if right.IsError() {
		return right
	}
	a, errRes, ok := ToNumber(left, ctx.cellKey())
	if !ok {
		return errRes
	}
	b, errRes, ok := ToNumber(right, ctx.cellKey())
	if !ok {
		return errRes
	}
	switch e.Op {
	case OpAdd:
		return Num(a + b)
	case OpSub:
		return Num(a - b)
	case OpMul:
		return Num(a * b)
	case OpDiv:
		if b == 0 {
			return Err(ErrDiv0, ctx.cellKey(), "division by zero")
		}
		return Num(a / b)
	case OpPow:
		r := math.Pow(a, b)
		if math.IsNaN(r) {
			return Err(ErrNum, ctx.cellKey(), "invalid power operation")
		}
		return Num(r)
	}
	return Err(ErrError, ctx.cellKey(), "unknown arithmetic operator")
}

func (ev *Evaluator) evalComparison(ctx evalCtx, e *Expr) CalcResult {
	left := ev.scalar(ctx, e.Operands[0])
	if left.IsError() {
		return left
	}
	right := ev.scalar(ctx, e.Operands[1])
	if right.IsError() {
		return right
	}
	c := left.Compare(right)
	var result bool
	switch e.Op {
	case OpEq:
		result = c == 0
	case OpNe:
		result = c != 0
	case OpLt:
		result = c < 0
	case OpGt:
		result = c > 0
	case OpLe:
		result = c <= 0
	case OpGe:
		result = c >= 0
	}
	return Boolean(result)
}

func (ev *Evaluator) evalConcat(ctx evalCtx, e *Expr) CalcResult {
	left := ev.scalar(ctx, e.Operands[0])
	if left.IsError() {
		return left
	}
	right := ev.scalar(ctx, e.Operands[1])
	if right.IsError() {
		return right
	}
	return Txt(ToText(left, ev.wb.Locale) + ToText(right, ev.wb.Locale))
}

func (ev *Evaluator) evalPercent(ctx evalCtx, e *Expr) CalcResult {
	v := ev.scalar(ctx, e.Operands[0])
	n, errRes, ok := ToNumber(v, ctx.cellKey())
	if !ok {
		return errRes
	}
	return Num(n / 100)
}

func (ev *Evaluator) evalFuncCall(ctx evalCtx, e *Expr) CalcResult {
	canonical, _ := ev.wb.Language.CanonicalFunction(e.FuncName)
	fn, ok := functionRegistry[strings.ToUpper(canonical)]
	if !ok {
		fn, ok = functionRegistry[strings.ToUpper(e.FuncName)]
	}
	if !ok {
		return Err(ErrName, ctx.cellKey(), fmt.Sprintf("Invalid function: %s", e.FuncName))
	}
	return fn(ev, ctx, e.Args)
}

// flattenArgs evaluates a function call's argument list, expanding any
// range or whole-reference argument into its constituent cell values and
// evaluating every other argument as a scalar, in left-to-right order
// (spec.md §4.8 — SUM/PRODUCT/COUNT-family argument handling).
func (ev *Evaluator) flattenArgs(ctx evalCtx, args []*Expr) []CalcResult {
	var out []CalcResult
	for _, a := range args {
		if a == nil || a.Kind == NodeEmptyArg {
			continue
		}
		if a.Kind == NodeRangeNode {
			vals, err := ev.RangeValues(ctx, a)
			if err != nil {
				out = append(out, Err(ErrRef, ctx.cellKey(), err.Error()))
				continue
			}
			out = append(out, vals...)
			continue
		}
		out = append(out, ev.scalar(ctx, a))
	}
	return out
}

// ---- coercion rules (spec.md §4.7) ----

// ToNumber coerces a scalar CalcResult to a float64 following the
// standard rules: numbers pass through; booleans become 1/0; numeric-
// looking strings parse; everything else (including a non-numeric
// string) is a VALUE error; Empty coerces to 0.
func ToNumber(v CalcResult, origin string) (float64, CalcResult, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, CalcResult{}, true
	case KindBool:
		return boolToFloat(v.Bool), CalcResult{}, true
	case KindEmptyCell, KindEmptyArg:
		return 0, CalcResult{}, true
	case KindString:
		if n, ok := parseUserNumber(v.Str, &EnglishLocale); ok {
			return n, CalcResult{}, true
		}
		return 0, Err(ErrValue, origin, fmt.Sprintf("cannot coerce %q to a number", v.Str)), false
	case KindError:
		return 0, v, false
	}
	return 0, Err(ErrValue, origin, "cannot coerce to a number"), false
}

// ToText renders a scalar CalcResult as display text, using loc for
// numeric stringification (spec.md §4.7).
func ToText(v CalcResult, loc *Locale) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return generalNumberText(v.Number, loc)
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.ErrCode.String()
	case KindEmptyCell, KindEmptyArg:
		return ""
	}
	return ""
}

// ToBool coerces a scalar CalcResult to bool: booleans pass through;
// nonzero numbers are true; "TRUE"/"FALSE" text (case-insensitive)
// parses; Empty is false.
func ToBool(v CalcResult, origin string) (bool, CalcResult, bool) {
	switch v.Kind {
	case KindBool:
		return v.Bool, CalcResult{}, true
	case KindNumber:
		return v.Number != 0, CalcResult{}, true
	case KindEmptyCell, KindEmptyArg:
		return false, CalcResult{}, true
	case KindString:
		switch strings.ToUpper(v.Str) {
		case "TRUE":
			return true, CalcResult{}, true
		case "FALSE":
			return false, CalcResult{}, true
		}
		return false, Err(ErrValue, origin, fmt.Sprintf("cannot coerce %q to a boolean", v.Str)), false
	case KindError:
		return false, v, false
	}
	return false, Err(ErrValue, origin, "cannot coerce to a boolean"), false
}

// parseNumberLiteral is a small strconv wrapper used by function
// implementations that need a plain numeric parse without the
// currency/percent/grouping allowances of parseUserNumber.
func parseNumberLiteral(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

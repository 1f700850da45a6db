package gridcalc

func init() {
	registerFunction("VLOOKUP", fnVLookup)
	registerFunction("HLOOKUP", fnHLookup)
	registerFunction("MATCH", fnMatch)
	registerFunction("INDEX", fnIndex)
	registerFunction("CHOOSE", fnChoose)
	registerFunction("LOOKUP", fnLookup)
}

// fnVLookup implements VLOOKUP(lookupValue, tableRange, colIndex,
// [rangeLookup]) (spec.md §4.8).
func fnVLookup(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 4 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	target := ev.scalar(ctx, args[0])
	if target.IsError() {
		return target
	}
	grid, err := ev.RangeGrid(ctx, args[1])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	colIdx, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	approx := true
	if len(args) == 4 {
		approx, errRes, ok = ToBool(ev.scalar(ctx, args[3]), ctx.cellKey())
		if !ok {
			return errRes
		}
	}
	col := int(colIdx) - 1
	if col < 0 || len(grid) == 0 || col >= len(grid[0]) {
		return Err(ErrRef, ctx.cellKey(), "VLOOKUP: column index out of range")
	}
	row, ok := lookupRow(grid, 0, target, approx)
	if !ok {
		return Err(ErrNA, ctx.cellKey(), "VLOOKUP: value not found")
	}
	return grid[row][col]
}

// fnHLookup is VLOOKUP transposed: rows/columns swapped.
func fnHLookup(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 4 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	target := ev.scalar(ctx, args[0])
	if target.IsError() {
		return target
	}
	grid, err := ev.RangeGrid(ctx, args[1])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	rowIdx, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	approx := true
	if len(args) == 4 {
		approx, errRes, ok = ToBool(ev.scalar(ctx, args[3]), ctx.cellKey())
		if !ok {
			return errRes
		}
	}
	row := int(rowIdx) - 1
	if row < 0 || row >= len(grid) {
		return Err(ErrRef, ctx.cellKey(), "HLOOKUP: row index out of range")
	}
	transposed := transposeGrid(grid)
	col, ok := lookupRow(transposed, 0, target, approx)
	if !ok {
		return Err(ErrNA, ctx.cellKey(), "HLOOKUP: value not found")
	}
	return grid[row][col]
}

func transposeGrid(grid [][]CalcResult) [][]CalcResult {
	if len(grid) == 0 {
		return nil
	}
	cols := len(grid[0])
	out := make([][]CalcResult, cols)
	for c := 0; c < cols; c++ {
		row := make([]CalcResult, len(grid))
		for r := range grid {
			row[r] = grid[r][c]
		}
		out[c] = row
	}
	return out
}

// lookupRow finds the matching row for target against column keyCol:
// an exact match when approx is false, or the largest value <= target
// in an ascending-sorted column when approx is true (spec.md §4.8).
func lookupRow(grid [][]CalcResult, keyCol int, target CalcResult, approx bool) (int, bool) {
	if !approx {
		for i, row := range grid {
			if keyCol < len(row) && row[keyCol].Compare(target) == 0 {
				return i, true
			}
		}
		return 0, false
	}
	best := -1
	for i, row := range grid {
		if keyCol >= len(row) {
			continue
		}
		if row[keyCol].Compare(target) <= 0 {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// fnMatch implements MATCH(lookupValue, lookupRange, [matchType])
// returning a 1-based position (spec.md §4.8).
func fnMatch(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	target := ev.scalar(ctx, args[0])
	if target.IsError() {
		return target
	}
	vals, err := ev.RangeValues(ctx, args[1])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	matchType := 1.0
	if len(args) == 3 {
		var errRes CalcResult
		var ok bool
		matchType, errRes, ok = scalarNumber(ev, ctx, args[2])
		if !ok {
			return errRes
		}
	}
	switch {
	case matchType == 0:
		for i, v := range vals {
			if v.Compare(target) == 0 {
				return Num(float64(i + 1))
			}
		}
	case matchType > 0:
		best := -1
		for i, v := range vals {
			if v.Compare(target) <= 0 {
				best = i
			} else {
				break
			}
		}
		if best >= 0 {
			return Num(float64(best + 1))
		}
	default:
		best := -1
		for i, v := range vals {
			if v.Compare(target) >= 0 {
				best = i
			} else {
				break
			}
		}
		if best >= 0 {
			return Num(float64(best + 1))
		}
	}
	return Err(ErrNA, ctx.cellKey(), "MATCH: value not found")
}

// fnIndex implements INDEX(range, row, [col]) (spec.md §4.8); a 0 row or
// column selects the whole column/row — represented here by returning
// the first cell of that row/column, since array results are a
// Non-goal (spec.md §1).
func fnIndex(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	grid, err := ev.RangeGrid(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	rowN, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	colN := 1.0
	if len(args) == 3 {
		colN, errRes, ok = scalarNumber(ev, ctx, args[2])
		if !ok {
			return errRes
		}
	}
	row := int(rowN)
	col := int(colN)
	if row == 0 {
		row = 1
	}
	if col == 0 {
		col = 1
	}
	if row < 1 || row > len(grid) || len(grid) == 0 || col < 1 || col > len(grid[0]) {
		return Err(ErrRef, ctx.cellKey(), "INDEX: subscript out of range")
	}
	return grid[row-1][col-1]
}

// fnChoose implements CHOOSE(index, value1, value2, ...); only the
// selected value is evaluated.
func fnChoose(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	idxN, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	idx := int(idxN)
	if idx < 1 || idx >= len(args) {
		return Err(ErrValue, ctx.cellKey(), "CHOOSE: index out of range")
	}
	return ev.scalar(ctx, args[idx])
}

// fnLookup implements the vector form LOOKUP(lookupValue, lookupVector,
// [resultVector]) (spec.md §4.8).
func fnLookup(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	target := ev.scalar(ctx, args[0])
	if target.IsError() {
		return target
	}
	lookupVec, err := ev.RangeValues(ctx, args[1])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	resultVec := lookupVec
	if len(args) == 3 {
		resultVec, err = ev.RangeValues(ctx, args[2])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
	}
	best := -1
	for i, v := range lookupVec {
		if v.Compare(target) <= 0 {
			best = i
		} else {
			break
		}
	}
	if best < 0 || best >= len(resultVec) {
		return Err(ErrNA, ctx.cellKey(), "LOOKUP: value not found")
	}
	return resultVec[best]
}

package gridcalc

func init() {
	registerFunction("COUNT", fnCount)
	registerFunction("COUNTA", fnCountA)
	registerFunction("COUNTIF", fnCountIf)
	registerFunction("COUNTIFS", fnCountIfs)
	registerFunction("AVERAGE", fnAverage)
	registerFunction("AVERAGEIF", fnAverageIf)
	registerFunction("AVERAGEIFS", fnAverageIfs)
	registerFunction("MAX", fnMax)
	registerFunction("MIN", fnMin)
	registerFunction("MAXIFS", fnMaxIfs)
	registerFunction("MINIFS", fnMinIfs)
}

func fnCount(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	n := 0
	for _, v := range vals {
		if v.Kind == KindNumber {
			n++
		}
	}
	return Num(float64(n))
}

func fnCountA(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	n := 0
	for _, v := range vals {
		if v.Kind != KindEmptyCell && v.Kind != KindEmptyArg {
			n++
		}
	}
	return Num(float64(n))
}

func fnCountIf(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rng, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	criteria := ParseCriteria(ev.scalar(ctx, args[1]))
	return runAggregation(ev.wb, AggCount, [][]CalcResult{rng}, []Criteria{criteria}, rng)
}

func fnCountIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args)%2 != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	var ranges [][]CalcResult
	var criteria []Criteria
	for i := 0; i < len(args); i += 2 {
		rng, err := ev.RangeValues(ctx, args[i])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		ranges = append(ranges, rng)
		criteria = append(criteria, ParseCriteria(ev.scalar(ctx, args[i+1])))
	}
	return runAggregation(ev.wb, AggCount, ranges, criteria, ranges[0])
}

func fnAverage(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	sum := 0.0
	n := 0
	for _, v := range vals {
		if v.IsError() {
			return v
		}
		if v.Kind == KindNumber {
			sum += v.Number
			n++
		}
	}
	if n == 0 {
		return Err(ErrDiv0, ctx.cellKey(), "AVERAGE: no numeric arguments")
	}
	return Num(sum / float64(n))
}

func fnAverageIf(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	criteriaRange, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	criteria := ParseCriteria(ev.scalar(ctx, args[1]))
	valueRange := criteriaRange
	if len(args) == 3 {
		vr, err := ev.RangeValues(ctx, args[2])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		valueRange = vr
	}
	return runAggregation(ev.wb, AggAverage, [][]CalcResult{criteriaRange}, []Criteria{criteria}, valueRange)
}

func fnAverageIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || (len(args)-1)%2 != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	valueRange, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	var ranges [][]CalcResult
	var criteria []Criteria
	for i := 1; i < len(args); i += 2 {
		rng, err := ev.RangeValues(ctx, args[i])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		ranges = append(ranges, rng)
		criteria = append(criteria, ParseCriteria(ev.scalar(ctx, args[i+1])))
	}
	return runAggregation(ev.wb, AggAverage, ranges, criteria, valueRange)
}

func fnMax(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return extremum(ev, ctx, args, true)
}

func fnMin(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return extremum(ev, ctx, args, false)
}

func extremum(ev *Evaluator, ctx evalCtx, args []*Expr, wantMax bool) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	have := false
	best := 0.0
	for _, v := range vals {
		if v.IsError() {
			return v
		}
		if v.Kind != KindNumber {
			continue
		}
		if !have {
			best = v.Number
			have = true
			continue
		}
		if wantMax && v.Number > best {
			best = v.Number
		}
		if !wantMax && v.Number < best {
			best = v.Number
		}
	}
	if !have {
		return Num(0)
	}
	return Num(best)
}

func fnMaxIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return extremumIfs(ev, ctx, args, AggMax)
}

func fnMinIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return extremumIfs(ev, ctx, args, AggMin)
}

func extremumIfs(ev *Evaluator, ctx evalCtx, args []*Expr, op AggOp) CalcResult {
	if len(args) < 3 || (len(args)-1)%2 != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	valueRange, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	var ranges [][]CalcResult
	var criteria []Criteria
	for i := 1; i < len(args); i += 2 {
		rng, err := ev.RangeValues(ctx, args[i])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		ranges = append(ranges, rng)
		criteria = append(criteria, ParseCriteria(ev.scalar(ctx, args[i+1])))
	}
	return runAggregation(ev.wb, op, ranges, criteria, valueRange)
}

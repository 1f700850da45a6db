package gridcalc

func init() {
	registerFunction("IF", fnIf)
	registerFunction("AND", fnAnd)
	registerFunction("OR", fnOr)
	registerFunction("NOT", fnNot)
	registerFunction("IFERROR", fnIfError)
	registerFunction("IFNA", fnIfNA)
	registerFunction("IFS", fnIfs)
	registerFunction("TRUE", fnTrueLit)
	registerFunction("FALSE", fnFalseLit)
}

// fnIf implements IF(condition, trueValue, [falseValue]); the branch not
// taken is never evaluated (spec.md §4.8's lazy-argument requirement).
func fnIf(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	cond := ev.scalar(ctx, args[0])
	if cond.IsError() {
		return cond
	}
	b, errRes, ok := ToBool(cond, ctx.cellKey())
	if !ok {
		return errRes
	}
	if b {
		if len(args) >= 2 {
			return ev.scalar(ctx, args[1])
		}
		return Boolean(true)
	}
	if len(args) >= 3 {
		return ev.scalar(ctx, args[2])
	}
	return Boolean(false)
}

func fnAnd(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	if len(vals) == 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	result := true
	for _, v := range vals {
		if v.Kind == KindString || v.Kind == KindEmptyCell || v.Kind == KindEmptyArg {
			continue
		}
		b, errRes, ok := ToBool(v, ctx.cellKey())
		if !ok {
			return errRes
		}
		if !b {
			result = false
		}
	}
	return Boolean(result)
}

func fnOr(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	if len(vals) == 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	result := false
	for _, v := range vals {
		if v.Kind == KindString || v.Kind == KindEmptyCell || v.Kind == KindEmptyArg {
			continue
		}
		b, errRes, ok := ToBool(v, ctx.cellKey())
		if !ok {
			return errRes
		}
		if b {
			result = true
		}
	}
	return Boolean(result)
}

func fnNot(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 1 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	v := ev.scalar(ctx, args[0])
	b, errRes, ok := ToBool(v, ctx.cellKey())
	if !ok {
		return errRes
	}
	return Boolean(!b)
}

// fnIfError returns the second argument only if the first errors
// (spec.md §4.8); the first argument is always evaluated, the second
// only on demand.
func fnIfError(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	v := ev.scalar(ctx, args[0])
	if v.IsError() {
		return ev.scalar(ctx, args[1])
	}
	return v
}

// fnIfNA returns the second argument only if the first is #N/A.
func fnIfNA(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	v := ev.scalar(ctx, args[0])
	if v.IsError() && v.ErrCode == ErrNA {
		return ev.scalar(ctx, args[1])
	}
	return v
}

// fnIfs evaluates condition/value pairs in order, returning the value
// paired with the first true condition (spec.md §4.8).
func fnIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args)%2 != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	for i := 0; i < len(args); i += 2 {
		cond := ev.scalar(ctx, args[i])
		if cond.IsError() {
			return cond
		}
		b, errRes, ok := ToBool(cond, ctx.cellKey())
		if !ok {
			return errRes
		}
		if b {
			return ev.scalar(ctx, args[i+1])
		}
	}
	return Err(ErrNA, ctx.cellKey(), "IFS: no condition matched")
}

func fnTrueLit(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult  { return Boolean(true) }
func fnFalseLit(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult { return Boolean(false) }

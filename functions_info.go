package gridcalc

func init() {
	registerFunction("ISNUMBER", fnIsNumber)
	registerFunction("ISTEXT", fnIsText)
	registerFunction("ISNONTEXT", fnIsNonText)
	registerFunction("ISLOGICAL", fnIsLogical)
	registerFunction("ISBLANK", fnIsBlank)
	registerFunction("ISERROR", fnIsError)
	registerFunction("ISERR", fnIsErr)
	registerFunction("ISNA", fnIsNA)
	registerFunction("NA", fnNA)
	registerFunction("TYPE", fnType)
}

// infoArg1 evaluates a single-argument info predicate's operand without
// coercion: ISBLANK/ISNUMBER/etc. inspect the operand's own kind, so an
// Error operand must not be propagated the way arithmetic does (spec.md
// §4.8: the information functions examine errors rather than
// short-circuiting on them).
func infoArg1(ev *Evaluator, ctx evalCtx, args []*Expr, name string) (CalcResult, bool) {
	if len(args) != 1 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments"), false
	}
	return ev.scalar(ctx, args[0]), true
}

func fnIsNumber(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISNUMBER")
	if !ok {
		return v
	}
	return Boolean(v.Kind == KindNumber)
}

func fnIsText(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISTEXT")
	if !ok {
		return v
	}
	return Boolean(v.Kind == KindString)
}

func fnIsNonText(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISNONTEXT")
	if !ok {
		return v
	}
	return Boolean(v.Kind != KindString)
}

func fnIsLogical(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISLOGICAL")
	if !ok {
		return v
	}
	return Boolean(v.Kind == KindBool)
}

func fnIsBlank(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISBLANK")
	if !ok {
		return v
	}
	return Boolean(v.Kind == KindEmptyCell || v.Kind == KindEmptyArg)
}

// fnIsError reports true for any Error variant, including #N/A.
func fnIsError(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISERROR")
	if !ok {
		return v
	}
	return Boolean(v.IsError())
}

// fnIsErr is ISERROR minus #N/A (spec.md §4.8's Info table).
func fnIsErr(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISERR")
	if !ok {
		return v
	}
	return Boolean(v.IsError() && v.ErrCode != ErrNA)
}

func fnIsNA(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "ISNA")
	if !ok {
		return v
	}
	return Boolean(v.IsError() && v.ErrCode == ErrNA)
}

func fnNA(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	return Err(ErrNA, ctx.cellKey(), "#N/A")
}

// fnType implements TYPE(value): 1=number, 2=text, 4=boolean, 16=error,
// matching the well-known spreadsheet TYPE() code table; ranges/empty
// arguments fall back to the "text" code since array types (code 64)
// are a Non-goal (spec.md §1).
func fnType(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	v, ok := infoArg1(ev, ctx, args, "TYPE")
	if !ok {
		return v
	}
	switch v.Kind {
	case KindNumber:
		return Num(1)
	case KindString:
		return Num(2)
	case KindBool:
		return Num(4)
	case KindError:
		return Num(16)
	default:
		return Num(2)
	}
}

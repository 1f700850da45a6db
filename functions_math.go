package gridcalc

import "math"

func init() {
	registerFunction("SUM", fnSum)
	registerFunction("SUMIF", fnSumIf)
	registerFunction("SUMIFS", fnSumIfs)
	registerFunction("PRODUCT", fnProduct)
	registerFunction("ABS", fnAbs)
	registerFunction("ROUND", fnRound)
	registerFunction("MOD", fnMod)
	registerFunction("POWER", fnPower)
	registerFunction("SQRT", fnSqrt)
	registerFunction("EXP", fnExp)
	registerFunction("LN", fnLn)
	registerFunction("LOG", fnLog)
	registerFunction("LOG10", fnLog10)
	registerFunction("SIN", unaryMathFn(math.Sin))
	registerFunction("COS", unaryMathFn(math.Cos))
	registerFunction("TAN", unaryMathFn(math.Tan))
	registerFunction("ASIN", unaryMathFn(math.Asin))
	registerFunction("ACOS", unaryMathFn(math.Acos))
	registerFunction("ATAN", unaryMathFn(math.Atan))
	registerFunction("ATAN2", fnAtan2)
}

func fnSum(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	sum := 0.0
	for _, v := range vals {
		if v.IsError() {
			return v
		}
		if v.Kind == KindNumber {
			sum += v.Number
		} else if v.Kind == KindBool {
			sum += boolToFloat(v.Bool)
		}
	}
	return Num(sum)
}

func fnProduct(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	product := 1.0
	seen := false
	for _, v := range vals {
		if v.IsError() {
			return v
		}
		if v.Kind == KindNumber {
			product *= v.Number
			seen = true
		}
	}
	if !seen {
		return Num(0)
	}
	return Num(product)
}

// fnSumIf implements SUMIF(range, criteria, [sumRange]) (spec.md §4.10).
func fnSumIf(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	criteriaRange, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	criteriaArg := ev.scalar(ctx, args[1])
	criteria := ParseCriteria(criteriaArg)

	valueRange := criteriaRange
	if len(args) == 3 {
		vr, err := ev.RangeValues(ctx, args[2])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		valueRange = vr
	}
	return runAggregation(ev.wb, AggSum, [][]CalcResult{criteriaRange}, []Criteria{criteria}, valueRange)
}

// fnSumIfs implements SUMIFS(sumRange, criteriaRange1, criteria1, ...).
func fnSumIfs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || (len(args)-1)%2 != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	valueRange, err := ev.RangeValues(ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	var criteriaRanges [][]CalcResult
	var criteria []Criteria
	for i := 1; i < len(args); i += 2 {
		rng, err := ev.RangeValues(ctx, args[i])
		if err != nil {
			return Err(ErrValue, ctx.cellKey(), err.Error())
		}
		criteriaRanges = append(criteriaRanges, rng)
		criteria = append(criteria, ParseCriteria(ev.scalar(ctx, args[i+1])))
	}
	return runAggregation(ev.wb, AggSum, criteriaRanges, criteria, valueRange)
}

func fnAbs(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return unaryNumeric(ev, ctx, args, "ABS", math.Abs)
}

func fnRound(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	n, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	digits, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	scale := math.Pow(10, digits)
	return Num(math.Round(n*scale) / scale)
}

func fnMod(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	a, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	b, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	if b == 0 {
		return Err(ErrDiv0, ctx.cellKey(), "MOD: division by zero")
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return Num(m)
}

func fnPower(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	a, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	b, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	r := math.Pow(a, b)
	if math.IsNaN(r) {
		return Err(ErrNum, ctx.cellKey(), "POWER: invalid operands")
	}
	return Num(r)
}

func fnSqrt(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "SQRT")
	if !ok {
		return errRes
	}
	if n < 0 {
		return Err(ErrNum, ctx.cellKey(), "SQRT: negative argument")
	}
	return Num(math.Sqrt(n))
}

func fnExp(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return unaryNumeric(ev, ctx, args, "EXP", math.Exp)
}

func fnLn(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "LN")
	if !ok {
		return errRes
	}
	if n <= 0 {
		return Err(ErrNum, ctx.cellKey(), "LN: argument must be positive")
	}
	return Num(math.Log(n))
}

func fnLog(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 || len(args) > 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	n, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	base := 10.0
	if len(args) == 2 {
		base, errRes, ok = scalarNumber(ev, ctx, args[1])
		if !ok {
			return errRes
		}
	}
	if n <= 0 || base <= 0 || base == 1 {
		return Err(ErrNum, ctx.cellKey(), "LOG: invalid arguments")
	}
	return Num(math.Log(n) / math.Log(base))
}

func fnLog10(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "LOG10")
	if !ok {
		return errRes
	}
	if n <= 0 {
		return Err(ErrNum, ctx.cellKey(), "LOG10: argument must be positive")
	}
	return Num(math.Log10(n))
}

func fnAtan2(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	x, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	y, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	return Num(math.Atan2(y, x))
}

// unaryMathFn adapts a math.XXX(float64) float64 function into a
// functionImpl taking exactly one numeric argument.
func unaryMathFn(f func(float64) float64) functionImpl {
	return func(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
		return unaryNumeric(ev, ctx, args, "", f)
	}
}

func unaryNumeric(ev *Evaluator, ctx evalCtx, args []*Expr, name string, f func(float64) float64) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, name)
	if !ok {
		return errRes
	}
	return Num(f(n))
}

func scalarNumber(ev *Evaluator, ctx evalCtx, e *Expr) (float64, CalcResult, bool) {
	v := ev.scalar(ctx, e)
	if v.IsError() {
		return 0, v, false
	}
	return ToNumber(v, ctx.cellKey())
}

func scalarNumber1(ev *Evaluator, ctx evalCtx, args []*Expr, name string) (float64, CalcResult, bool) {
	if len(args) != 1 {
		return 0, Err(ErrError, ctx.cellKey(), "wrong number of arguments"), false
	}
	return scalarNumber(ev, ctx, args[0])
}

package gridcalc

import "math"

func init() {
	registerFunction("PMT", fnPmt)
	registerFunction("FV", fnFv)
	registerFunction("PV", fnPv)
	registerFunction("NPER", fnNper)
	registerFunction("RATE", fnRate)
	registerFunction("IPMT", fnIpmt)
	registerFunction("PPMT", fnPpmt)
	registerFunction("NPV", fnNpv)
	registerFunction("IRR", fnIrr)
	registerFunction("MIRR", fnMirr)
	registerFunction("ISPMT", fnIspmt)
	registerFunction("RRI", fnRri)
}

// solverMaxIterations and solverTolerance bound IRR/RATE's iterative
// solvers (spec.md §5, §4.8): a fixed iteration cap with a numeric
// tolerance, falling back to Error(NUM) on non-convergence rather than
// looping indefinitely.
const (
	solverMaxIterations = 100
	solverTolerance     = 1e-10
)

// trailingArg reads args[idx] if present, else returns def; used for
// the financial functions' trailing-default arguments (fv=0, type=0).
func trailingArg(ev *Evaluator, ctx evalCtx, args []*Expr, idx int, def float64) (float64, CalcResult, bool) {
	if idx >= len(args) {
		return def, CalcResult{}, true
	}
	return scalarNumber(ev, ctx, args[idx])
}

func pmtFormula(rate float64, nper float64, pv float64, fv float64, typ float64) (float64, bool) {
	if nper == 0 {
		return 0, false
	}
	if rate == 0 {
		return -(pv + fv) / nper, true
	}
	growth := math.Pow(1+rate, nper)
	denom := (1 + rate*typ) * (growth - 1)
	if denom == 0 {
		return 0, false
	}
	return -(fv + pv*growth) * rate / denom, true
}

func fvFormula(rate, nper, pmt, pv, typ float64) float64 {
	if rate == 0 {
		return -(pv + pmt*nper)
	}
	growth := math.Pow(1+rate, nper)
	return -(pv*growth + pmt*(1+rate*typ)*(growth-1)/rate)
}

func pvFormula(rate, nper, pmt, fv, typ float64) (float64, bool) {
	if rate == 0 {
		return -(fv + pmt*nper), true
	}
	growth := math.Pow(1+rate, nper)
	if growth == 0 {
		return 0, false
	}
	return -(fv + pmt*(1+rate*typ)*(growth-1)/rate) / growth, true
}

func fnPmt(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 5 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	fv, errRes, ok := trailingArg(ev, ctx, args, 3, 0)
	if !ok {
		return errRes
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return errRes
	}
	v, ok := pmtFormula(rate, nper, pv, fv, typ)
	if !ok {
		return Err(ErrNum, ctx.cellKey(), "PMT: invalid arguments")
	}
	return Num(v)
}

func fnFv(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 5 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	pmt, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	pv, errRes, ok := trailingArg(ev, ctx, args, 3, 0)
	if !ok {
		return errRes
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return errRes
	}
	return Num(fvFormula(rate, nper, pmt, pv, typ))
}

func fnPv(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 5 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	pmt, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	fv, errRes, ok := trailingArg(ev, ctx, args, 3, 0)
	if !ok {
		return errRes
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return errRes
	}
	v, ok := pvFormula(rate, nper, pmt, fv, typ)
	if !ok {
		return Err(ErrNum, ctx.cellKey(), "PV: invalid arguments")
	}
	return Num(v)
}

func fnNper(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 5 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	pmt, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	fv, errRes, ok := trailingArg(ev, ctx, args, 3, 0)
	if !ok {
		return errRes
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return errRes
	}
	if rate == 0 {
		if pmt == 0 {
			return Err(ErrNum, ctx.cellKey(), "NPER: rate and payment cannot both be zero")
		}
		return Num(-(pv + fv) / pmt)
	}
	adj := pmt * (1 + rate*typ) / rate
	num := adj - fv
	den := pv + adj
	if num <= 0 || den <= 0 {
		return Err(ErrNum, ctx.cellKey(), "NPER: invalid arguments")
	}
	return Num(math.Log(num/den) / math.Log(1+rate))
}

// fnRate solves RATE(nper, pmt, pv, [fv], [type], [guess]) for the
// periodic rate by Newton's method, falling back to a bisection search
// over a wide bracket if the derivative is degenerate, within
// solverMaxIterations/solverTolerance (spec.md §4.8, §5).
func fnRate(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 6 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	pmt, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	fv, errRes, ok := trailingArg(ev, ctx, args, 3, 0)
	if !ok {
		return errRes
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return errRes
	}
	guess, errRes, ok := trailingArg(ev, ctx, args, 5, 0.1)
	if !ok {
		return errRes
	}

	f := func(rate float64) float64 {
		if rate <= -1 {
			return math.NaN()
		}
		growth := math.Pow(1+rate, nper)
		return pv*growth + pmt*(1+rate*typ)*(growth-1)/rate + fv
	}

	rate := guess
	converged := false
	for i := 0; i < solverMaxIterations; i++ {
		fv0 := f(rate)
		if math.IsNaN(fv0) {
			break
		}
		if math.Abs(fv0) < solverTolerance {
			converged = true
			break
		}
		const h = 1e-6
		deriv := (f(rate+h) - fv0) / h
		if deriv == 0 || math.IsNaN(deriv) {
			break
		}
		next := rate - fv0/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		rate = next
	}
	if !converged {
		if r, ok := bisectRate(f); ok {
			rate = r
			converged = true
		}
	}
	if !converged {
		return Err(ErrNum, ctx.cellKey(), "RATE: failed to converge")
	}
	return Num(rate)
}

// bisectRate scans a wide bracket of candidate rates for a sign change
// in f, then bisects it down to solverTolerance — the fallback path
// when RATE's Newton iteration fails to converge from the given guess.
func bisectRate(f func(float64) float64) (float64, bool) {
	const lo, hi = -0.999999, 10.0
	const steps = 200
	prevX := lo
	prevY := f(prevX)
	for i := 1; i <= steps; i++ {
		x := lo + (hi-lo)*float64(i)/float64(steps)
		y := f(x)
		if !math.IsNaN(prevY) && !math.IsNaN(y) && (prevY < 0) != (y < 0) {
			a, b := prevX, x
			for j := 0; j < solverMaxIterations; j++ {
				mid := (a + b) / 2
				fm := f(mid)
				if math.Abs(fm) < solverTolerance {
					return mid, true
				}
				if (fm < 0) != (prevY < 0) {
					b = mid
				} else {
					a, prevY = mid, fm
				}
			}
			return (a + b) / 2, true
		}
		prevX, prevY = x, y
	}
	return 0, false
}

// fnIpmt implements IPMT(rate, per, nper, pv, [fv], [type]): the
// interest portion of the payment due in period per, found by
// simulating the amortization schedule up to that period (spec.md
// §4.8).
func fnIpmt(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	ipmt, _, errRes, ok := amortize(ev, ctx, args, "IPMT")
	if !ok {
		return errRes
	}
	return Num(ipmt)
}

// fnPpmt implements PPMT: the principal portion of the same payment.
func fnPpmt(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	_, ppmt, errRes, ok := amortize(ev, ctx, args, "PPMT")
	if !ok {
		return errRes
	}
	return Num(ppmt)
}

func amortize(ev *Evaluator, ctx evalCtx, args []*Expr, name string) (ipmt, ppmt float64, errRes CalcResult, ok bool) {
	if len(args) < 4 || len(args) > 6 {
		return 0, 0, Err(ErrError, ctx.cellKey(), "wrong number of arguments"), false
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return 0, 0, errRes, false
	}
	perN, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return 0, 0, errRes, false
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return 0, 0, errRes, false
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[3])
	if !ok {
		return 0, 0, errRes, false
	}
	fv, errRes, ok := trailingArg(ev, ctx, args, 4, 0)
	if !ok {
		return 0, 0, errRes, false
	}
	typ, errRes, ok := trailingArg(ev, ctx, args, 5, 0)
	if !ok {
		return 0, 0, errRes, false
	}
	per := int(perN)
	if per < 1 || float64(per) > nper {
		return 0, 0, Err(ErrNum, ctx.cellKey(), name+": period out of range"), false
	}
	pmt, pmtOK := pmtFormula(rate, nper, pv, fv, typ)
	if !pmtOK {
		return 0, 0, Err(ErrNum, ctx.cellKey(), name+": invalid arguments"), false
	}
	balance := pv
	var curIpmt, curPpmt float64
	for i := 1; i <= per; i++ {
		if typ == 1 && i == 1 {
			curIpmt = 0
		} else {
			curIpmt = -balance * rate
		}
		curPpmt = pmt - curIpmt
		balance += curPpmt
	}
	return curIpmt, curPpmt, CalcResult{}, true
}

// fnNpv implements NPV(rate, value1, value2, ...): cash flows start one
// period after the valuation date (spec.md §4.8).
func fnNpv(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	vals := ev.flattenArgs(ctx, args[1:])
	sum := 0.0
	for i, v := range vals {
		if v.IsError() {
			return v
		}
		if v.Kind != KindNumber {
			continue
		}
		sum += v.Number / math.Pow(1+rate, float64(i+1))
	}
	return Num(sum)
}

// cashFlows resolves a single range argument (spec.md §4.8: IRR/MIRR
// "consume a range argument as an ordered cash-flow sequence, row-major
// over the range") into a plain float64 slice, skipping non-numeric
// cells.
func cashFlows(ev *Evaluator, ctx evalCtx, e *Expr) ([]float64, error) {
	vals, err := ev.RangeValues(ctx, e)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v.Kind == KindNumber {
			out = append(out, v.Number)
		}
	}
	return out, nil
}

// fnIrr implements IRR(values, [guess]) via Newton's method over the
// cash-flow NPV (rate as a fraction), falling back to bisection, bounded by
// solverMaxIterations/solverTolerance (spec.md §4.8, §5).
func fnIrr(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 || len(args) > 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	flows, err := cashFlows(ev, ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	if len(flows) < 2 {
		return Err(ErrNum, ctx.cellKey(), "IRR requires at least 2 cash flows")
	}
	guess := 0.1
	if len(args) == 2 {
		var errRes CalcResult
		var ok bool
		guess, errRes, ok = scalarNumber(ev, ctx, args[1])
		if !ok {
			return errRes
		}
	}
	npv := func(rate float64) float64 {
		sum := 0.0
		for i, v := range flows {
			sum += v / math.Pow(1+rate, float64(i))
		}
		return sum
	}

	rate := guess
	converged := false
	for i := 0; i < solverMaxIterations; i++ {
		fv0 := npv(rate)
		if math.IsNaN(fv0) {
			break
		}
		if math.Abs(fv0) < solverTolerance {
			converged = true
			break
		}
		const h = 1e-6
		deriv := (npv(rate+h) - fv0) / h
		if deriv == 0 || math.IsNaN(deriv) {
			break
		}
		next := rate - fv0/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			break
		}
		rate = next
	}
	if !converged {
		if r, ok := bisectRate(npv); ok {
			rate = r
			converged = true
		}
	}
	if !converged {
		return Err(ErrNum, ctx.cellKey(), "IRR: failed to converge")
	}
	return Num(rate)
}

// fnMirr implements MIRR(values, financeRate, reinvestRate): negative
// cash flows are discounted at financeRate, positive ones compounded
// forward at reinvestRate, and the modified rate solved in closed form
// (spec.md §4.8).
func fnMirr(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	flows, err := cashFlows(ev, ctx, args[0])
	if err != nil {
		return Err(ErrValue, ctx.cellKey(), err.Error())
	}
	financeRate, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	reinvestRate, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	n := len(flows)
	if n < 2 {
		return Err(ErrNum, ctx.cellKey(), "MIRR requires at least 2 cash flows")
	}
	negPV, posFV := 0.0, 0.0
	for i, v := range flows {
		switch {
		case v < 0:
			negPV += v / math.Pow(1+financeRate, float64(i))
		case v > 0:
			posFV += v * math.Pow(1+reinvestRate, float64(n-1-i))
		}
	}
	if negPV == 0 || posFV == 0 {
		return Err(ErrDiv0, ctx.cellKey(), "MIRR: requires both positive and negative cash flows")
	}
	ratio := posFV / -negPV
	if ratio < 0 {
		return Err(ErrNum, ctx.cellKey(), "MIRR: invalid cash flow combination")
	}
	return Num(math.Pow(ratio, 1.0/float64(n-1)) - 1)
}

// fnIspmt implements ISPMT(rate, per, nper, pv): the straight-line
// interest-only schedule used by older loan amortization templates.
func fnIspmt(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 4 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	rate, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	per, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[3])
	if !ok {
		return errRes
	}
	if nper == 0 {
		return Err(ErrDiv0, ctx.cellKey(), "ISPMT: nper cannot be zero")
	}
	return Num(-pv * rate * (1 - per/nper))
}

// fnRri implements RRI(nper, pv, fv): the equivalent periodic interest
// rate that grows pv into fv over nper periods.
func fnRri(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	nper, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	pv, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	fv, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	if nper == 0 || pv == 0 {
		return Err(ErrDiv0, ctx.cellKey(), "RRI: nper and pv must be nonzero")
	}
	ratio := fv / pv
	if ratio < 0 {
		return Err(ErrNum, ctx.cellKey(), "RRI: fv/pv must be non-negative")
	}
	return Num(math.Pow(ratio, 1.0/nper) - 1)
}

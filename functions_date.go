package gridcalc

import (
	"math"
	"time"
)

func init() {
	registerFunction("TODAY", fnToday)
	registerFunction("NOW", fnNow)
	registerFunction("DATE", fnDate)
	registerFunction("YEAR", fnYear)
	registerFunction("MONTH", fnMonth)
	registerFunction("DAY", fnDay)
	registerFunction("EDATE", fnEdate)
	registerFunction("EOMONTH", fnEomonth)
	registerFunction("WEEKDAY", fnWeekday)
}

// excelEpoch is serial-day 0 under the historical "1900 date system"
// (spec.md §4.8, §9 Open Question (b)): Excel numbers Jan 1, 1900 as
// serial 1, counts a fictitious Feb 29, 1900 as serial 60 (reproducing
// the Lotus 1-2-3 bug it inherited), and every real date from Mar 1,
// 1900 onward is one serial day higher than a naive calendar count.
var excelEpoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// dateToSerial converts a real calendar date to its Excel serial day
// number, reproducing DESIGN.md's Open Question (b) decision: dates on
// or after Mar 1, 1900 are shifted up by one to leave room for the
// fictitious serial 60.
func dateToSerial(year, month, day int) float64 {
	if year == 1900 && month == 2 && day == 29 {
		return 60
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	trueDays := daysBetween(excelEpoch, t)
	if trueDays >= 60 {
		trueDays++
	}
	return float64(trueDays)
}

// serialToYMD is dateToSerial's inverse, special-casing serial 60 back
// to the fictitious 1900-02-29 rather than normalizing it into a real
// date, so DATE(1900,2,29) and serialToYMD(60) round-trip.
func serialToYMD(serial float64) (year, month, day int) {
	days := int(math.Floor(serial))
	if days == 60 {
		return 1900, 2, 29
	}
	if days > 60 {
		days--
	}
	t := excelEpoch.AddDate(0, 0, days)
	return t.Year(), int(t.Month()), t.Day()
}

// serialToTime is like serialToYMD but returns a time.Time in loc,
// including the fractional day-of-serial as a time-of-day; used by
// WEEKDAY/EDATE/EOMONTH which need real calendar arithmetic and so
// cannot represent the fictitious Feb 29, 1900 (clamped to Mar 1).
func serialToTime(serial float64, loc *time.Location) time.Time {
	year, month, day := serialToYMD(serial)
	if year == 1900 && month == 2 && day == 29 {
		year, month, day = 1900, 3, 1
	}
	frac := serial - math.Floor(serial)
	secs := int(math.Round(frac * 86400))
	return time.Date(year, month, day, 0, 0, 0, 0, loc).Add(time.Duration(secs) * time.Second)
}

// checkVolatile gates TODAY/NOW/RAND-family functions per spec.md §4.7,
// §6: workbook kinds that forbid volatile recomputation reject them.
func checkVolatile(ev *Evaluator, ctx evalCtx, name string) (CalcResult, bool) {
	if !ev.wb.Kind.allowsVolatile() {
		return Err(ErrError, ctx.cellKey(), name+": not allowed in this workbook"), false
	}
	return CalcResult{}, true
}

func fnToday(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	if errRes, ok := checkVolatile(ev, ctx, "TODAY"); !ok {
		return errRes
	}
	now := ev.wb.Clock.Now().In(ev.wb.Location)
	return Num(dateToSerial(now.Year(), int(now.Month()), now.Day()))
}

func fnNow(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 0 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	if errRes, ok := checkVolatile(ev, ctx, "NOW"); !ok {
		return errRes
	}
	now := ev.wb.Clock.Now().In(ev.wb.Location)
	whole := dateToSerial(now.Year(), int(now.Month()), now.Day())
	frac := (float64(now.Hour())*3600 + float64(now.Minute())*60 + float64(now.Second())) / 86400
	return Num(whole + frac)
}

func fnDate(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	y, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	m, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	d, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	return Num(dateToSerial(int(y), int(m), int(d)))
}

func fnYear(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "YEAR")
	if !ok {
		return errRes
	}
	y, _, _ := serialToYMD(n)
	return Num(float64(y))
}

func fnMonth(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "MONTH")
	if !ok {
		return errRes
	}
	_, m, _ := serialToYMD(n)
	return Num(float64(m))
}

func fnDay(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	n, errRes, ok := scalarNumber1(ev, ctx, args, "DAY")
	if !ok {
		return errRes
	}
	_, _, d := serialToYMD(n)
	return Num(float64(d))
}

// fnEdate implements EDATE(startDate, months): the date months calendar
// months away from startDate, keeping the day-of-month (clamped to the
// target month's length).
func fnEdate(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	start, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	months, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	t := serialToTime(start, time.UTC)
	target := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, int(months), 0)
	day := t.Day()
	if last := target.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return Num(dateToSerial(target.Year(), int(target.Month()), day))
}

// fnEomonth implements EOMONTH(startDate, months): the last day of the
// month that is months away from startDate.
func fnEomonth(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	start, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	months, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	t := serialToTime(start, time.UTC)
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, int(months)+1, 0)
	lastDay := firstOfTarget.AddDate(0, 0, -1)
	return Num(dateToSerial(lastDay.Year(), int(lastDay.Month()), lastDay.Day()))
}

// fnWeekday implements WEEKDAY(serial, [returnType]); returnType 1
// (default) numbers Sunday=1..Saturday=7.
func fnWeekday(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 || len(args) > 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	serial, errRes, ok := scalarNumber(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	returnType := 1.0
	if len(args) == 2 {
		returnType, errRes, ok = scalarNumber(ev, ctx, args[1])
		if !ok {
			return errRes
		}
	}
	wd := int(serialToTime(serial, time.UTC).Weekday()) // 0=Sunday..6=Saturday
	switch int(returnType) {
	case 1:
		return Num(float64(wd + 1))
	case 2:
		return Num(float64((wd+6)%7 + 1))
	case 3:
		return Num(float64((wd + 6) % 7))
	}
	return Err(ErrNum, ctx.cellKey(), "WEEKDAY: unsupported return type")
}

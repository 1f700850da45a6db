package gridcalc

import (
	"strings"
	"unicode/utf8"
)

func init() {
	registerFunction("CONCAT", fnConcat)
	registerFunction("CONCATENATE", fnConcat)
	registerFunction("LEFT", fnLeft)
	registerFunction("RIGHT", fnRight)
	registerFunction("MID", fnMid)
	registerFunction("LEN", fnLen)
	registerFunction("LOWER", fnLower)
	registerFunction("UPPER", fnUpper)
	registerFunction("TRIM", fnTrim)
	registerFunction("FIND", fnFind)
	registerFunction("SEARCH", fnSearch)
	registerFunction("REPLACE", fnReplace)
	registerFunction("SUBSTITUTE", fnSubstitute)
	registerFunction("TEXT", fnText)
}

func fnConcat(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	vals := ev.flattenArgs(ctx, args)
	var sb strings.Builder
	for _, v := range vals {
		if v.IsError() {
			return v
		}
		sb.WriteString(ToText(v, ev.wb.Locale))
	}
	return Txt(sb.String())
}

func scalarText(ev *Evaluator, ctx evalCtx, e *Expr) (string, CalcResult, bool) {
	v := ev.scalar(ctx, e)
	if v.IsError() {
		return "", v, false
	}
	return ToText(v, ev.wb.Locale), CalcResult{}, true
}

func fnLeft(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 || len(args) > 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	s, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	n := 1
	if len(args) == 2 {
		nn, errRes, ok := scalarNumber(ev, ctx, args[1])
		if !ok {
			return errRes
		}
		n = int(nn)
	}
	runes := []rune(s)
	if n < 0 {
		return Err(ErrValue, ctx.cellKey(), "LEFT: negative length")
	}
	if n > len(runes) {
		n = len(runes)
	}
	return Txt(string(runes[:n]))
}

func fnRight(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 1 || len(args) > 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	s, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	n := 1
	if len(args) == 2 {
		nn, errRes, ok := scalarNumber(ev, ctx, args[1])
		if !ok {
			return errRes
		}
		n = int(nn)
	}
	runes := []rune(s)
	if n < 0 {
		return Err(ErrValue, ctx.cellKey(), "RIGHT: negative length")
	}
	if n > len(runes) {
		n = len(runes)
	}
	return Txt(string(runes[len(runes)-n:]))
}

func fnMid(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	s, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	startN, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	lenN, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	start := int(startN)
	length := int(lenN)
	if start < 1 || length < 0 {
		return Err(ErrValue, ctx.cellKey(), "MID: invalid start or length")
	}
	runes := []rune(s)
	if start > len(runes) {
		return Txt("")
	}
	end := start - 1 + length
	if end > len(runes) {
		end = len(runes)
	}
	return Txt(string(runes[start-1 : end]))
}

func fnLen(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	s, errRes, ok := scalarText1(ev, ctx, args, "LEN")
	if !ok {
		return errRes
	}
	return Num(float64(utf8.RuneCountInString(s)))
}

func fnLower(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	s, errRes, ok := scalarText1(ev, ctx, args, "LOWER")
	if !ok {
		return errRes
	}
	return Txt(strings.ToLower(s))
}

func fnUpper(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	s, errRes, ok := scalarText1(ev, ctx, args, "UPPER")
	if !ok {
		return errRes
	}
	return Txt(strings.ToUpper(s))
}

func fnTrim(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	s, errRes, ok := scalarText1(ev, ctx, args, "TRIM")
	if !ok {
		return errRes
	}
	fields := strings.Fields(s)
	return Txt(strings.Join(fields, " "))
}

func scalarText1(ev *Evaluator, ctx evalCtx, args []*Expr, name string) (string, CalcResult, bool) {
	if len(args) != 1 {
		return "", Err(ErrError, ctx.cellKey(), "wrong number of arguments"), false
	}
	return scalarText(ev, ctx, args[0])
}

// fnFind implements FIND(findText, withinText, [startNum]), a
// case-sensitive substring search (DESIGN.md Open Question (a)).
func fnFind(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return textSearch(ev, ctx, args, "FIND", false)
}

// fnSearch implements SEARCH, the case-insensitive counterpart of FIND
// (DESIGN.md Open Question (a)). Wildcard patterns ("*"/"?") in the
// search text are not expanded here: spec.md §4.8 only requires
// substring search semantics for SEARCH/FIND.
func fnSearch(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	return textSearch(ev, ctx, args, "SEARCH", true)
}

func textSearch(ev *Evaluator, ctx evalCtx, args []*Expr, name string, caseInsensitive bool) CalcResult {
	if len(args) < 2 || len(args) > 3 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	needle, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	haystack, errRes, ok := scalarText(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	start := 1
	if len(args) == 3 {
		startN, errRes, ok := scalarNumber(ev, ctx, args[2])
		if !ok {
			return errRes
		}
		start = int(startN)
	}
	if start < 1 {
		return Err(ErrValue, ctx.cellKey(), name+": invalid start position")
	}
	runes := []rune(haystack)
	if start > len(runes)+1 {
		return Err(ErrValue, ctx.cellKey(), name+": start beyond text length")
	}
	sub := string(runes[start-1:])
	n := needle
	if caseInsensitive {
		sub = strings.ToLower(sub)
		n = strings.ToLower(needle)
	}
	idx := strings.Index(sub, n)
	if idx < 0 {
		return Err(ErrValue, ctx.cellKey(), name+": text not found")
	}
	return Num(float64(start + utf8.RuneCountInString(sub[:idx])))
}

// fnReplace implements REPLACE(oldText, startNum, numChars, newText).
func fnReplace(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 4 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	old, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	startN, errRes, ok := scalarNumber(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	numN, errRes, ok := scalarNumber(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	newText, errRes, ok := scalarText(ev, ctx, args[3])
	if !ok {
		return errRes
	}
	start := int(startN)
	num := int(numN)
	if start < 1 || num < 0 {
		return Err(ErrValue, ctx.cellKey(), "REPLACE: invalid start or length")
	}
	runes := []rune(old)
	if start > len(runes)+1 {
		start = len(runes) + 1
	}
	end := start - 1 + num
	if end > len(runes) {
		end = len(runes)
	}
	result := string(runes[:start-1]) + newText + string(runes[end:])
	return Txt(result)
}

// fnSubstitute implements SUBSTITUTE(text, oldText, newText,
// [instanceNum]).
func fnSubstitute(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) < 3 || len(args) > 4 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	text, errRes, ok := scalarText(ev, ctx, args[0])
	if !ok {
		return errRes
	}
	old, errRes, ok := scalarText(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	newText, errRes, ok := scalarText(ev, ctx, args[2])
	if !ok {
		return errRes
	}
	if len(args) == 3 {
		return Txt(strings.ReplaceAll(text, old, newText))
	}
	instN, errRes, ok := scalarNumber(ev, ctx, args[3])
	if !ok {
		return errRes
	}
	inst := int(instN)
	if inst < 1 || old == "" {
		return Err(ErrValue, ctx.cellKey(), "SUBSTITUTE: invalid instance number")
	}
	count := 0
	idx := 0
	for {
		pos := strings.Index(text[idx:], old)
		if pos < 0 {
			return Txt(text)
		}
		abs := idx + pos
		count++
		if count == inst {
			return Txt(text[:abs] + newText + text[abs+len(old):])
		}
		idx = abs + len(old)
	}
}

// fnText implements TEXT(value, format).
func fnText(ev *Evaluator, ctx evalCtx, args []*Expr) CalcResult {
	if len(args) != 2 {
		return Err(ErrError, ctx.cellKey(), "wrong number of arguments")
	}
	v := ev.scalar(ctx, args[0])
	if v.IsError() {
		return v
	}
	format, errRes, ok := scalarText(ev, ctx, args[1])
	if !ok {
		return errRes
	}
	if v.Kind != KindNumber {
		return Txt(ToText(v, ev.wb.Locale))
	}
	return Txt(FormatNumber(v.Number, format, ev.wb.Locale))
}

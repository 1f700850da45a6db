package gridcalc

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrorCode enumerates the spreadsheet-visible calc-layer error taxonomy
// (spec.md §3, §7).
type ErrorCode int

const (
	ErrRef ErrorCode = iota
	ErrValue
	ErrDiv0
	ErrName
	ErrNum
	ErrNA
	ErrError
	ErrCircular
	ErrNImpl
	ErrSpill
)

// String renders the canonical English error token.
func (c ErrorCode) String() string {
	if tok, ok := englishErrorTokens[c]; ok {
		return tok
	}
	return "#ERROR!"
}

// ResultKind tags the variant held by a CalcResult.
type ResultKind int

const (
	KindNumber ResultKind = iota
	KindString
	KindBool
	KindError
	KindRange
	KindEmptyCell
	KindEmptyArg
)

// CalcResult is the evaluator's tagged output value (spec.md §3). Only
// the field matching Kind is meaningful.
type CalcResult struct {
	Kind ResultKind

	Number float64
	Str    string
	Bool   bool

	ErrCode   ErrorCode
	ErrOrigin string // "Sheet!A1" — the cell where the error first occurred
	ErrMsg    string

	RangeLeft  CellCoord
	RangeRight CellCoord
	RangeSheet string
}

// Num, Txt, Boolean, Empty and EmptyArgument are convenience
// constructors mirroring excelize's newXFormulaArg helpers.
func Num(v float64) CalcResult    { return CalcResult{Kind: KindNumber, Number: v} }
func Txt(v string) CalcResult     { return CalcResult{Kind: KindString, Str: v} }
func Boolean(v bool) CalcResult   { return CalcResult{Kind: KindBool, Bool: v} }
func Empty() CalcResult           { return CalcResult{Kind: KindEmptyCell} }
func EmptyArgument() CalcResult   { return CalcResult{Kind: KindEmptyArg} }

// Err builds an error result with an origin cell and message.
func Err(code ErrorCode, origin, msg string) CalcResult {
	return CalcResult{Kind: KindError, ErrCode: code, ErrOrigin: origin, ErrMsg: msg}
}

// IsError reports whether r is any error variant.
func (r CalcResult) IsError() bool { return r.Kind == KindError }

// collator is used for case-insensitive string ordering, per the CalcResult
// ordering law in spec.md §3 ("strings compare case-insensitively").
var collator = collate.New(language.Und, collate.IgnoreCase)

// Compare implements the total ordering required by spec.md §3/§8:
// numbers < strings < booleans (false < true); Empty sorts after Number
// and String; two numbers within one ULP are equal; strings compare
// case-insensitively. Error and Range (Open Question (d), spec.md §9)
// are given an explicit place at the top of the order so the relation is
// total over every CalcResult variant: they compare greater than every
// scalar and Empty, and two instances of the same variant compare equal
// only when their origin/bounds match exactly (otherwise by that field).
func (r CalcResult) Compare(other CalcResult) int {
	rank := func(k ResultKind) int {
		switch k {
		case KindNumber:
			return 0
		case KindString:
			return 1
		case KindBool:
			return 2
		case KindEmptyCell, KindEmptyArg:
			return 3
		case KindError:
			return 4
		case KindRange:
			return 5
		}
		return 6
	}
	rr, ro := rank(r.Kind), rank(other.Kind)
	if rr != ro {
		return cmpInt(rr, ro)
	}
	switch r.Kind {
	case KindNumber:
		return cmpNumberULP(r.Number, other.Number)
	case KindString:
		return collator.CompareString(r.Str, other.Str)
	case KindBool:
		return cmpInt(boolToInt(r.Bool), boolToInt(other.Bool))
	case KindEmptyCell, KindEmptyArg:
		return 0
	case KindError:
		if r.ErrCode != other.ErrCode {
			return cmpInt(int(r.ErrCode), int(other.ErrCode))
		}
		return strings.Compare(r.ErrOrigin, other.ErrOrigin)
	case KindRange:
		if r.RangeSheet != other.RangeSheet {
			return strings.Compare(r.RangeSheet, other.RangeSheet)
		}
		if c := cmpCoord(r.RangeLeft, other.RangeLeft); c != 0 {
			return c
		}
		return cmpCoord(r.RangeRight, other.RangeRight)
	}
	return 0
}

func cmpCoord(a, b CellCoord) int {
	if a.Row != b.Row {
		return cmpInt(a.Row, b.Row)
	}
	return cmpInt(a.Col, b.Col)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ulpTolerance treats two numbers within one ULP of each other (at
// double precision, relative to their magnitude) as equal, per spec.md §3.
const ulpTolerance = 1e-15

func cmpNumberULP(a, b float64) int {
	if a == b {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	scale := a
	if b > a {
		scale = b
	}
	if scale < 0 {
		scale = -scale
	}
	if scale == 0 {
		scale = 1
	}
	if diff <= ulpTolerance*scale {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

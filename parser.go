package gridcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is a recursive-descent parser over a Lexer's token stream,
// building an Expr tree (spec.md §4.4). Its precedence-climbing shape is
// grounded on _examples/broyeztony-karl/parser/parser.go, adapted from a
// general-purpose-language grammar to the spreadsheet formula grammar.
type Parser struct {
	lex  *Lexer
	cur  Token
	peek Token

	anchorSheetID int
	sheetIDs      map[string]int // name -> id, for cross-sheet range validation
}

// NewParser constructs a Parser over src. sheetIDs resolves a sheet-name
// qualifier to a numeric id; pass nil if sheet qualifiers are not
// expected to resolve (they will simply be recorded as an id of -1).
func NewParser(src string, mode LexMode, locale *Locale, lang *Language, anchorSheetID, anchorRow, anchorCol int, sheetIDs map[string]int) *Parser {
	lex := NewLexer(src, mode, locale, lang, anchorRow, anchorCol)
	p := &Parser{lex: lex, anchorSheetID: anchorSheetID, sheetIDs: sheetIDs}
	p.cur = lex.NextToken()
	p.peek = lex.NextToken()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

// Parse parses the full formula and returns an Expr tree. It never
// returns an error: unparseable input becomes a NodeErrorLit node
// (spec.md §4.4).
func (p *Parser) Parse() *Expr {
	e := p.parseComparison()
	if p.cur.Type != TokEOF {
		return errNode(fmt.Sprintf("unexpected trailing input at position %d", p.cur.Span.Start))
	}
	return e
}

func errNode(msg string) *Expr {
	return &Expr{Kind: NodeErrorLit, ErrVal: ErrError, Msg: msg}
}

func (p *Parser) parseComparison() *Expr {
	left := p.parseConcat()
	for p.cur.Type == TokCompare {
		op := compareOp(p.cur.Text)
		p.advance()
		right := p.parseConcat()
		left = &Expr{Kind: NodeComparison, Op: op, Operands: []*Expr{left, right}}
	}
	return left
}

func compareOp(text string) BinOp {
	switch text {
	case "=":
		return OpEq
	case "<>":
		return OpNe
	case "<":
		return OpLt
	case ">":
		return OpGt
	case "<=":
		return OpLe
	case ">=":
		return OpGe
	}
	return OpEq
}

func (p *Parser) parseConcat() *Expr {
	left := p.parseSum()
	for p.cur.Type == TokAnd {
		p.advance()
		right := p.parseSum()
		left = &Expr{Kind: NodeConcat, Operands: []*Expr{left, right}}
	}
	return left
}

func (p *Parser) parseSum() *Expr {
	left := p.parseProduct()
	for p.cur.Type == TokSum {
		op := OpAdd
		if p.cur.Text == "-" {
			op = OpSub
		}
		p.advance()
		right := p.parseProduct()
		left = &Expr{Kind: NodeBinaryArith, Op: op, Operands: []*Expr{left, right}}
	}
	return left
}

func (p *Parser) parseProduct() *Expr {
	left := p.parsePower()
	for p.cur.Type == TokProduct {
		op := OpMul
		if p.cur.Text == "/" {
			op = OpDiv
		}
		p.advance()
		right := p.parsePower()
		left = &Expr{Kind: NodeBinaryArith, Op: op, Operands: []*Expr{left, right}}
	}
	return left
}

func (p *Parser) parsePower() *Expr {
	left := p.parseUnary()
	if p.cur.Type == TokPower {
		p.advance()
		right := p.parsePower() // right-associative
		return &Expr{Kind: NodeBinaryArith, Op: OpPow, Operands: []*Expr{left, right}}
	}
	return left
}

func (p *Parser) parseUnary() *Expr {
	if p.cur.Type == TokSum {
		op := OpAdd
		if p.cur.Text == "-" {
			op = OpSub
		}
		p.advance()
		operand := p.parseUnary()
		return &Expr{Kind: NodeUnary, Op: op, Operands: []*Expr{operand}}
	}
	return p.parsePercent()
}

func (p *Parser) parsePercent() *Expr {
	e := p.parsePrimary()
	for p.cur.Type == TokPercent {
		p.advance()
		e = &Expr{Kind: NodePercent, Operands: []*Expr{e}}
	}
	return e
}

func (p *Parser) parsePrimary() *Expr {
	switch p.cur.Type {
	case TokNumber:
		v := p.cur.Num
		p.advance()
		return &Expr{Kind: NodeNumber, Number: v}
	case TokString:
		v := p.cur.Str
		p.advance()
		return &Expr{Kind: NodeString, Str: v}
	case TokBoolean:
		v := p.cur.Bool
		p.advance()
		return &Expr{Kind: NodeBoolean, Bool: v}
	case TokError:
		v := p.cur.ErrVal
		p.advance()
		return &Expr{Kind: NodeErrorLit, ErrVal: v}
	case TokReference:
		return p.parseReferenceOrRange()
	case TokRange:
		return p.parseReferenceOrRange()
	case TokLParen:
		p.advance()
		inner := p.parseComparison()
		if p.cur.Type != TokRParen {
			return errNode("expected ) to close parenthesized expression")
		}
		p.advance()
		return inner
	case TokLBrace:
		return p.parseArrayLiteral()
	case TokIdent:
		return p.parseIdentPrimary()
	}
	msg := fmt.Sprintf("unexpected token at position %d", p.cur.Span.Start)
	p.advance()
	return errNode(msg)
}

// parseArrayLiteral consumes a {...} array literal and reports it as
// not implemented (spec.md §4.7, §8 — array formulas are a Non-goal).
func (p *Parser) parseArrayLiteral() *Expr {
	depth := 0
	for {
		switch p.cur.Type {
		case TokLBrace:
			depth++
			p.advance()
		case TokRBrace:
			depth--
			p.advance()
			if depth == 0 {
				return &Expr{Kind: NodeErrorLit, ErrVal: ErrNImpl, Msg: "Arrays not implemented"}
			}
		case TokEOF:
			return &Expr{Kind: NodeErrorLit, ErrVal: ErrNImpl, Msg: "Arrays not implemented"}
		default:
			p.advance()
		}
	}
}

// parseIdentPrimary handles a function call ("IDENT(args)") or a
// defined-name reference (a bare IDENT not followed by a paren).
func (p *Parser) parseIdentPrimary() *Expr {
	name := p.cur.Text
	p.advance()
	if p.cur.Type != TokLParen {
		return &Expr{Kind: NodeDefinedName, Name: name}
	}
	p.advance() // consume (
	var args []*Expr
	if p.cur.Type == TokRParen {
		p.advance()
		return &Expr{Kind: NodeFuncCall, FuncName: name, Args: args}
	}
	for {
		if p.cur.Type == TokComma || p.cur.Type == TokSemicolon || p.cur.Type == TokRParen {
			args = append(args, &Expr{Kind: NodeEmptyArg})
		} else {
			args = append(args, p.parseComparison())
		}
		if p.cur.Type == TokComma || p.cur.Type == TokSemicolon {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != TokRParen {
		return errNode("expected ) to close function call " + name)
	}
	p.advance()
	return &Expr{Kind: NodeFuncCall, FuncName: name, Args: args}
}

// parseReferenceOrRange consumes a TokReference or TokRange, resolving
// its sheet qualifier (if any) to a sheet id via p.sheetIDs.
func (p *Parser) parseReferenceOrRange() *Expr {
	tok := p.cur
	p.advance()
	if tok.Type == TokReference {
		return &Expr{Kind: NodeReference, Ref: p.resolveRef(tok.Ref)}
	}
	// TokRange: the lexer only accepts a qualifier on the left endpoint,
	// and it applies to both endpoints.
	left := RefToken{Sheet: tok.Range.Sheet, HasSheet: tok.Range.HasSheet, Row: tok.Range.Left.Row, Col: tok.Range.Left.Col, AbsRow: tok.Range.Left.AbsRow, AbsCol: tok.Range.Left.AbsCol}
	right := tok.Range.Right
	return &Expr{
		Kind:       NodeRangeNode,
		RangeLeft:  p.resolveRef(left),
		RangeRight: p.resolveRef(RefToken{Row: right.Row, Col: right.Col, AbsRow: right.AbsRow, AbsCol: right.AbsCol, Sheet: left.Sheet, HasSheet: left.HasSheet}),
	}
}

func (p *Parser) resolveRef(rt RefToken) Ref {
	if !rt.HasSheet {
		return Ref{HasSheet: false, Row: rt.Row, Col: rt.Col, AbsRow: rt.AbsRow, AbsCol: rt.AbsCol}
	}
	id := -1
	if p.sheetIDs != nil {
		if found, ok := p.sheetIDs[rt.Sheet]; ok {
			id = found
		}
	}
	return Ref{SheetID: id, HasSheet: true, Row: rt.Row, Col: rt.Col, AbsRow: rt.AbsRow, AbsCol: rt.AbsCol}
}

// ParseFormula is the package-level convenience entry point: lex+parse
// src (without its leading "=") into an Expr tree, anchored at
// (anchorSheetID,row,col), resolving sheet qualifiers via sheetIDs.
func ParseFormula(src string, mode LexMode, locale *Locale, lang *Language, anchorSheetID, row, col int, sheetIDs map[string]int) *Expr {
	p := NewParser(src, mode, locale, lang, anchorSheetID, row, col, sheetIDs)
	return p.Parse()
}

// ---- Stringifier ----

// StringifyOpts controls canonical A1 text rendering.
type StringifyOpts struct {
	Locale        *Locale
	Language      *Language
	AnchorSheetID int
	AnchorRow     int
	AnchorCol     int
	SheetNames    map[int]string // id -> name, for qualifying cross-sheet refs
}

// Stringify renders e back to canonical formula text relative to the
// given anchor (spec.md §4.4). The result always round-trips through
// Parse to an equal tree up to identifier case and spacing (spec.md §8
// law 1).
func Stringify(e *Expr, opts StringifyOpts) string {
	if opts.Locale == nil {
		opts.Locale = &EnglishLocale
	}
	if opts.Language == nil {
		opts.Language = EnglishLanguage
	}
	var sb strings.Builder
	writeExpr(&sb, e, opts)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e *Expr, o StringifyOpts) {
	if e == nil {
		return
	}
	switch e.Kind {
	case NodeNumber:
		sb.WriteString(formatLocaleNumber(e.Number, o.Locale))
	case NodeString:
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(e.Str, `"`, `""`))
		sb.WriteByte('"')
	case NodeBoolean:
		sb.WriteString(o.Language.BooleanText(e.Bool))
	case NodeErrorLit:
		sb.WriteString(o.Language.ErrorToken(e.ErrVal))
	case NodeReference:
		writeRefQualifier(sb, e.Ref, o)
		sb.WriteString(FormatA1Ref(CellRef{Row: e.Ref.Row, Col: e.Ref.Col, AbsRow: e.Ref.AbsRow, AbsCol: e.Ref.AbsCol}))
	case NodeRangeNode:
		writeRefQualifier(sb, e.RangeLeft, o)
		sb.WriteString(FormatA1Ref(CellRef{Row: e.RangeLeft.Row, Col: e.RangeLeft.Col, AbsRow: e.RangeLeft.AbsRow, AbsCol: e.RangeLeft.AbsCol}))
		sb.WriteByte(':')
		sb.WriteString(FormatA1Ref(CellRef{Row: e.RangeRight.Row, Col: e.RangeRight.Col, AbsRow: e.RangeRight.AbsRow, AbsCol: e.RangeRight.AbsCol}))
	case NodeUnary:
		if e.Op == OpSub {
			sb.WriteByte('-')
		} else {
			sb.WriteByte('+')
		}
		writeExpr(sb, e.Operands[0], o)
	case NodeBinaryArith:
		writeExpr(sb, e.Operands[0], o)
		sb.WriteString(arithOpText(e.Op))
		writeExpr(sb, e.Operands[1], o)
	case NodeComparison:
		writeExpr(sb, e.Operands[0], o)
		sb.WriteString(compareOpText(e.Op))
		writeExpr(sb, e.Operands[1], o)
	case NodeConcat:
		writeExpr(sb, e.Operands[0], o)
		sb.WriteByte('&')
		writeExpr(sb, e.Operands[1], o)
	case NodePercent:
		writeExpr(sb, e.Operands[0], o)
		sb.WriteByte('%')
	case NodeFuncCall:
		sb.WriteString(o.Language.TranslateFunction(e.FuncName))
		sb.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeExpr(sb, a, o)
		}
		sb.WriteByte(')')
	case NodeDefinedName:
		sb.WriteString(e.Name)
	case NodeEmptyArg:
		// nothing: an empty slot between commas
	}
}

func writeRefQualifier(sb *strings.Builder, r Ref, o StringifyOpts) {
	if !r.HasSheet {
		return
	}
	name := ""
	if o.SheetNames != nil {
		name = o.SheetNames[r.SheetID]
	}
	sb.WriteString(QuoteSheetName(name))
	sb.WriteByte('!')
}

func arithOpText(op BinOp) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

func compareOpText(op BinOp) string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	}
	return "?"
}

func formatLocaleNumber(v float64, loc *Locale) string {
	text := strconv.FormatFloat(v, 'g', -1, 64)
	if loc.DecimalSeparator != "." {
		text = strings.ReplaceAll(text, ".", loc.DecimalSeparator)
	}
	return text
}

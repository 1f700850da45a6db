package gridcalc

import (
	"strconv"
	"strings"
	"unicode"
)

// Lexer turns formula source text into a Token stream (spec.md §4.3).
// It is grounded on the reader-based scanner shape used throughout
// _examples/broyeztony-karl/lexer/lexer.go (readChar/peekChar over an
// index into the source), adapted from a general-purpose language
// tokenizer to the spreadsheet reference/operator grammar — this engine
// builds its own lexer rather than delegating to github.com/xuri/efp,
// since that is exactly the component spec.md §4.3 assigns us (see
// DESIGN.md).
type Lexer struct {
	input    []rune
	pos      int
	mode     LexMode
	locale   *Locale
	language *Language

	anchorRow, anchorCol int // used to resolve R1C1 bare R/C forms
}

// NewLexer constructs a Lexer over src. anchorRow/anchorCol are only
// consulted in ModeR1C1, to resolve bare "R"/"C" components.
func NewLexer(src string, mode LexMode, locale *Locale, lang *Language, anchorRow, anchorCol int) *Lexer {
	if locale == nil {
		locale = &EnglishLocale
	}
	if lang == nil {
		lang = EnglishLanguage
	}
	return &Lexer{
		input:     []rune(src),
		mode:      mode,
		locale:    locale,
		language:  lang,
		anchorRow: anchorRow,
		anchorCol: anchorCol,
	}
}

func (l *Lexer) at(i int) rune {
	if i < 0 || i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) cur() rune { return l.at(l.pos) }

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.cur()) {
		l.pos++
	}
}

// NextToken scans and returns the next token, advancing the lexer.
func (l *Lexer) NextToken() Token {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokEOF, Span: Span{start, start}}
	}

	ch := l.cur()
	switch {
	case ch == '"':
		return l.scanString(start)
	case ch == '#':
		return l.scanErrorToken(start)
	case ch == '\'':
		return l.scanQuotedSheetPrefixed(start)
	case ch == '$' || isWordStart(ch):
		return l.scanWordOrReference(start)
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.at(l.pos+1))):
		return l.scanNumber(start)
	}

	// Single/double-char operators and punctuation.
	two := string(ch) + string(l.at(l.pos + 1))
	switch two {
	case "<=", ">=", "<>":
		l.pos += 2
		return Token{Type: TokCompare, Text: two, Span: Span{start, l.pos}}
	}
	switch ch {
	case '<', '>', '=':
		l.pos++
		return Token{Type: TokCompare, Text: string(ch), Span: Span{start, l.pos}}
	case '+', '-':
		l.pos++
		return Token{Type: TokSum, Text: string(ch), Span: Span{start, l.pos}}
	case '*', '/':
		l.pos++
		return Token{Type: TokProduct, Text: string(ch), Span: Span{start, l.pos}}
	case '^':
		l.pos++
		return Token{Type: TokPower, Span: Span{start, l.pos}}
	case '(':
		l.pos++
		return Token{Type: TokLParen, Span: Span{start, l.pos}}
	case ')':
		l.pos++
		return Token{Type: TokRParen, Span: Span{start, l.pos}}
	case '[':
		l.pos++
		return Token{Type: TokLBrack, Span: Span{start, l.pos}}
	case ']':
		l.pos++
		return Token{Type: TokRBrack, Span: Span{start, l.pos}}
	case '{':
		l.pos++
		return Token{Type: TokLBrace, Span: Span{start, l.pos}}
	case '}':
		l.pos++
		return Token{Type: TokRBrace, Span: Span{start, l.pos}}
	case ',':
		l.pos++
		return Token{Type: TokComma, Span: Span{start, l.pos}}
	case ';':
		l.pos++
		return Token{Type: TokSemicolon, Span: Span{start, l.pos}}
	case ':':
		l.pos++
		return Token{Type: TokColon, Span: Span{start, l.pos}}
	case '!':
		l.pos++
		return Token{Type: TokBang, Span: Span{start, l.pos}}
	case '%':
		l.pos++
		return Token{Type: TokPercent, Span: Span{start, l.pos}}
	case '&':
		l.pos++
		return Token{Type: TokAnd, Span: Span{start, l.pos}}
	}

	l.pos++
	return Token{Type: TokIllegal, Text: "unexpected character " + strconv.QuoteRune(ch), Span: Span{start, l.pos}}
}

func isWordStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '\\'
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '.' || ch == '\\'
}

func (l *Lexer) scanString(start int) Token {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		if l.cur() == '"' {
			if l.at(l.pos+1) == '"' {
				sb.WriteRune('"')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokString, Str: sb.String(), Span: Span{start, l.pos}}
		}
		sb.WriteRune(l.cur())
		l.pos++
	}
	return Token{Type: TokIllegal, Text: "unterminated string literal", Span: Span{start, l.pos}}
}

// scanErrorToken scans a "#...!" or "#...?" style error token and
// resolves it via the active language's error-token table.
func (l *Lexer) scanErrorToken(start int) Token {
	p := l.pos + 1
	for p < len(l.input) && l.at(p) != '!' && l.at(p) != '?' && !unicode.IsSpace(l.at(p)) && l.at(p) != ')' && l.at(p) != ',' {
		p++
	}
	if p < len(l.input) && (l.at(p) == '!' || l.at(p) == '?') {
		p++
	}
	text := string(l.input[l.pos:p])
	if code, ok := l.language.ErrorCodeForToken(text); ok {
		l.pos = p
		return Token{Type: TokError, ErrVal: code, Text: text, Span: Span{start, l.pos}}
	}
	l.pos = p
	return Token{Type: TokIllegal, Text: "unrecognized error token " + text, Span: Span{start, l.pos}}
}

// scanQuotedSheetPrefixed handles a leading 'Sheet Name'! qualifier.
func (l *Lexer) scanQuotedSheetPrefixed(start int) Token {
	p := l.pos + 1
	var sb strings.Builder
	closed := false
	for p < len(l.input) {
		if l.at(p) == '\'' {
			if l.at(p+1) == '\'' {
				sb.WriteRune('\'')
				p += 2
				continue
			}
			p++
			closed = true
			break
		}
		sb.WriteRune(l.at(p))
		p++
	}
	if !closed || l.at(p) != '!' {
		l.pos = p
		return Token{Type: TokIllegal, Text: "expected ! after quoted sheet name", Span: Span{start, l.pos}}
	}
	p++ // consume '!'
	sheet := sb.String()
	return l.scanReferenceOrRange(start, p, sheet, true)
}

// scanWordOrReference scans an identifier-shaped run (and, in ModeA1,
// tries a reference interpretation of it) or an unquoted sheet-name
// qualifier.
func (l *Lexer) scanWordOrReference(start int) Token {
	p := l.pos
	// Absolute-column reference attempt ("$A$1"): never a valid
	// identifier start, so commit to reference parsing.
	if l.cur() == '$' {
		if ref, end, ok := l.tryReference(p); ok {
			return l.finishReferenceOrRange(start, end, "", false, ref)
		}
		l.pos++
		return Token{Type: TokIllegal, Text: "malformed reference", Span: Span{start, l.pos}}
	}

	wordEnd := p
	for wordEnd < len(l.input) && isWordChar(l.at(wordEnd)) {
		wordEnd++
	}
	word := string(l.input[p:wordEnd])

	// Unquoted sheet-name qualifier: word immediately followed by '!'.
	if l.at(wordEnd) == '!' {
		return l.scanReferenceOrRange(start, wordEnd+1, word, true)
	}

	// A word followed by '(' (whitespace in between is allowed) is always
	// a function call, never a reference, even if it is reference-shaped
	// (e.g. LOG10).
	nextNonSpace := wordEnd
	for nextNonSpace < len(l.input) && unicode.IsSpace(l.at(nextNonSpace)) {
		nextNonSpace++
	}
	if l.at(nextNonSpace) == '(' {
		return l.identOrLiteralToken(start, wordEnd, word)
	}

	if l.mode == ModeA1 {
		if ref, end, ok := l.tryReference(p); ok && end == wordEnd {
			return l.finishReferenceOrRange(start, end, "", false, ref)
		}
	} else {
		if ref, end, ok := l.tryR1C1Reference(p); ok && end == wordEnd {
			return l.finishReferenceOrRange(start, end, "", false, ref)
		}
	}

	l.pos = wordEnd
	return l.identOrLiteralToken(start, wordEnd, word)
}

// identOrLiteralToken classifies a scanned word as BOOLEAN, via the
// active language, or a canonical-cased IDENT.
func (l *Lexer) identOrLiteralToken(start, end int, word string) Token {
	l.pos = end
	if v, ok := l.language.BooleanLiteral(word); ok {
		return Token{Type: TokBoolean, Bool: v, Text: word, Span: Span{start, end}}
	}
	return Token{Type: TokIdent, Text: strings.ToUpper(word), Span: Span{start, end}}
}

// scanReferenceOrRange lexes the reference or range that must follow a
// sheet qualifier (already consumed, ending at bodyStart).
func (l *Lexer) scanReferenceOrRange(start, bodyStart int, sheet string, hasSheet bool) Token {
	var ref RefToken
	var end int
	var ok bool
	if l.mode == ModeA1 {
		var cr CellRef
		cr, end, ok = l.tryReference(bodyStart)
		ref = refTokenFrom(cr)
	} else {
		var cr CellRef
		cr, end, ok = l.tryR1C1Reference(bodyStart)
		ref = refTokenFrom(cr)
	}
	if !ok {
		l.pos = bodyStart
		return Token{Type: TokIllegal, Text: "expected a reference after sheet qualifier", Span: Span{start, l.pos}}
	}
	return l.finishReferenceOrRange(start, end, sheet, hasSheet, ref)
}

func refTokenFrom(cr CellRef) RefToken {
	return RefToken{Row: cr.Row, Col: cr.Col, AbsRow: cr.AbsRow, AbsCol: cr.AbsCol}
}

// finishReferenceOrRange checks for a contiguous ":" + second reference
// forming a RANGE token; otherwise emits a single REFERENCE token.
func (l *Lexer) finishReferenceOrRange(start, refEnd int, sheet string, hasSheet bool, left RefToken) Token {
	if l.at(refEnd) == ':' {
		var right CellRef
		var end int
		var ok bool
		if l.mode == ModeA1 {
			right, end, ok = l.tryReference(refEnd + 1)
		} else {
			right, end, ok = l.tryR1C1Reference(refEnd + 1)
		}
		if ok {
			l.pos = end
			return Token{
				Type: TokRange,
				Range: RangeTok{
					Sheet: sheet, HasSheet: hasSheet,
					Left: left, Right: refTokenFrom(right),
				},
				Span: Span{start, l.pos},
			}
		}
	}
	l.pos = refEnd
	return Token{
		Type:  TokReference,
		Ref:   RefToken{Sheet: sheet, HasSheet: hasSheet, Row: left.Row, Col: left.Col, AbsRow: left.AbsRow, AbsCol: left.AbsCol},
		Span:  Span{start, l.pos},
	}
}

// tryReference attempts to parse an A1 reference starting at p, returning
// the position just past it on success.
func (l *Lexer) tryReference(p int) (CellRef, int, bool) {
	var ref CellRef
	i := p
	if l.at(i) == '$' {
		ref.AbsCol = true
		i++
	}
	colStart := i
	for i < len(l.input) && unicode.IsLetter(l.at(i)) {
		i++
	}
	if i == colStart {
		return CellRef{}, p, false
	}
	colName := string(l.input[colStart:i])
	col, err := ColumnNameToNumber(colName)
	if err != nil {
		return CellRef{}, p, false
	}
	if l.at(i) == '$' {
		ref.AbsRow = true
		i++
	}
	rowStart := i
	for i < len(l.input) && unicode.IsDigit(l.at(i)) {
		i++
	}
	if i == rowStart {
		return CellRef{}, p, false
	}
	row, err := strconv.Atoi(string(l.input[rowStart:i]))
	if err != nil || !ValidRow(row) || !ValidColumn(col) {
		return CellRef{}, p, false
	}
	ref.Row, ref.Col = row, col
	return ref, i, true
}

// tryR1C1Reference attempts to parse an R1C1 reference starting at p.
func (l *Lexer) tryR1C1Reference(p int) (CellRef, int, bool) {
	i := p
	if l.at(i) != 'R' && l.at(i) != 'r' {
		return CellRef{}, p, false
	}
	i++
	row, absRow, next, ok := l.tryR1C1Component(i, l.anchorRow)
	if !ok {
		return CellRef{}, p, false
	}
	i = next
	if l.at(i) != 'C' && l.at(i) != 'c' {
		return CellRef{}, p, false
	}
	i++
	col, absCol, next, ok := l.tryR1C1Component(i, l.anchorCol)
	if !ok {
		return CellRef{}, p, false
	}
	i = next
	if !ValidRow(row) || !ValidColumn(col) {
		return CellRef{}, p, false
	}
	return CellRef{Row: row, Col: col, AbsRow: absRow, AbsCol: absCol}, i, true
}

func (l *Lexer) tryR1C1Component(i, anchor int) (value int, absolute bool, next int, ok bool) {
	if l.at(i) == '[' {
		j := i + 1
		start := j
		if l.at(j) == '-' {
			j++
		}
		for unicode.IsDigit(l.at(j)) {
			j++
		}
		if j == start || l.at(j) != ']' {
			return 0, false, i, false
		}
		offset, err := strconv.Atoi(string(l.input[start:j]))
		if err != nil {
			return 0, false, i, false
		}
		return anchor + offset, false, j + 1, true
	}
	start := i
	for unicode.IsDigit(l.at(i)) {
		i++
	}
	if i == start {
		return anchor, false, i, true
	}
	value, err := strconv.Atoi(string(l.input[start:i]))
	if err != nil {
		return 0, false, i, false
	}
	return value, true, i, true
}

func (l *Lexer) scanNumber(start int) Token {
	p := l.pos
	for unicode.IsDigit(l.at(p)) {
		p++
	}
	if l.at(p) == '.' {
		p++
		for unicode.IsDigit(l.at(p)) {
			p++
		}
	}
	if l.at(p) == 'e' || l.at(p) == 'E' {
		q := p + 1
		if l.at(q) == '+' || l.at(q) == '-' {
			q++
		}
		if unicode.IsDigit(l.at(q)) {
			q++
			for unicode.IsDigit(l.at(q)) {
				q++
			}
			p = q
		}
	}
	text := string(l.input[l.pos:p])
	v, err := strconv.ParseFloat(text, 64)
	l.pos = p
	if err != nil {
		return Token{Type: TokIllegal, Text: "invalid number literal " + text, Span: Span{start, p}}
	}
	return Token{Type: TokNumber, Num: v, Span: Span{start, p}}
}

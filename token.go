package gridcalc

// TokenType enumerates the lexical categories produced by the Lexer
// (spec.md §4.3).
type TokenType int

const (
	TokEOF TokenType = iota
	TokIllegal

	TokIdent
	TokString
	TokNumber
	TokBoolean
	TokError

	TokCompare // < > = <= >= <>
	TokSum     // + -
	TokProduct // * /
	TokPower   // ^

	TokLParen
	TokRParen
	TokLBrack
	TokRBrack
	TokLBrace
	TokRBrace

	TokComma
	TokSemicolon
	TokColon
	TokBang
	TokPercent
	TokAnd // &

	TokReference
	TokRange
)

// LexMode selects A1 or R1C1 reference grammar for the Lexer.
type LexMode int

const (
	ModeA1 LexMode = iota
	ModeR1C1
)

// Span marks a token's position in the source text as a half-open range
// [Start, End) of rune (character) offsets.
type Span struct {
	Start, End int
}

// Token is one lexical unit plus its source span and typed payload. Only
// the fields relevant to Type are populated.
type Token struct {
	Type TokenType
	Span Span

	// generic text payload, used by TokIdent (canonical uppercased name),
	// TokCompare/TokSum/TokProduct (the operator spelling), TokIllegal
	// (diagnostic message)
	Text string

	Str    string  // TokString: unescaped content
	Num    float64 // TokNumber
	Bool   bool    // TokBoolean
	ErrVal ErrorCode // TokError

	Ref   RefToken // TokReference
	Range RangeTok // TokRange
}

// RefToken is the payload of a TokReference token.
type RefToken struct {
	Sheet    string
	HasSheet bool
	Row, Col int
	AbsRow   bool
	AbsCol   bool
}

// RangeTok is the payload of a TokRange token: two endpoints, sharing the
// sheet qualifier carried on Sheet, which is the left endpoint's
// qualifier. The lexer does not accept a qualifier on the right
// endpoint, so "Sheet1!A1:Sheet1!B2" does not lex as one TokRange.
type RangeTok struct {
	Sheet    string
	HasSheet bool
	Left     RefToken
	Right    RefToken
}

package gridcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxColumns and MaxRows bound the addressable grid, matching the
// spreadsheet format this engine targets.
const (
	MaxColumns = 16384
	MaxRows    = 1048576
)

// ColumnNumberToName converts a 1-based column number to its base-26
// letter form (1 -> "A", 26 -> "Z", 27 -> "AA", 16384 -> "XFD").
func ColumnNumberToName(col int) (string, error) {
	if col < 1 || col > MaxColumns {
		return "", fmt.Errorf("column number %d out of range [1,%d]", col, MaxColumns)
	}
	var buf []byte
	for col > 0 {
		col--
		buf = append([]byte{byte('A' + col%26)}, buf...)
		col /= 26
	}
	return string(buf), nil
}

// ColumnNameToNumber converts a base-26 column letter string (case
// insensitive) to its 1-based column number.
func ColumnNameToNumber(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		case c >= 'A' && c <= 'Z':
		default:
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		col = col*26 + int(c-'A'+1)
		if col > MaxColumns {
			return 0, fmt.Errorf("column name %q out of range", name)
		}
	}
	return col, nil
}

// ValidRow reports whether r is a legal 1-based row number.
func ValidRow(r int) bool { return r >= 1 && r <= MaxRows }

// ValidColumn reports whether c is a legal 1-based column number.
func ValidColumn(c int) bool { return c >= 1 && c <= MaxColumns }

// CellCoord identifies a single cell within a sheet, independent of
// whether the reference that produced it was relative or absolute.
type CellCoord struct {
	Row, Col int
}

// CellRef is a parsed A1 (or R1C1) reference, carrying the relative /
// absolute bits for each coordinate and an optional sheet qualifier.
type CellRef struct {
	Sheet     string // empty when unqualified
	HasSheet  bool
	Row, Col  int
	AbsRow    bool
	AbsCol    bool
}

// ParseA1Ref parses an unqualified A1-style reference such as "$A$1",
// "B12" or "AA7". Sheet qualification, if any, must already have been
// stripped by the caller (the lexer handles that, see lexer.go).
func ParseA1Ref(s string) (CellRef, error) {
	i := 0
	var ref CellRef
	if i < len(s) && s[i] == '$' {
		ref.AbsCol = true
		i++
	}
	start := i
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i == start {
		return CellRef{}, fmt.Errorf("invalid reference %q: missing column letters", s)
	}
	colName := s[start:i]
	col, err := ColumnNameToNumber(colName)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid reference %q: %w", s, err)
	}
	ref.Col = col

	if i < len(s) && s[i] == '$' {
		ref.AbsRow = true
		i++
	}
	rowStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == rowStart || i != len(s) {
		return CellRef{}, fmt.Errorf("invalid reference %q: missing or trailing row digits", s)
	}
	row, err := strconv.Atoi(s[rowStart:i])
	if err != nil || !ValidRow(row) || !ValidColumn(col) {
		return CellRef{}, fmt.Errorf("invalid reference %q: row/column out of range", s)
	}
	ref.Row = row
	return ref, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// FormatA1Ref renders a CellRef back to canonical A1 text relative to no
// particular anchor (absolute markers are rendered literally; relative
// coordinates are rendered as plain numbers). The stringifier in
// parser.go renders every reference and range endpoint through it.
func FormatA1Ref(ref CellRef) string {
	var sb strings.Builder
	if ref.AbsCol {
		sb.WriteByte('$')
	}
	colName, _ := ColumnNumberToName(ref.Col)
	sb.WriteString(colName)
	if ref.AbsRow {
		sb.WriteByte('$')
	}
	sb.WriteString(strconv.Itoa(ref.Row))
	return sb.String()
}

// ParseR1C1Ref parses an R1C1-style reference: "R[n]C[m]" with brackets
// denoting relative offsets (resolved against anchorRow/anchorCol) and
// bare digits denoting an absolute coordinate. "-" is allowed inside
// brackets for negative offsets.
func ParseR1C1Ref(s string, anchorRow, anchorCol int) (CellRef, error) {
	i := 0
	if i >= len(s) || (s[i] != 'R' && s[i] != 'r') {
		return CellRef{}, fmt.Errorf("invalid R1C1 reference %q: missing R", s)
	}
	i++
	row, absRow, next, err := parseR1C1Component(s, i, anchorRow)
	if err != nil {
		return CellRef{}, err
	}
	i = next
	if i >= len(s) || (s[i] != 'C' && s[i] != 'c') {
		return CellRef{}, fmt.Errorf("invalid R1C1 reference %q: missing C", s)
	}
	i++
	col, absCol, next, err := parseR1C1Component(s, i, anchorCol)
	if err != nil {
		return CellRef{}, err
	}
	if next != len(s) {
		return CellRef{}, fmt.Errorf("invalid R1C1 reference %q: trailing characters", s)
	}
	if !ValidRow(row) || !ValidColumn(col) {
		return CellRef{}, fmt.Errorf("R1C1 reference %q out of range", s)
	}
	return CellRef{Row: row, Col: col, AbsRow: absRow, AbsCol: absCol}, nil
}

// parseR1C1Component parses the numeric part following R or C. With no
// brackets, the number is an absolute 1-based coordinate (and a bare "R"
// or "C" with no digits at all means "same as anchor", i.e. offset 0,
// absolute is false — it's a relative reference to the anchor's own row
// or column).
func parseR1C1Component(s string, i int, anchor int) (value int, absolute bool, next int, err error) {
	if i < len(s) && s[i] == '[' {
		j := i + 1
		start := j
		if j < len(s) && s[j] == '-' {
			j++
		}
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == start || j >= len(s) || s[j] != ']' {
			return 0, false, 0, fmt.Errorf("invalid R1C1 offset in %q", s)
		}
		offset, convErr := strconv.Atoi(s[start:j])
		if convErr != nil {
			return 0, false, 0, fmt.Errorf("invalid R1C1 offset in %q: %w", s, convErr)
		}
		return anchor + offset, false, j + 1, nil
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		// Bare R or C: relative reference to the anchor's own row/col.
		return anchor, false, i, nil
	}
	value, convErr := strconv.Atoi(s[start:i])
	if convErr != nil {
		return 0, false, 0, fmt.Errorf("invalid R1C1 coordinate in %q: %w", s, convErr)
	}
	return value, true, i, nil
}

// sheetNameNeedsQuoting reports whether a sheet name must be wrapped in
// single quotes when qualifying a reference, per spec.md §4.1.
func sheetNameNeedsQuoting(name string) bool {
	return strings.ContainsAny(name, " ()'$,;-+{}")
}

// QuoteSheetName renders a sheet name for use as a reference qualifier,
// quoting and escaping embedded quotes as needed.
func QuoteSheetName(name string) string {
	if !sheetNameNeedsQuoting(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// UnquoteSheetName reverses QuoteSheetName: given the raw text between
// (and not including) a leading/trailing "'" pair, unescapes doubled
// quotes. Callers must strip the surrounding quotes first.
func UnquoteSheetName(escaped string) string {
	return strings.ReplaceAll(escaped, "''", "'")
}

// invalidSheetNameChars are forbidden anywhere in a sheet name.
const invalidSheetNameChars = `\/*[]:?`

// ValidSheetName reports whether name is an acceptable, non-empty sheet
// name per spec.md §3.
func ValidSheetName(name string) bool {
	if name == "" || len(name) > 31 {
		return false
	}
	return !strings.ContainsAny(name, invalidSheetNameChars)
}

// looksLikeReference reports whether s would parse as an A1 or R1C1
// reference; used by ValidDefinedName to reject ambiguous names.
func looksLikeReference(s string) bool {
	if _, err := ParseA1Ref(s); err == nil {
		return true
	}
	if _, err := ParseR1C1Ref(s, 1, 1); err == nil {
		return true
	}
	upper := strings.ToUpper(s)
	return upper == "R" || upper == "C"
}

// ValidDefinedName reports whether name is a legal defined-name
// identifier per spec.md §4.1.
func ValidDefinedName(name string) bool {
	if len(name) < 1 || len(name) > 255 {
		return false
	}
	first := name[0]
	if !isAlpha(first) && first != '_' && first != '\\' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlpha(c) || (c >= '0' && c <= '9') || c == '_' || c == '.' {
			continue
		}
		return false
	}
	upper := strings.ToUpper(name)
	if upper == "TRUE" || upper == "FALSE" {
		return false
	}
	if looksLikeReference(name) {
		return false
	}
	return true
}

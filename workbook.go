package gridcalc

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkbookKind affects whether volatile functions (TODAY, NOW, RAND) are
// permitted during evaluation (spec.md §4.7, §6).
type WorkbookKind int

const (
	KindGeneral WorkbookKind = iota
	KindPlanCalculation
	KindPayoutProfile
)

func (k WorkbookKind) allowsVolatile() bool {
	return k == KindGeneral
}

// Clock is the injected millisecond-clock effect consumed synchronously
// by date/time functions (spec.md §5).
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Style is the subset of cell styling the evaluator must itself consult
// (number display format); the rest of the styling/color subsystem is an
// external collaborator per spec.md §1.
type Style struct {
	NumberFormat string
}

// CellKind tags a Cell's variant (spec.md §3). Pre- and post-evaluation
// formula variants are folded into a single CellFormula kind carrying an
// optional Cached result, per the allowance in spec.md §9's Design Notes.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellBool
	CellErrorVal
	CellSharedString
	CellFormula
)

// Cell is a tagged variant (spec.md §3). Only the fields relevant to
// Kind are populated.
type Cell struct {
	Kind  CellKind
	Style int

	Number    float64
	Bool      bool
	ErrCode   ErrorCode
	StrIndex  int
	FormulaID int
	Cached    *CalcResult
}

// IsFormula reports whether the cell holds a formula (evaluated or not).
func (c Cell) IsFormula() bool { return c.Kind == CellFormula }

// Sheet is one worksheet: a sparse row->col->Cell map plus the tracked
// dimension and freeze-pane counts (spec.md §3).
type Sheet struct {
	ID   int
	Name string

	rows map[int]map[int]*Cell

	FrozenRows int
	FrozenCols int

	MinRow, MaxRow, MinCol, MaxCol int
}

func newSheet(id int, name string) *Sheet {
	return &Sheet{ID: id, Name: name, rows: make(map[int]map[int]*Cell), MinRow: 1, MaxRow: 1, MinCol: 1, MaxCol: 1}
}

// CellAt returns the cell at (row,col), or nil if it has never been set.
func (s *Sheet) CellAt(row, col int) *Cell {
	r, ok := s.rows[row]
	if !ok {
		return nil
	}
	return r[col]
}

func (s *Sheet) setCellAt(row, col int, c *Cell) {
	if len(s.rows) == 0 {
		s.MinRow, s.MaxRow, s.MinCol, s.MaxCol = row, row, col, col
	}
	r, ok := s.rows[row]
	if !ok {
		r = make(map[int]*Cell)
		s.rows[row] = r
	}
	r[col] = c
	s.growDimension(row, col)
}

func (s *Sheet) growDimension(row, col int) {
	if row < s.MinRow {
		s.MinRow = row
	}
	if row > s.MaxRow {
		s.MaxRow = row
	}
	if col < s.MinCol {
		s.MinCol = col
	}
	if col > s.MaxCol {
		s.MaxCol = col
	}
}

// removeCellAt deletes the cell, then — if it sat on a dimension edge —
// rescans the sparse map to recompute that edge (spec.md §4.6).
func (s *Sheet) removeCellAt(row, col int) {
	if r, ok := s.rows[row]; ok {
		delete(r, col)
		if len(r) == 0 {
			delete(s.rows, row)
		}
	}
	onEdge := row == s.MinRow || row == s.MaxRow || col == s.MinCol || col == s.MaxCol
	if onEdge {
		s.recomputeDimension()
	}
}

func (s *Sheet) recomputeDimension() {
	if len(s.rows) == 0 {
		s.MinRow, s.MaxRow, s.MinCol, s.MaxCol = 1, 1, 1, 1
		return
	}
	first := true
	for row, cols := range s.rows {
		for col := range cols {
			if first {
				s.MinRow, s.MaxRow, s.MinCol, s.MaxCol = row, row, col, col
				first = false
				continue
			}
			s.growDimension(row, col)
		}
	}
}

// clear removes every cell, resetting the dimension to an empty sheet.
func (s *Sheet) clear() {
	s.rows = make(map[int]map[int]*Cell)
	s.MinRow, s.MaxRow, s.MinCol, s.MaxCol = 1, 1, 1, 1
}

// ForEachFormula calls fn for every formula cell on the sheet, in
// (row,column) order, matching the Recomputation Driver's visitation
// order guarantee (spec.md §5).
func (s *Sheet) ForEachFormula(fn func(row, col int, c *Cell)) {
	rows := sortedKeys(s.rows)
	for _, row := range rows {
		cols := sortedKeys(s.rows[row])
		for _, col := range cols {
			c := s.rows[row][col]
			if c != nil && c.Kind == CellFormula {
				fn(row, col, c)
			}
		}
	}
}

// Workbook is the root data model: sheets, the shared-string pool, the
// style table, and the per-sheet parsed-formula arrays (spec.md §3).
type Workbook struct {
	mu sync.RWMutex

	InstanceID uuid.UUID

	sheets      []*Sheet
	sheetByName map[string]int // name -> index into sheets

	sharedStrings []string
	stringIndex   map[string]int

	styles     []Style
	styleIndex map[Style]int

	formulas map[int][]*Expr // sheetID -> formula id -> tree

	Locale   *Locale
	Language *Language
	Kind     WorkbookKind
	Clock    Clock
	Location *time.Location

	cache      *engineCache
	generation uint64
	dirty      bool

	aggBackend AggregationBackend
}

// Option configures a new Workbook.
type Option func(*Workbook)

// WithLocale sets the workbook's locale handle.
func WithLocale(l *Locale) Option { return func(w *Workbook) { w.Locale = l } }

// WithLanguage sets the workbook's language handle.
func WithLanguage(l *Language) Option { return func(w *Workbook) { w.Language = l } }

// WithKind sets the workbook kind, gating volatile functions.
func WithKind(k WorkbookKind) Option { return func(w *Workbook) { w.Kind = k } }

// WithClock overrides the injected millisecond-clock effect.
func WithClock(c Clock) Option { return func(w *Workbook) { w.Clock = c } }

// WithTimezone sets the time.Location used by date/time functions.
func WithTimezone(loc *time.Location) Option { return func(w *Workbook) { w.Location = loc } }

// WithAggregationBackend opts the workbook into an accelerated criteria-
// aggregation backend (see duckdbagg/) for SUMIFS/COUNTIFS-family
// functions over large ranges; without it, those functions always use
// the row-scan implementation.
func WithAggregationBackend(b AggregationBackend) Option {
	return func(w *Workbook) { w.aggBackend = b }
}

// NewWorkbook constructs an empty workbook with one sheet named "Sheet1".
func NewWorkbook(opts ...Option) *Workbook {
	w := &Workbook{
		InstanceID:  uuid.New(),
		sheetByName: make(map[string]int),
		stringIndex: make(map[string]int),
		styleIndex:  make(map[Style]int),
		formulas:    make(map[int][]*Expr),
		Locale:      &EnglishLocale,
		Language:    EnglishLanguage,
		Clock:       SystemClock{},
		Location:    time.UTC,
		cache:       newEngineCache(4096),
	}
	for _, o := range opts {
		o(w)
	}
	w.addSheetLocked("Sheet1")
	return w
}

// Sheets returns the workbook's sheets in order.
func (w *Workbook) Sheets() []*Sheet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Sheet, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// Sheet looks up a sheet by name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx, ok := w.sheetByName[name]
	if !ok {
		return nil, false
	}
	return w.sheets[idx], true
}

// SheetByID looks up a sheet by its numeric id.
func (w *Workbook) SheetByID(id int) (*Sheet, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.sheets {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// SheetIDs returns a name->id map suitable for passing to ParseFormula.
func (w *Workbook) SheetIDs() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int, len(w.sheets))
	for _, s := range w.sheets {
		out[s.Name] = s.ID
	}
	return out
}

// AddSheet appends a new sheet, returning an error if the name is
// invalid or already used.
func (w *Workbook) AddSheet(name string) (*Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !ValidSheetName(name) {
		return nil, fmt.Errorf("invalid sheet name %q", name)
	}
	if _, exists := w.sheetByName[name]; exists {
		return nil, fmt.Errorf("sheet %q already exists", name)
	}
	return w.addSheetLocked(name), nil
}

func (w *Workbook) addSheetLocked(name string) *Sheet {
	id := len(w.sheets)
	s := newSheet(id, name)
	w.sheets = append(w.sheets, s)
	w.sheetByName[name] = id
	w.bumpGenerationLocked()
	return s
}

// RenameSheet renames a sheet in place, preserving its id and formulas.
func (w *Workbook) RenameSheet(oldName, newName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !ValidSheetName(newName) {
		return fmt.Errorf("invalid sheet name %q", newName)
	}
	idx, ok := w.sheetByName[oldName]
	if !ok {
		return fmt.Errorf("sheet %q not found", oldName)
	}
	if _, exists := w.sheetByName[newName]; exists {
		return fmt.Errorf("sheet %q already exists", newName)
	}
	delete(w.sheetByName, oldName)
	w.sheets[idx].Name = newName
	w.sheetByName[newName] = idx
	w.bumpGenerationLocked()
	return nil
}

// DeleteSheet removes a sheet and its formula array. References into a
// deleted sheet become Error(REF) on next evaluation.
func (w *Workbook) DeleteSheet(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.sheetByName[name]
	if !ok {
		return fmt.Errorf("sheet %q not found", name)
	}
	id := w.sheets[idx].ID
	w.sheets = append(w.sheets[:idx], w.sheets[idx+1:]...)
	delete(w.sheetByName, name)
	for i := idx; i < len(w.sheets); i++ {
		w.sheetByName[w.sheets[i].Name] = i
	}
	delete(w.formulas, id)
	w.bumpGenerationLocked()
	return nil
}

// ClearSheet removes every cell from a sheet without deleting the sheet
// itself.
func (w *Workbook) ClearSheet(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.sheetByName[name]
	if !ok {
		return fmt.Errorf("sheet %q not found", name)
	}
	w.sheets[idx].clear()
	w.bumpGenerationLocked()
	return nil
}

func (w *Workbook) bumpGenerationLocked() {
	w.generation++
	w.dirty = true
	w.cache.invalidate(w.InstanceID, w.generation)
}

// InternString interns s into the shared-string pool, returning its
// index (spec.md §3, §9 — deduplication on insert).
func (w *Workbook) InternString(s string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx, ok := w.stringIndex[s]; ok {
		return idx
	}
	idx := len(w.sharedStrings)
	w.sharedStrings = append(w.sharedStrings, s)
	w.stringIndex[s] = idx
	return idx
}

// SharedString looks up an interned string by index.
func (w *Workbook) SharedString(idx int) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if idx < 0 || idx >= len(w.sharedStrings) {
		return "", false
	}
	return w.sharedStrings[idx], true
}

// InternStyle interns a Style, returning its index (deduplicated).
func (w *Workbook) InternStyle(st Style) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx, ok := w.styleIndex[st]; ok {
		return idx
	}
	idx := len(w.styles)
	w.styles = append(w.styles, st)
	w.styleIndex[st] = idx
	return idx
}

// StyleAt looks up a style by index.
func (w *Workbook) StyleAt(idx int) Style {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if idx < 0 || idx >= len(w.styles) {
		return Style{}
	}
	return w.styles[idx]
}

// AppendFormula appends a parsed tree to sheetID's formula array,
// returning its formula id. Structurally-identical trees already
// registered on the same sheet are deduplicated (spec.md §9).
func (w *Workbook) AppendFormula(sheetID int, tree *Expr) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	arr := w.formulas[sheetID]
	for i, existing := range arr {
		if reflect.DeepEqual(existing, tree) {
			return i
		}
	}
	w.formulas[sheetID] = append(arr, tree)
	return len(arr)
}

// FormulaTree looks up a parsed tree by sheet id and formula id.
func (w *Workbook) FormulaTree(sheetID, formulaID int) (*Expr, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	arr, ok := w.formulas[sheetID]
	if !ok || formulaID < 0 || formulaID >= len(arr) {
		return nil, false
	}
	return arr[formulaID], true
}

// GetCell returns the cell at (sheet,row,col); ok is false if the sheet
// doesn't exist or the cell was never set (an unset cell behaves as
// Empty).
func (w *Workbook) GetCell(sheet string, row, col int) (*Cell, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx, ok := w.sheetByName[sheet]
	if !ok {
		return nil, false
	}
	c := w.sheets[idx].CellAt(row, col)
	if c == nil {
		return nil, false
	}
	return c, true
}

// RemoveCell deletes the cell at (sheet,row,col).
func (w *Workbook) RemoveCell(sheet string, row, col int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.sheetByName[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	w.sheets[idx].removeCellAt(row, col)
	w.bumpGenerationLocked()
	return nil
}

// SetCellFormula stores a parsed formula tree at (sheet,row,col),
// unevaluated.
func (w *Workbook) SetCellFormula(sheet string, row, col int, tree *Expr) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.sheetByName[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	s := w.sheets[idx]
	fid := w.appendFormulaLocked(s.ID, tree)
	s.setCellAt(row, col, &Cell{Kind: CellFormula, FormulaID: fid})
	w.bumpGenerationLocked()
	return nil
}

func (w *Workbook) appendFormulaLocked(sheetID int, tree *Expr) int {
	arr := w.formulas[sheetID]
	w.formulas[sheetID] = append(arr, tree)
	return len(arr)
}

// SetCellNumber stores a literal numeric value.
func (w *Workbook) SetCellNumber(sheet string, row, col int, v float64) error {
	return w.setCellRaw(sheet, row, col, &Cell{Kind: CellNumber, Number: v})
}

// SetCellBool stores a literal boolean value.
func (w *Workbook) SetCellBool(sheet string, row, col int, v bool) error {
	return w.setCellRaw(sheet, row, col, &Cell{Kind: CellBool, Bool: v})
}

// SetCellError stores a literal error value.
func (w *Workbook) SetCellError(sheet string, row, col int, code ErrorCode) error {
	return w.setCellRaw(sheet, row, col, &Cell{Kind: CellErrorVal, ErrCode: code})
}

// SetCellString stores a string value, interning it into the
// shared-string pool.
func (w *Workbook) SetCellString(sheet string, row, col int, v string) error {
	idx := w.InternString(v)
	return w.setCellRaw(sheet, row, col, &Cell{Kind: CellSharedString, StrIndex: idx})
}

func (w *Workbook) setCellRaw(sheet string, row, col int, c *Cell) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.sheetByName[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	w.sheets[idx].setCellAt(row, col, c)
	w.bumpGenerationLocked()
	return nil
}

// SetUserInput auto-classifies raw text typed by a user into a cell
// (spec.md §4.6, §6): a leading "=" is always a formula; otherwise the
// engine tries number, boolean, error-token, and falls back to string.
func (w *Workbook) SetUserInput(sheet string, row, col int, text string, mode LexMode) error {
	if strings.HasPrefix(text, "=") {
		sheetIDs := w.SheetIDs()
		sid, ok := w.sheetByName[sheet]
		if !ok {
			return fmt.Errorf("sheet %q not found", sheet)
		}
		tree := ParseFormula(text[1:], mode, w.Locale, w.Language, w.sheets[sid].ID, row, col, sheetIDs)
		return w.SetCellFormula(sheet, row, col, tree)
	}

	w.mu.RLock()
	loc := w.Locale
	lang := w.Language
	w.mu.RUnlock()

	if v, ok := parseUserNumber(text, loc); ok {
		return w.SetCellNumber(sheet, row, col, v)
	}
	if v, ok := lang.BooleanLiteral(text); ok {
		return w.SetCellBool(sheet, row, col, v)
	}
	if code, ok := lang.ErrorCodeForToken(text); ok {
		return w.SetCellError(sheet, row, col, code)
	}
	return w.SetCellString(sheet, row, col, text)
}

var groupedNumberRe = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
var plainNumberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// parseUserNumber implements spec.md §4.6/§6's numeric recognition:
// optional leading/trailing "$"/"%", and grouping commas every three
// digits from the right.
func parseUserNumber(text string, loc *Locale) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	percent := false
	if strings.HasSuffix(s, loc.PercentSymbol) {
		percent = true
		s = strings.TrimSuffix(s, loc.PercentSymbol)
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "$")
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var numeric string
	switch {
	case groupedNumberRe.MatchString(s):
		numeric = strings.ReplaceAll(s, ",", "")
	case plainNumberRe.MatchString(s):
		numeric = s
	default:
		return 0, false
	}

	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	if percent {
		v /= 100
	}
	return v, true
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

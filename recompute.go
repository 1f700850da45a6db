package gridcalc

import "fmt"

// Evaluate performs one whole-workbook recomputation pass (spec.md
// §4.9): every formula cell on every sheet is visited — in
// (sheet-index, row, column) order, though callers must not depend on
// that (spec.md §5) — evaluated (or served from cache if still
// current), and its result cached back onto the cell. After Evaluate
// returns, no formula cell is left holding an un-narrowed value
// (invariant (iii)).
func (w *Workbook) Evaluate() {
	ev := NewEvaluator(w)
	for _, s := range w.Sheets() {
		s.ForEachFormula(func(row, col int, c *Cell) {
			ev.Evaluate(s.Name, row, col)
		})
	}
	w.mu.Lock()
	w.dirty = false
	w.mu.Unlock()
}

// EvaluateWithErrorCheck runs Evaluate and then scans every formula
// cell for the first cached error, returning it as a formatted
// diagnostic: "Sheet!A1 ('=formula'): message" (spec.md §4.9, §7, §8).
// A nil return means no formula cell evaluated to an error.
func (w *Workbook) EvaluateWithErrorCheck() error {
	w.Evaluate()

	sheets := w.Sheets()
	sheetNames := make(map[int]string, len(sheets))
	for _, s := range sheets {
		sheetNames[s.ID] = s.Name
	}

	for _, s := range sheets {
		if err := s.firstCellError(w, sheetNames); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sheet) firstCellError(w *Workbook, sheetNames map[int]string) error {
	var found error
	s.ForEachFormula(func(row, col int, c *Cell) {
		if found != nil || c.Cached == nil || !c.Cached.IsError() {
			return
		}
		msg := c.Cached.ErrMsg
		if msg == "" {
			msg = c.Cached.ErrCode.String()
		}
		cellRef := FormatA1Ref(CellRef{Row: row, Col: col})
		formulaText := "?"
		if tree, ok := w.FormulaTree(s.ID, c.FormulaID); ok {
			formulaText = "=" + Stringify(tree, StringifyOpts{
				Locale:        w.Locale,
				Language:      w.Language,
				AnchorSheetID: s.ID,
				AnchorRow:     row,
				AnchorCol:     col,
				SheetNames:    sheetNames,
			})
		}
		found = fmt.Errorf("%s!%s ('%s'): %s", s.Name, cellRef, formulaText, msg)
	})
	return found
}

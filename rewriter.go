package gridcalc

// Area is a rectangular region on one sheet, used both as the source
// area of a move/copy and as the bounds check in RewriteForwardRefs
// (spec.md §4.5).
type Area struct {
	SheetID           int
	Row, Col          int
	Width, Height     int
}

func (a Area) contains(sheetID, row, col int) bool {
	if sheetID != a.SheetID {
		return false
	}
	return row >= a.Row && row < a.Row+a.Height && col >= a.Col && col < a.Col+a.Width
}

// RewriteForwardRefs clones tree and rewrites every reference/range
// endpoint whose absolute cell falls inside src so that it instead
// points at the corresponding cell in the region anchored at
// (targetSheetID, targetRow, targetCol), preserving absolute/relative
// bits (spec.md §4.5). It is used to patch formulas *outside* a moved
// region so they keep pointing at the moved cells; formulas *inside* the
// moved region are relocated verbatim by the caller and are not passed
// through this function (spec.md §9).
func RewriteForwardRefs(tree *Expr, src Area, targetSheetID, targetRow, targetCol int) *Expr {
	clone := CloneExpr(tree)
	dRow := targetRow - src.Row
	dCol := targetCol - src.Col
	rewriteNode(clone, src, targetSheetID, dRow, dCol)
	return clone
}

func rewriteNode(e *Expr, src Area, targetSheetID, dRow, dCol int) {
	if e == nil {
		return
	}
	switch e.Kind {
	case NodeReference:
		rewriteRef(&e.Ref, src, targetSheetID, dRow, dCol)
	case NodeRangeNode:
		rewriteRef(&e.RangeLeft, src, targetSheetID, dRow, dCol)
		rewriteRef(&e.RangeRight, src, targetSheetID, dRow, dCol)
	}
	for _, op := range e.Operands {
		rewriteNode(op, src, targetSheetID, dRow, dCol)
	}
	for _, a := range e.Args {
		rewriteNode(a, src, targetSheetID, dRow, dCol)
	}
}

func rewriteRef(r *Ref, src Area, targetSheetID, dRow, dCol int) {
	sheetID := src.SheetID
	if r.HasSheet {
		sheetID = r.SheetID
	}
	if !src.contains(sheetID, r.Row, r.Col) {
		return
	}
	r.Row += dRow
	r.Col += dCol
	r.HasSheet = true
	r.SheetID = targetSheetID
}

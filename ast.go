package gridcalc

// NodeKind tags the variant of an Expr tree node (spec.md §3).
type NodeKind int

const (
	NodeNumber NodeKind = iota
	NodeString
	NodeBoolean
	NodeErrorLit
	NodeReference
	NodeRangeNode
	NodeUnary
	NodeBinaryArith
	NodeComparison
	NodeConcat
	NodePercent
	NodeFuncCall
	NodeDefinedName
	NodeEmptyArg
)

// BinOp enumerates the operator spelling carried by NodeBinaryArith and
// NodeComparison nodes.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

// Ref is the expression-tree form of a single-cell reference: a
// CellRef plus the optional sheet id it resolved against (HasSheet false
// means "anchor's own sheet").
type Ref struct {
	SheetID  int
	HasSheet bool
	Row, Col int
	AbsRow   bool
	AbsCol   bool
}

// Expr is an expression tree node. Only the fields relevant to Kind are
// populated; this mirrors the tagged-variant shape spec.md §3 describes
// while staying a single concrete Go type, which keeps the parser and
// evaluator free of type-switch boilerplate on wrapper interfaces.
type Expr struct {
	Kind NodeKind

	Number float64
	Str    string
	Bool   bool
	ErrVal ErrorCode
	Msg    string // NodeErrorLit: parser diagnostic message

	Ref        Ref
	RangeLeft  Ref
	RangeRight Ref

	Op       BinOp
	Operands []*Expr // unary: [operand]; binary/comparison/concat: [left, right]

	FuncName string
	Args     []*Expr

	Name string // NodeDefinedName
}

// CloneExpr deep-copies a tree, used by the reference rewriter (§4.5)
// which must not mutate the original (expression trees are immutable
// after insertion, spec.md §5). A hand-rolled walk is used in place of a
// generic deep-copy library since this is the only mutable-clone call
// site in the engine (see DESIGN.md).
func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Operands != nil {
		clone.Operands = make([]*Expr, len(e.Operands))
		for i, op := range e.Operands {
			clone.Operands[i] = CloneExpr(op)
		}
	}
	if e.Args != nil {
		clone.Args = make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			clone.Args[i] = CloneExpr(a)
		}
	}
	return &clone
}

package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteForwardRefsMovesContainedReference(t *testing.T) {
	tree := &Expr{
		Kind: NodeBinaryArith,
		Op:   OpAdd,
		Operands: []*Expr{
			{Kind: NodeReference, Ref: Ref{Row: 1, Col: 1}},
			{Kind: NodeNumber, Number: 1},
		},
	}
	src := Area{SheetID: 0, Row: 1, Col: 1, Width: 1, Height: 1}

	out := RewriteForwardRefs(tree, src, 2, 5, 5)

	ref := out.Operands[0].Ref
	assert.Equal(t, 5, ref.Row)
	assert.Equal(t, 5, ref.Col)
	assert.True(t, ref.HasSheet)
	assert.Equal(t, 2, ref.SheetID)

	// Original tree must be untouched (immutability, spec.md §5).
	assert.Equal(t, 1, tree.Operands[0].Ref.Row)
	assert.False(t, tree.Operands[0].Ref.HasSheet)
}

func TestRewriteForwardRefsLeavesOutsideReferenceAlone(t *testing.T) {
	tree := &Expr{Kind: NodeReference, Ref: Ref{Row: 10, Col: 10}}
	src := Area{SheetID: 0, Row: 1, Col: 1, Width: 1, Height: 1}

	out := RewriteForwardRefs(tree, src, 0, 5, 5)

	assert.Equal(t, 10, out.Ref.Row)
	assert.Equal(t, 10, out.Ref.Col)
	assert.False(t, out.Ref.HasSheet)
}

func TestRewriteForwardRefsRangeEndpoints(t *testing.T) {
	tree := &Expr{
		Kind:       NodeRangeNode,
		RangeLeft:  Ref{Row: 1, Col: 1},
		RangeRight: Ref{Row: 2, Col: 2},
	}
	src := Area{SheetID: 0, Row: 1, Col: 1, Width: 2, Height: 2}

	out := RewriteForwardRefs(tree, src, 1, 11, 11)

	require.True(t, out.RangeLeft.HasSheet)
	assert.Equal(t, 11, out.RangeLeft.Row)
	assert.Equal(t, 11, out.RangeLeft.Col)
	assert.Equal(t, 12, out.RangeRight.Row)
	assert.Equal(t, 12, out.RangeRight.Col)
}

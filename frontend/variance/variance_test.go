package variance

import (
	"go/token"
	"testing"

	"github.com/cottand/variance/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPos(n int) ast.Positioner {
	return ast.Range{PosStart: token.Pos(n), PosEnd: token.Pos(n)}
}

func reasonOf() PosReason {
	return PosReason{Pos: testPos(0), Descr: PosDescr{Kind: KindFnParameter}}
}

func TestReasonStackNonEmptiness(t *testing.T) {
	pr := reasonOf()

	flipped := Flip(pr, CovOf(SingleReason(Reason{Pos: testPos(0), Descr: pr.Descr, Tag: Cov})))
	assert.GreaterOrEqual(t, flipped.ContraStack().Len(), 1)

	composed := ComposeTag(pr, Bivariant(), Cov)
	assert.GreaterOrEqual(t, composed.CovStack().Len(), 1)

	initial := InitialFromAnnotation(pr, Contra)
	assert.GreaterOrEqual(t, initial.ContraStack().Len(), 1)
}

func TestDoubleFlipIdentityOnTag(t *testing.T) {
	pr := reasonOf()
	for _, v := range []Variance{
		CovOf(SingleReason(Reason{Pos: testPos(0), Tag: Cov})),
		ContraOf(SingleReason(Reason{Pos: testPos(0), Tag: Contra})),
	} {
		tagBefore, _ := v.Tag()
		twice := Flip(pr, Flip(pr, v))
		tagAfter, ok := twice.Tag()
		require.True(t, ok)
		assert.Equal(t, tagBefore, tagAfter)
	}
}

func TestFlipOfInvAndBivariantIsUnchanged(t *testing.T) {
	pr := reasonOf()
	inv := InvOf(SingleReason(Reason{Tag: Cov}), SingleReason(Reason{Tag: Contra}))
	assert.Equal(t, inv, Flip(pr, inv))
	assert.Equal(t, Bivariant(), Flip(pr, Bivariant()))
}

func TestInvAbsorption(t *testing.T) {
	pr := reasonOf()
	inv := InvOf(SingleReason(Reason{Tag: Cov}), SingleReason(Reason{Tag: Contra}))

	composedFromInv := ComposeTag(pr, inv, Cov)
	tag, ok := composedFromInv.Tag()
	require.True(t, ok)
	assert.Equal(t, Inv, tag)

	composedToInv := ComposeTag(pr, CovOf(SingleReason(Reason{Tag: Cov})), Inv)
	tag2, ok2 := composedToInv.Tag()
	require.True(t, ok2)
	assert.Equal(t, Inv, tag2)
}

func TestBivariantNeutrality(t *testing.T) {
	pr := reasonOf()
	v := CovOf(SingleReason(Reason{Tag: Cov}))

	// Bivariant on the "to" side: Compose returns `from` unchanged.
	assert.Equal(t, v, Compose(pr, v, Bivariant()))

	// Bivariant on the "from" side: a fresh Variance is built from `to`'s tag.
	result := ComposeTag(pr, Bivariant(), Contra)
	tag, ok := result.Tag()
	require.True(t, ok)
	assert.Equal(t, Contra, tag)
}

func TestComposeSignTable(t *testing.T) {
	pr := reasonOf()
	cov := CovOf(SingleReason(Reason{Tag: Cov}))
	contra := ContraOf(SingleReason(Reason{Tag: Contra}))

	cases := []struct {
		name     string
		from     Variance
		to       PolTag
		wantTag  PolTag
	}{
		{"cov compose cov stays cov", cov, Cov, Cov},
		{"cov compose contra flips to contra", cov, Contra, Contra},
		{"cov compose inv becomes inv", cov, Inv, Inv},
		{"contra compose cov stays contra", contra, Cov, Contra},
		{"contra compose contra flips to cov", contra, Contra, Cov},
		{"contra compose inv becomes inv", contra, Inv, Inv},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComposeTag(pr, tc.from, tc.to)
			tag, ok := got.Tag()
			require.True(t, ok)
			assert.Equal(t, tc.wantTag, tag)
		})
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	pr := reasonOf()
	cov := CovOf(SingleReason(Reason{Tag: Cov}))
	a := ComposeTag(pr, cov, Contra)
	b := ComposeTag(pr, cov, Contra)
	assert.Equal(t, a, b)
}

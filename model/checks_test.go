package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorstOfFoldsToMinimum(t *testing.T) {
	w := StartWorstOf(CheckNoUnstructuredData)
	assert.Equal(t, VerdictOk, w.Verdict())

	w = w.Fold(VerdictOk)
	assert.Equal(t, VerdictOk, w.Verdict())

	w = w.Fold(VerdictUnknown)
	assert.Equal(t, VerdictUnknown, w.Verdict())

	w = w.Fold(VerdictFail)
	assert.Equal(t, VerdictFail, w.Verdict())

	// a later Ok cannot lift the verdict back up
	w = w.Fold(VerdictOk)
	assert.Equal(t, VerdictFail, w.Verdict())
}

func TestWorstOfIsPermutationInvariant(t *testing.T) {
	verdicts := []Verdict{VerdictOk, VerdictUnknown, VerdictFail, VerdictOk, VerdictUnknown}
	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, p := range permutations {
		w := StartWorstOf(CheckDurationValid)
		for _, i := range p {
			w = w.Fold(verdicts[i])
		}
		assert.Equal(t, VerdictFail, w.Verdict(), p)
	}
}

func TestWorstOfFoldDoesNotMutateReceiver(t *testing.T) {
	base := StartWorstOf(CheckDurationValid)
	_ = base.Fold(VerdictFail)
	assert.Equal(t, VerdictOk, base.Verdict())
}

func TestFinalizeCarriesCanonicalText(t *testing.T) {
	check := StartWorstOf(CheckNoUnstructuredData).Fold(VerdictUnknown).Finalize()
	assert.Equal(t, CheckNoUnstructuredData, check.Key)
	assert.Equal(t, VerdictUnknown, check.Result)
	assert.Equal(t, CheckNoUnstructuredData.Unknown().Desc, check.Desc)
	assert.NotEmpty(t, check.Desc)
}

func TestCheckKeyIsExternal(t *testing.T) {
	assert.False(t, CheckDocumentsMatchCondition.IsExternal())
	assert.False(t, CheckNoUnstructuredData.IsExternal())
	assert.True(t, CheckTaxPaymentInfoAdded.IsExternal())
	assert.True(t, CheckPublicExpropriationOffer.IsExternal())
}

func TestCanonicalTextDiffersPerVerdict(t *testing.T) {
	for key := range checkKeyNames {
		ok, unknown, fail := key.Ok().Desc, key.Unknown().Desc, key.Err().Desc
		assert.NotEmpty(t, ok)
		assert.NotEqual(t, ok, fail, key)
		assert.NotEqual(t, ok, unknown, key)
	}
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	forever, err := ParseTerm("forever")
	require.NoError(t, err)
	assert.Equal(t, TermForever, forever.Spec)

	fixed, err := ParseTerm("for::24:10")
	require.NoError(t, err)
	assert.Equal(t, TermFor, fixed.Spec)
	require.NotNil(t, fixed.Duration)
	assert.Equal(t, uint16(24), fixed.Duration.Months)
	assert.Equal(t, uint16(10), fixed.Duration.Days)

	until, err := ParseTerm("until::2030-01-02T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, TermUntil, until.Spec)
	require.NotNil(t, until.Date)
	assert.Equal(t, 2030, until.Date.Year())

	for _, bad := range []string{"", "for", "for::24", "for::a:b", "to::tomorrow", "never"} {
		_, err := ParseTerm(bad)
		require.Error(t, err, bad)
	}
}

// protection periods are counted in 365-day years
func protectedUntil(start time.Time, years int) time.Time {
	return start.Add(time.Duration(years) * 365 * 24 * time.Hour)
}

func TestCheckTermAgainstStatutoryDuration(t *testing.T) {
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	rights := Rights{StartingTime: start}

	cases := []struct {
		object string
		years  int
	}{
		{"invention::RU2000123", 20},
		{"utility_model::77", 10},
		{"industrial_model::88", 5},
		{"tims::99", 10},
		{"database::555", 15},
	}
	for _, c := range cases {
		obj, err := ParseObjectIdentity(c.object)
		require.NoError(t, err)

		boundary := protectedUntil(start, c.years)

		within := boundary.Add(-time.Second)
		v, err := rights.CheckTerm(obj, Term{Spec: TermUntil, Date: &within})
		require.NoError(t, err)
		assert.Equal(t, VerdictOk, v, c.object)

		at := boundary
		v, err = rights.CheckTerm(obj, Term{Spec: TermUntil, Date: &at})
		require.NoError(t, err)
		assert.Equal(t, VerdictOk, v, c.object)

		beyond := boundary.Add(time.Second)
		v, err = rights.CheckTerm(obj, Term{Spec: TermUntil, Date: &beyond})
		require.NoError(t, err)
		assert.Equal(t, VerdictFail, v, c.object)
	}
}

func TestCheckTermExplicitExpirationWins(t *testing.T) {
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	expiration := start.AddDate(2, 0, 0)
	rights := Rights{StartingTime: start, ExpirationTime: &expiration}

	obj, err := ParseObjectIdentity("invention::RU2000123")
	require.NoError(t, err)

	beyond := expiration.Add(time.Second)
	v, err := rights.CheckTerm(obj, Term{Spec: TermTo, Date: &beyond})
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, v)

	within := expiration.Add(-time.Second)
	v, err = rights.CheckTerm(obj, Term{Spec: TermTo, Date: &within})
	require.NoError(t, err)
	assert.Equal(t, VerdictOk, v)
}

func TestCheckTermByObjectClass(t *testing.T) {
	rights := Rights{StartingTime: time.Now()}
	farFuture := time.Now().AddDate(100, 0, 0)

	// renewable symbol classes always pass
	for _, s := range []string{"trademark::123456", "wellknown_trademark::42", "geographical_indication::205"} {
		obj, err := ParseObjectIdentity(s)
		require.NoError(t, err)
		v, err := rights.CheckTerm(obj, Term{Spec: TermUntil, Date: &farFuture})
		require.NoError(t, err)
		assert.Equal(t, VerdictOk, v, s)
	}

	// unverifiable classes stay indeterminate
	for _, s := range []string{"program::2023_661234", "pharmaceutical::99"} {
		obj, err := ParseObjectIdentity(s)
		require.NoError(t, err)
		v, err := rights.CheckTerm(obj, Term{Spec: TermUntil, Date: &farFuture})
		require.NoError(t, err)
		assert.Equal(t, VerdictUnknown, v, s)
	}

	// duration-bounded and forever terms pass regardless of the date math
	obj, err := ParseObjectIdentity("invention::RU2000123")
	require.NoError(t, err)
	duration := TermDuration{Months: 1200}
	v, err := rights.CheckTerm(obj, Term{Spec: TermFor, Duration: &duration})
	require.NoError(t, err)
	assert.Equal(t, VerdictOk, v)
	v, err = rights.CheckTerm(obj, Term{Spec: TermForever})
	require.NoError(t, err)
	assert.Equal(t, VerdictOk, v)
}

func TestCheckTermCorruptInputs(t *testing.T) {
	rights := Rights{StartingTime: time.Now()}

	obj, err := ParseObjectIdentity("invention::RU2000123")
	require.NoError(t, err)
	_, err = rights.CheckTerm(obj, Term{Spec: TermUntil}) // no date
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInternal))

	_, err = rights.CheckTerm(ObjectIdentity{Class: ObjectUndefined, RegNumber: "1"}, Term{Spec: TermForever})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInternal))
}

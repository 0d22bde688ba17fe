package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemberIdentity(t *testing.T) {
	cases := []struct {
		in    string
		class MemberClass
	}{
		{"ogrn::1027700132195", MemberOgrn},
		{"ogrn::1127746123450", MemberOgrn},
		{"ogrn::5047001234561", MemberOgrn},
		{"ogrnip::304500116000157", MemberOgrnip},
		{"ogrnip::317746123456787", MemberOgrnip},
		{"snils::11223344595", MemberSnils},
		{"snils::08765430300", MemberSnils},
	}
	for _, c := range cases {
		m, err := ParseMemberIdentity(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.class, m.Class)
		assert.Equal(t, c.in, m.String())
	}
}

func TestParseMemberIdentityRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"ogrn",
		"ogrn::",
		"inn::1027700132195",
		"ogrn::1027700132196",  // wrong control digit
		"ogrn::2027700132195",  // wrong leading digit
		"ogrn::102770013219",   // too short
		"ogrnip::304500116000158",
		"ogrnip::104500116000157", // must lead with 3
		"snils::11223344596",
		"snils::1122334459",
	}
	for _, c := range cases {
		_, err := ParseMemberIdentity(c)
		require.Error(t, err, c)
		assert.True(t, IsCode(err, CodeBadValue), c)
	}
}

func TestMemberIdentityClassPredicates(t *testing.T) {
	entity, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)
	assert.True(t, entity.IsLegalEntity())
	assert.False(t, entity.IsPerson())

	entrepreneur, err := ParseMemberIdentity("ogrnip::304500116000157")
	require.NoError(t, err)
	assert.True(t, entrepreneur.IsEntrepreneur())

	person, err := ParseMemberIdentity("snils::11223344595")
	require.NoError(t, err)
	assert.True(t, person.IsPerson())
}

func TestMemberIdentityIDIsStable(t *testing.T) {
	a, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)
	b, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())

	other, err := ParseMemberIdentity("ogrn::1127746123450")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), other.ID())
}

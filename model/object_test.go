package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectIdentity(t *testing.T) {
	cases := []struct {
		in    string
		class ObjectClass
	}{
		{"trademark::123456", ObjectTrademark},
		{"wellknown_trademark::42", ObjectWellknownTrademark},
		{"invention::RU2000123", ObjectInvention},
		{"utility_model::модель-1", ObjectUtilityModel},
		{"program::2023_661234", ObjectProgram},
		{"appellation_of_origin::17", ObjectAppellationOfOrigin},
		{"appellation_of_origin_rights::17/3", ObjectAppellationOfOriginRights},
		{"geographical_indication::205", ObjectGeographicalIndication},
	}
	for _, c := range cases {
		obj, err := ParseObjectIdentity(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.class, obj.Class)
		assert.Equal(t, c.in, obj.String())
	}
}

func TestParseObjectIdentityRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"trademark",
		"trademark::",
		"spaceship::123",
		"trademark::" + strings.Repeat("1", 21),  // number too long
		"trademark::no spaces",
		"trademark::semi;colon",
		"appellation_of_origin::0",   // zero appellation
		"appellation_of_origin::1a",  // non-numeric
		"appellation_of_origin_rights::17",    // missing certificate part
		"appellation_of_origin_rights::0/3",
		"appellation_of_origin_rights::17/3/4",
	}
	for _, c := range cases {
		_, err := ParseObjectIdentity(c)
		require.Error(t, err, c)
	}
}

func TestObjectSellability(t *testing.T) {
	sellable := []string{
		"trademark::123456",
		"invention::RU2000123",
		"database::555",
		"pharmaceutical::99",
	}
	for _, s := range sellable {
		obj, err := ParseObjectIdentity(s)
		require.NoError(t, err)
		assert.True(t, obj.IsSellable(), s)
	}

	blocked := []string{
		"appellation_of_origin::17",
		"appellation_of_origin_rights::17/3",
		"geographical_indication::205",
	}
	for _, s := range blocked {
		obj, err := ParseObjectIdentity(s)
		require.NoError(t, err)
		assert.False(t, obj.IsSellable(), s)
	}
}

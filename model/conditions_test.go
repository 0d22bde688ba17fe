package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, s string) ObjectIdentity {
	t.Helper()
	obj, err := ParseObjectIdentity(s)
	require.NoError(t, err)
	return obj
}

func verdictOf(checks []Check, key CheckKey) (Verdict, bool) {
	for _, c := range checks {
		if c.Key == key {
			return c.Result, true
		}
	}
	return 0, false
}

func TestConditionsCheckBattery(t *testing.T) {
	c := Conditions{
		ContractType: ContractTypeLicense,
		Objects: []ObjectOwnership{
			{Object: mustObject(t, "trademark::123456"), Term: Term{Spec: TermForever}},
			{Object: mustObject(t, "invention::RU2000123"), Term: Term{Spec: TermForever}},
		},
	}
	checks := c.Check()

	for _, key := range []CheckKey{CheckLocationValid, CheckObjectDuplicates, CheckObjectsSellable} {
		v, found := verdictOf(checks, key)
		require.True(t, found, key)
		assert.Equal(t, VerdictOk, v, key)
	}
	_, found := verdictOf(checks, CheckContainsTrademark)
	assert.False(t, found, "trademark presence is checked for concessions only")
}

func TestConditionsCheckDetectsDuplicates(t *testing.T) {
	c := Conditions{
		ContractType: ContractTypeLicense,
		Objects: []ObjectOwnership{
			{Object: mustObject(t, "trademark::123456")},
			{Object: mustObject(t, "trademark::123456")},
		},
	}
	v, found := verdictOf(c.Check(), CheckObjectDuplicates)
	require.True(t, found)
	assert.Equal(t, VerdictFail, v)
}

func TestConditionsCheckSellabilityAlwaysRuns(t *testing.T) {
	// an unsellable object fails even next to a trademark
	c := Conditions{
		ContractType: ContractTypeLicense,
		Objects: []ObjectOwnership{
			{Object: mustObject(t, "trademark::123456")},
			{Object: mustObject(t, "appellation_of_origin::17")},
		},
	}
	v, found := verdictOf(c.Check(), CheckObjectsSellable)
	require.True(t, found)
	assert.Equal(t, VerdictFail, v)
}

func TestConditionsCheckLocations(t *testing.T) {
	custom, err := ParseLocation("Зона свободной торговли")
	require.NoError(t, err)
	c := Conditions{
		ContractType: ContractTypeLicense,
		Objects: []ObjectOwnership{
			{Object: mustObject(t, "trademark::123456"), Locations: []Location{custom}},
		},
	}
	v, found := verdictOf(c.Check(), CheckLocationValid)
	require.True(t, found)
	assert.Equal(t, VerdictUnknown, v, "free-text territory cannot be verified")
}

func TestConcessionRequiresTrademark(t *testing.T) {
	without := Conditions{
		ContractType: ContractTypeConcession,
		Objects:      []ObjectOwnership{{Object: mustObject(t, "invention::RU2000123")}},
	}
	v, found := verdictOf(without.Check(), CheckContainsTrademark)
	require.True(t, found)
	assert.Equal(t, VerdictFail, v)

	with := Conditions{
		ContractType: ContractTypeConcession,
		Objects: []ObjectOwnership{
			{Object: mustObject(t, "invention::RU2000123")},
			{Object: mustObject(t, "trademark::123456")},
		},
	}
	v, found = verdictOf(with.Check(), CheckContainsTrademark)
	require.True(t, found)
	assert.Equal(t, VerdictOk, v)
}

func TestSellerAndBuyerCapacity(t *testing.T) {
	person, err := ParseMemberIdentity("snils::11223344595")
	require.NoError(t, err)
	entity, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)

	concession := Conditions{ContractType: ContractTypeConcession}
	assert.Equal(t, VerdictFail, concession.CheckSeller(person).Result)
	assert.Equal(t, VerdictOk, concession.CheckSeller(entity).Result)
	assert.Equal(t, VerdictFail, concession.CheckBuyer(person).Result)

	expropriation := Conditions{
		ContractType: ContractTypeExpropriation,
		Objects:      []ObjectOwnership{{Object: mustObject(t, "trademark::123456")}},
	}
	assert.Equal(t, VerdictFail, expropriation.CheckBuyer(person).Result)
	assert.Equal(t, VerdictOk, expropriation.CheckBuyer(entity).Result)

	license := Conditions{ContractType: ContractTypeLicense}
	assert.Equal(t, VerdictOk, license.CheckSeller(person).Result)
	assert.Equal(t, VerdictOk, license.CheckBuyer(person).Result)
}

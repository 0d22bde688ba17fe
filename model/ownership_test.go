package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRightsFromOwnershipIsIdempotent(t *testing.T) {
	holder, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)
	expiration := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	o := Ownership{
		Rightholder:    holder,
		ContractType:   ContractTypeLicense,
		Exclusive:      true,
		Distribution:   DistributionAble,
		StartingTime:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpirationTime: &expiration,
	}
	first := RightsFromOwnership(o)
	second := RightsFromOwnership(o)
	assert.Equal(t, first, second)
}

func TestRightsFromOwnershipFlags(t *testing.T) {
	holder, err := ParseMemberIdentity("snils::11223344595")
	require.NoError(t, err)

	licensed := RightsFromOwnership(Ownership{
		Rightholder:  holder,
		ContractType: ContractTypeLicense,
		Exclusive:    true,
		Distribution: DistributionAble,
	})
	assert.True(t, licensed.IsExclusive())
	assert.True(t, licensed.CanDistribute())
	assert.False(t, licensed.IsOwner())

	permissioned := RightsFromOwnership(Ownership{
		Rightholder:  holder,
		ContractType: ContractTypeSublicense,
		Distribution: DistributionWithWrittenPermission,
	})
	assert.False(t, permissioned.CanDistribute())
	assert.True(t, permissioned.DistributesWithWrittenPermission())

	// no contract type means the member holds the object outright
	owned := RightsFromOwnership(Ownership{Rightholder: holder})
	assert.True(t, owned.IsOwner())
	assert.False(t, owned.IsExclusive())

	// reserved bits are never produced by the derivation
	reserved := RightClassified | RightNoExpiration
	for _, r := range []Rights{licensed, permissioned, owned, OwnedRights(time.Now())} {
		assert.Zero(t, r.Flags&reserved)
	}
}

func TestOwnedRights(t *testing.T) {
	now := time.Now()
	r := OwnedRights(now)
	assert.True(t, r.IsOwner())
	assert.True(t, r.IsExclusive())
	assert.True(t, r.CanDistribute())
	assert.Equal(t, ContractTypeUndefined, r.ContractType)
	assert.Equal(t, now, r.StartingTime)
	require.Len(t, r.Locations, 1)
	assert.Equal(t, DefaultLocation(), r.Locations[0])
}

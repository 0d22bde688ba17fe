package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSaleType(t *testing.T) {
	exclusive := Conditions{
		ContractType: ContractTypeLicense,
		Objects:      []ObjectOwnership{{Object: mustObject(t, "trademark::123456"), Exclusive: true}},
	}
	assert.Equal(t, SaleAuction, DeriveSaleType(exclusive))

	plain := Conditions{
		ContractType: ContractTypeLicense,
		Objects:      []ObjectOwnership{{Object: mustObject(t, "trademark::123456")}},
	}
	assert.Equal(t, SalePrivateSale, DeriveSaleType(plain))

	// expropriation is always an open auction, even without exclusivity
	expropriation := plain
	expropriation.ContractType = ContractTypeExpropriation
	assert.Equal(t, SaleAuction, DeriveSaleType(expropriation))

	// a pledge is always a private sale, even with exclusive terms
	pledge := exclusive
	pledge.ContractType = ContractTypePledge
	assert.Equal(t, SalePrivateSale, DeriveSaleType(pledge))
}

func TestLotValidate(t *testing.T) {
	seller, err := ParseMemberIdentity("ogrn::1027700132195")
	require.NoError(t, err)
	opening := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	lot := Lot{
		Name:        "Trademark portfolio",
		Seller:      seller,
		Price:       100000,
		SaleType:    SaleAuction,
		OpeningTime: opening,
		ClosingTime: opening.AddDate(0, 1, 0),
	}
	require.NoError(t, lot.Validate())

	nameless := lot
	nameless.Name = ""
	assert.Error(t, nameless.Validate())

	backwards := lot
	backwards.ClosingTime = opening
	err = backwards.Validate()
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeBadValue))

	verbose := lot
	verbose.Desc = string(make([]byte, maxLotDescLength+1))
	assert.Error(t, verbose.Validate())
}

func TestLotStateTransitionsKeepOrthogonalFields(t *testing.T) {
	lot := Lot{Name: "n", Price: 500}
	state := OpenLotState(lot)
	assert.True(t, state.IsNew())
	assert.Equal(t, Cost(500), state.Price)
	assert.False(t, state.Undefined)

	state.Undefined = true
	verified := state.WithStatus(LotVerified)
	assert.True(t, verified.IsVerified())
	assert.True(t, verified.Undefined, "status change keeps the invalidation flag")
	assert.Equal(t, Cost(500), verified.Price)

	raised := verified.WithPrice(900)
	assert.Equal(t, Cost(900), raised.Price)
	assert.True(t, raised.IsVerified())
}

package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptrade/model"
	"iptrade/schema"
)

func member(t *testing.T, s string) model.MemberIdentity {
	t.Helper()
	m, err := model.ParseMemberIdentity(s)
	require.NoError(t, err)
	return m
}

func object(t *testing.T, s string) model.ObjectIdentity {
	t.Helper()
	o, err := model.ParseObjectIdentity(s)
	require.NoError(t, err)
	return o
}

func tx(name string) env {
	return env{txHash: model.NewHash([]byte(name)), timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// registerOwnedObject writes an object with the member as its registered
// owner, the way a successful AddObject transaction would.
func registerOwnedObject(t *testing.T, st *schema.MutSchema, owner model.MemberIdentity, obj model.ObjectIdentity, e env) {
	t.Helper()
	op := &addObjectOp{objectWriteOp{Owner: owner, Object: obj}}
	require.NoError(t, op.Execute(st, e))
}

// recordEnvelope mimics the pipeline's canonical-envelope write for a
// transaction executed in a test.
func recordEnvelope(t *testing.T, st *schema.MutSchema, op operation, e env) {
	t.Helper()
	payload, err := json.Marshal(op)
	require.NoError(t, err)
	raw, err := json.Marshal(txEnvelope{Kind: op.Kind(), Payload: payload})
	require.NoError(t, err)
	require.NoError(t, st.PutTransaction(e.txHash, raw))
}

func licenseConditions(t *testing.T, obj model.ObjectIdentity, exclusive bool) model.Conditions {
	t.Helper()
	return model.Conditions{
		ContractType: model.ContractTypeLicense,
		Objects: []model.ObjectOwnership{
			{Object: obj, Term: model.Term{Spec: model.TermForever}, Exclusive: exclusive},
		},
		PaymentConditions: "single payment",
	}
}

func openLot(t *testing.T, st *schema.MutSchema, seller model.MemberIdentity, conditions model.Conditions, e env) model.Hash {
	t.Helper()
	op := &openLotOp{
		Requestor: seller,
		Lot: model.Lot{
			Name:        "portfolio",
			Seller:      seller,
			Price:       9500,
			SaleType:    model.DeriveSaleType(conditions),
			OpeningTime: e.timestamp,
			ClosingTime: e.timestamp.AddDate(0, 1, 0),
		},
		Conditions: conditions,
	}
	require.NoError(t, op.Verify())
	require.NoError(t, op.Execute(st, e))
	return e.txHash
}

func verifyLot(t *testing.T, st *schema.MutSchema, lotID model.Hash) {
	t.Helper()
	op := &editLotStatusOp{LotID: lotID, Status: model.LotVerified}
	require.NoError(t, op.Execute(st, tx("verify-"+lotID.String())))
}

func TestOpenLotPublishesObjectsAndStoresChecks(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))

	conditions := licenseConditions(t, obj, false)
	lotID := openLot(t, st, seller, conditions, tx("open-lot"))

	lot, err := st.Lot(lotID)
	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.Equal(t, model.SalePrivateSale, lot.SaleType)

	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.IsNew())

	publisher, err := st.PublishingLot(obj.ID())
	require.NoError(t, err)
	require.NotNil(t, publisher)
	assert.Equal(t, lotID, *publisher)

	owns, err := st.OwnsLot(seller.ID(), lotID)
	require.NoError(t, err)
	assert.True(t, owns)

	checks, err := st.Checks(lotID)
	require.NoError(t, err)
	assert.NotEmpty(t, checks)

	// a second lot cannot publish the same object
	again := &openLotOp{
		Requestor:  seller,
		Lot:        *lot,
		Conditions: conditions,
	}
	err = again.Execute(st, tx("open-lot-2"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeAlreadyExists))
}

func TestOpenLotRequiresSellerRights(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	stranger := member(t, "ogrn::1127746123450")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))

	op := &openLotOp{
		Requestor: stranger,
		Lot: model.Lot{
			Name: "portfolio", Seller: stranger, Price: 9500,
			SaleType:    model.SalePrivateSale,
			ClosingTime: time.Now().Add(time.Hour),
		},
		Conditions: licenseConditions(t, obj, false),
	}
	err := op.Execute(st, tx("open-lot"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodePermissionDenied))
}

func TestPublishBidsSkipsOutbidValuesAndRaisesPrice(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, true), tx("open-lot"))
	verifyLot(t, st, lotID)

	op := &publishBidsOp{LotID: lotID, Bids: []model.Cost{10000, 12000, 9000}}
	require.NoError(t, op.Execute(st, tx("publish")))

	bids, err := st.Bids(lotID)
	require.NoError(t, err)
	require.Len(t, bids, 2, "9000 does not beat the 9500 base price")
	assert.Equal(t, model.Cost(10000), bids[0].Value)
	assert.Equal(t, model.Cost(12000), bids[1].Value)

	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.Cost(12000), state.Price)
}

func TestAddBidRules(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	bidder := member(t, "ogrn::1127746123450")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, true), tx("open-lot"))

	// bids are rejected before verification
	low := &addBidOp{Requestor: bidder, LotID: lotID, Value: 10000}
	err := low.Execute(st, tx("bid-early"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	verifyLot(t, st, lotID)

	// the seller may not bid on their own lot
	own := &addBidOp{Requestor: seller, LotID: lotID, Value: 10000}
	err = own.Execute(st, tx("bid-own"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodePermissionDenied))

	// a bid must exceed the current price
	weak := &addBidOp{Requestor: bidder, LotID: lotID, Value: 9500}
	err = weak.Execute(st, tx("bid-weak"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadValue))

	good := &addBidOp{Requestor: bidder, LotID: lotID, Value: 10000}
	require.NoError(t, good.Execute(st, tx("bid-good")))

	history, err := st.BidHistory(lotID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, tx("bid-good").txHash, history[0])
}

func TestExtendLotPeriod(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-lot"))

	before, err := st.Lot(lotID)
	require.NoError(t, err)
	require.NotNil(t, before)

	// an extension to an earlier or equal closing time fails
	op := &extendLotPeriodOp{Requestor: seller, LotID: lotID, NewClosingTime: before.ClosingTime}
	err = op.Execute(st, tx("extend-equal"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	unchanged, err := st.Lot(lotID)
	require.NoError(t, err)
	assert.Equal(t, *before, *unchanged)

	later := before.ClosingTime.AddDate(0, 1, 0)
	op = &extendLotPeriodOp{Requestor: seller, LotID: lotID, NewClosingTime: later}
	require.NoError(t, op.Execute(st, tx("extend")))

	extended, err := st.Lot(lotID)
	require.NoError(t, err)
	require.NotNil(t, extended)
	assert.Equal(t, later, extended.ClosingTime)

	// conditions and state survive the rewrite untouched
	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, before.Price, state.Price)
}

func TestPrivateSaleAcquisition(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	buyer := member(t, "ogrn::1127746123450")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-lot"))

	// not acquirable before verification
	early := &acquireLotOp{Requestor: buyer, LotID: lotID}
	err := early.Execute(st, tx("acquire-early"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	verifyLot(t, st, lotID)

	// the seller may not acquire their own lot
	own := &acquireLotOp{Requestor: seller, LotID: lotID}
	err = own.Execute(st, tx("acquire-own"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodePermissionDenied))

	e := tx("acquire")
	op := &acquireLotOp{Requestor: buyer, LotID: lotID}
	require.NoError(t, op.Execute(st, e))

	contract, err := st.Contract(e.txHash)
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, model.StatusNew, contract.Status.Kind)
	assert.Equal(t, buyer, contract.Buyer)
	assert.Equal(t, seller, contract.Seller)
	assert.Equal(t, model.Cost(9500), contract.Price)

	// the lot is gone and the object is free to list again
	lot, err := st.Lot(lotID)
	require.NoError(t, err)
	assert.Nil(t, lot)
	publisher, err := st.PublishingLot(obj.ID())
	require.NoError(t, err)
	assert.Nil(t, publisher)
}

func TestAuctionAcquisitionRequiresWinningBidProof(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	winner := member(t, "ogrn::1127746123450")
	loser := member(t, "ogrn::5047001234561")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, true), tx("open-lot"))
	verifyLot(t, st, lotID)

	for name, bid := range map[string]*addBidOp{
		"bid-loser":  {Requestor: loser, LotID: lotID, Value: 10000},
		"bid-winner": {Requestor: winner, LotID: lotID, Value: 12000},
	} {
		e := tx(name)
		require.NoError(t, bid.Execute(st, e))
		recordEnvelope(t, st, bid, e)
	}

	publish := &publishBidsOp{LotID: lotID, Bids: []model.Cost{10000, 12000}}
	require.NoError(t, publish.Execute(st, tx("publish")))

	execute := &executeLotOp{LotID: lotID}
	require.NoError(t, execute.Execute(st, tx("execute")))

	// the losing bidder cannot prove the winning value
	err := (&acquireLotOp{Requestor: loser, LotID: lotID}).Execute(st, tx("acquire-loser"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodePermissionDenied))

	e := tx("acquire-winner")
	require.NoError(t, (&acquireLotOp{Requestor: winner, LotID: lotID}).Execute(st, e))

	contract, err := st.Contract(e.txHash)
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, model.Cost(12000), contract.Price)
}

func TestObjectUpdateInvalidatesOpenLot(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	buyer := member(t, "ogrn::1127746123450")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-lot"))
	verifyLot(t, st, lotID)

	update := &updateObjectOp{objectWriteOp{Owner: seller, Object: obj}}
	require.NoError(t, update.Execute(st, tx("update-object")))

	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Undefined)

	err = (&acquireLotOp{Requestor: buyer, LotID: lotID}).Execute(st, tx("acquire"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	// re-verification clears the flag and the lot is acquirable again
	verifyLot(t, st, lotID)
	state, err = st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.False(t, state.Undefined)

	require.NoError(t, (&acquireLotOp{Requestor: buyer, LotID: lotID}).Execute(st, tx("acquire-2")))
}

func TestEditLotStatusRejectionTerminatesLot(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-lot"))

	reject := &editLotStatusOp{LotID: lotID, Status: model.LotRejected}
	require.NoError(t, reject.Execute(st, tx("reject")))

	lot, err := st.Lot(lotID)
	require.NoError(t, err)
	assert.Nil(t, lot)
	publisher, err := st.PublishingLot(obj.ID())
	require.NoError(t, err)
	assert.Nil(t, publisher)
	owns, err := st.OwnsLot(seller.ID(), lotID)
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestEditLotStatusRejectsOnlyNewOrInvalidatedLots(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, true), tx("open-lot"))
	verifyLot(t, st, lotID)

	reject := &editLotStatusOp{LotID: lotID, Status: model.LotRejected}
	err := reject.Execute(st, tx("reject-verified"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	// moderation cannot kill a finished auction either
	require.NoError(t, (&executeLotOp{LotID: lotID}).Execute(st, tx("execute")))
	err = reject.Execute(st, tx("reject-executed"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState))

	lot, err := st.Lot(lotID)
	require.NoError(t, err)
	require.NotNil(t, lot, "a refused rejection leaves the lot in place")

	// an invalidated lot is rejectable at any status
	other := object(t, "trademark::654321")
	registerOwnedObject(t, st, seller, other, tx("add-other"))
	otherLot := openLot(t, st, seller, licenseConditions(t, other, false), tx("open-other"))
	verifyLot(t, st, otherLot)
	update := &updateObjectOp{objectWriteOp{Owner: seller, Object: other}}
	require.NoError(t, update.Execute(st, tx("update-other")))

	require.NoError(t, (&editLotStatusOp{LotID: otherLot, Status: model.LotRejected}).Execute(st, tx("reject-undefined")))
	lot, err = st.Lot(otherLot)
	require.NoError(t, err)
	assert.Nil(t, lot)
}

func TestReverifyingInvalidatedLotKeepsPriorStatus(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))
	lotID := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-lot"))

	update := &updateObjectOp{objectWriteOp{Owner: seller, Object: obj}}
	require.NoError(t, update.Execute(st, tx("update-object")))

	verifyLot(t, st, lotID)
	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.False(t, state.Undefined)
	assert.True(t, state.IsNew(), "clearing the flag does not advance the status")

	// the usual moderation step still applies afterwards
	verifyLot(t, st, lotID)
	state, err = st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.IsVerified())
}

func TestExecuteLotRules(t *testing.T) {
	st := schema.NewMut(schema.NewMemStore())
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	registerOwnedObject(t, st, seller, obj, tx("add-object"))

	privateLot := openLot(t, st, seller, licenseConditions(t, obj, false), tx("open-private"))
	verifyLot(t, st, privateLot)
	err := (&executeLotOp{LotID: privateLot}).Execute(st, tx("execute-private"))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeBadState), "a private sale has no bidding phase")
}

package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptrade/model"
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

func newTestSchema() (*MemStore, *MutSchema) {
	store := NewMemStore()
	return store, NewMut(store)
}

func TestPutObjectAppendsProvedHistory(t *testing.T) {
	_, st := newTestSchema()
	obj := object(t, "trademark::123456")

	tx1 := model.NewHash([]byte("tx1"))
	tx2 := model.NewHash([]byte("tx2"))
	require.NoError(t, st.PutObject(obj, tx1))
	require.NoError(t, st.PutObject(obj, tx2))

	history, err := st.ObjectHistory(obj.ID())
	require.NoError(t, err)
	assert.Equal(t, []model.Hash{tx1, tx2}, history)

	root, err := st.ObjectHistoryRoot(obj.ID())
	require.NoError(t, err)
	assert.False(t, root.IsZero())

	roots, err := st.StateHash()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root, roots[0])
}

func TestUpdateRightsDiffsTheHolderSet(t *testing.T) {
	_, st := newTestSchema()
	obj := object(t, "trademark::123456")
	objectID := obj.ID()
	alice := member(t, "ogrn::1027700132195").ID()
	bob := member(t, "ogrn::1127746123450").ID()
	carol := member(t, "snils::11223344595").ID()

	now := time.Now()
	require.NoError(t, st.UpdateRights(objectID, map[model.Hash]model.Rights{
		alice: model.OwnedRights(now),
		bob:   {Flags: model.RightExclusive, StartingTime: now},
	}))

	require.NoError(t, st.UpdateRights(objectID, map[model.Hash]model.Rights{
		alice: model.OwnedRights(now),
		carol: {Flags: model.RightCanDistribute, StartingTime: now},
	}))

	holders, err := st.Rightholders(objectID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Hash{alice, carol}, holders)

	gone, err := st.RightsOf(objectID, bob)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := st.RightsOf(objectID, alice)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.IsOwner())
}

func TestMemberShareDeduplicates(t *testing.T) {
	_, st := newTestSchema()
	alice := member(t, "ogrn::1027700132195")
	bob := member(t, "ogrn::1127746123450")

	var shared, aliceOnly model.PublicKey
	shared[0], aliceOnly[0] = 1, 2

	require.NoError(t, st.AddMemberNode(alice.ID(), shared))
	require.NoError(t, st.AddMemberNode(alice.ID(), aliceOnly))
	require.NoError(t, st.AddMemberNode(bob.ID(), shared))

	share, err := st.MemberShare(alice, bob)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.PublicKey{shared, aliceOnly}, share)
}

func TestMemberShareToleratesNodelessMembers(t *testing.T) {
	_, st := newTestSchema()
	share, err := st.MemberShare(member(t, "ogrn::1027700132195"))
	require.NoError(t, err)
	assert.Empty(t, share)
}

func TestMemberNodesRejectsCorruptKey(t *testing.T) {
	store, st := newTestSchema()
	alice := member(t, "ogrn::1027700132195")
	require.NoError(t, store.Put(NewKey(famMemberNodes, alice.ID().String(), "junk"), []byte("junk")))

	_, err := st.MemberNodes(alice.ID())
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeInternal))
}

func TestCheckResultFor(t *testing.T) {
	_, st := newTestSchema()
	subject := model.NewHash([]byte("lot"))

	require.NoError(t, st.PutChecks(subject, []model.Check{
		model.CheckObjectsSellable.Ok(),
		model.CheckLocationValid.Unknown(),
	}))
	require.NoError(t, st.CheckResultFor(subject), "unknown verdicts do not block")

	require.NoError(t, st.PutCheck(subject, model.CheckObjectDuplicates.Err()))
	err := st.CheckResultFor(subject)
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeCheckFail))

	// re-running the same check to Ok clears the failure
	require.NoError(t, st.PutCheck(subject, model.CheckObjectDuplicates.Ok()))
	require.NoError(t, st.CheckResultFor(subject))
}

func TestInvalidateObjectDeals(t *testing.T) {
	_, st := newTestSchema()
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "trademark::123456")
	conditions := model.Conditions{
		ContractType: model.ContractTypeLicense,
		Objects:      []model.ObjectOwnership{{Object: obj, Term: model.Term{Spec: model.TermForever}}},
	}

	lotID := model.NewHash([]byte("lot"))
	lot := model.Lot{
		Name: "n", Seller: seller, Price: 100, SaleType: model.SalePrivateSale,
		ClosingTime: time.Now().Add(time.Hour),
	}
	require.NoError(t, st.AddLot(lotID, lot, conditions))
	require.NoError(t, st.PublishObject(obj.ID(), lotID))

	contractID := model.NewHash([]byte("contract"))
	require.NoError(t, st.AddContract(contractID, model.NewContract(
		member(t, "ogrn::1127746123450"), seller, 100, conditions)))

	require.NoError(t, st.InvalidateObjectDeals(obj.ID()))

	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Undefined)

	contract, err := st.Contract(contractID)
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.True(t, contract.Undefined)
}

func TestInvalidateObjectDealsClosesExecutedLot(t *testing.T) {
	_, st := newTestSchema()
	obj := object(t, "trademark::123456")
	lotID := model.NewHash([]byte("lot"))
	lot := model.Lot{
		Name: "n", Seller: member(t, "ogrn::1027700132195"), Price: 100,
		SaleType: model.SaleAuction, ClosingTime: time.Now().Add(time.Hour),
	}
	require.NoError(t, st.AddLot(lotID, lot, model.Conditions{}))
	state, err := st.LotState(lotID)
	require.NoError(t, err)
	require.NoError(t, st.PutLotState(lotID, state.WithStatus(model.LotExecuted)))
	require.NoError(t, st.PublishObject(obj.ID(), lotID))

	require.NoError(t, st.InvalidateObjectDeals(obj.ID()))

	state, err = st.LotState(lotID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.IsClosed())
	assert.False(t, state.Undefined)
}

func TestInvalidateSkipsRegisteringContract(t *testing.T) {
	_, st := newTestSchema()
	obj := object(t, "trademark::123456")
	conditions := model.Conditions{
		Objects: []model.ObjectOwnership{{Object: obj}},
	}
	contract := model.NewContract(
		member(t, "ogrn::1127746123450"), member(t, "ogrn::1027700132195"), 100, conditions)
	contract.Status = model.Status{Kind: model.StatusRegistering}
	contractID := model.NewHash([]byte("contract"))
	require.NoError(t, st.AddContract(contractID, contract))

	require.NoError(t, st.InvalidateObjectDeals(obj.ID()))

	stored, err := st.Contract(contractID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Undefined)
}

func TestCheckRights(t *testing.T) {
	_, st := newTestSchema()
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "invention::RU2000123")
	tx := model.NewHash([]byte("tx"))
	require.NoError(t, st.PutObject(obj, tx))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpdateRights(obj.ID(), map[model.Hash]model.Rights{
		seller.ID(): model.OwnedRights(start),
	}))

	within := start.AddDate(10, 0, 0)
	conditions := model.Conditions{
		Objects: []model.ObjectOwnership{{Object: obj, Term: model.Term{Spec: model.TermUntil, Date: &within}}},
	}
	checks, err := st.CheckRights(conditions, seller)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, model.VerdictOk, c.Result, c.Key)
	}

	// unstructured data degrades both verdicts to indeterminate
	require.NoError(t, st.ReplaceUnstructuredOwnership(obj.ID(), []model.OwnershipUnstructured{
		{Data: "передано по договору от 12.05.2019"},
	}))
	checks, err = st.CheckRights(conditions, seller)
	require.NoError(t, err)
	for _, c := range checks {
		assert.Equal(t, model.VerdictUnknown, c.Result, c.Key)
	}
}

func TestCheckRightsFailures(t *testing.T) {
	_, st := newTestSchema()
	seller := member(t, "ogrn::1027700132195")
	obj := object(t, "invention::RU2000123")
	conditions := model.Conditions{
		Objects: []model.ObjectOwnership{{Object: obj, Term: model.Term{Spec: model.TermForever}}},
	}

	_, err := st.CheckRights(conditions, seller)
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeNotFound), "unregistered object")

	require.NoError(t, st.PutObject(obj, model.NewHash([]byte("tx"))))
	_, err = st.CheckRights(conditions, seller)
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodePermissionDenied), "seller holds nothing")
}

package contract

import (
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// --- OpenLot ---

type openLotOp struct {
	publicOp
	Requestor  model.MemberIdentity `json:"requestor"`
	Lot        model.Lot            `json:"lot"`
	Conditions model.Conditions     `json:"conditions"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *openLotOp) Kind() string { return "open_lot" }

func (op *openLotOp) Verify() error {
	return op.Lot.Validate()
}

func (op *openLotOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *openLotOp) Execute(st *schema.MutSchema, e env) error {
	lotID := e.txHash
	if existing, err := st.Lot(lotID); err != nil {
		return err
	} else if existing != nil {
		return model.ErrDuplicateLot(lotID.String())
	}

	checks := op.Conditions.Check()
	checks = append(checks, op.Conditions.CheckSeller(op.Requestor))
	rightsChecks, err := st.CheckRights(op.Conditions, op.Requestor)
	if err != nil {
		return err
	}
	checks = append(checks, rightsChecks...)
	if err := st.PutChecks(lotID, checks); err != nil {
		return err
	}
	if err := st.CheckResultFor(lotID); err != nil {
		return err
	}

	for _, term := range op.Conditions.Objects {
		objectID := term.Object.ID()
		if publisher, err := st.PublishingLot(objectID); err != nil {
			return err
		} else if publisher != nil {
			return model.ErrObjectAlreadyPublished(term.Object.String())
		}
		if err := st.PublishObject(objectID, lotID); err != nil {
			return err
		}
	}

	if err := st.AddMemberLot(op.Requestor.ID(), lotID); err != nil {
		return err
	}
	return st.AddLot(lotID, op.Lot, op.Conditions)
}

// OpenLot creates a sale listing over the conditions' objects. The sale
// type is derived from the conditions, never chosen by the caller; the
// new lot's id is this transaction's hash.
func (rc *RegistryContract) OpenLot(ctx contractapi.TransactionContextInterface, requestor, name, desc, price, openingTime, closingTime, conditionsJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	if err := validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return err
	}
	if err := validateOptionalString(desc, "desc", 4096); err != nil {
		return err
	}
	cost, err := model.ParseCost(price)
	if err != nil {
		return err
	}
	opening, err := parseTimestamp(openingTime, "openingTime")
	if err != nil {
		return err
	}
	closing, err := parseTimestamp(closingTime, "closingTime")
	if err != nil {
		return err
	}
	var condIn conditionsInput
	if err := decodeJSONArg(conditionsJSON, "conditions", &condIn); err != nil {
		return err
	}
	conditions, err := condIn.parse()
	if err != nil {
		return err
	}

	lot := model.Lot{
		Name:        name,
		Desc:        desc,
		Seller:      member,
		Price:       cost,
		SaleType:    model.DeriveSaleType(conditions),
		OpeningTime: opening,
		ClosingTime: closing,
	}
	return rc.run(ctx, &openLotOp{
		Requestor:  member,
		Lot:        lot,
		Conditions: conditions,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// closeLotData clears a lot's records and unpublishes its objects. The
// lot id stays addressable; the data is gone.
func closeLotData(st *schema.MutSchema, lotID model.Hash, lot model.Lot, conditions model.Conditions) error {
	for _, term := range conditions.Objects {
		if err := st.UnpublishObject(term.Object.ID()); err != nil {
			return err
		}
	}
	if err := st.RemoveMemberLot(lot.Seller.ID(), lotID); err != nil {
		return err
	}
	return st.RemoveLot(lotID)
}

// loadLot fetches the lot triple or reports the lot unknown.
func loadLot(view *schema.Schema, lotID model.Hash) (*model.Lot, *model.Conditions, *model.LotState, error) {
	lot, err := view.Lot(lotID)
	if err != nil {
		return nil, nil, nil, err
	}
	conditions, err := view.LotConditions(lotID)
	if err != nil {
		return nil, nil, nil, err
	}
	state, err := view.LotState(lotID)
	if err != nil {
		return nil, nil, nil, err
	}
	if lot == nil || conditions == nil || state == nil {
		return nil, nil, nil, model.ErrNoLot(lotID.String())
	}
	return lot, conditions, state, nil
}

// --- CloseLot ---

type closeLotOp struct {
	publicOp
	Requestor model.MemberIdentity `json:"requestor"`
	LotID     model.Hash           `json:"lotId"`
	Auth      auth                 `json:"auth,omitempty"`
}

func (op *closeLotOp) Kind() string { return "close_lot" }

func (op *closeLotOp) Verify() error { return nil }

func (op *closeLotOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *closeLotOp) Execute(st *schema.MutSchema, e env) error {
	lot, conditions, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	owns, err := st.OwnsLot(op.Requestor.ID(), op.LotID)
	if err != nil {
		return err
	}
	if !owns {
		return model.ErrNoPermissions()
	}
	if state.IsRejected() || state.IsClosed() {
		return model.ErrBadLotState(op.LotID.String(), "the lot is already terminated")
	}
	return closeLotData(st, op.LotID, *lot, *conditions)
}

// CloseLot terminates the requestor's own lot.
func (rc *RegistryContract) CloseLot(ctx contractapi.TransactionContextInterface, requestor, lotID, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &closeLotOp{
		Requestor: member,
		LotID:     id,
		Auth:      auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- EditLotStatus ---

type editLotStatusOp struct {
	publicOp
	LotID  model.Hash      `json:"lotId"`
	Status model.LotStatus `json:"status"`
}

func (op *editLotStatusOp) Kind() string { return "edit_lot_status" }

func (op *editLotStatusOp) Verify() error {
	switch op.Status {
	case model.LotRejected, model.LotVerified:
		return nil
	}
	return model.ErrBadParam("status")
}

func (op *editLotStatusOp) PreExecute(p *preExec) error { return nil }

// Execute moves a new lot to rejected or verified. An invalidated lot
// may only be re-verified (clearing the flag, keeping its status) or
// rejected. Rejection terminates the lot.
func (op *editLotStatusOp) Execute(st *schema.MutSchema, e env) error {
	lot, conditions, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}

	if op.Status == model.LotRejected {
		if !state.IsNew() && !state.Undefined {
			return model.ErrBadLotState(op.LotID.String(), "only a new or invalidated lot can be rejected")
		}
		return closeLotData(st, op.LotID, *lot, *conditions)
	}

	if state.Undefined {
		next := *state
		next.Undefined = false
		return st.PutLotState(op.LotID, next)
	}
	if !state.IsNew() {
		return model.ErrBadLotState(op.LotID.String(), "only a new lot can be verified")
	}
	return st.PutLotState(op.LotID, state.WithStatus(model.LotVerified))
}

// EditLotStatus is the moderation decision over a lot: verification or
// rejection.
func (rc *RegistryContract) EditLotStatus(ctx contractapi.TransactionContextInterface, lotID, status string) error {
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &editLotStatusOp{LotID: id, Status: model.LotStatus(status)})
}

// --- ExecuteLot ---

type executeLotOp struct {
	publicOp
	LotID model.Hash `json:"lotId"`
}

func (op *executeLotOp) Kind() string { return "execute_lot" }

func (op *executeLotOp) Verify() error { return nil }

func (op *executeLotOp) PreExecute(p *preExec) error { return nil }

func (op *executeLotOp) Execute(st *schema.MutSchema, e env) error {
	lot, _, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	if !lot.IsAuction() {
		return model.ErrBadLotState(op.LotID.String(), "only an auction can be executed")
	}
	if state.Undefined {
		return model.ErrLotIsUndefined(op.LotID.String())
	}
	if !state.IsVerified() {
		return model.ErrBadLotState(op.LotID.String(), "only a verified lot can be executed")
	}
	return st.PutLotState(op.LotID, state.WithStatus(model.LotExecuted))
}

// ExecuteLot closes the bidding phase of an auction.
func (rc *RegistryContract) ExecuteLot(ctx contractapi.TransactionContextInterface, lotID string) error {
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &executeLotOp{LotID: id})
}

// --- ExtendLotPeriod ---

type extendLotPeriodOp struct {
	publicOp
	Requestor      model.MemberIdentity `json:"requestor"`
	LotID          model.Hash           `json:"lotId"`
	NewClosingTime time.Time            `json:"newClosingTime"`
	Auth           auth                 `json:"auth,omitempty"`
}

func (op *extendLotPeriodOp) Kind() string { return "extend_lot_period" }

func (op *extendLotPeriodOp) Verify() error { return nil }

func (op *extendLotPeriodOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

// Execute rewrites the lot record in place with the later closing time.
// Conditions and state are untouched.
func (op *extendLotPeriodOp) Execute(st *schema.MutSchema, e env) error {
	lot, _, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	owns, err := st.OwnsLot(op.Requestor.ID(), op.LotID)
	if err != nil {
		return err
	}
	if !owns {
		return model.ErrNoPermissions()
	}
	if !state.IsNew() && !state.IsVerified() {
		return model.ErrBadLotState(op.LotID.String(), "the bidding period can no longer change")
	}
	if !op.NewClosingTime.After(lot.ClosingTime) {
		return model.ErrBadLotTimeExtension()
	}
	extended := *lot
	extended.ClosingTime = op.NewClosingTime
	return st.RewriteLot(op.LotID, extended)
}

// ExtendLotPeriod moves a lot's closing time to a strictly later date.
func (rc *RegistryContract) ExtendLotPeriod(ctx contractapi.TransactionContextInterface, requestor, lotID, newClosingTime, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	closing, err := parseTimestamp(newClosingTime, "newClosingTime")
	if err != nil {
		return err
	}
	return rc.run(ctx, &extendLotPeriodOp{
		Requestor:      member,
		LotID:          id,
		NewClosingTime: closing,
		Auth:           auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AcquireLot ---

type acquireLotOp struct {
	Requestor model.MemberIdentity `json:"requestor"`
	LotID     model.Hash           `json:"lotId"`
	Auth      auth                 `json:"auth,omitempty"`
}

func (op *acquireLotOp) Kind() string { return "acquire_lot" }

func (op *acquireLotOp) Verify() error { return nil }

func (op *acquireLotOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

// Participants shares the resulting contract with the acquirer's and the
// seller's nodes.
func (op *acquireLotOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	lot, err := view.Lot(op.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, model.ErrNoLot(op.LotID.String())
	}
	return view.MemberShare(op.Requestor, lot.Seller)
}

// Execute turns a lot into a Contract and closes it, atomically. A
// private sale is acquirable while verified at the listed price; an
// executed auction only by the author of a private bid matching the
// final maximum.
func (op *acquireLotOp) Execute(st *schema.MutSchema, e env) error {
	lot, conditions, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	if state.Undefined {
		return model.ErrLotIsUndefined(op.LotID.String())
	}
	owns, err := st.OwnsLot(op.Requestor.ID(), op.LotID)
	if err != nil {
		return err
	}
	if owns {
		return model.ErrNoPermissions()
	}

	price := state.Price
	if lot.IsPrivateSale() {
		if !state.IsVerified() {
			return model.ErrBadLotState(op.LotID.String(), "a private sale is acquirable only while verified")
		}
	} else {
		if !state.IsExecuted() {
			return model.ErrBadLotState(op.LotID.String(), "an auction is acquirable only after execution")
		}
		proved, err := op.provesWinningBid(&st.Schema, state.Price)
		if err != nil {
			return err
		}
		if !proved {
			return model.ErrNoPermissions()
		}
	}

	contractID := e.txHash
	checks := conditions.Check()
	checks = append(checks,
		conditions.CheckSeller(lot.Seller),
		conditions.CheckBuyer(op.Requestor))
	rightsChecks, err := st.CheckRights(*conditions, lot.Seller)
	if err != nil {
		return err
	}
	checks = append(checks, rightsChecks...)
	if err := st.PutChecks(contractID, checks); err != nil {
		return err
	}
	if err := st.CheckResultFor(contractID); err != nil {
		return err
	}

	contract := model.NewContract(op.Requestor, lot.Seller, price, *conditions)
	if err := st.AddContract(contractID, contract); err != nil {
		return err
	}
	return closeLotData(st, op.LotID, *lot, *conditions)
}

// provesWinningBid scans the private bid provenance for a bid authored
// by the requestor at exactly the final maximum.
func (op *acquireLotOp) provesWinningBid(view *schema.Schema, finalPrice model.Cost) (bool, error) {
	history, err := view.BidHistory(op.LotID)
	if err != nil {
		return false, err
	}
	for _, bidTx := range history {
		bid, err := loadPrivateBid(view, bidTx)
		if err != nil {
			return false, err
		}
		if bid.Requestor == op.Requestor && bid.Value == finalPrice {
			return true, nil
		}
	}
	return false, nil
}

// AcquireLot buys a lot: the fixed price of a private sale, or the
// winning bid of an executed auction.
func (rc *RegistryContract) AcquireLot(ctx contractapi.TransactionContextInterface, requestor, lotID, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &acquireLotOp{
		Requestor: member,
		LotID:     id,
		Auth:      auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

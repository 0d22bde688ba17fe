package contract

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// --- AddBid ---

// addBidOp is a private bid: the payload is shared with the bidder's own
// nodes only, and the public state keeps just the transaction hash in
// the lot's provenance list.
type addBidOp struct {
	Requestor model.MemberIdentity `json:"requestor"`
	LotID     model.Hash           `json:"lotId"`
	Value     model.Cost           `json:"value"`
	Auth      auth                 `json:"auth,omitempty"`
}

func (op *addBidOp) Kind() string { return "add_bid" }

func (op *addBidOp) Verify() error { return nil }

func (op *addBidOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addBidOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return view.MemberShare(op.Requestor)
}

func (op *addBidOp) Execute(st *schema.MutSchema, e env) error {
	lot, _, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	if !lot.IsAuction() {
		return model.ErrBadLotState(op.LotID.String(), "bids are accepted on auctions only")
	}
	if state.Undefined {
		return model.ErrLotIsUndefined(op.LotID.String())
	}
	if !state.IsVerified() {
		return model.ErrBadLotState(op.LotID.String(), "bids are accepted on verified lots only")
	}
	owns, err := st.OwnsLot(op.Requestor.ID(), op.LotID)
	if err != nil {
		return err
	}
	if owns {
		return model.ErrNoPermissions()
	}
	if op.Value <= state.Price {
		return model.ErrLowBid(op.Value.String(), state.Price.String())
	}
	return st.AddBidHistory(op.LotID, e.txHash)
}

// loadPrivateBid decodes a stored add_bid envelope.
func loadPrivateBid(view *schema.Schema, txHash model.Hash) (*addBidOp, error) {
	payload, err := loadEnvelope(view, txHash, "add_bid")
	if err != nil {
		return nil, err
	}
	var bid addBidOp
	if err := json.Unmarshal(payload, &bid); err != nil {
		return nil, model.ErrInternalBadStruct("bid")
	}
	return &bid, nil
}

// AddBid places a sealed bid on a verified auction. The value stays off
// the public state until PublishBids reveals it.
func (rc *RegistryContract) AddBid(ctx contractapi.TransactionContextInterface, requestor, lotID, value, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	cost, err := model.ParseCost(value)
	if err != nil {
		return err
	}
	return rc.run(ctx, &addBidOp{
		Requestor: member,
		LotID:     id,
		Value:     cost,
		Auth:      auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- PublishBids ---

type publishBidsOp struct {
	publicOp
	LotID model.Hash   `json:"lotId"`
	Bids  []model.Cost `json:"bids"`
}

func (op *publishBidsOp) Kind() string { return "publish_bids" }

func (op *publishBidsOp) Verify() error {
	if len(op.Bids) == 0 || len(op.Bids) > maxArrayElements {
		return model.ErrBadParam("bids")
	}
	return nil
}

func (op *publishBidsOp) PreExecute(p *preExec) error { return nil }

// Execute reveals a batch of bid values on a verified auction. Each
// value exceeding the price at the start of the batch is appended to the
// public list; values at or below it are skipped, not failed. The lot
// price rises to the maximum accepted value.
func (op *publishBidsOp) Execute(st *schema.MutSchema, e env) error {
	lot, _, state, err := loadLot(&st.Schema, op.LotID)
	if err != nil {
		return err
	}
	if !lot.IsAuction() {
		return model.ErrBadLotState(op.LotID.String(), "only an auction has bids to publish")
	}
	if state.Undefined {
		return model.ErrLotIsUndefined(op.LotID.String())
	}
	if !state.IsVerified() {
		return model.ErrBadLotState(op.LotID.String(), "bids are published on verified lots only")
	}

	basePrice := state.Price
	maxAccepted := basePrice
	for _, value := range op.Bids {
		if value <= basePrice {
			logger.Debugw("skipping outbid value",
				"lot", op.LotID.String(), "value", value.String(), "price", basePrice.String())
			continue
		}
		if err := st.AddBid(op.LotID, model.Bid{Value: value}); err != nil {
			return err
		}
		if value > maxAccepted {
			maxAccepted = value
		}
	}
	if maxAccepted > basePrice {
		return st.PutLotState(op.LotID, state.WithPrice(maxAccepted))
	}
	return nil
}

// PublishBids reveals previously sealed bid values on an auction and
// raises the lot price to the best of them.
func (rc *RegistryContract) PublishBids(ctx contractapi.TransactionContextInterface, lotID, bidsJSON string) error {
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return err
	}
	var raw []string
	if err := decodeJSONArg(bidsJSON, "bids", &raw); err != nil {
		return err
	}
	bids := make([]model.Cost, 0, len(raw))
	for _, s := range raw {
		cost, err := model.ParseCost(s)
		if err != nil {
			return err
		}
		bids = append(bids, cost)
	}
	return rc.run(ctx, &publishBidsOp{LotID: id, Bids: bids})
}

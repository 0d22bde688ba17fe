package model

import (
	"fmt"
	"time"
)

// StatusKind names the nine contract life-cycle statuses.
type StatusKind uint8

const (
	StatusNew StatusKind = iota
	StatusDraft
	StatusConfirmed
	StatusSigned
	StatusRegistering
	StatusAwaitingUserAction
	StatusRefused
	StatusApproved
	StatusRejected
)

var statusNames = map[StatusKind]string{
	StatusNew:                "new",
	StatusDraft:              "draft",
	StatusConfirmed:          "confirmed",
	StatusSigned:             "signed",
	StatusRegistering:        "registering",
	StatusAwaitingUserAction: "awaiting_user_action",
	StatusRefused:            "refused",
	StatusApproved:           "approved",
	StatusRejected:           "rejected",
}

func (k StatusKind) String() string {
	if name, ok := statusNames[k]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(k))
}

// Status is the tagged contract status. The party-acted pair is
// meaningful only in Draft (acknowledgements) and Confirmed
// (signatures); it is false everywhere else.
type Status struct {
	Kind        StatusKind `json:"kind"`
	BuyerActed  bool       `json:"buyerActed"`
	SellerActed bool       `json:"sellerActed"`
}

func (s Status) String() string {
	switch s.Kind {
	case StatusDraft, StatusConfirmed:
		return fmt.Sprintf("%s(buyer:%t,seller:%t)", s.Kind, s.BuyerActed, s.SellerActed)
	}
	return s.Kind.String()
}

// IsTerminal reports whether no action can move the contract further.
func (s Status) IsTerminal() bool {
	switch s.Kind {
	case StatusApproved, StatusRejected, StatusRefused:
		return true
	}
	return false
}

// Packed-state bits, the stored wire form of a Status. The party bits
// are shared between Draft and Confirmed; the primary bit decides which.
const (
	stateDraft              uint16 = 1
	stateConfirmed          uint16 = 2
	stateBuyerActed         uint16 = 4
	stateSellerActed        uint16 = 8
	stateSigned             uint16 = 16
	stateRegistering        uint16 = 32
	stateRefused            uint16 = 64
	stateApproved           uint16 = 128
	stateRejected           uint16 = 256
	stateAwaitingUserAction uint16 = 512
)

// Pack encodes the status into its storage bits.
func (s Status) Pack() uint16 {
	var bits uint16
	switch s.Kind {
	case StatusNew:
		return 0
	case StatusDraft:
		bits = stateDraft
	case StatusConfirmed:
		bits = stateConfirmed
	case StatusSigned:
		return stateSigned
	case StatusRegistering:
		return stateRegistering
	case StatusAwaitingUserAction:
		return stateAwaitingUserAction
	case StatusRefused:
		return stateRefused
	case StatusApproved:
		return stateApproved
	case StatusRejected:
		return stateRejected
	}
	if s.BuyerActed {
		bits |= stateBuyerActed
	}
	if s.SellerActed {
		bits |= stateSellerActed
	}
	return bits
}

// UnpackStatus decodes stored bits into exactly one status. A value that
// does not decode is ledger corruption and is surfaced as an internal
// error, never coerced.
func UnpackStatus(bits uint16) (Status, error) {
	party := Status{
		BuyerActed:  bits&stateBuyerActed != 0,
		SellerActed: bits&stateSellerActed != 0,
	}
	primary := bits &^ (stateBuyerActed | stateSellerActed)
	switch primary {
	case 0:
		if party.BuyerActed || party.SellerActed {
			return Status{}, ErrInternalBadStruct("Contract")
		}
		return Status{Kind: StatusNew}, nil
	case stateDraft:
		party.Kind = StatusDraft
		return party, nil
	case stateConfirmed:
		party.Kind = StatusConfirmed
		return party, nil
	}
	if party.BuyerActed || party.SellerActed {
		return Status{}, ErrInternalBadStruct("Contract")
	}
	switch primary {
	case stateSigned:
		return Status{Kind: StatusSigned}, nil
	case stateRegistering:
		return Status{Kind: StatusRegistering}, nil
	case stateAwaitingUserAction:
		return Status{Kind: StatusAwaitingUserAction}, nil
	case stateRefused:
		return Status{Kind: StatusRefused}, nil
	case stateApproved:
		return Status{Kind: StatusApproved}, nil
	case stateRejected:
		return Status{Kind: StatusRejected}, nil
	}
	return Status{}, ErrInternalBadStruct("Contract")
}

// Action is one contract life-cycle action. The set is closed.
type Action interface {
	isAction()
	String() string
}

type MakeDraft struct{}
type Confirm struct{ Actor MemberIdentity }
type Sign struct{ Actor MemberIdentity }
type UpdateTerms struct{}
type Refuse struct{}
type Register struct{}
type AwaitUserAction struct{}
type Approve struct{}
type Reject struct{}

func (MakeDraft) isAction()       {}
func (Confirm) isAction()         {}
func (Sign) isAction()            {}
func (UpdateTerms) isAction()     {}
func (Refuse) isAction()          {}
func (Register) isAction()        {}
func (AwaitUserAction) isAction() {}
func (Approve) isAction()         {}
func (Reject) isAction()          {}

func (MakeDraft) String() string       { return "make_draft" }
func (a Confirm) String() string       { return "confirm by " + a.Actor.String() }
func (a Sign) String() string          { return "sign by " + a.Actor.String() }
func (UpdateTerms) String() string     { return "update_terms" }
func (Refuse) String() string          { return "refuse" }
func (Register) String() string        { return "register" }
func (AwaitUserAction) String() string { return "await_user_action" }
func (Approve) String() string         { return "approve" }
func (Reject) String() string          { return "reject" }

// TaxInfo records a state-fee payment attached to a contract.
type TaxInfo struct {
	PaymentNumber string    `json:"paymentNumber"`
	PaymentDate   time.Time `json:"paymentDate"`
	Amount        Cost      `json:"amount"`
}

// Contract is a bilateral rights-transfer agreement. It is created on
// lot acquisition or purchase offer and only ever mutated in place.
type Contract struct {
	Buyer           MemberIdentity `json:"buyer"`
	Seller          MemberIdentity `json:"seller"`
	Price           Cost           `json:"price"`
	Conditions      Conditions     `json:"conditions"`
	Status          Status         `json:"status"`
	Undefined       bool           `json:"undefined"`
	ReferenceNumber string         `json:"referenceNumber,omitempty"`
}

// NewContract starts the life cycle in status New.
func NewContract(buyer, seller MemberIdentity, price Cost, conditions Conditions) Contract {
	return Contract{
		Buyer:      buyer,
		Seller:     seller,
		Price:      price,
		Conditions: conditions,
		Status:     Status{Kind: StatusNew},
	}
}

func (c Contract) IsBuyer(m MemberIdentity) bool  { return c.Buyer == m }
func (c Contract) IsSeller(m MemberIdentity) bool { return c.Seller == m }

// IsMember reports whether m is a party to the contract.
func (c Contract) IsMember(m MemberIdentity) bool {
	return c.IsBuyer(m) || c.IsSeller(m)
}

// AcceptsUndefined reports whether an object change may still invalidate
// the contract: terminal contracts and contracts in the registration
// phase are exempt.
func (c Contract) AcceptsUndefined() bool {
	switch c.Status.Kind {
	case StatusRegistering, StatusAwaitingUserAction:
		return false
	}
	return !c.Status.IsTerminal()
}

// Apply is the total transition function over (status, action). Any pair
// outside the life-cycle table is a BadContractState error naming both;
// there is no fallthrough. Party actions must come from the buyer or the
// seller of this contract.
func (c Contract) Apply(action Action) (Contract, error) {
	invalid := func() (Contract, error) {
		return Contract{}, ErrBadContractState(c.Status.String(), action.String())
	}

	switch c.Status.Kind {
	case StatusNew:
		switch action.(type) {
		case MakeDraft:
			c.Status = Status{Kind: StatusDraft}
			return c, nil
		case Reject:
			c.Status = Status{Kind: StatusRejected}
			return c, nil
		}
	case StatusDraft:
		switch a := action.(type) {
		case Confirm:
			return c.actParty(a.Actor, action, StatusConfirmed)
		case Refuse:
			c.Status = Status{Kind: StatusRefused}
			return c, nil
		case UpdateTerms:
			c.Status = Status{Kind: StatusNew}
			return c, nil
		}
	case StatusConfirmed:
		if a, ok := action.(Sign); ok {
			return c.actParty(a.Actor, action, StatusSigned)
		}
	case StatusSigned:
		if _, ok := action.(Register); ok {
			c.Status = Status{Kind: StatusRegistering}
			return c, nil
		}
	case StatusRegistering:
		switch action.(type) {
		case AwaitUserAction:
			c.Status = Status{Kind: StatusAwaitingUserAction}
			return c, nil
		case Approve:
			c.Status = Status{Kind: StatusApproved}
			return c, nil
		case Reject:
			c.Status = Status{Kind: StatusRejected}
			return c, nil
		}
	case StatusAwaitingUserAction:
		switch action.(type) {
		case Approve:
			c.Status = Status{Kind: StatusApproved}
			return c, nil
		case Reject:
			c.Status = Status{Kind: StatusRejected}
			return c, nil
		}
	}
	return invalid()
}

// actParty records one party's acknowledgement or signature and advances
// to next once both parties have acted.
func (c Contract) actParty(actor MemberIdentity, action Action, next StatusKind) (Contract, error) {
	switch {
	case c.IsBuyer(actor):
		c.Status.BuyerActed = true
	case c.IsSeller(actor):
		c.Status.SellerActed = true
	default:
		return Contract{}, ErrBadContractState(c.Status.String(), action.String())
	}
	if c.Status.BuyerActed && c.Status.SellerActed {
		c.Status = Status{Kind: next}
	}
	return c, nil
}

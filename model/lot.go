package model

import "time"

// SaleType tags how a lot is sold. It is derived from the deal
// conditions at creation, never chosen by the caller.
type SaleType string

const (
	SaleAuction     SaleType = "auction"
	SalePrivateSale SaleType = "private_sale"
)

// DeriveSaleType decides the sale form: expropriation is always an open
// auction, a pledge agreement is always a private sale, and otherwise a
// deal transferring any exclusive term goes to auction.
func DeriveSaleType(conditions Conditions) SaleType {
	switch {
	case conditions.ContractType == ContractTypeExpropriation:
		return SaleAuction
	case conditions.ContractType == ContractTypePledge:
		return SalePrivateSale
	case conditions.HasExclusiveTerm():
		return SaleAuction
	}
	return SalePrivateSale
}

const maxLotDescLength = 4096

// Lot is a sale listing. Its id is the hash of the creating transaction;
// the record is rewritten only by an explicit period extension.
type Lot struct {
	Name        string         `json:"name"`
	Desc        string         `json:"desc"`
	Seller      MemberIdentity `json:"seller"`
	Price       Cost           `json:"price"`
	SaleType    SaleType       `json:"saleType"`
	OpeningTime time.Time      `json:"openingTime"`
	ClosingTime time.Time      `json:"closingTime"`
}

// Validate enforces the structural lot invariants, in particular that
// the closing time is strictly after the opening time.
func (l Lot) Validate() error {
	if l.Name == "" {
		return ErrBadParam("lot name")
	}
	if len(l.Desc) > maxLotDescLength {
		return ErrBadParam("lot description")
	}
	if !l.ClosingTime.After(l.OpeningTime) {
		return ErrBadLotTime()
	}
	return nil
}

func (l Lot) IsAuction() bool     { return l.SaleType == SaleAuction }
func (l Lot) IsPrivateSale() bool { return l.SaleType == SalePrivateSale }

// LotStatus is the stored status tag of a lot. "completed" belongs to
// the wire vocabulary but is not reachable through the life cycle.
type LotStatus string

const (
	LotNew       LotStatus = "new"
	LotRejected  LotStatus = "rejected"
	LotVerified  LotStatus = "verified"
	LotCompleted LotStatus = "completed"
	LotExecuted  LotStatus = "executed"
	LotClosed    LotStatus = "closed"
)

// LotState is the mutable companion of a Lot: the current price, the
// status, and the orthogonal invalidation flag.
type LotState struct {
	Name      string    `json:"name"`
	Price     Cost      `json:"price"`
	Status    LotStatus `json:"status"`
	Undefined bool      `json:"undefined"`
}

// OpenLotState is the state written together with a new lot.
func OpenLotState(lot Lot) LotState {
	return LotState{Name: lot.Name, Price: lot.Price, Status: LotNew}
}

// WithStatus returns a copy in the given status, keeping price and flag.
func (s LotState) WithStatus(status LotStatus) LotState {
	s.Status = status
	return s
}

// WithPrice returns a copy at the given current price.
func (s LotState) WithPrice(price Cost) LotState {
	s.Price = price
	return s
}

func (s LotState) IsNew() bool      { return s.Status == LotNew }
func (s LotState) IsRejected() bool { return s.Status == LotRejected }
func (s LotState) IsVerified() bool { return s.Status == LotVerified }
func (s LotState) IsExecuted() bool { return s.Status == LotExecuted }
func (s LotState) IsClosed() bool   { return s.Status == LotClosed }

// Bid is one published bid value. The provenance of private bids is the
// parallel bid-history list of transaction hashes.
type Bid struct {
	Value Cost `json:"value"`
}

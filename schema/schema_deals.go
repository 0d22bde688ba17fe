package schema

import (
	"encoding/json"

	"iptrade/model"
)

// --- lots ---

func (s *Schema) Lot(lotID model.Hash) (*model.Lot, error) {
	var lot model.Lot
	ok, err := s.getJSON(NewKey(famLots, lotID.String()), &lot)
	if err != nil || !ok {
		return nil, err
	}
	return &lot, nil
}

func (s *Schema) LotConditions(lotID model.Hash) (*model.Conditions, error) {
	var c model.Conditions
	ok, err := s.getJSON(NewKey(famLotConditions, lotID.String()), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Schema) LotState(lotID model.Hash) (*model.LotState, error) {
	var state model.LotState
	ok, err := s.getJSON(NewKey(famLotStates, lotID.String()), &state)
	if err != nil || !ok {
		return nil, err
	}
	return &state, nil
}

// AddLot writes the lot, its conditions and its opening state together.
func (s *MutSchema) AddLot(lotID model.Hash, lot model.Lot, conditions model.Conditions) error {
	if err := s.putJSON(NewKey(famLots, lotID.String()), lot); err != nil {
		return err
	}
	if err := s.putJSON(NewKey(famLotConditions, lotID.String()), conditions); err != nil {
		return err
	}
	return s.PutLotState(lotID, model.OpenLotState(lot))
}

// RewriteLot replaces the lot record in place, leaving conditions and
// state untouched. Used only by period extension.
func (s *MutSchema) RewriteLot(lotID model.Hash, lot model.Lot) error {
	return s.putJSON(NewKey(famLots, lotID.String()), lot)
}

func (s *MutSchema) PutLotState(lotID model.Hash, state model.LotState) error {
	return s.putJSON(NewKey(famLotStates, lotID.String()), state)
}

// RemoveLot clears the lot, its conditions and its state. The id stays
// addressable; the data is gone.
func (s *MutSchema) RemoveLot(lotID model.Hash) error {
	for _, fam := range []string{famLots, famLotConditions, famLotStates} {
		if err := s.fork.Delete(NewKey(fam, lotID.String())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) MemberLots(memberID model.Hash) ([]model.Hash, error) {
	entries, err := s.view.List(famMemberLots, memberID.String())
	if err != nil {
		return nil, err
	}
	ids := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		id, err := model.HashFromHex(e.Attrs[1])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famMemberLots)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// OwnsLot reports whether the member opened the lot.
func (s *Schema) OwnsLot(memberID, lotID model.Hash) (bool, error) {
	raw, err := s.view.Get(NewKey(famMemberLots, memberID.String(), lotID.String()))
	return raw != nil, err
}

func (s *MutSchema) AddMemberLot(memberID, lotID model.Hash) error {
	key := NewKey(famMemberLots, memberID.String(), lotID.String())
	return s.fork.Put(key, []byte(lotID.String()))
}

func (s *MutSchema) RemoveMemberLot(memberID, lotID model.Hash) error {
	return s.fork.Delete(NewKey(famMemberLots, memberID.String(), lotID.String()))
}

// --- bids ---

// Bids returns the published bid values of a lot in publication order.
func (s *Schema) Bids(lotID model.Hash) ([]model.Bid, error) {
	values, err := historyValues(s.view, famBids, lotID.String())
	if err != nil {
		return nil, err
	}
	bids := make([]model.Bid, 0, len(values))
	for _, v := range values {
		var b model.Bid
		if err := json.Unmarshal(v, &b); err != nil {
			return nil, model.ErrInternalBadStruct(famBids)
		}
		bids = append(bids, b)
	}
	return bids, nil
}

func (s *MutSchema) AddBid(lotID model.Hash, bid model.Bid) error {
	raw, err := json.Marshal(bid)
	if err != nil {
		return err
	}
	return appendHistory(s.fork, famBids, lotID.String(), raw)
}

// BidHistory returns the provenance hashes of the private bid
// transactions, parallel to the published values.
func (s *Schema) BidHistory(lotID model.Hash) ([]model.Hash, error) {
	values, err := historyValues(s.view, famBidHistory, lotID.String())
	if err != nil {
		return nil, err
	}
	hashes := make([]model.Hash, 0, len(values))
	for _, v := range values {
		h, err := model.HashFromHex(string(v))
		if err != nil {
			return nil, model.ErrInternalBadStruct(famBidHistory)
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func (s *MutSchema) AddBidHistory(lotID, txHash model.Hash) error {
	return appendHistory(s.fork, famBidHistory, lotID.String(), []byte(txHash.String()))
}

// --- contracts ---

func (s *Schema) Contract(contractID model.Hash) (*model.Contract, error) {
	var c model.Contract
	ok, err := s.getJSON(NewKey(famContracts, contractID.String()), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *MutSchema) PutContract(contractID model.Hash, contract model.Contract) error {
	return s.putJSON(NewKey(famContracts, contractID.String()), contract)
}

// AddContract writes a new contract and indexes it against its objects
// for cross-object invalidation.
func (s *MutSchema) AddContract(contractID model.Hash, contract model.Contract) error {
	if existing, err := s.Contract(contractID); err != nil {
		return err
	} else if existing != nil {
		return model.ErrDuplicateContract(contractID.String())
	}
	if err := s.PutContract(contractID, contract); err != nil {
		return err
	}
	for _, o := range contract.Conditions.Objects {
		if err := s.IndexObjectContract(o.Object.ID(), contractID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) ContractDeed(contractID model.Hash) (*model.Hash, error) {
	return s.getHashRef(NewKey(famContractDeed, contractID.String()), famContractDeed)
}

func (s *Schema) ContractApplication(contractID model.Hash) (*model.Hash, error) {
	return s.getHashRef(NewKey(famContractApp, contractID.String()), famContractApp)
}

func (s *Schema) getHashRef(key Key, family string) (*model.Hash, error) {
	raw, err := s.view.Get(key)
	if err != nil || raw == nil {
		return nil, err
	}
	h, err := model.HashFromHex(string(raw))
	if err != nil {
		return nil, model.ErrInternalBadStruct(family)
	}
	return &h, nil
}

func (s *MutSchema) SetContractDeed(contractID, txHash model.Hash) error {
	return s.fork.Put(NewKey(famContractDeed, contractID.String()), []byte(txHash.String()))
}

func (s *MutSchema) SetContractApplication(contractID, txHash model.Hash) error {
	return s.fork.Put(NewKey(famContractApp, contractID.String()), []byte(txHash.String()))
}

func (s *Schema) ContractFiles(contractID model.Hash) ([]model.Hash, error) {
	entries, err := s.view.List(famContractFiles, contractID.String())
	if err != nil {
		return nil, err
	}
	hashes := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		h, err := model.HashFromHex(e.Attrs[1])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famContractFiles)
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func (s *MutSchema) AddContractFile(contractID, txHash model.Hash) error {
	key := NewKey(famContractFiles, contractID.String(), txHash.String())
	return s.fork.Put(key, []byte(txHash.String()))
}

func (s *MutSchema) RemoveContractFile(contractID, txHash model.Hash) error {
	return s.fork.Delete(NewKey(famContractFiles, contractID.String(), txHash.String()))
}

// ClearContractDocuments drops the deed, application and file index of a
// contract, used when a terms edit sends the contract back to New.
func (s *MutSchema) ClearContractDocuments(contractID model.Hash) error {
	if err := s.fork.Delete(NewKey(famContractDeed, contractID.String())); err != nil {
		return err
	}
	if err := s.fork.Delete(NewKey(famContractApp, contractID.String())); err != nil {
		return err
	}
	files, err := s.ContractFiles(contractID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.RemoveContractFile(contractID, f); err != nil {
			return err
		}
	}
	return nil
}

// --- checks ---

func (s *Schema) Checks(subjectID model.Hash) ([]model.Check, error) {
	entries, err := s.view.List(famChecks, subjectID.String())
	if err != nil {
		return nil, err
	}
	checks := make([]model.Check, 0, len(entries))
	for _, e := range entries {
		var c model.Check
		if err := json.Unmarshal(e.Value, &c); err != nil {
			return nil, model.ErrInternalBadStruct(famChecks)
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func (s *MutSchema) PutCheck(subjectID model.Hash, check model.Check) error {
	key := NewKey(famChecks, subjectID.String(), check.Key.String())
	return s.putJSON(key, check)
}

func (s *MutSchema) PutChecks(subjectID model.Hash, checks []model.Check) error {
	for _, c := range checks {
		if err := s.PutCheck(subjectID, c); err != nil {
			return err
		}
	}
	return nil
}

// CheckResultFor is the single enforcement choke-point: it fails the
// calling transaction if any stored check of the subject is in the fail
// state.
func (s *Schema) CheckResultFor(subjectID model.Hash) error {
	checks, err := s.Checks(subjectID)
	if err != nil {
		return err
	}
	var failed []model.Check
	for _, c := range checks {
		if c.IsFail() {
			failed = append(failed, c)
		}
	}
	if len(failed) > 0 {
		return model.ErrCheckFailed(failed)
	}
	return nil
}

// --- attachments ---

func (s *Schema) MemberAttachments(memberID model.Hash) ([]model.Hash, error) {
	entries, err := s.view.List(famAttachments, memberID.String())
	if err != nil {
		return nil, err
	}
	hashes := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		h, err := model.HashFromHex(e.Attrs[1])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famAttachments)
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func (s *Schema) HasMemberAttachment(memberID, txHash model.Hash) (bool, error) {
	raw, err := s.view.Get(NewKey(famAttachments, memberID.String(), txHash.String()))
	return raw != nil, err
}

func (s *MutSchema) AddMemberAttachment(memberID, txHash model.Hash) error {
	key := NewKey(famAttachments, memberID.String(), txHash.String())
	return s.fork.Put(key, []byte(txHash.String()))
}

func (s *MutSchema) RemoveMemberAttachment(memberID, txHash model.Hash) error {
	return s.fork.Delete(NewKey(famAttachments, memberID.String(), txHash.String()))
}

func (s *Schema) AttachmentSigns(docTxHash model.Hash) ([]model.SignedAttachment, error) {
	entries, err := s.view.List(famAttachmentSigns, docTxHash.String())
	if err != nil {
		return nil, err
	}
	signs := make([]model.SignedAttachment, 0, len(entries))
	for _, e := range entries {
		var sa model.SignedAttachment
		if err := json.Unmarshal(e.Value, &sa); err != nil {
			return nil, model.ErrInternalBadStruct(famAttachmentSigns)
		}
		signs = append(signs, sa)
	}
	return signs, nil
}

func (s *MutSchema) AddAttachmentSign(docTxHash model.Hash, sign model.SignedAttachment) error {
	raw, err := json.Marshal(sign)
	if err != nil {
		return err
	}
	return appendHistory(s.fork, famAttachmentSigns, docTxHash.String(), raw)
}

// --- tax payments ---

func (s *Schema) TaxPaymentContract(paymentNumber string) (*model.Hash, error) {
	return s.getHashRef(NewKey(famTaxPayments, paymentNumber), famTaxPayments)
}

func (s *Schema) ContractTax(contractID model.Hash) ([]model.TaxInfo, error) {
	entries, err := s.view.List(famContractTax, contractID.String())
	if err != nil {
		return nil, err
	}
	infos := make([]model.TaxInfo, 0, len(entries))
	for _, e := range entries {
		var t model.TaxInfo
		if err := json.Unmarshal(e.Value, &t); err != nil {
			return nil, model.ErrInternalBadStruct(famContractTax)
		}
		infos = append(infos, t)
	}
	return infos, nil
}

// AddTaxInfo records a state-fee payment. A payment number already bound
// to any contract is a duplicate.
func (s *MutSchema) AddTaxInfo(contractID model.Hash, info model.TaxInfo) error {
	if existing, err := s.TaxPaymentContract(info.PaymentNumber); err != nil {
		return err
	} else if existing != nil {
		return model.ErrDuplicatePayment(info.PaymentNumber)
	}
	key := NewKey(famTaxPayments, info.PaymentNumber)
	if err := s.fork.Put(key, []byte(contractID.String())); err != nil {
		return err
	}
	return s.putJSON(NewKey(famContractTax, contractID.String(), info.PaymentNumber), info)
}

// --- executed transactions and shares ---

// TransactionBytes returns the stored envelope of an executed
// transaction.
func (s *Schema) TransactionBytes(txHash model.Hash) ([]byte, error) {
	return s.view.Get(NewKey(famTransactions, txHash.String()))
}

func (s *MutSchema) PutTransaction(txHash model.Hash, envelope []byte) error {
	return s.fork.Put(NewKey(famTransactions, txHash.String()), envelope)
}

// Share returns the recipient node keys recorded for a transaction's
// private payload.
func (s *Schema) Share(txHash model.Hash) ([]model.PublicKey, error) {
	raw, err := s.view.Get(NewKey(famShares, txHash.String()))
	if err != nil || raw == nil {
		return nil, err
	}
	var share []model.PublicKey
	if err := json.Unmarshal(raw, &share); err != nil {
		return nil, model.ErrInternalBadStruct(famShares)
	}
	return share, nil
}

func (s *MutSchema) PutShare(txHash model.Hash, share []model.PublicKey) error {
	return s.putJSON(NewKey(famShares, txHash.String()), share)
}

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric/common/flogging"

	"iptrade/model"
)

var logger = flogging.MustGetLogger("iptrade.schema")

// Partition names. Every family is independent; parent-then-child
// composite attributes render the per-parent-key families.
const (
	famObjects         = "ip.objects"                // object id -> ObjectIdentity
	famObjectHistory   = "ip.object_history"         // object id, index -> tx hash (Merkle-proved)
	famRightholders    = "ip.rightholders"           // object id, member id -> Rights
	famUnstructured    = "ip.ownership_unstructured" // object id, index -> OwnershipUnstructured
	famPublications    = "ip.object_publications"    // object id -> publishing lot id
	famObjectContracts = "ip.object_contracts"       // object id, contract id -> contract id
	famLots            = "ip.lots"                   // lot id -> Lot
	famLotConditions   = "ip.lot_conditions"         // lot id -> Conditions
	famLotStates       = "ip.lot_states"             // lot id -> LotState
	famMemberLots      = "ip.member_lots"            // member id, lot id -> lot id
	famBids            = "ip.bids"                   // lot id, index -> Bid
	famBidHistory      = "ip.bid_history"            // lot id, index -> private bid tx hash
	famContracts       = "ip.contracts"              // contract id -> Contract
	famContractDeed    = "ip.contract_deed"          // contract id -> attachment tx hash
	famContractApp     = "ip.contract_application"   // contract id -> attachment tx hash
	famContractFiles   = "ip.contract_files"         // contract id, tx hash -> tx hash
	famChecks          = "ip.checks"                 // subject id, check key -> Check
	famAttachments     = "ip.attachments"            // member id, tx hash -> tx hash
	famAttachmentSigns = "ip.attachment_signs"       // doc tx hash, index -> SignedAttachment
	famMemberNodes     = "ip.member_nodes"           // member id, node key -> node key
	famMemberIDs       = "ip.member_external_ids"    // member id -> external identity id
	famRequests        = "ip.object_requests"        // member id, object id -> ObjectIdentity
	famTaxPayments     = "ip.tax_payments"           // payment number -> contract id
	famContractTax     = "ip.contract_tax"           // contract id, payment number -> TaxInfo
	famTransactions    = "ip.transactions"           // tx hash -> executed tx envelope
	famShares          = "ip.shares"                 // tx hash -> recipient node keys
)

// Schema is the read-only accessor bundle over a View.
type Schema struct {
	view View
}

func New(view View) *Schema {
	return &Schema{view: view}
}

// MutSchema extends Schema with the write operations. It can only be
// built from a Fork, so read-only call sites cannot mutate.
type MutSchema struct {
	Schema
	fork Fork
}

func NewMut(fork Fork) *MutSchema {
	return &MutSchema{Schema: Schema{view: fork}, fork: fork}
}

func (s *Schema) getJSON(key Key, out interface{}) (bool, error) {
	raw, err := s.view.Get(key)
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Errorw("stored record does not decode",
			"family", key.Family, "attrs", key.Attrs, "err", err)
		return false, model.ErrInternalBadStruct(key.Family)
	}
	return true, nil
}

func (s *MutSchema) putJSON(key Key, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", key.Family, err)
	}
	return s.fork.Put(key, raw)
}

// --- objects ---

func (s *Schema) Object(id model.Hash) (*model.ObjectIdentity, error) {
	var obj model.ObjectIdentity
	ok, err := s.getJSON(NewKey(famObjects, id.String()), &obj)
	if err != nil || !ok {
		return nil, err
	}
	return &obj, nil
}

func (s *Schema) HasObject(id model.Hash) (bool, error) {
	raw, err := s.view.Get(NewKey(famObjects, id.String()))
	return raw != nil, err
}

// Objects lists every registered object id.
func (s *Schema) Objects() ([]model.Hash, error) {
	entries, err := s.view.List(famObjects)
	if err != nil {
		return nil, err
	}
	ids := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		id, err := model.HashFromHex(e.Attrs[0])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famObjects)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ObjectHistory returns the ordered change log of an object: the hashes
// of the transactions that added or updated it.
func (s *Schema) ObjectHistory(id model.Hash) ([]model.Hash, error) {
	values, err := historyValues(s.view, famObjectHistory, id.String())
	if err != nil {
		return nil, err
	}
	hashes := make([]model.Hash, 0, len(values))
	for _, v := range values {
		h, err := model.HashFromHex(string(v))
		if err != nil {
			return nil, model.ErrInternalBadStruct(famObjectHistory)
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// ObjectHistoryRoot returns the Merkle root of one object's change log.
func (s *Schema) ObjectHistoryRoot(id model.Hash) (model.Hash, error) {
	return historyRoot(s.view, famObjectHistory, id.String())
}

// StateHash exposes the Merkle roots participating in cross-node state
// agreement. Only the object-history logs participate.
func (s *Schema) StateHash() ([]model.Hash, error) {
	ids, err := s.Objects()
	if err != nil {
		return nil, err
	}
	roots := make([]model.Hash, 0, len(ids))
	for _, id := range ids {
		root, err := historyRoot(s.view, famObjectHistory, id.String())
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// PutObject registers or rewrites an object and appends the writing
// transaction to its Merkle-proved history.
func (s *MutSchema) PutObject(object model.ObjectIdentity, txHash model.Hash) error {
	id := object.ID()
	if err := s.putJSON(NewKey(famObjects, id.String()), object); err != nil {
		return err
	}
	return appendHistory(s.fork, famObjectHistory, id.String(), []byte(txHash.String()))
}

// --- rights and unstructured ownership ---

func (s *Schema) RightsOf(objectID, memberID model.Hash) (*model.Rights, error) {
	var r model.Rights
	ok, err := s.getJSON(NewKey(famRightholders, objectID.String(), memberID.String()), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// Rightholders returns the member ids holding rights over an object.
func (s *Schema) Rightholders(objectID model.Hash) ([]model.Hash, error) {
	entries, err := s.view.List(famRightholders, objectID.String())
	if err != nil {
		return nil, err
	}
	ids := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		id, err := model.HashFromHex(e.Attrs[1])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famRightholders)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UpdateRights replaces the rightholder set of an object: members absent
// from the new set are removed, the rest are rewritten.
func (s *MutSchema) UpdateRights(objectID model.Hash, rights map[model.Hash]model.Rights) error {
	current, err := s.Rightholders(objectID)
	if err != nil {
		return err
	}
	for _, memberID := range current {
		if _, keep := rights[memberID]; !keep {
			key := NewKey(famRightholders, objectID.String(), memberID.String())
			if err := s.fork.Delete(key); err != nil {
				return err
			}
		}
	}
	for memberID, r := range rights {
		key := NewKey(famRightholders, objectID.String(), memberID.String())
		if err := s.putJSON(key, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) UnstructuredOwnership(objectID model.Hash) ([]model.OwnershipUnstructured, error) {
	entries, err := s.view.List(famUnstructured, objectID.String())
	if err != nil {
		return nil, err
	}
	records := make([]model.OwnershipUnstructured, 0, len(entries))
	for _, e := range entries {
		var rec model.OwnershipUnstructured
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			return nil, model.ErrInternalBadStruct(famUnstructured)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReplaceUnstructuredOwnership rewrites the free-text ownership records
// of an object wholesale.
func (s *MutSchema) ReplaceUnstructuredOwnership(objectID model.Hash, records []model.OwnershipUnstructured) error {
	entries, err := s.view.List(famUnstructured, objectID.String())
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.fork.Delete(NewKey(famUnstructured, e.Attrs...)); err != nil {
			return err
		}
	}
	for i, rec := range records {
		key := NewKey(famUnstructured, objectID.String(), historyIndex(i))
		if err := s.putJSON(key, rec); err != nil {
			return err
		}
	}
	return nil
}

// --- publication and invalidation indices ---

// PublishingLot returns the lot currently publishing the object, if any.
func (s *Schema) PublishingLot(objectID model.Hash) (*model.Hash, error) {
	raw, err := s.view.Get(NewKey(famPublications, objectID.String()))
	if err != nil || raw == nil {
		return nil, err
	}
	lotID, err := model.HashFromHex(string(raw))
	if err != nil {
		return nil, model.ErrInternalBadStruct(famPublications)
	}
	return &lotID, nil
}

func (s *MutSchema) PublishObject(objectID, lotID model.Hash) error {
	return s.fork.Put(NewKey(famPublications, objectID.String()), []byte(lotID.String()))
}

func (s *MutSchema) UnpublishObject(objectID model.Hash) error {
	return s.fork.Delete(NewKey(famPublications, objectID.String()))
}

// ObjectContracts lists the contracts referencing an object, via the
// one-directional invalidation index.
func (s *Schema) ObjectContracts(objectID model.Hash) ([]model.Hash, error) {
	entries, err := s.view.List(famObjectContracts, objectID.String())
	if err != nil {
		return nil, err
	}
	ids := make([]model.Hash, 0, len(entries))
	for _, e := range entries {
		id, err := model.HashFromHex(e.Attrs[1])
		if err != nil {
			return nil, model.ErrInternalBadStruct(famObjectContracts)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MutSchema) IndexObjectContract(objectID, contractID model.Hash) error {
	key := NewKey(famObjectContracts, objectID.String(), contractID.String())
	return s.fork.Put(key, []byte(contractID.String()))
}

// InvalidateObjectDeals flags every open lot and live contract that
// references a changed object, in the same write set as the object
// update. A lot already executed is closed instead of flagged.
func (s *MutSchema) InvalidateObjectDeals(objectID model.Hash) error {
	if lotID, err := s.PublishingLot(objectID); err != nil {
		return err
	} else if lotID != nil {
		state, err := s.LotState(*lotID)
		if err != nil {
			return err
		}
		if state != nil && !state.IsClosed() {
			next := *state
			if state.IsExecuted() {
				next = state.WithStatus(model.LotClosed)
			} else {
				next.Undefined = true
			}
			if err := s.PutLotState(*lotID, next); err != nil {
				return err
			}
			logger.Infow("lot invalidated by object change",
				"lot", lotID.String(), "object", objectID.String())
		}
	}

	contractIDs, err := s.ObjectContracts(objectID)
	if err != nil {
		return err
	}
	for _, contractID := range contractIDs {
		contract, err := s.Contract(contractID)
		if err != nil {
			return err
		}
		if contract == nil || !contract.AcceptsUndefined() {
			continue
		}
		contract.Undefined = true
		if err := s.PutContract(contractID, *contract); err != nil {
			return err
		}
		logger.Infow("contract invalidated by object change",
			"contract", contractID.String(), "object", objectID.String())
	}
	return nil
}

// --- member requests and nodes ---

func (s *Schema) Requests(memberID model.Hash) ([]model.ObjectIdentity, error) {
	entries, err := s.view.List(famRequests, memberID.String())
	if err != nil {
		return nil, err
	}
	objects := make([]model.ObjectIdentity, 0, len(entries))
	for _, e := range entries {
		var obj model.ObjectIdentity
		if err := json.Unmarshal(e.Value, &obj); err != nil {
			return nil, model.ErrInternalBadStruct(famRequests)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func (s *MutSchema) AddRequest(memberID model.Hash, object model.ObjectIdentity) error {
	key := NewKey(famRequests, memberID.String(), object.ID().String())
	return s.putJSON(key, object)
}

func (s *MutSchema) RemoveRequest(memberID, objectID model.Hash) error {
	return s.fork.Delete(NewKey(famRequests, memberID.String(), objectID.String()))
}

// MemberNodes returns the registered network-node keys of one member. A
// stored key that fails to parse is ledger corruption.
func (s *Schema) MemberNodes(memberID model.Hash) ([]model.PublicKey, error) {
	entries, err := s.view.List(famMemberNodes, memberID.String())
	if err != nil {
		return nil, err
	}
	keys := make([]model.PublicKey, 0, len(entries))
	for _, e := range entries {
		pk, err := model.PublicKeyFromHex(string(e.Value))
		if err != nil {
			logger.Errorw("stored member node key does not parse",
				"member", memberID.String(), "key", string(e.Value))
			return nil, model.ErrBadStoredMember(memberID.String())
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

func (s *MutSchema) AddMemberNode(memberID model.Hash, node model.PublicKey) error {
	key := NewKey(famMemberNodes, memberID.String(), node.String())
	return s.fork.Put(key, []byte(node.String()))
}

// MemberShare collects the deduplicated node keys of the given members:
// the recipient list of a private payload. A member without nodes
// contributes nothing.
func (s *Schema) MemberShare(members ...model.MemberIdentity) ([]model.PublicKey, error) {
	seen := make(map[model.PublicKey]struct{})
	var share []model.PublicKey
	for _, member := range members {
		nodes, err := s.MemberNodes(member.ID())
		if err != nil {
			return nil, err
		}
		for _, pk := range nodes {
			if _, dup := seen[pk]; dup {
				continue
			}
			seen[pk] = struct{}{}
			share = append(share, pk)
		}
	}
	return share, nil
}

func (s *Schema) MemberExternalID(memberID model.Hash) (string, error) {
	raw, err := s.view.Get(NewKey(famMemberIDs, memberID.String()))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *MutSchema) SetMemberExternalID(memberID model.Hash, externalID string) error {
	return s.fork.Put(NewKey(famMemberIDs, memberID.String()), []byte(externalID))
}

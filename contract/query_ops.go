package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// --- Query surface ---
//
// Queries run against the committed snapshot and write nothing; they are
// meant for evaluate-only invocation.

// ObjectRecord is the full public picture of one registered object.
type ObjectRecord struct {
	Object        model.ObjectIdentity          `json:"object"`
	Rightholders  map[string]model.Rights       `json:"rightholders"`
	Unstructured  []model.OwnershipUnstructured `json:"unstructured,omitempty"`
	PublishingLot string                        `json:"publishingLot,omitempty"`
	History       []model.Hash                  `json:"history"`
	HistoryRoot   model.Hash                    `json:"historyRoot"`
}

// GetObject returns an object, its rightholders, its free-text ownership
// records, and its Merkle-proved change log.
func (rc *RegistryContract) GetObject(ctx contractapi.TransactionContextInterface, object string) (*ObjectRecord, error) {
	obj, err := model.ParseObjectIdentity(object)
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	objectID := obj.ID()

	stored, err := view.Object(objectID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, model.ErrNoObject(object)
	}

	record := &ObjectRecord{Object: *stored, Rightholders: map[string]model.Rights{}}
	holders, err := view.Rightholders(objectID)
	if err != nil {
		return nil, err
	}
	for _, memberID := range holders {
		rights, err := view.RightsOf(objectID, memberID)
		if err != nil {
			return nil, err
		}
		if rights != nil {
			record.Rightholders[memberID.String()] = *rights
		}
	}
	if record.Unstructured, err = view.UnstructuredOwnership(objectID); err != nil {
		return nil, err
	}
	if lotID, err := view.PublishingLot(objectID); err != nil {
		return nil, err
	} else if lotID != nil {
		record.PublishingLot = lotID.String()
	}
	if record.History, err = view.ObjectHistory(objectID); err != nil {
		return nil, err
	}
	if record.HistoryRoot, err = view.ObjectHistoryRoot(objectID); err != nil {
		return nil, err
	}
	return record, nil
}

// LotRecord bundles a lot with its conditions, live state and published
// bids.
type LotRecord struct {
	Lot        model.Lot        `json:"lot"`
	Conditions model.Conditions `json:"conditions"`
	State      model.LotState   `json:"state"`
	Bids       []model.Bid      `json:"bids,omitempty"`
}

// GetLot returns the full public picture of one lot.
func (rc *RegistryContract) GetLot(ctx contractapi.TransactionContextInterface, lotID string) (*LotRecord, error) {
	id, err := parseHash(lotID, "lotId")
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	lot, conditions, state, err := loadLot(view, id)
	if err != nil {
		return nil, err
	}
	bids, err := view.Bids(id)
	if err != nil {
		return nil, err
	}
	return &LotRecord{Lot: *lot, Conditions: *conditions, State: *state, Bids: bids}, nil
}

// ContractRecord bundles a contract with its compliance verdicts,
// document references and recorded fee payments.
type ContractRecord struct {
	Contract    model.Contract  `json:"contract"`
	Checks      []model.Check   `json:"checks,omitempty"`
	Deed        string          `json:"deed,omitempty"`
	Application string          `json:"application,omitempty"`
	Files       []model.Hash    `json:"files,omitempty"`
	TaxInfo     []model.TaxInfo `json:"taxInfo,omitempty"`
}

// GetContract returns the full picture of one contract.
func (rc *RegistryContract) GetContract(ctx contractapi.TransactionContextInterface, contractID string) (*ContractRecord, error) {
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	contract, err := loadContract(view, id)
	if err != nil {
		return nil, err
	}

	record := &ContractRecord{Contract: *contract}
	if record.Checks, err = view.Checks(id); err != nil {
		return nil, err
	}
	if deed, err := view.ContractDeed(id); err != nil {
		return nil, err
	} else if deed != nil {
		record.Deed = deed.String()
	}
	if application, err := view.ContractApplication(id); err != nil {
		return nil, err
	} else if application != nil {
		record.Application = application.String()
	}
	if record.Files, err = view.ContractFiles(id); err != nil {
		return nil, err
	}
	if record.TaxInfo, err = view.ContractTax(id); err != nil {
		return nil, err
	}
	return record, nil
}

// GetChecks returns the stored compliance verdicts of a lot or contract.
func (rc *RegistryContract) GetChecks(ctx contractapi.TransactionContextInterface, subjectID string) ([]model.Check, error) {
	id, err := parseHash(subjectID, "subjectId")
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	return view.Checks(id)
}

// GetMemberLots lists the lot ids opened by a member.
func (rc *RegistryContract) GetMemberLots(ctx contractapi.TransactionContextInterface, member string) ([]model.Hash, error) {
	m, err := parseMember(member, "member")
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	return view.MemberLots(m.ID())
}

// GetMemberRequests lists a member's pending object registration
// requests.
func (rc *RegistryContract) GetMemberRequests(ctx contractapi.TransactionContextInterface, member string) ([]model.ObjectIdentity, error) {
	m, err := parseMember(member, "member")
	if err != nil {
		return nil, err
	}
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	return view.Requests(m.ID())
}

// GetStateHash returns the Merkle roots of every object-history log, the
// cross-node state agreement digest.
func (rc *RegistryContract) GetStateHash(ctx contractapi.TransactionContextInterface) ([]model.Hash, error) {
	view := schema.New(schema.NewStubView(ctx.GetStub()))
	return view.StateHash()
}

package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// loadContract fetches a contract or reports it unknown.
func loadContract(view *schema.Schema, contractID model.Hash) (*model.Contract, error) {
	contract, err := view.Contract(contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, model.ErrNoContract(contractID.String())
	}
	return contract, nil
}

// contractShare lists the node keys of both contract parties.
func contractShare(view *schema.Schema, contractID model.Hash) ([]model.PublicKey, error) {
	contract, err := loadContract(view, contractID)
	if err != nil {
		return nil, err
	}
	return view.MemberShare(contract.Buyer, contract.Seller)
}

// --- PurchaseOffer ---

// purchaseOfferOp creates a contract directly against a rightholder,
// without an intermediate lot.
type purchaseOfferOp struct {
	Requestor   model.MemberIdentity `json:"requestor"`
	Rightholder model.MemberIdentity `json:"rightholder"`
	Price       model.Cost           `json:"price"`
	Conditions  model.Conditions     `json:"conditions"`
	Auth        auth                 `json:"auth,omitempty"`
}

func (op *purchaseOfferOp) Kind() string { return "purchase_offer" }

func (op *purchaseOfferOp) Verify() error {
	if op.Requestor == op.Rightholder {
		return model.ErrBadParam("rightholder")
	}
	return nil
}

func (op *purchaseOfferOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *purchaseOfferOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return view.MemberShare(op.Requestor, op.Rightholder)
}

func (op *purchaseOfferOp) Execute(st *schema.MutSchema, e env) error {
	contractID := e.txHash
	checks := op.Conditions.Check()
	checks = append(checks,
		op.Conditions.CheckSeller(op.Rightholder),
		op.Conditions.CheckBuyer(op.Requestor))
	rightsChecks, err := st.CheckRights(op.Conditions, op.Rightholder)
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
	contract := model.NewContract(op.Requestor, op.Rightholder, op.Price, op.Conditions)
	return st.AddContract(contractID, contract)
}

// PurchaseOffer opens a contract in status New directly against a
// rightholder of the conditions' objects.
func (rc *RegistryContract) PurchaseOffer(ctx contractapi.TransactionContextInterface, requestor, rightholder, price, conditionsJSON, bearerToken, externalID string) error {
	buyer, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	seller, err := parseMember(rightholder, "rightholder")
	if err != nil {
		return err
	}
	cost, err := model.ParseCost(price)
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
	return rc.run(ctx, &purchaseOfferOp{
		Requestor:   buyer,
		Rightholder: seller,
		Price:       cost,
		Conditions:  conditions,
		Auth:        auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- DraftContract ---

// draftContractOp binds a previously attached deed and application to
// the contract and moves it to Draft.
type draftContractOp struct {
	Requestor     model.MemberIdentity `json:"requestor"`
	ContractID    model.Hash           `json:"contractId"`
	DeedTx        model.Hash           `json:"deedTx"`
	ApplicationTx model.Hash           `json:"applicationTx"`
	Auth          auth                 `json:"auth,omitempty"`
}

func (op *draftContractOp) Kind() string { return "draft_contract" }

func (op *draftContractOp) Verify() error { return nil }

func (op *draftContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *draftContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *draftContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}

	deed, err := loadAttachment(&st.Schema, op.DeedTx)
	if err != nil {
		return err
	}
	application, err := loadAttachment(&st.Schema, op.ApplicationTx)
	if err != nil {
		return err
	}
	if deed.Type != model.AttachmentDeed || application.Type != model.AttachmentApplication {
		return model.ErrMismatchedDeedFiles()
	}

	if err := st.SetContractDeed(op.ContractID, op.DeedTx); err != nil {
		return err
	}
	if err := st.SetContractApplication(op.ContractID, op.ApplicationTx); err != nil {
		return err
	}
	if err := st.PutCheck(op.ContractID, model.CheckDocumentsMatchCondition.Ok()); err != nil {
		return err
	}

	next, err := contract.Apply(model.MakeDraft{})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// DraftContract attaches the deed and application documents to a new
// contract and opens the acknowledgement round.
func (rc *RegistryContract) DraftContract(ctx contractapi.TransactionContextInterface, requestor, contractID, deedTx, applicationTx, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	deed, err := parseHash(deedTx, "deedTx")
	if err != nil {
		return err
	}
	application, err := parseHash(applicationTx, "applicationTx")
	if err != nil {
		return err
	}
	return rc.run(ctx, &draftContractOp{
		Requestor:     member,
		ContractID:    id,
		DeedTx:        deed,
		ApplicationTx: application,
		Auth:          auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- ConfirmContract ---

type confirmContractOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *confirmContractOp) Kind() string { return "confirm_contract" }

func (op *confirmContractOp) Verify() error { return nil }

func (op *confirmContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *confirmContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

// Execute records one party's acknowledgement of the draft. The rights
// picture is re-verified on every acknowledgement; a picture that
// degraded since the contract was created fails the acknowledgement
// rather than silently carrying stale verdicts.
func (op *confirmContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	rightsChecks, err := st.CheckRights(contract.Conditions, contract.Seller)
	if err != nil {
		return err
	}
	if err := st.PutChecks(op.ContractID, rightsChecks); err != nil {
		return err
	}
	if err := st.CheckResultFor(op.ContractID); err != nil {
		return err
	}
	next, err := contract.Apply(model.Confirm{Actor: op.Requestor})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// ConfirmContract acknowledges the drafted documents for one party. The
// contract advances once both parties have acknowledged.
func (rc *RegistryContract) ConfirmContract(ctx contractapi.TransactionContextInterface, requestor, contractID, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &confirmContractOp{
		Requestor:  member,
		ContractID: id,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- UpdateContractConditions ---

type updateContractOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Price      model.Cost           `json:"price"`
	Conditions model.Conditions     `json:"conditions"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *updateContractOp) Kind() string { return "update_contract_conditions" }

func (op *updateContractOp) Verify() error { return nil }

func (op *updateContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *updateContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

// Execute renegotiates a draft: the contract drops back to New with the
// new price and conditions, every attached document is cleared, and the
// acknowledgement round starts over.
func (op *updateContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	next, err := contract.Apply(model.UpdateTerms{})
	if err != nil {
		return err
	}
	next.Price = op.Price
	next.Conditions = op.Conditions
	next.Undefined = false
	if err := st.ClearContractDocuments(op.ContractID); err != nil {
		return err
	}
	for _, o := range op.Conditions.Objects {
		if err := st.IndexObjectContract(o.Object.ID(), op.ContractID); err != nil {
			return err
		}
	}
	return st.PutContract(op.ContractID, next)
}

// UpdateContractConditions renegotiates a drafted contract's price and
// conditions, sending it back to New.
func (rc *RegistryContract) UpdateContractConditions(ctx contractapi.TransactionContextInterface, requestor, contractID, price, conditionsJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	cost, err := model.ParseCost(price)
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
	return rc.run(ctx, &updateContractOp{
		Requestor:  member,
		ContractID: id,
		Price:      cost,
		Conditions: conditions,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- RefuseContract ---

type refuseContractOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Reason     string               `json:"reason,omitempty"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *refuseContractOp) Kind() string { return "refuse_contract" }

func (op *refuseContractOp) Verify() error {
	return validateOptionalString(op.Reason, "reason", maxReasonLength)
}

func (op *refuseContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *refuseContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *refuseContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	next, err := contract.Apply(model.Refuse{})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// RefuseContract lets either party walk away from a drafted contract.
func (rc *RegistryContract) RefuseContract(ctx contractapi.TransactionContextInterface, requestor, contractID, reason, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &refuseContractOp{
		Requestor:  member,
		ContractID: id,
		Reason:     reason,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- SignContract ---

type signContractOp struct {
	Requestor       model.MemberIdentity `json:"requestor"`
	ContractID      model.Hash           `json:"contractId"`
	DeedSign        model.DocumentSign   `json:"deedSign"`
	ApplicationSign model.DocumentSign   `json:"applicationSign"`
	Auth            auth                 `json:"auth,omitempty"`
}

func (op *signContractOp) Kind() string { return "sign_contract" }

func (op *signContractOp) Verify() error { return nil }

func (op *signContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *signContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

// Execute records one party's cryptographic signatures over the bound
// deed and application, verified against the stored document bytes.
func (op *signContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}

	deedTx, err := st.ContractDeed(op.ContractID)
	if err != nil {
		return err
	}
	applicationTx, err := st.ContractApplication(op.ContractID)
	if err != nil {
		return err
	}
	if deedTx == nil || applicationTx == nil {
		return model.ErrMismatchedDeedFiles()
	}

	for _, doc := range []struct {
		tx   model.Hash
		sign model.DocumentSign
	}{
		{*deedTx, op.DeedSign},
		{*applicationTx, op.ApplicationSign},
	} {
		attachment, err := loadAttachment(&st.Schema, doc.tx)
		if err != nil {
			return err
		}
		if err := doc.sign.Verify(attachment.Data); err != nil {
			return err
		}
		signed := model.SignedAttachment{Member: op.Requestor, Sign: doc.sign}
		if err := st.AddAttachmentSign(doc.tx, signed); err != nil {
			return err
		}
	}

	if err := st.CheckResultFor(op.ContractID); err != nil {
		return err
	}
	next, err := contract.Apply(model.Sign{Actor: op.Requestor})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// SignContract records one party's detached signatures over the bound
// documents. The contract advances once both parties have signed.
func (rc *RegistryContract) SignContract(ctx contractapi.TransactionContextInterface, requestor, contractID, deedSignJSON, applicationSignJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	var deedIn, applicationIn signInput
	if err := decodeJSONArg(deedSignJSON, "deedSign", &deedIn); err != nil {
		return err
	}
	if err := decodeJSONArg(applicationSignJSON, "applicationSign", &applicationIn); err != nil {
		return err
	}
	deedSign, err := deedIn.parse()
	if err != nil {
		return err
	}
	applicationSign, err := applicationIn.parse()
	if err != nil {
		return err
	}
	return rc.run(ctx, &signContractOp{
		Requestor:       member,
		ContractID:      id,
		DeedSign:        deedSign,
		ApplicationSign: applicationSign,
		Auth:            auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- RegisterContract ---

type registerContractOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *registerContractOp) Kind() string { return "register_contract" }

func (op *registerContractOp) Verify() error { return nil }

func (op *registerContractOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *registerContractOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *registerContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	if err := st.CheckResultFor(op.ContractID); err != nil {
		return err
	}
	next, err := contract.Apply(model.Register{})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// RegisterContract submits a fully signed contract for state
// registration.
func (rc *RegistryContract) RegisterContract(ctx contractapi.TransactionContextInterface, requestor, contractID, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &registerContractOp{
		Requestor:  member,
		ContractID: id,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- Registration outcomes ---

// registrationDecisionOp is the shared shape of the three outcomes a
// registration phase can take.
type registrationDecisionOp struct {
	ContractID model.Hash `json:"contractId"`
	Reason     string     `json:"reason,omitempty"`
}

func (op *registrationDecisionOp) Verify() error {
	return validateOptionalString(op.Reason, "reason", maxReasonLength)
}

func (op *registrationDecisionOp) PreExecute(p *preExec) error { return nil }

func (op *registrationDecisionOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *registrationDecisionOp) decide(st *schema.MutSchema, action model.Action) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	next, err := contract.Apply(action)
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

type awaitUserActionOp struct{ registrationDecisionOp }

func (op *awaitUserActionOp) Kind() string { return "await_user_action" }

func (op *awaitUserActionOp) Execute(st *schema.MutSchema, e env) error {
	return op.decide(st, model.AwaitUserAction{})
}

type approveContractOp struct{ registrationDecisionOp }

func (op *approveContractOp) Kind() string { return "approve_contract" }

func (op *approveContractOp) Execute(st *schema.MutSchema, e env) error {
	return op.decide(st, model.Approve{})
}

// rejectContractOp terminates the contract. Rejecting a contract in the
// registration phase records the registry's signed refusal document.
type rejectContractOp struct {
	registrationDecisionOp
	RegistryFileTx *model.Hash `json:"registryFileTx,omitempty"`
}

func (op *rejectContractOp) Kind() string { return "reject_contract" }

func (op *rejectContractOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	switch contract.Status.Kind {
	case model.StatusRegistering, model.StatusAwaitingUserAction:
		if op.RegistryFileTx == nil {
			return model.ErrBadParam("registryFileTx")
		}
		if _, err := loadAttachment(&st.Schema, *op.RegistryFileTx); err != nil {
			return err
		}
		if err := st.AddContractFile(op.ContractID, *op.RegistryFileTx); err != nil {
			return err
		}
	}
	next, err := contract.Apply(model.Reject{})
	if err != nil {
		return err
	}
	return st.PutContract(op.ContractID, next)
}

// AwaitUserAction parks a registering contract until a party supplies
// what the registry asked for.
func (rc *RegistryContract) AwaitUserAction(ctx contractapi.TransactionContextInterface, contractID, reason string) error {
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &awaitUserActionOp{registrationDecisionOp{ContractID: id, Reason: reason}})
}

// ApproveContract records successful state registration.
func (rc *RegistryContract) ApproveContract(ctx contractapi.TransactionContextInterface, contractID, reason string) error {
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &approveContractOp{registrationDecisionOp{ContractID: id, Reason: reason}})
}

// RejectContract terminates a contract. For a contract in the
// registration phase the registry's signed refusal must be attached
// first and its transaction hash supplied here.
func (rc *RegistryContract) RejectContract(ctx contractapi.TransactionContextInterface, contractID, reason, registryFileTx string) error {
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	op := &rejectContractOp{registrationDecisionOp: registrationDecisionOp{ContractID: id, Reason: reason}}
	if registryFileTx != "" {
		fileTx, err := parseHash(registryFileTx, "registryFileTx")
		if err != nil {
			return err
		}
		op.RegistryFileTx = &fileTx
	}
	return rc.run(ctx, op)
}

// --- SubmitChecks ---

// submitChecksOp records verdicts from an off-ledger verification
// service. Only externally owned keys are accepted; the core never lets
// a service overwrite its own computed verdicts.
type submitChecksOp struct {
	publicOp
	SubjectID model.Hash    `json:"subjectId"`
	Checks    []model.Check `json:"checks"`
}

func (op *submitChecksOp) Kind() string { return "submit_checks" }

func (op *submitChecksOp) Verify() error {
	if len(op.Checks) == 0 || len(op.Checks) > maxArrayElements {
		return model.ErrBadParam("checks")
	}
	for _, c := range op.Checks {
		if !c.Key.IsExternal() {
			return model.ErrBadParam("checks")
		}
		switch c.Result {
		case model.VerdictFail, model.VerdictUnknown, model.VerdictOk:
		default:
			return model.ErrBadParam("checks")
		}
	}
	return nil
}

func (op *submitChecksOp) PreExecute(p *preExec) error { return nil }

func (op *submitChecksOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := st.Contract(op.SubjectID)
	if err != nil {
		return err
	}
	if contract == nil {
		lot, err := st.Lot(op.SubjectID)
		if err != nil {
			return err
		}
		if lot == nil {
			return model.ErrNoContract(op.SubjectID.String())
		}
	}
	return st.PutChecks(op.SubjectID, op.Checks)
}

// SubmitChecks records external verification verdicts against a lot or a
// contract.
func (rc *RegistryContract) SubmitChecks(ctx contractapi.TransactionContextInterface, subjectID, checksJSON string) error {
	id, err := parseHash(subjectID, "subjectId")
	if err != nil {
		return err
	}
	var checks []model.Check
	if err := decodeJSONArg(checksJSON, "checks", &checks); err != nil {
		return err
	}
	return rc.run(ctx, &submitChecksOp{SubjectID: id, Checks: checks})
}

// --- AddTaxInfo ---

type addTaxInfoOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Info       model.TaxInfo        `json:"info"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *addTaxInfoOp) Kind() string { return "add_tax_info" }

func (op *addTaxInfoOp) Verify() error {
	return validateRequiredString(op.Info.PaymentNumber, "paymentNumber", maxStringInputLength)
}

func (op *addTaxInfoOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addTaxInfoOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *addTaxInfoOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	switch contract.Status.Kind {
	case model.StatusDraft, model.StatusConfirmed:
	default:
		return model.ErrBadContractState(contract.Status.String(), op.Kind())
	}
	if err := st.AddTaxInfo(op.ContractID, op.Info); err != nil {
		return err
	}
	return st.PutCheck(op.ContractID, model.CheckTaxPaymentInfoAdded.Ok())
}

// AddTaxInfo records a state-fee payment for a contract being prepared
// for registration.
func (rc *RegistryContract) AddTaxInfo(ctx contractapi.TransactionContextInterface, requestor, contractID, paymentNumber, paymentDate, amount, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	date, err := parseTimestamp(paymentDate, "paymentDate")
	if err != nil {
		return err
	}
	cost, err := model.ParseCost(amount)
	if err != nil {
		return err
	}
	return rc.run(ctx, &addTaxInfoOp{
		Requestor:  member,
		ContractID: id,
		Info:       model.TaxInfo{PaymentNumber: paymentNumber, PaymentDate: date, Amount: cost},
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AddContractReferenceNumber ---

type contractReferenceNumberOp struct {
	ContractID      model.Hash `json:"contractId"`
	ReferenceNumber string     `json:"referenceNumber"`
}

func (op *contractReferenceNumberOp) Kind() string { return "add_contract_reference_number" }

func (op *contractReferenceNumberOp) Verify() error {
	return validateRequiredString(op.ReferenceNumber, "referenceNumber", maxStringInputLength)
}

func (op *contractReferenceNumberOp) PreExecute(p *preExec) error { return nil }

func (op *contractReferenceNumberOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *contractReferenceNumberOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	switch contract.Status.Kind {
	case model.StatusRegistering, model.StatusAwaitingUserAction, model.StatusApproved:
	default:
		return model.ErrBadContractState(contract.Status.String(), op.Kind())
	}
	updated := *contract
	updated.ReferenceNumber = op.ReferenceNumber
	return st.PutContract(op.ContractID, updated)
}

// AddContractReferenceNumber records the registry's case number assigned
// to a contract during registration.
func (rc *RegistryContract) AddContractReferenceNumber(ctx contractapi.TransactionContextInterface, contractID, referenceNumber string) error {
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	return rc.run(ctx, &contractReferenceNumberOp{ContractID: id, ReferenceNumber: referenceNumber})
}

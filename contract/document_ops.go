package contract

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// --- AddAttachment ---

// addAttachmentOp carries a document in its private payload. The listed
// members receive the payload alongside the uploader, and every
// recipient gets an index entry so they can enumerate their documents.
type addAttachmentOp struct {
	Requestor  model.MemberIdentity   `json:"requestor"`
	Attachment model.Attachment       `json:"attachment"`
	Members    []model.MemberIdentity `json:"members,omitempty"`
	Auth       auth                   `json:"auth,omitempty"`
}

func (op *addAttachmentOp) Kind() string { return "add_attachment" }

func (op *addAttachmentOp) Verify() error {
	if len(op.Members) > maxArrayElements {
		return model.ErrBadParam("members")
	}
	return op.Attachment.Validate()
}

func (op *addAttachmentOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addAttachmentOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	recipients := append([]model.MemberIdentity{op.Requestor}, op.Members...)
	return view.MemberShare(recipients...)
}

func (op *addAttachmentOp) Execute(st *schema.MutSchema, e env) error {
	if err := st.AddMemberAttachment(op.Requestor.ID(), e.txHash); err != nil {
		return err
	}
	for _, m := range op.Members {
		if err := st.AddMemberAttachment(m.ID(), e.txHash); err != nil {
			return err
		}
	}
	return nil
}

// loadAttachment decodes a stored add_attachment envelope into the
// carried document.
func loadAttachment(view *schema.Schema, txHash model.Hash) (*model.Attachment, error) {
	payload, err := loadEnvelope(view, txHash, "add_attachment")
	if err != nil {
		if model.IsCode(err, model.CodeNotFound) {
			return nil, model.ErrNoAttachment(txHash.String())
		}
		return nil, err
	}
	var op addAttachmentOp
	if err := json.Unmarshal(payload, &op); err != nil {
		return nil, model.ErrInternalBadStruct("attachment")
	}
	return &op.Attachment, nil
}

// AddAttachment uploads a document shared with the uploader's nodes and
// the listed members' nodes. The document's id is this transaction's
// hash.
func (rc *RegistryContract) AddAttachment(ctx contractapi.TransactionContextInterface, requestor, attachmentJSON, membersJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	var attachIn attachmentInput
	if err := decodeJSONArg(attachmentJSON, "attachment", &attachIn); err != nil {
		return err
	}
	attachment, err := attachIn.parse()
	if err != nil {
		return err
	}
	var members []model.MemberIdentity
	if membersJSON != "" {
		var raw []string
		if err := decodeJSONArg(membersJSON, "members", &raw); err != nil {
			return err
		}
		for _, s := range raw {
			m, err := parseMember(s, "members")
			if err != nil {
				return err
			}
			members = append(members, m)
		}
	}
	return rc.run(ctx, &addAttachmentOp{
		Requestor:  member,
		Attachment: attachment,
		Members:    members,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- DeleteAttachments ---

type deleteAttachmentsOp struct {
	publicOp
	Requestor   model.MemberIdentity `json:"requestor"`
	Attachments []model.Hash         `json:"attachments"`
	Auth        auth                 `json:"auth,omitempty"`
}

func (op *deleteAttachmentsOp) Kind() string { return "delete_attachments" }

func (op *deleteAttachmentsOp) Verify() error {
	if len(op.Attachments) == 0 || len(op.Attachments) > maxArrayElements {
		return model.ErrBadParam("attachments")
	}
	return nil
}

func (op *deleteAttachmentsOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

// Execute removes the requestor's index entries. The documents
// themselves stay in the transaction log; only the member's listing
// forgets them. Deleting an unlisted document fails the batch.
func (op *deleteAttachmentsOp) Execute(st *schema.MutSchema, e env) error {
	requestorID := op.Requestor.ID()
	for _, txHash := range op.Attachments {
		listed, err := st.HasMemberAttachment(requestorID, txHash)
		if err != nil {
			return err
		}
		if !listed {
			return model.ErrNoAttachment(txHash.String())
		}
		if err := st.RemoveMemberAttachment(requestorID, txHash); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAttachments removes documents from the requestor's listing.
func (rc *RegistryContract) DeleteAttachments(ctx contractapi.TransactionContextInterface, requestor, attachmentsJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	var raw []string
	if err := decodeJSONArg(attachmentsJSON, "attachments", &raw); err != nil {
		return err
	}
	attachments := make([]model.Hash, 0, len(raw))
	for _, s := range raw {
		h, err := parseHash(s, "attachments")
		if err != nil {
			return err
		}
		attachments = append(attachments, h)
	}
	return rc.run(ctx, &deleteAttachmentsOp{
		Requestor:   member,
		Attachments: attachments,
		Auth:        auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AddAttachmentSign ---

type addAttachmentSignOp struct {
	publicOp
	Requestor    model.MemberIdentity `json:"requestor"`
	AttachmentTx model.Hash           `json:"attachmentTx"`
	Sign         model.DocumentSign   `json:"sign"`
	Auth         auth                 `json:"auth,omitempty"`
}

func (op *addAttachmentSignOp) Kind() string { return "add_attachment_sign" }

func (op *addAttachmentSignOp) Verify() error { return nil }

func (op *addAttachmentSignOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addAttachmentSignOp) Execute(st *schema.MutSchema, e env) error {
	attachment, err := loadAttachment(&st.Schema, op.AttachmentTx)
	if err != nil {
		return err
	}
	if err := op.Sign.Verify(attachment.Data); err != nil {
		return err
	}
	signed := model.SignedAttachment{Member: op.Requestor, Sign: op.Sign}
	return st.AddAttachmentSign(op.AttachmentTx, signed)
}

// AddAttachmentSign records a verified detached signature over a stored
// document, attributed to the requestor.
func (rc *RegistryContract) AddAttachmentSign(ctx contractapi.TransactionContextInterface, requestor, attachmentTx, signJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	txHash, err := parseHash(attachmentTx, "attachmentTx")
	if err != nil {
		return err
	}
	var signIn signInput
	if err := decodeJSONArg(signJSON, "sign", &signIn); err != nil {
		return err
	}
	sign, err := signIn.parse()
	if err != nil {
		return err
	}
	return rc.run(ctx, &addAttachmentSignOp{
		Requestor:    member,
		AttachmentTx: txHash,
		Sign:         sign,
		Auth:         auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AttachContractFile ---

// attachContractFileOp carries a supporting document for a contract
// under negotiation, shared with both parties' nodes.
type attachContractFileOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Attachment model.Attachment     `json:"attachment"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *attachContractFileOp) Kind() string { return "attach_contract_file" }

func (op *attachContractFileOp) Verify() error {
	return op.Attachment.Validate()
}

func (op *attachContractFileOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *attachContractFileOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *attachContractFileOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	switch contract.Status.Kind {
	case model.StatusNew, model.StatusDraft:
	default:
		return model.ErrBadContractState(contract.Status.String(), op.Kind())
	}
	if err := st.AddContractFile(op.ContractID, e.txHash); err != nil {
		return err
	}
	return st.AddMemberAttachment(op.Requestor.ID(), e.txHash)
}

// AttachContractFile uploads a supporting document for a contract under
// negotiation.
func (rc *RegistryContract) AttachContractFile(ctx contractapi.TransactionContextInterface, requestor, contractID, attachmentJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	var attachIn attachmentInput
	if err := decodeJSONArg(attachmentJSON, "attachment", &attachIn); err != nil {
		return err
	}
	attachment, err := attachIn.parse()
	if err != nil {
		return err
	}
	return rc.run(ctx, &attachContractFileOp{
		Requestor:  member,
		ContractID: id,
		Attachment: attachment,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- DeleteContractFiles ---

type deleteContractFilesOp struct {
	Requestor  model.MemberIdentity `json:"requestor"`
	ContractID model.Hash           `json:"contractId"`
	Files      []model.Hash         `json:"files"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *deleteContractFilesOp) Kind() string { return "delete_contract_files" }

func (op *deleteContractFilesOp) Verify() error {
	if len(op.Files) == 0 || len(op.Files) > maxArrayElements {
		return model.ErrBadParam("files")
	}
	return nil
}

func (op *deleteContractFilesOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *deleteContractFilesOp) Participants(view *schema.Schema) ([]model.PublicKey, error) {
	return contractShare(view, op.ContractID)
}

func (op *deleteContractFilesOp) Execute(st *schema.MutSchema, e env) error {
	contract, err := loadContract(&st.Schema, op.ContractID)
	if err != nil {
		return err
	}
	if !contract.IsMember(op.Requestor) {
		return model.ErrNoPermissions()
	}
	switch contract.Status.Kind {
	case model.StatusNew, model.StatusDraft:
	default:
		return model.ErrBadContractState(contract.Status.String(), op.Kind())
	}
	for _, f := range op.Files {
		if err := st.RemoveContractFile(op.ContractID, f); err != nil {
			return err
		}
	}
	return nil
}

// DeleteContractFiles removes supporting documents from a contract under
// negotiation.
func (rc *RegistryContract) DeleteContractFiles(ctx contractapi.TransactionContextInterface, requestor, contractID, filesJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	id, err := parseHash(contractID, "contractId")
	if err != nil {
		return err
	}
	var raw []string
	if err := decodeJSONArg(filesJSON, "files", &raw); err != nil {
		return err
	}
	files := make([]model.Hash, 0, len(raw))
	for _, s := range raw {
		h, err := parseHash(s, "files")
		if err != nil {
			return err
		}
		files = append(files, h)
	}
	return rc.run(ctx, &deleteContractFilesOp{
		Requestor:  member,
		ContractID: id,
		Files:      files,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

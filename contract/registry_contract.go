package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"

	"iptrade/identity"
	"iptrade/model"
	"iptrade/schema"
)

var logger = flogging.MustGetLogger("iptrade.registrycontract")

// Constants for input validation and limits
const (
	maxStringInputLength = 256
	maxReasonLength      = 1024
	maxArrayElements     = 50
	maxAttachmentSize    = 10 << 20
)

// RegistryContract is the execution core of the rights-trading node: a
// deterministic state-transition function invoked once per validated
// transaction. Everything around it (ordering, wire signatures,
// consensus, the committed store) belongs to the platform.
// @contract:RegistryContract
type RegistryContract struct {
	contractapi.Contract
	identity identity.Validator
}

// NewRegistryContract wires the external identity collaborator. A nil
// validator disables identity assertion.
func NewRegistryContract(v identity.Validator) *RegistryContract {
	return &RegistryContract{identity: v}
}

// Instantiate is called during chaincode instantiation.
func (rc *RegistryContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("RegistryContract instantiated/upgraded")
}

// env carries the per-transaction facts every execution step may need.
type env struct {
	txHash    model.Hash
	timestamp time.Time
}

// preExec bundles what an operation may touch before execution: a
// read-only view and the identity collaborator. No writes are possible
// through it.
type preExec struct {
	ctx      context.Context
	view     *schema.Schema
	identity identity.Validator
}

// authorizeMember asserts a bearer token against a member identity. With
// no collaborator configured, or no token supplied, the assertion is
// skipped; a token that does not speak for the member fails the
// transaction.
func (p *preExec) authorizeMember(member model.MemberIdentity, a auth) error {
	if p.identity == nil || a.BearerToken == "" {
		return nil
	}
	externalID := a.ExternalID
	if externalID == "" {
		registered, err := p.view.MemberExternalID(member.ID())
		if err != nil {
			return err
		}
		externalID = registered
	}
	if externalID == "" {
		return model.ErrIdentityValidation("no external identity registered for " + member.String())
	}
	ok, err := p.identity.Validate(p.ctx, member, a.BearerToken, externalID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrIdentityValidation("token does not speak for " + member.String())
	}
	return nil
}

// auth is the optional external-identity assertion attached to
// member-authenticated operations.
type auth struct {
	BearerToken string `json:"bearerToken,omitempty"`
	ExternalID  string `json:"externalId,omitempty"`
}

// operation is one transaction kind. The set is closed: every kind the
// wire protocol names has exactly one implementation, and the dispatch
// pipeline below is the only way in.
type operation interface {
	// Kind is the wire name of the transaction.
	Kind() string
	// Verify validates the decoded fields without touching state.
	Verify() error
	// PreExecute runs read-only authorization against a snapshot.
	PreExecute(p *preExec) error
	// Participants lists the node keys entitled to the private payload.
	Participants(view *schema.Schema) ([]model.PublicKey, error)
	// Execute is the only mutation point.
	Execute(st *schema.MutSchema, e env) error
}

// txEnvelope is the stored canonical form of an executed transaction,
// addressable by its hash. Later transactions read earlier payloads
// through it (private bids, attached documents).
type txEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// run drives an operation through the pipeline: verify, pre-execute
// against a read-only view, compute the privacy share, execute against
// the write set, then record the envelope. Returning an error discards
// every write of this transaction.
func (rc *RegistryContract) run(ctx contractapi.TransactionContextInterface, op operation) error {
	if err := op.Verify(); err != nil {
		logger.Debugw("transaction rejected at verify", "kind", op.Kind(), "err", err)
		return err
	}

	view := schema.New(schema.NewStubView(ctx.GetStub()))
	pre := &preExec{ctx: context.Background(), view: view, identity: rc.identity}
	if err := op.PreExecute(pre); err != nil {
		logger.Debugw("transaction rejected at pre-execute", "kind", op.Kind(), "err", err)
		return err
	}

	share, err := op.Participants(view)
	if err != nil {
		return err
	}

	e, err := rc.newEnv(ctx)
	if err != nil {
		return err
	}
	st := schema.NewMut(schema.NewStubFork(ctx.GetStub()))
	if err := op.Execute(st, e); err != nil {
		logger.Debugw("transaction rejected at execute",
			"kind", op.Kind(), "tx", e.txHash.String(), "err", err)
		return err
	}

	if err := rc.recordTransaction(st, op, e.txHash, share); err != nil {
		return err
	}
	if err := ctx.GetStub().SetEvent(op.Kind(), []byte(e.txHash.String())); err != nil {
		return fmt.Errorf("failed to set %s event: %w", op.Kind(), err)
	}
	logger.Infow("transaction executed", "kind", op.Kind(), "tx", e.txHash.String())
	return nil
}

func (rc *RegistryContract) recordTransaction(st *schema.MutSchema, op operation, txHash model.Hash, share []model.PublicKey) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", op.Kind(), err)
	}
	raw, err := json.Marshal(txEnvelope{Kind: op.Kind(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", op.Kind(), err)
	}
	if err := st.PutTransaction(txHash, raw); err != nil {
		return err
	}
	if len(share) > 0 {
		return st.PutShare(txHash, share)
	}
	return nil
}

// newEnv derives the per-transaction facts from the stub. The platform
// transaction id is the creating-transaction hash entity ids are built
// from.
func (rc *RegistryContract) newEnv(ctx contractapi.TransactionContextInterface) (env, error) {
	txHash, err := model.HashFromHex(ctx.GetStub().GetTxID())
	if err != nil {
		txHash = model.NewHash([]byte(ctx.GetStub().GetTxID()))
	}
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return env{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return env{txHash: txHash, timestamp: ts.AsTime()}, nil
}

// loadEnvelope fetches a stored transaction of the expected kind and
// returns its payload.
func loadEnvelope(view *schema.Schema, txHash model.Hash, kind string) (json.RawMessage, error) {
	raw, err := view.TransactionBytes(txHash)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, model.ErrNoTransaction(txHash.String())
	}
	var envl txEnvelope
	if err := json.Unmarshal(raw, &envl); err != nil {
		return nil, model.ErrInternalBadStruct("transaction envelope")
	}
	if envl.Kind != kind {
		return nil, model.ErrUnexpectedTransaction(txHash.String(), kind)
	}
	return envl.Payload, nil
}

// --- Validation helpers ---

func validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return model.ErrBadParam(field)
	}
	if len(input) > max {
		return model.ErrBadParam(field)
	}
	return nil
}

func validateOptionalString(input, field string, max int) error {
	if len(input) > max {
		return model.ErrBadParam(field)
	}
	return nil
}

func parseMember(s, field string) (model.MemberIdentity, error) {
	if err := validateRequiredString(s, field, maxStringInputLength); err != nil {
		return model.MemberIdentity{}, err
	}
	return model.ParseMemberIdentity(s)
}

func parseHash(s, field string) (model.Hash, error) {
	h, err := model.HashFromHex(strings.TrimSpace(s))
	if err != nil {
		return model.Hash{}, model.ErrBadParam(field)
	}
	return h, nil
}

func parseTimestamp(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, model.ErrBadParam(field)
	}
	return t, nil
}

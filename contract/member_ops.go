package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// --- AddMemberNode ---

// addMemberNodeOp binds a node key to a member. Private payloads of the
// member's later transactions are shared with every bound node.
type addMemberNodeOp struct {
	publicOp
	Member model.MemberIdentity `json:"member"`
	Node   model.PublicKey      `json:"node"`
	Auth   auth                 `json:"auth,omitempty"`
}

func (op *addMemberNodeOp) Kind() string { return "add_member_node" }

func (op *addMemberNodeOp) Verify() error {
	if op.Node.IsZero() {
		return model.ErrBadParam("node")
	}
	return nil
}

func (op *addMemberNodeOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Member, op.Auth)
}

func (op *addMemberNodeOp) Execute(st *schema.MutSchema, e env) error {
	return st.AddMemberNode(op.Member.ID(), op.Node)
}

// AddMemberNode registers a node public key as speaking for a member.
func (rc *RegistryContract) AddMemberNode(ctx contractapi.TransactionContextInterface, member, nodeKey, bearerToken, externalID string) error {
	m, err := parseMember(member, "member")
	if err != nil {
		return err
	}
	node, err := model.PublicKeyFromHex(nodeKey)
	if err != nil {
		return err
	}
	return rc.run(ctx, &addMemberNodeOp{
		Member: m,
		Node:   node,
		Auth:   auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- RegisterMemberID ---

// registerMemberIDOp stores the member's external identity-provider id,
// used as the default subject of later bearer-token assertions.
type registerMemberIDOp struct {
	publicOp
	Member     model.MemberIdentity `json:"member"`
	ExternalID string               `json:"externalId"`
	Auth       auth                 `json:"auth,omitempty"`
}

func (op *registerMemberIDOp) Kind() string { return "register_member_id" }

func (op *registerMemberIDOp) Verify() error {
	return validateRequiredString(op.ExternalID, "externalId", maxStringInputLength)
}

func (op *registerMemberIDOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Member, op.Auth)
}

func (op *registerMemberIDOp) Execute(st *schema.MutSchema, e env) error {
	return st.SetMemberExternalID(op.Member.ID(), op.ExternalID)
}

// RegisterMemberID binds a member to its identity-provider subject id.
func (rc *RegistryContract) RegisterMemberID(ctx contractapi.TransactionContextInterface, member, memberExternalID, bearerToken, externalID string) error {
	m, err := parseMember(member, "member")
	if err != nil {
		return err
	}
	return rc.run(ctx, &registerMemberIDOp{
		Member:     m,
		ExternalID: memberExternalID,
		Auth:       auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

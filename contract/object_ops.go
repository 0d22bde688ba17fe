package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"iptrade/model"
	"iptrade/schema"
)

// publicOp is the default behavior for operations whose payload is fully
// public: no recipient list.
type publicOp struct{}

func (publicOp) Participants(*schema.Schema) ([]model.PublicKey, error) {
	return nil, nil
}

// --- AddObjectRequest ---

type addObjectRequestOp struct {
	publicOp
	Requestor model.MemberIdentity `json:"requestor"`
	Object    model.ObjectIdentity `json:"object"`
	Auth      auth                 `json:"auth,omitempty"`
}

func (op *addObjectRequestOp) Kind() string { return "add_object_request" }

func (op *addObjectRequestOp) Verify() error { return nil }

func (op *addObjectRequestOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addObjectRequestOp) Execute(st *schema.MutSchema, e env) error {
	return st.AddRequest(op.Requestor.ID(), op.Object)
}

// AddObjectRequest records a member's request to register an object they
// claim rights over.
func (rc *RegistryContract) AddObjectRequest(ctx contractapi.TransactionContextInterface, requestor, object, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	obj, err := model.ParseObjectIdentity(object)
	if err != nil {
		return err
	}
	return rc.run(ctx, &addObjectRequestOp{
		Requestor: member,
		Object:    obj,
		Auth:      auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AddObjectGroupRequest ---

type addObjectGroupRequestOp struct {
	publicOp
	Requestor model.MemberIdentity   `json:"requestor"`
	Objects   []model.ObjectIdentity `json:"objects"`
	Auth      auth                   `json:"auth,omitempty"`
}

func (op *addObjectGroupRequestOp) Kind() string { return "add_object_group_request" }

func (op *addObjectGroupRequestOp) Verify() error {
	if len(op.Objects) == 0 || len(op.Objects) > maxArrayElements {
		return model.ErrBadParam("objects")
	}
	return nil
}

func (op *addObjectGroupRequestOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Requestor, op.Auth)
}

func (op *addObjectGroupRequestOp) Execute(st *schema.MutSchema, e env) error {
	requestorID := op.Requestor.ID()
	for _, obj := range op.Objects {
		if err := st.AddRequest(requestorID, obj); err != nil {
			return err
		}
	}
	return nil
}

// AddObjectGroupRequest records one request covering several objects.
func (rc *RegistryContract) AddObjectGroupRequest(ctx contractapi.TransactionContextInterface, requestor, objectsJSON, bearerToken, externalID string) error {
	member, err := parseMember(requestor, "requestor")
	if err != nil {
		return err
	}
	var raw []string
	if err := decodeJSONArg(objectsJSON, "objects", &raw); err != nil {
		return err
	}
	objects := make([]model.ObjectIdentity, 0, len(raw))
	for _, s := range raw {
		obj, err := model.ParseObjectIdentity(s)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
	}
	return rc.run(ctx, &addObjectGroupRequestOp{
		Requestor: member,
		Objects:   objects,
		Auth:      auth{BearerToken: bearerToken, ExternalID: externalID},
	})
}

// --- AddObject / UpdateObject ---

type objectWriteOp struct {
	publicOp
	Owner        model.MemberIdentity          `json:"owner"`
	Object       model.ObjectIdentity          `json:"object"`
	Ownerships   []model.Ownership             `json:"ownerships"`
	Unstructured []model.OwnershipUnstructured `json:"unstructured"`
	Auth         auth                          `json:"auth,omitempty"`
}

func (op *objectWriteOp) Verify() error {
	if len(op.Ownerships) > maxArrayElements || len(op.Unstructured) > maxArrayElements {
		return model.ErrBadParam("ownership records")
	}
	return nil
}

func (op *objectWriteOp) PreExecute(p *preExec) error {
	return p.authorizeMember(op.Owner, op.Auth)
}

// writeObject rewrites the rights picture of an object wholesale: every
// lot and contract referencing it is invalidated first, then the object,
// its derived rights and its unstructured records are written, and the
// owner's pending request (if any) is consumed.
func (op *objectWriteOp) writeObject(st *schema.MutSchema, e env) error {
	objectID := op.Object.ID()
	if err := st.InvalidateObjectDeals(objectID); err != nil {
		return err
	}

	rights := make(map[model.Hash]model.Rights, len(op.Ownerships)+1)
	for _, o := range op.Ownerships {
		rights[o.Rightholder.ID()] = model.RightsFromOwnership(o)
	}
	rights[op.Owner.ID()] = model.OwnedRights(e.timestamp)

	if err := st.PutObject(op.Object, e.txHash); err != nil {
		return err
	}
	if err := st.UpdateRights(objectID, rights); err != nil {
		return err
	}
	if err := st.ReplaceUnstructuredOwnership(objectID, op.Unstructured); err != nil {
		return err
	}
	return st.RemoveRequest(op.Owner.ID(), objectID)
}

type addObjectOp struct{ objectWriteOp }

func (op *addObjectOp) Kind() string { return "add_object" }

func (op *addObjectOp) Execute(st *schema.MutSchema, e env) error {
	exists, err := st.HasObject(op.Object.ID())
	if err != nil {
		return err
	}
	if exists {
		return model.ErrDuplicateObject(op.Object.String())
	}
	return op.writeObject(st, e)
}

type updateObjectOp struct{ objectWriteOp }

func (op *updateObjectOp) Kind() string { return "update_object" }

func (op *updateObjectOp) Execute(st *schema.MutSchema, e env) error {
	exists, err := st.HasObject(op.Object.ID())
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrNoObject(op.Object.String())
	}
	return op.writeObject(st, e)
}

func (rc *RegistryContract) parseObjectWrite(owner, object, ownershipsJSON, unstructuredJSON, bearerToken, externalID string) (objectWriteOp, error) {
	member, err := parseMember(owner, "owner")
	if err != nil {
		return objectWriteOp{}, err
	}
	obj, err := model.ParseObjectIdentity(object)
	if err != nil {
		return objectWriteOp{}, err
	}

	var ownerships []model.Ownership
	if ownershipsJSON != "" {
		var inputs []ownershipInput
		if err := decodeJSONArg(ownershipsJSON, "ownerships", &inputs); err != nil {
			return objectWriteOp{}, err
		}
		for _, in := range inputs {
			o, err := in.parse()
			if err != nil {
				return objectWriteOp{}, err
			}
			ownerships = append(ownerships, o)
		}
	}

	var unstructured []model.OwnershipUnstructured
	if unstructuredJSON != "" {
		var inputs []unstructuredInput
		if err := decodeJSONArg(unstructuredJSON, "unstructured", &inputs); err != nil {
			return objectWriteOp{}, err
		}
		for _, in := range inputs {
			rec, err := in.parse()
			if err != nil {
				return objectWriteOp{}, err
			}
			unstructured = append(unstructured, rec)
		}
	}

	return objectWriteOp{
		Owner:        member,
		Object:       obj,
		Ownerships:   ownerships,
		Unstructured: unstructured,
		Auth:         auth{BearerToken: bearerToken, ExternalID: externalID},
	}, nil
}

// AddObject registers an object together with its full rights picture.
// The owner always receives the full-capability record; structured
// rights for other members are derived from the supplied ownership
// records.
func (rc *RegistryContract) AddObject(ctx contractapi.TransactionContextInterface, owner, object, ownershipsJSON, unstructuredJSON, bearerToken, externalID string) error {
	op, err := rc.parseObjectWrite(owner, object, ownershipsJSON, unstructuredJSON, bearerToken, externalID)
	if err != nil {
		return err
	}
	return rc.run(ctx, &addObjectOp{objectWriteOp: op})
}

// UpdateObject rewrites an existing object's rights picture and
// invalidates every open lot and live contract referencing it.
func (rc *RegistryContract) UpdateObject(ctx contractapi.TransactionContextInterface, owner, object, ownershipsJSON, unstructuredJSON, bearerToken, externalID string) error {
	op, err := rc.parseObjectWrite(owner, object, ownershipsJSON, unstructuredJSON, bearerToken, externalID)
	if err != nil {
		return err
	}
	return rc.run(ctx, &updateObjectOp{objectWriteOp: op})
}

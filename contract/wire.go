package contract

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"iptrade/model"
)

// Wire input shapes. Chaincode arguments arrive as strings and JSON
// blobs; these carriers decode and validate them into model values
// before an operation is built.

func decodeJSONArg(arg, field string, out interface{}) error {
	if strings.TrimSpace(arg) == "" {
		return model.ErrBadParam(field)
	}
	if err := json.Unmarshal([]byte(arg), out); err != nil {
		return model.ErrBadParam(field)
	}
	return nil
}

func parseDistribution(s string) (model.Distribution, error) {
	switch s {
	case "able":
		return model.DistributionAble, nil
	case "with_written_permission":
		return model.DistributionWithWrittenPermission, nil
	case "unable", "":
		return model.DistributionUnable, nil
	}
	return 0, model.ErrBadParam("distribution")
}

func parseLocations(raw []string) ([]model.Location, error) {
	if len(raw) > maxArrayElements {
		return nil, model.ErrBadParam("locations")
	}
	locations := make([]model.Location, 0, len(raw))
	for _, s := range raw {
		l, err := model.ParseLocation(s)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, nil
}

func parseClassifiers(raw []string) ([]model.Classifier, error) {
	if len(raw) > maxArrayElements {
		return nil, model.ErrBadParam("classifiers")
	}
	classifiers := make([]model.Classifier, 0, len(raw))
	for _, s := range raw {
		c, err := model.ParseClassifier(s)
		if err != nil {
			return nil, err
		}
		if !c.IsValid() {
			return nil, model.ErrBadClassifierFormat(s)
		}
		classifiers = append(classifiers, c)
	}
	return classifiers, nil
}

type objectTermInput struct {
	Object       string   `json:"object"`
	Term         string   `json:"term"`
	Exclusive    bool     `json:"exclusive"`
	Distribution string   `json:"distribution"`
	Locations    []string `json:"locations"`
	Classifiers  []string `json:"classifiers"`
}

func (in objectTermInput) parse() (model.ObjectOwnership, error) {
	object, err := model.ParseObjectIdentity(in.Object)
	if err != nil {
		return model.ObjectOwnership{}, err
	}
	term, err := model.ParseTerm(in.Term)
	if err != nil {
		return model.ObjectOwnership{}, err
	}
	distribution, err := parseDistribution(in.Distribution)
	if err != nil {
		return model.ObjectOwnership{}, err
	}
	locations, err := parseLocations(in.Locations)
	if err != nil {
		return model.ObjectOwnership{}, err
	}
	classifiers, err := parseClassifiers(in.Classifiers)
	if err != nil {
		return model.ObjectOwnership{}, err
	}
	return model.ObjectOwnership{
		Object:       object,
		Term:         term,
		Exclusive:    in.Exclusive,
		Distribution: distribution,
		Locations:    locations,
		Classifiers:  classifiers,
	}, nil
}

type conditionsInput struct {
	ContractType          string            `json:"contractType"`
	Objects               []objectTermInput `json:"objects"`
	PaymentConditions     string            `json:"paymentConditions"`
	PaymentComment        string            `json:"paymentComment"`
	TerminationConditions []string          `json:"terminationConditions"`
	ContractExtras        []string          `json:"contractExtras"`
}

func (in conditionsInput) parse() (model.Conditions, error) {
	contractType, err := model.ParseContractType(in.ContractType)
	if err != nil {
		return model.Conditions{}, err
	}
	if len(in.Objects) == 0 || len(in.Objects) > maxArrayElements {
		return model.Conditions{}, model.ErrBadParam("conditions objects")
	}
	objects := make([]model.ObjectOwnership, 0, len(in.Objects))
	for _, o := range in.Objects {
		term, err := o.parse()
		if err != nil {
			return model.Conditions{}, err
		}
		objects = append(objects, term)
	}
	return model.Conditions{
		ContractType:          contractType,
		Objects:               objects,
		PaymentConditions:     in.PaymentConditions,
		PaymentComment:        in.PaymentComment,
		TerminationConditions: in.TerminationConditions,
		ContractExtras:        in.ContractExtras,
	}, nil
}

type ownershipInput struct {
	Rightholder    string   `json:"rightholder"`
	ContractType   string   `json:"contractType"`
	Exclusive      bool     `json:"exclusive"`
	Distribution   string   `json:"distribution"`
	Locations      []string `json:"locations"`
	Classifiers    []string `json:"classifiers"`
	StartingTime   string   `json:"startingTime"`
	ExpirationTime string   `json:"expirationTime,omitempty"`
}

func (in ownershipInput) parse() (model.Ownership, error) {
	rightholder, err := parseMember(in.Rightholder, "rightholder")
	if err != nil {
		return model.Ownership{}, err
	}
	contractType, err := model.ParseContractType(in.ContractType)
	if err != nil {
		return model.Ownership{}, err
	}
	distribution, err := parseDistribution(in.Distribution)
	if err != nil {
		return model.Ownership{}, err
	}
	locations, err := parseLocations(in.Locations)
	if err != nil {
		return model.Ownership{}, err
	}
	classifiers, err := parseClassifiers(in.Classifiers)
	if err != nil {
		return model.Ownership{}, err
	}
	startingTime, err := parseTimestamp(in.StartingTime, "startingTime")
	if err != nil {
		return model.Ownership{}, err
	}
	var expirationTime *time.Time
	if in.ExpirationTime != "" {
		t, err := parseTimestamp(in.ExpirationTime, "expirationTime")
		if err != nil {
			return model.Ownership{}, err
		}
		expirationTime = &t
	}
	return model.Ownership{
		Rightholder:    rightholder,
		ContractType:   contractType,
		Exclusive:      in.Exclusive,
		Distribution:   distribution,
		Locations:      locations,
		Classifiers:    classifiers,
		StartingTime:   startingTime,
		ExpirationTime: expirationTime,
	}, nil
}

type unstructuredInput struct {
	Data        string `json:"data"`
	Rightholder string `json:"rightholder,omitempty"`
	Exclusive   *bool  `json:"exclusive,omitempty"`
}

func (in unstructuredInput) parse() (model.OwnershipUnstructured, error) {
	if strings.TrimSpace(in.Data) == "" {
		return model.OwnershipUnstructured{}, model.ErrBadParam("unstructured ownership data")
	}
	rec := model.OwnershipUnstructured{Data: in.Data, Exclusive: in.Exclusive}
	if in.Rightholder != "" {
		rightholder, err := parseMember(in.Rightholder, "rightholder")
		if err != nil {
			return model.OwnershipUnstructured{}, err
		}
		rec.Rightholder = &rightholder
	}
	return rec, nil
}

type attachmentInput struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64
	Type string `json:"type"`
}

func (in attachmentInput) parse() (model.Attachment, error) {
	data, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil || len(data) > maxAttachmentSize {
		return model.Attachment{}, model.ErrBadParam("attachment data")
	}
	var attachmentType model.AttachmentType
	switch in.Type {
	case "deed":
		attachmentType = model.AttachmentDeed
	case "application":
		attachmentType = model.AttachmentApplication
	case "other", "":
		attachmentType = model.AttachmentOther
	default:
		return model.Attachment{}, model.ErrBadParam("attachment type")
	}
	a := model.Attachment{Name: in.Name, Data: data, Type: attachmentType}
	if err := a.Validate(); err != nil {
		return model.Attachment{}, err
	}
	return a, nil
}

type signInput struct {
	Signer    string `json:"signer"`    // hex node key
	Signature string `json:"signature"` // base64
}

func (in signInput) parse() (model.DocumentSign, error) {
	signer, err := model.PublicKeyFromHex(in.Signer)
	if err != nil {
		return model.DocumentSign{}, model.ErrBadParam("signer")
	}
	signature, err := base64.StdEncoding.DecodeString(in.Signature)
	if err != nil || len(signature) == 0 {
		return model.DocumentSign{}, model.ErrBadParam("signature")
	}
	return model.DocumentSign{Signer: signer, Signature: signature}, nil
}

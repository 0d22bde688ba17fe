package model

import (
	"fmt"
	"strings"
)

// ContractType tags the legal form of a rights transfer.
type ContractType uint8

const (
	ContractTypeUndefined     ContractType = 0
	ContractTypeLicense       ContractType = 1
	ContractTypeSublicense    ContractType = 2
	ContractTypeConcession    ContractType = 4
	ContractTypeSubconcession ContractType = 8
	ContractTypeExpropriation ContractType = 16
	ContractTypePledge        ContractType = 32
)

var contractTypeNames = map[ContractType]string{
	ContractTypeUndefined:     "undefined",
	ContractTypeLicense:       "license",
	ContractTypeSublicense:    "sublicense",
	ContractTypeConcession:    "concession_agreement",
	ContractTypeSubconcession: "subconcession_agreement",
	ContractTypeExpropriation: "expropriation",
	ContractTypePledge:        "pledge_agreement",
}

func (t ContractType) String() string {
	if name, ok := contractTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("contract_type(%d)", uint8(t))
}

// ParseContractType accepts the wire name of a contract type.
func ParseContractType(s string) (ContractType, error) {
	for t, name := range contractTypeNames {
		if name == s {
			return t, nil
		}
	}
	return ContractTypeUndefined, ErrBadParam("contract type")
}

func (t ContractType) IsConcession() bool {
	return t == ContractTypeConcession || t == ContractTypeSubconcession
}

// ObjectOwnership is one per-object term inside deal Conditions.
type ObjectOwnership struct {
	Object       ObjectIdentity `json:"object"`
	Term         Term           `json:"term"`
	Exclusive    bool           `json:"exclusive"`
	Distribution Distribution   `json:"distribution"`
	Locations    []Location     `json:"locations"`
	Classifiers  []Classifier   `json:"classifiers"`
}

// Conditions are the legal terms attached to a Lot or purchase offer:
// the contract type, the ordered per-object terms, and the free-text
// clauses carried into the resulting Contract.
type Conditions struct {
	ContractType          ContractType      `json:"contractType"`
	Objects               []ObjectOwnership `json:"objects"`
	PaymentConditions     string            `json:"paymentConditions"`
	PaymentComment        string            `json:"paymentComment,omitempty"`
	TerminationConditions []string          `json:"terminationConditions,omitempty"`
	ContractExtras        []string          `json:"contractExtras,omitempty"`
}

func (c Conditions) ContainsTrademark() bool {
	for _, o := range c.Objects {
		if o.Object.IsTrademark() {
			return true
		}
	}
	return false
}

func (c Conditions) IsExpropriation() bool {
	return c.ContractType == ContractTypeExpropriation
}

// HasExclusiveTerm reports whether any per-object term transfers
// exclusive rights; it decides the sale type of a lot at creation.
func (c Conditions) HasExclusiveTerm() bool {
	for _, o := range c.Objects {
		if o.Exclusive {
			return true
		}
	}
	return false
}

// Check runs the fixed condition battery. Concession deals additionally
// require a trademark among the objects.
func (c Conditions) Check() []Check {
	checks := []Check{
		c.checkLocations(),
		c.checkDuplicateObjects(),
		c.checkObjectsSellable(),
	}
	if c.ContractType.IsConcession() {
		checks = append(checks, c.checkContainsTrademark())
	}
	return checks
}

// CheckSeller enforces seller legal capacity: a concession deal forbids
// an individual seller.
func (c Conditions) CheckSeller(seller MemberIdentity) Check {
	if c.ContractType.IsConcession() && seller.IsPerson() {
		return CheckCanSell.Err()
	}
	return CheckCanSell.Ok()
}

// CheckBuyer enforces buyer legal capacity: a concession deal forbids an
// individual buyer, as does expropriation of a trademark.
func (c Conditions) CheckBuyer(buyer MemberIdentity) Check {
	if c.ContractType.IsConcession() && buyer.IsPerson() {
		return CheckCanBuy.Err()
	}
	if c.IsExpropriation() && c.ContainsTrademark() && buyer.IsPerson() {
		return CheckCanBuy.Err()
	}
	return CheckCanBuy.Ok()
}

// checkLocations is indeterminate, not failing, when any territory is
// free text: the registry cannot verify what it does not name.
func (c Conditions) checkLocations() Check {
	allValid := true
	anyCustom := false
	for _, o := range c.Objects {
		for _, l := range o.Locations {
			if !l.IsValid() {
				allValid = false
			}
			if l.IsCustom() {
				anyCustom = true
			}
		}
	}
	switch {
	case !allValid:
		return CheckLocationValid.Err()
	case anyCustom:
		return CheckLocationValid.Unknown()
	}
	return CheckLocationValid.Ok()
}

func (c Conditions) checkDuplicateObjects() Check {
	seen := make(map[Hash]struct{}, len(c.Objects))
	for _, o := range c.Objects {
		id := o.Object.ID()
		if _, dup := seen[id]; dup {
			return CheckObjectDuplicates.Err().
				Describe(fmt.Sprintf("object %s appears more than once", o.Object))
		}
		seen[id] = struct{}{}
	}
	return CheckObjectDuplicates.Ok()
}

func (c Conditions) checkObjectsSellable() Check {
	var blocked []string
	for _, o := range c.Objects {
		if !o.Object.IsSellable() {
			blocked = append(blocked, o.Object.String())
		}
	}
	if len(blocked) > 0 {
		return CheckObjectsSellable.Err().
			Describe("rights over " + strings.Join(blocked, ", ") + " cannot be transferred")
	}
	return CheckObjectsSellable.Ok()
}

func (c Conditions) checkContainsTrademark() Check {
	if c.ContainsTrademark() {
		return CheckContainsTrademark.Ok()
	}
	return CheckContainsTrademark.Err()
}

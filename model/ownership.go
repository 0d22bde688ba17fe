package model

import "time"

// Distribution tags whether a rightholder may pass rights on.
type Distribution uint8

const (
	DistributionAble                  Distribution = 1
	DistributionWithWrittenPermission Distribution = 2
	DistributionUnable                Distribution = 3
)

// RightsFlag is the derived capability bitset. Values are part of the
// stored representation.
type RightsFlag uint16

const (
	RightExclusive RightsFlag = 1
	// Reserved bits, never set by the derivation but part of the wire enum.
	RightClassified                      RightsFlag = 2
	RightNoExpiration                    RightsFlag = 4
	RightCanDistribute                   RightsFlag = 8
	RightDistributeWithWrittenPermission RightsFlag = 16
	RightOwner                           RightsFlag = 128
)

// Ownership is the structured input record describing what a member
// holds over an object. Rights are always derived from it, never edited
// directly.
type Ownership struct {
	Rightholder    MemberIdentity `json:"rightholder"`
	ContractType   ContractType   `json:"contractType"`
	Exclusive      bool           `json:"exclusive"`
	Distribution   Distribution   `json:"distribution"`
	Locations      []Location     `json:"locations"`
	Classifiers    []Classifier   `json:"classifiers"`
	StartingTime   time.Time      `json:"startingTime"`
	ExpirationTime *time.Time     `json:"expirationTime,omitempty"`
}

// OwnershipUnstructured is a free-text ownership assertion for objects
// that cannot be modelled structurally. It is wholly replaced on every
// object update.
type OwnershipUnstructured struct {
	Data        string          `json:"data"`
	Rightholder *MemberIdentity `json:"rightholder,omitempty"`
	Exclusive   *bool           `json:"exclusive,omitempty"`
}

// Rights is the authoritative structured record of what a member may do
// with an object and until when. One per (object, rightholder).
type Rights struct {
	Flags          RightsFlag   `json:"flags"`
	ContractType   ContractType `json:"contractType"`
	Locations      []Location   `json:"locations"`
	Classifiers    []Classifier `json:"classifiers"`
	StartingTime   time.Time    `json:"startingTime"`
	ExpirationTime *time.Time   `json:"expirationTime,omitempty"`
}

// RightsFromOwnership is the pure derivation of the capability bitset.
// The OWNER flag is set exactly when the ownership carries no contract
// type. Deriving twice from the same input yields the same record.
func RightsFromOwnership(o Ownership) Rights {
	var flags RightsFlag
	if o.Exclusive {
		flags |= RightExclusive
	}
	if o.ContractType == ContractTypeUndefined {
		flags |= RightOwner
	}
	switch o.Distribution {
	case DistributionAble:
		flags |= RightCanDistribute
	case DistributionWithWrittenPermission:
		flags |= RightDistributeWithWrittenPermission
	}
	return Rights{
		Flags:          flags,
		ContractType:   o.ContractType,
		Locations:      o.Locations,
		Classifiers:    o.Classifiers,
		StartingTime:   o.StartingTime,
		ExpirationTime: o.ExpirationTime,
	}
}

// OwnedRights is the full-capability record written for an object's
// registered owner.
func OwnedRights(now time.Time) Rights {
	return Rights{
		Flags:        RightExclusive | RightCanDistribute | RightOwner,
		ContractType: ContractTypeUndefined,
		Locations:    []Location{DefaultLocation()},
		StartingTime: now,
	}
}

func (r Rights) has(f RightsFlag) bool { return r.Flags&f != 0 }

func (r Rights) IsOwner() bool     { return r.has(RightOwner) }
func (r Rights) IsExclusive() bool { return r.has(RightExclusive) }
func (r Rights) CanDistribute() bool {
	return r.has(RightCanDistribute)
}
func (r Rights) DistributesWithWrittenPermission() bool {
	return r.has(RightDistributeWithWrittenPermission)
}
func (r Rights) IsClassified() bool { return len(r.Classifiers) > 0 }

// defaultDurations holds the statutory protection period added to the
// starting time when no explicit expiration is recorded.
var defaultDurations = map[ObjectClass]time.Duration{
	ObjectInvention:       20 * 365 * 24 * time.Hour,
	ObjectUtilityModel:    10 * 365 * 24 * time.Hour,
	ObjectIndustrialModel: 5 * 365 * 24 * time.Hour,
	ObjectTims:            10 * 365 * 24 * time.Hour,
	ObjectDatabase:        15 * 365 * 24 * time.Hour,
}

// CheckTerm verifies a requested term against the right's effective
// duration for the given object class.
//
// Symbol-registrable classes (trademarks, appellations, geographical
// indications) are renewable indefinitely and always pass. Programs and
// pharmaceutical certificates cannot be verified automatically.
// "for"/"forever" terms always pass; "to"/"until" terms pass iff the
// requested date does not outlive the effective expiration. A "to/until"
// term without a date, or an undefined class, is an internal error.
func (r Rights) CheckTerm(object ObjectIdentity, term Term) (Verdict, error) {
	var defaultDuration time.Duration
	switch object.Class {
	case ObjectTrademark, ObjectWellknownTrademark, ObjectAppellationOfOrigin,
		ObjectAppellationOfOriginRights, ObjectGeographicalIndication:
		return VerdictOk, nil
	case ObjectProgram, ObjectPharmaceutical:
		return VerdictUnknown, nil
	case ObjectInvention, ObjectUtilityModel, ObjectIndustrialModel,
		ObjectTims, ObjectDatabase:
		defaultDuration = defaultDurations[object.Class]
	default:
		return VerdictFail, ErrInternalBadStruct("ObjectIdentity")
	}

	expiration := r.StartingTime.Add(defaultDuration)
	if r.ExpirationTime != nil {
		expiration = *r.ExpirationTime
	}

	switch term.Spec {
	case TermFor, TermForever:
		return VerdictOk, nil
	case TermTo, TermUntil:
		if term.Date == nil {
			return VerdictFail, ErrInternalBadStruct("Term")
		}
		if term.Date.After(expiration) {
			return VerdictFail, nil
		}
		return VerdictOk, nil
	}
	return VerdictFail, ErrInternalBadStruct("Term")
}

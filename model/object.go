package model

import (
	"fmt"
	"strings"
)

// ObjectClass enumerates the intangible-asset classes the registry trades.
type ObjectClass uint8

const (
	ObjectUndefined                 ObjectClass = 0
	ObjectTrademark                 ObjectClass = 1
	ObjectWellknownTrademark        ObjectClass = 2
	ObjectAppellationOfOrigin       ObjectClass = 3
	ObjectAppellationOfOriginRights ObjectClass = 4
	ObjectPharmaceutical            ObjectClass = 5
	ObjectInvention                 ObjectClass = 6
	ObjectUtilityModel              ObjectClass = 7
	ObjectIndustrialModel           ObjectClass = 8
	ObjectTims                      ObjectClass = 9
	ObjectProgram                   ObjectClass = 10
	ObjectDatabase                  ObjectClass = 11
	ObjectGeographicalIndication    ObjectClass = 12
)

var objectClassNames = map[ObjectClass]string{
	ObjectUndefined:                 "undefined",
	ObjectTrademark:                 "trademark",
	ObjectWellknownTrademark:        "wellknown_trademark",
	ObjectAppellationOfOrigin:       "appellation_of_origin",
	ObjectAppellationOfOriginRights: "appellation_of_origin_rights",
	ObjectPharmaceutical:            "pharmaceutical",
	ObjectInvention:                 "invention",
	ObjectUtilityModel:              "utility_model",
	ObjectIndustrialModel:           "industrial_model",
	ObjectTims:                      "tims",
	ObjectProgram:                   "program",
	ObjectDatabase:                  "database",
	ObjectGeographicalIndication:    "geographical_indication",
}

func (c ObjectClass) String() string {
	if name, ok := objectClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("object_class(%d)", uint8(c))
}

func objectClassFromName(name string) (ObjectClass, bool) {
	for class, n := range objectClassNames {
		if n == name {
			return class, true
		}
	}
	return ObjectUndefined, false
}

// ObjectIdentity names one intangible asset by class and registration
// number. The registration grammar is class-specific.
type ObjectIdentity struct {
	Class     ObjectClass `json:"class"`
	RegNumber string      `json:"regNumber"`
}

// ParseObjectIdentity parses "<class>::<registration number>" and
// validates the number against the class grammar.
func ParseObjectIdentity(s string) (ObjectIdentity, error) {
	parts := strings.SplitN(s, "::", 2)
	if len(parts) != 2 {
		return ObjectIdentity{}, ErrBadObjectFormat(s, "invalid format")
	}
	class, ok := objectClassFromName(parts[0])
	if !ok {
		return ObjectIdentity{}, ErrBadObjectFormat(s, "invalid object class")
	}
	obj := ObjectIdentity{Class: class, RegNumber: parts[1]}
	if !obj.IsValid() {
		return ObjectIdentity{}, ErrBadObjectFormat(s, "invalid registration number")
	}
	return obj, nil
}

func (o ObjectIdentity) String() string {
	return o.Class.String() + "::" + o.RegNumber
}

// ID is the storage key: the content hash of the canonical text form.
func (o ObjectIdentity) ID() Hash {
	return NewHash([]byte(o.String()))
}

func (o ObjectIdentity) IsValid() bool {
	if _, ok := objectClassNames[o.Class]; !ok {
		return false
	}
	switch o.Class {
	case ObjectAppellationOfOrigin:
		return isValidAppellationNumber(o.RegNumber)
	case ObjectAppellationOfOriginRights:
		return isValidAppellationRightsNumber(o.RegNumber)
	default:
		return isValidRegNumber(o.RegNumber)
	}
}

// IsSellable reports whether the class permits transferring rights at
// all. Appellations of origin and geographical indications never do.
func (o ObjectIdentity) IsSellable() bool {
	return o.Class != ObjectAppellationOfOrigin &&
		o.Class != ObjectAppellationOfOriginRights &&
		o.Class != ObjectGeographicalIndication
}

func (o ObjectIdentity) IsTrademark() bool {
	return o.Class == ObjectTrademark
}

func isValidRegNumber(s string) bool {
	if len(s) == 0 || len([]rune(s)) > 20 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= 'а' && c <= 'я' || c >= 'А' && c <= 'Я' || c == 'ё' || c == 'Ё':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

func isNumericSequence(s string) bool {
	n := len([]rune(s))
	if n == 0 || n >= 256 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isValidAppellationNumber(s string) bool {
	return s != "0" && isNumericSequence(s)
}

// Appellation-of-origin rights are numbered "<appellation>/<certificate>".
func isValidAppellationRightsNumber(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return false
	}
	return isValidAppellationNumber(parts[0]) && isNumericSequence(parts[1])
}

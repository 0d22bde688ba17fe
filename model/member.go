package model

import (
	"fmt"
	"strconv"
	"strings"
)

// MemberClass distinguishes the national registry a member is identified in.
type MemberClass uint8

const (
	MemberOgrn   MemberClass = 0 // legal entity
	MemberOgrnip MemberClass = 1 // sole proprietor
	MemberSnils  MemberClass = 2 // individual
)

func (c MemberClass) String() string {
	switch c {
	case MemberOgrn:
		return "ogrn"
	case MemberOgrnip:
		return "ogrnip"
	case MemberSnils:
		return "snils"
	}
	return fmt.Sprintf("member_class(%d)", uint8(c))
}

// MemberIdentity is a checksum-validated registry id. It is immutable and
// only obtainable through ParseMemberIdentity, so a held value is always
// well-formed.
type MemberIdentity struct {
	Class  MemberClass `json:"class"`
	Number string      `json:"number"`
}

// ParseMemberIdentity parses "ogrn::<13 digits>", "ogrnip::<15 digits>" or
// "snils::<11 digits>" and enforces the registry checksum.
func ParseMemberIdentity(s string) (MemberIdentity, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 2 {
		return MemberIdentity{}, ErrBadMemberFormat(s)
	}
	var m MemberIdentity
	switch parts[0] {
	case "ogrn":
		m = MemberIdentity{Class: MemberOgrn, Number: parts[1]}
	case "ogrnip":
		m = MemberIdentity{Class: MemberOgrnip, Number: parts[1]}
	case "snils":
		m = MemberIdentity{Class: MemberSnils, Number: parts[1]}
	default:
		return MemberIdentity{}, ErrBadMemberFormat(s)
	}
	if !m.IsValid() {
		return MemberIdentity{}, ErrBadMemberFormat(s)
	}
	return m, nil
}

func (m MemberIdentity) String() string {
	return m.Class.String() + "::" + m.Number
}

// ID is the storage key: the content hash of the canonical text form.
func (m MemberIdentity) ID() Hash {
	return NewHash([]byte(m.String()))
}

func (m MemberIdentity) IsLegalEntity() bool { return m.Class == MemberOgrn }
func (m MemberIdentity) IsEntrepreneur() bool {
	return m.Class == MemberOgrnip
}
func (m MemberIdentity) IsPerson() bool { return m.Class == MemberSnils }

// IsValid re-runs the class-specific checksum over the number.
func (m MemberIdentity) IsValid() bool {
	switch m.Class {
	case MemberOgrn:
		return isValidOgrn(m.Number)
	case MemberOgrnip:
		return isValidOgrnip(m.Number)
	case MemberSnils:
		return isValidSnils(m.Number)
	}
	return false
}

// OGRN: 13 digits, leading 1 or 5, control digit = first-12 mod 11 mod 10.
func isValidOgrn(s string) bool {
	if len(s) != 13 || (s[0] != '1' && s[0] != '5') {
		return false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return false
	}
	return n%10 == n/10%11%10
}

// OGRNIP: 15 digits, leading 3, control digit = first-14 mod 13 mod 10.
func isValidOgrnip(s string) bool {
	if len(s) != 15 || s[0] != '3' {
		return false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return false
	}
	return n%10 == n/10%13%10
}

// SNILS: 11 digits, the last two are the weighted sum of the first nine
// (weights 9..1) mod 101 mod 100.
func isValidSnils(s string) bool {
	if len(s) != 11 {
		return false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return false
	}
	base, control := n/100, n%100
	var sum uint64
	for i := uint64(1); i <= 9; i++ {
		sum += base / pow10(i-1) % 10 * i
	}
	return control == sum%101%100
}

func pow10(n uint64) uint64 {
	v := uint64(1)
	for ; n > 0; n-- {
		v *= 10
	}
	return v
}

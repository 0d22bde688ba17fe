package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationRegistry tags how a territory is named.
type LocationRegistry uint8

const (
	LocationUndefined     LocationRegistry = 0
	LocationOktmo         LocationRegistry = 1   // municipal registry code
	LocationOktmoExtended LocationRegistry = 2   // registry code plus free-text refinement
	LocationCustomNamed   LocationRegistry = 128 // free text, not machine-checkable
)

// Location is one territorial scope entry of a Rights record or deal term.
type Location struct {
	Registry LocationRegistry `json:"registry"`
	Code     uint64           `json:"code"`
	Desc     string           `json:"desc"`
}

// ParseLocation parses "oktmo::<code>", "oktmo::<code>::<refinement>" or
// treats any other non-empty string as a custom-named territory.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, ErrBadLocationFormat(s)
	}
	if !strings.HasPrefix(s, "oktmo::") {
		return Location{Registry: LocationCustomNamed, Desc: s}, nil
	}
	rest := strings.TrimPrefix(s, "oktmo::")
	codeStr, desc := rest, ""
	if split := strings.Index(rest, "::"); split >= 0 {
		codeStr, desc = rest[:split], rest[split+2:]
		code, err := strconv.ParseUint(codeStr, 10, 64)
		if err != nil {
			return Location{}, ErrBadLocationFormat(s)
		}
		return Location{Registry: LocationOktmoExtended, Code: code, Desc: desc}, nil
	}
	code, err := strconv.ParseUint(codeStr, 10, 64)
	if err != nil {
		return Location{}, ErrBadLocationFormat(s)
	}
	return Location{Registry: LocationOktmo, Code: code}, nil
}

// DefaultLocation is the whole-registry scope.
func DefaultLocation() Location {
	return Location{Registry: LocationOktmo}
}

func (l Location) String() string {
	switch l.Registry {
	case LocationOktmo:
		return fmt.Sprintf("oktmo::%d", l.Code)
	case LocationOktmoExtended:
		return fmt.Sprintf("oktmo::%d::%s", l.Code, l.Desc)
	case LocationCustomNamed:
		return l.Desc
	}
	return fmt.Sprintf("location(%d)", uint8(l.Registry))
}

func (l Location) IsCustom() bool {
	return l.Registry == LocationCustomNamed
}

// IsValid reports whether the entry is internally consistent. Custom
// territories are valid as data even though they cannot be verified
// against the registry.
func (l Location) IsValid() bool {
	switch l.Registry {
	case LocationOktmo:
		return true
	case LocationOktmoExtended, LocationCustomNamed:
		return l.Desc != ""
	}
	return false
}

// Covers reports whether l territorially contains other. Registry codes
// nest by decimal prefix; custom-named territories cannot be checked and
// are treated as covering.
func (l Location) Covers(other Location) (bool, error) {
	if l.Registry == LocationCustomNamed {
		return true, nil
	}
	if !l.isOktmo() || !other.isOktmo() {
		return false, ErrBadLocationFormat(other.String())
	}
	return strings.HasPrefix(
		strconv.FormatUint(other.Code, 10),
		strconv.FormatUint(l.Code, 10),
	), nil
}

func (l Location) isOktmo() bool {
	return l.Registry == LocationOktmo || l.Registry == LocationOktmoExtended
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TermSpec tags how long a requested right is supposed to last.
type TermSpec uint8

const (
	TermFor     TermSpec = 1 // for a fixed duration
	TermTo      TermSpec = 2 // up to a calendar date, inclusive
	TermUntil   TermSpec = 3 // until a calendar date
	TermForever TermSpec = 4
)

func (s TermSpec) String() string {
	switch s {
	case TermFor:
		return "for"
	case TermTo:
		return "to"
	case TermUntil:
		return "until"
	case TermForever:
		return "forever"
	}
	return fmt.Sprintf("term_spec(%d)", uint8(s))
}

// TermDuration is a months:days pair used with the "for" kind.
type TermDuration struct {
	Months uint16 `json:"months"`
	Days   uint16 `json:"days"`
}

func ParseTermDuration(s string) (TermDuration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TermDuration{}, ErrBadTermFormat(s)
	}
	months, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return TermDuration{}, ErrBadTermFormat(s)
	}
	days, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return TermDuration{}, ErrBadTermFormat(s)
	}
	return TermDuration{Months: uint16(months), Days: uint16(days)}, nil
}

func (d TermDuration) String() string {
	return fmt.Sprintf("%d:%d", d.Months, d.Days)
}

// Term is a tagged protection term. Duration is set only for "for",
// Date only for "to"/"until".
type Term struct {
	Spec     TermSpec      `json:"spec"`
	Duration *TermDuration `json:"duration,omitempty"`
	Date     *time.Time    `json:"date,omitempty"`
}

// ParseTerm parses "forever", "for::<months>:<days>", "to::<RFC3339>"
// or "until::<RFC3339>".
func ParseTerm(s string) (Term, error) {
	if s == "forever" {
		return Term{Spec: TermForever}, nil
	}
	parts := strings.SplitN(s, "::", 2)
	if len(parts) != 2 {
		return Term{}, ErrBadTermFormat(s)
	}
	switch parts[0] {
	case "for":
		d, err := ParseTermDuration(parts[1])
		if err != nil {
			return Term{}, err
		}
		return Term{Spec: TermFor, Duration: &d}, nil
	case "to", "until":
		date, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return Term{}, ErrBadTermFormat(s)
		}
		spec := TermTo
		if parts[0] == "until" {
			spec = TermUntil
		}
		return Term{Spec: spec, Date: &date}, nil
	}
	return Term{}, ErrBadTermFormat(s)
}

func (t Term) String() string {
	switch t.Spec {
	case TermForever:
		return "forever"
	case TermFor:
		if t.Duration != nil {
			return "for::" + t.Duration.String()
		}
	case TermTo, TermUntil:
		if t.Date != nil {
			return t.Spec.String() + "::" + t.Date.Format(time.RFC3339)
		}
	}
	return t.Spec.String()
}

package model

import (
	"fmt"
	"strings"
)

// ClassifierRegistry tags which goods/services classification a tag
// belongs to.
type ClassifierRegistry uint8

const (
	ClassifierAll  ClassifierRegistry = 0 // no restriction
	ClassifierMktu ClassifierRegistry = 1 // goods and services (trademarks)
	ClassifierMpk  ClassifierRegistry = 2 // patents
	ClassifierSpk  ClassifierRegistry = 3 // plant varieties
	ClassifierMkpo ClassifierRegistry = 4 // industrial designs
)

var classifierNames = map[ClassifierRegistry]string{
	ClassifierAll:  "all",
	ClassifierMktu: "mktu",
	ClassifierMpk:  "mpk",
	ClassifierSpk:  "spk",
	ClassifierMkpo: "mkpo",
}

func (r ClassifierRegistry) String() string {
	if name, ok := classifierNames[r]; ok {
		return name
	}
	return fmt.Sprintf("classifier_registry(%d)", uint8(r))
}

// Classifier is one classification tag on a Rights record or deal term.
type Classifier struct {
	Registry ClassifierRegistry `json:"registry"`
	Value    string             `json:"value"`
	Desc     string             `json:"desc"`
}

// ParseClassifier parses "all", "<registry>::<value>" or
// "<registry>::<value>::<description>".
func ParseClassifier(s string) (Classifier, error) {
	parts := strings.Split(s, "::")
	var registry ClassifierRegistry
	found := false
	for r, name := range classifierNames {
		if name == parts[0] {
			registry, found = r, true
			break
		}
	}
	if !found {
		return Classifier{}, ErrBadClassifierFormat(s)
	}
	switch {
	case registry == ClassifierAll && len(parts) == 1:
		return Classifier{Registry: ClassifierAll}, nil
	case registry != ClassifierAll && len(parts) == 2:
		return Classifier{Registry: registry, Value: parts[1]}, nil
	case registry != ClassifierAll && len(parts) == 3:
		return Classifier{Registry: registry, Value: parts[1], Desc: parts[2]}, nil
	}
	return Classifier{}, ErrBadClassifierFormat(s)
}

func (c Classifier) String() string {
	return fmt.Sprintf("%s::%s::%s", c.Registry, c.Value, c.Desc)
}

func (c Classifier) IsValid() bool {
	if c.Registry == ClassifierAll {
		return c.Value == ""
	}
	_, known := classifierNames[c.Registry]
	return known && c.Value != ""
}

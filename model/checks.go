package model

import "fmt"

// Verdict is the tri-state outcome of one compliance check.
type Verdict int8

const (
	VerdictFail    Verdict = -1
	VerdictUnknown Verdict = 0
	VerdictOk      Verdict = 1
)

func (v Verdict) String() string {
	switch v {
	case VerdictFail:
		return "fail"
	case VerdictUnknown:
		return "unknown"
	case VerdictOk:
		return "ok"
	}
	return fmt.Sprintf("verdict(%d)", int8(v))
}

// CheckKey names a compliance rule. Keys below checkKeyExternalBase are
// computed by the core; keys from it upward are submitted by off-ledger
// verification services.
type CheckKey uint16

const checkKeyExternalBase CheckKey = 32768

const (
	CheckDocumentsMatchCondition CheckKey = 0
	CheckCanSell                 CheckKey = 1
	CheckCanBuy                  CheckKey = 2
	CheckLocationValid           CheckKey = 3
	CheckObjectDuplicates        CheckKey = 4
	CheckObjectsSellable         CheckKey = 5
	CheckContainsTrademark       CheckKey = 6
	CheckNoUnstructuredData      CheckKey = 7

	CheckTaxPaymentInfoAdded      CheckKey = checkKeyExternalBase + 0
	CheckBlacklist                CheckKey = checkKeyExternalBase + 1
	CheckSellerDataValid          CheckKey = checkKeyExternalBase + 2
	CheckDurationValid            CheckKey = checkKeyExternalBase + 3
	CheckUsecasesMatch            CheckKey = checkKeyExternalBase + 4
	CheckRegisteredChanges        CheckKey = checkKeyExternalBase + 5
	CheckPublicExpropriationOffer CheckKey = checkKeyExternalBase + 6
)

var checkKeyNames = map[CheckKey]string{
	CheckDocumentsMatchCondition:  "documents_match_condition",
	CheckCanSell:                  "can_sell",
	CheckCanBuy:                   "can_buy",
	CheckLocationValid:            "location_valid",
	CheckObjectDuplicates:         "object_duplicates",
	CheckObjectsSellable:          "objects_sellable",
	CheckContainsTrademark:        "contains_trademark",
	CheckNoUnstructuredData:       "no_unstructured_data",
	CheckTaxPaymentInfoAdded:      "tax_payment_info_added",
	CheckBlacklist:                "blacklist",
	CheckSellerDataValid:          "seller_data_valid",
	CheckDurationValid:            "duration_valid",
	CheckUsecasesMatch:            "usecases_match",
	CheckRegisteredChanges:        "registered_changes",
	CheckPublicExpropriationOffer: "public_expropriation_offer",
}

func (k CheckKey) String() string {
	if name, ok := checkKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("check(%d)", uint16(k))
}

func (k CheckKey) IsExternal() bool {
	return k >= checkKeyExternalBase
}

// canonicalDescs holds the fixed rationale text per key and verdict,
// indexed fail/unknown/ok.
var canonicalDescs = map[CheckKey][3]string{
	CheckDocumentsMatchCondition: {
		"the attached documents do not match the deal conditions",
		"the attached documents could not be matched against the deal conditions",
		"the attached documents match the deal conditions",
	},
	CheckCanSell: {
		"the seller lacks legal capacity for this deal",
		"the seller's legal capacity could not be determined",
		"the seller meets the legal-capacity requirements for this deal",
	},
	CheckCanBuy: {
		"the buyer lacks legal capacity for this deal",
		"the buyer's legal capacity could not be determined",
		"the buyer meets the legal-capacity requirements for this deal",
	},
	CheckLocationValid: {
		"a deal territory is not a valid registry entry",
		"a deal territory is free text and cannot be verified against the registry",
		"every deal territory is a valid registry entry",
	},
	CheckObjectDuplicates: {
		"the deal lists the same object more than once",
		"object duplication could not be determined",
		"every object appears in the deal exactly once",
	},
	CheckObjectsSellable: {
		"the deal contains objects whose class forbids transferring rights",
		"object sellability could not be determined",
		"every object's class permits transferring rights",
	},
	CheckContainsTrademark: {
		"a concession deal must include at least one trademark",
		"trademark presence could not be determined",
		"the deal includes a trademark",
	},
	CheckNoUnstructuredData: {
		"stored ownership of a deal object is missing entirely",
		"stored ownership of a deal object is free text and cannot be fully verified",
		"every deal object carries a structured rights record",
	},
	CheckTaxPaymentInfoAdded: {
		"tax payment information is missing or rejected",
		"tax payment information has not been verified yet",
		"tax payment information is recorded and accepted",
	},
	CheckBlacklist: {
		"a deal participant is blacklisted",
		"blacklist status has not been verified yet",
		"no deal participant is blacklisted",
	},
	CheckSellerDataValid: {
		"the seller's registry data failed external verification",
		"the seller's registry data has not been verified yet",
		"the seller's registry data passed external verification",
	},
	CheckDurationValid: {
		"a requested term ends after the exclusive right expires",
		"a requested term cannot be verified against the right's duration",
		"every requested term ends before the exclusive right expires",
	},
	CheckUsecasesMatch: {
		"the contract use cases failed external verification",
		"the contract use cases have not been verified yet",
		"the contract use cases passed external verification",
	},
	CheckRegisteredChanges: {
		"registered object changes conflict with the contract",
		"registered object changes have not been verified yet",
		"registered object changes do not conflict with the contract",
	},
	CheckPublicExpropriationOffer: {
		"no public expropriation offer is registered for the deal",
		"the public expropriation offer has not been verified yet",
		"a public expropriation offer is registered for the deal",
	},
}

func canonicalDesc(k CheckKey, v Verdict) string {
	if descs, ok := canonicalDescs[k]; ok {
		return descs[v+1]
	}
	return fmt.Sprintf("%s: %s", k, v)
}

// Check is one stored compliance verdict.
type Check struct {
	Key    CheckKey `json:"key"`
	Result Verdict  `json:"result"`
	Desc   string   `json:"desc"`
}

// Ok builds a passing check with canonical rationale text.
func (k CheckKey) Ok() Check {
	return Check{Key: k, Result: VerdictOk, Desc: canonicalDesc(k, VerdictOk)}
}

// Err builds a failing check with canonical rationale text.
func (k CheckKey) Err() Check {
	return Check{Key: k, Result: VerdictFail, Desc: canonicalDesc(k, VerdictFail)}
}

// Unknown builds an indeterminate check with canonical rationale text.
func (k CheckKey) Unknown() Check {
	return Check{Key: k, Result: VerdictUnknown, Desc: canonicalDesc(k, VerdictUnknown)}
}

// WithVerdict builds a check for a computed verdict code.
func (k CheckKey) WithVerdict(v Verdict) Check {
	return Check{Key: k, Result: v, Desc: canonicalDesc(k, v)}
}

// Describe replaces the canonical text with a computed description.
func (c Check) Describe(desc string) Check {
	c.Desc = desc
	return c
}

func (c Check) IsFail() bool {
	return c.Result == VerdictFail
}

// WorstOf aggregates per-object verdicts as a pure fold: the running
// minimum of the verdict codes. The zero verdict of a fresh fold is Ok.
type WorstOf struct {
	key     CheckKey
	verdict Verdict
}

func StartWorstOf(key CheckKey) WorstOf {
	return WorstOf{key: key, verdict: VerdictOk}
}

// Fold returns a new fold accumulating v; the receiver is unchanged.
func (w WorstOf) Fold(v Verdict) WorstOf {
	if v < w.verdict {
		w.verdict = v
	}
	return w
}

// Finalize materializes the folded verdict as a Check with canonical
// text.
func (w WorstOf) Finalize() Check {
	return w.key.WithVerdict(w.verdict)
}

func (w WorstOf) Verdict() Verdict {
	return w.verdict
}

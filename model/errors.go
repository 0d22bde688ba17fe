package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the closed taxonomy of failure categories surfaced by the
// transaction core. Codes are part of the wire contract and must not change.
type ErrorCode uint8

const (
	CodeNotFound         ErrorCode = 1
	CodeUnexpected       ErrorCode = 2
	CodeAlreadyExists    ErrorCode = 3
	CodePermissionDenied ErrorCode = 4
	CodeCrypto           ErrorCode = 5
	CodeBadState         ErrorCode = 6
	CodeBadParam         ErrorCode = 7
	CodeBadValue         ErrorCode = 8
	CodeInternal         ErrorCode = 9
	CodeCheckFail        ErrorCode = 10
)

func (c ErrorCode) String() string {
	switch c {
	case CodeNotFound:
		return "not_found"
	case CodeUnexpected:
		return "unexpected"
	case CodeAlreadyExists:
		return "already_exists"
	case CodePermissionDenied:
		return "permission_denied"
	case CodeCrypto:
		return "crypto"
	case CodeBadState:
		return "bad_state"
	case CodeBadParam:
		return "bad_param"
	case CodeBadValue:
		return "bad_value"
	case CodeInternal:
		return "internal"
	case CodeCheckFail:
		return "check_fail"
	}
	return fmt.Sprintf("error(%d)", uint8(c))
}

// Error is the single user-visible error shape: a category plus a
// description that never leaks state beyond identifiers the caller
// already knows.
type Error struct {
	Code        ErrorCode `json:"code"`
	Description string    `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Description: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the taxonomy code from err, unwrapping as needed.
// Errors outside the taxonomy report CodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func ErrNoObject(object string) *Error {
	return newError(CodeNotFound, "object %q is not found", object)
}

func ErrNoLot(lotID string) *Error {
	return newError(CodeNotFound, "lot %q is not found", lotID)
}

func ErrNoContract(contractID string) *Error {
	return newError(CodeNotFound, "contract %q is not found", contractID)
}

func ErrNoMember(member string) *Error {
	return newError(CodeNotFound, "member %q is not found", member)
}

func ErrNoTransaction(txHash string) *Error {
	return newError(CodeNotFound, "transaction %q is not found", txHash)
}

func ErrNoAttachment(txHash string) *Error {
	return newError(CodeNotFound, "attachment %q is not found", txHash)
}

func ErrUnexpectedTransaction(txHash, want string) *Error {
	return newError(CodeUnexpected, "transaction %q is not a %s", txHash, want)
}

func ErrDuplicateLot(lotID string) *Error {
	return newError(CodeAlreadyExists, "lot %q already exists", lotID)
}

func ErrDuplicateContract(contractID string) *Error {
	return newError(CodeAlreadyExists, "contract %q already exists", contractID)
}

func ErrDuplicateAttachment(txHash string) *Error {
	return newError(CodeAlreadyExists, "attachment %q already exists", txHash)
}

func ErrDuplicatePayment(paymentNumber string) *Error {
	return newError(CodeAlreadyExists, "payment %q has already been recorded", paymentNumber)
}

func ErrDuplicateObject(object string) *Error {
	return newError(CodeAlreadyExists, "object %q is already registered", object)
}

func ErrLowBid(bid, price string) *Error {
	return newError(CodeBadValue, "bid %s does not exceed the current lot price %s", bid, price)
}

func ErrObjectAlreadyPublished(object string) *Error {
	return newError(CodeAlreadyExists, "object %q is already published in an open lot", object)
}

func ErrNoPermissions() *Error {
	return newError(CodePermissionDenied, "the requestor is not permitted to perform this operation")
}

func ErrBadSignature(detail string) *Error {
	return newError(CodeCrypto, "signature verification failed: %s", detail)
}

func ErrBadLotState(lotID, detail string) *Error {
	return newError(CodeBadState, "lot %q does not allow this operation: %s", lotID, detail)
}

func ErrLotIsUndefined(lotID string) *Error {
	return newError(CodeBadState, "lot %q is undefined after an object change", lotID)
}

func ErrBadLotTimeExtension() *Error {
	return newError(CodeBadState, "a lot period may only be extended to a strictly later closing time")
}

func ErrBadContractState(status, action string) *Error {
	return newError(CodeBadState, "contract in status %q does not accept action %q", status, action)
}

func ErrBadParam(name string) *Error {
	return newError(CodeBadParam, "parameter %q is missing or malformed", name)
}

func ErrBadMemberFormat(member string) *Error {
	return newError(CodeBadValue, "member identity %q is malformed", member)
}

func ErrBadObjectFormat(object, detail string) *Error {
	return newError(CodeBadValue, "object identity %q is malformed: %s", object, detail)
}

func ErrBadLocationFormat(location string) *Error {
	return newError(CodeBadValue, "location %q is malformed", location)
}

func ErrBadClassifierFormat(classifier string) *Error {
	return newError(CodeBadValue, "classifier %q is malformed", classifier)
}

func ErrBadTermFormat(term string) *Error {
	return newError(CodeBadValue, "term %q is malformed", term)
}

func ErrBadPriceFormat(price string) *Error {
	return newError(CodeBadValue, "price %q is malformed", price)
}

func ErrBadFilename(name string) *Error {
	return newError(CodeBadValue, "filename %q is malformed", name)
}

func ErrBadLotTime() *Error {
	return newError(CodeBadValue, "lot closing time must be strictly after its opening time")
}

func ErrInternalBadStruct(name string) *Error {
	return newError(CodeInternal, "stored %s record violates ledger self-consistency", name)
}

func ErrBadStoredMember(member string) *Error {
	return newError(CodeInternal, "stored node key of member %q does not parse", member)
}

func ErrMismatchedDeedFiles() *Error {
	return newError(CodeBadValue, "deed and application files do not match the attached documents")
}

func ErrIdentityValidation(detail string) *Error {
	return newError(CodePermissionDenied, "identity assertion failed: %s", detail)
}

// ErrCheckFailed reports the single enforcement choke-point: one or more
// stored compliance checks are in the fail state.
func ErrCheckFailed(failed []Check) *Error {
	names := make([]string, 0, len(failed))
	for _, c := range failed {
		names = append(names, c.Key.String())
	}
	return newError(CodeCheckFail, "compliance checks failed: %s", strings.Join(names, ", "))
}

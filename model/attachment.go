package model

import (
	"fmt"
	"strings"
)

// AttachmentType tags the legal role of an attached document.
type AttachmentType uint8

const (
	AttachmentDeed        AttachmentType = 0
	AttachmentApplication AttachmentType = 1
	AttachmentOther       AttachmentType = 2
)

func (t AttachmentType) String() string {
	switch t {
	case AttachmentDeed:
		return "deed"
	case AttachmentApplication:
		return "application"
	case AttachmentOther:
		return "other"
	}
	return fmt.Sprintf("attachment_type(%d)", uint8(t))
}

// Attachment is a document carried in a transaction's private payload.
// Its id is the hash of the carrying transaction.
type Attachment struct {
	Name string         `json:"name"`
	Data []byte         `json:"data"`
	Type AttachmentType `json:"type"`
}

// Validate enforces the filename grammar and non-empty content.
func (a Attachment) Validate() error {
	if a.Name == "" ||
		strings.ContainsAny(a.Name, "\x00:/") {
		return ErrBadFilename(a.Name)
	}
	if len(a.Data) == 0 {
		return ErrBadParam("attachment data")
	}
	return nil
}

// DataHash is the content address of the document bytes, used to match
// attached files against deal conditions.
func (a Attachment) DataHash() Hash {
	return NewHash(a.Data)
}

// DocumentSign is a detached signature over a stored document.
type DocumentSign struct {
	Signer    PublicKey `json:"signer"`
	Signature []byte    `json:"signature"`
}

// Verify checks the detached signature against the document bytes.
func (s DocumentSign) Verify(data []byte) error {
	if !s.Signer.Verify(data, s.Signature) {
		return ErrBadSignature("detached document signature does not verify")
	}
	return nil
}

// SignedAttachment records who signed a stored document, attributed to a
// deal party.
type SignedAttachment struct {
	Member MemberIdentity `json:"member"`
	Sign   DocumentSign   `json:"sign"`
}

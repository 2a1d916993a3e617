package types

import "fmt"

// DocumentType is the kind of taxpayer document attached to a case
type DocumentType string

const (
	DocumentTypeTaxReturn           DocumentType = "TAX_RETURN"
	DocumentTypeIRSTranscript       DocumentType = "IRS_TRANSCRIPT"
	DocumentTypeIRSNotice           DocumentType = "IRS_NOTICE"
	DocumentTypeProofOfIncome       DocumentType = "PROOF_OF_INCOME"
	DocumentTypePayStub             DocumentType = "PAY_STUB"
	DocumentTypeBankStatement       DocumentType = "BANK_STATEMENT"
	DocumentTypeExpenseReceipt      DocumentType = "EXPENSE_RECEIPT"
	DocumentTypeAssetStatement      DocumentType = "ASSET_STATEMENT"
	DocumentTypePropertyDeed        DocumentType = "PROPERTY_DEED"
	DocumentTypeMedicalRecord       DocumentType = "MEDICAL_RECORD"
	DocumentTypeForm433A            DocumentType = "FORM_433A"
	DocumentTypeForm433F            DocumentType = "FORM_433F"
	DocumentTypeForm656             DocumentType = "FORM_656"
	DocumentTypeForm9465            DocumentType = "FORM_9465"
	DocumentTypeForm843             DocumentType = "FORM_843"
	DocumentTypeForm8857            DocumentType = "FORM_8857"
	DocumentTypeMarriageCertificate DocumentType = "MARRIAGE_CERTIFICATE"
	DocumentTypeDivorceDecree       DocumentType = "DIVORCE_DECREE"
	DocumentTypeOther               DocumentType = "OTHER"
)

// AllDocumentTypes returns every accepted document type
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeTaxReturn,
		DocumentTypeIRSTranscript,
		DocumentTypeIRSNotice,
		DocumentTypeProofOfIncome,
		DocumentTypePayStub,
		DocumentTypeBankStatement,
		DocumentTypeExpenseReceipt,
		DocumentTypeAssetStatement,
		DocumentTypePropertyDeed,
		DocumentTypeMedicalRecord,
		DocumentTypeForm433A,
		DocumentTypeForm433F,
		DocumentTypeForm656,
		DocumentTypeForm9465,
		DocumentTypeForm843,
		DocumentTypeForm8857,
		DocumentTypeMarriageCertificate,
		DocumentTypeDivorceDecree,
		DocumentTypeOther,
	}
}

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	for _, v := range AllDocumentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

func (t DocumentType) String() string {
	return string(t)
}

// ParseDocumentType parses a string into a DocumentType
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid document type: %s", s)
	}
	return t, nil
}

// DocumentStatus is the processing lifecycle of an uploaded document
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "PENDING"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusProcessed  DocumentStatus = "PROCESSED"
	DocumentStatusVerified   DocumentStatus = "VERIFIED"
	DocumentStatusRejected   DocumentStatus = "REJECTED"
	DocumentStatusDeleted    DocumentStatus = "DELETED"
)

// AllDocumentStatuses returns all valid document statuses
func AllDocumentStatuses() []DocumentStatus {
	return []DocumentStatus{
		DocumentStatusPending,
		DocumentStatusProcessing,
		DocumentStatusProcessed,
		DocumentStatusVerified,
		DocumentStatusRejected,
		DocumentStatusDeleted,
	}
}

// IsValid checks if the document status is valid
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending,
		DocumentStatusProcessing,
		DocumentStatusProcessed,
		DocumentStatusVerified,
		DocumentStatusRejected,
		DocumentStatusDeleted:
		return true
	default:
		return false
	}
}

// CountsTowardRequirements reports whether a document in this status
// satisfies a program's document requirement.
func (s DocumentStatus) CountsTowardRequirements() bool {
	return s == DocumentStatusProcessed || s == DocumentStatusVerified
}

func (s DocumentStatus) String() string {
	return string(s)
}

// VerificationStatus is the reviewer's verdict on a document. It is tracked
// separately from DocumentStatus.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

// IsValid checks if the verification status is valid
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationUnverified, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// Normalize treats empty as UNVERIFIED
func (s VerificationStatus) Normalize() VerificationStatus {
	if s == "" {
		return VerificationUnverified
	}
	return s
}

func (s VerificationStatus) String() string {
	return string(s)
}

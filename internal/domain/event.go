package domain

import "time"

type DocumentType string

const (
	DocumentTypeActivityProposal    DocumentType = "activity_proposal"
	DocumentTypeLetterOfRequest     DocumentType = "letter_of_request"
	DocumentTypeBudgetProposal      DocumentType = "budget_proposal"
	DocumentTypeProgramFlow         DocumentType = "program_flow"
	DocumentTypeParentalConsent     DocumentType = "parental_consent"
	DocumentTypeRiskAssessment      DocumentType = "risk_assessment"
	DocumentTypeVenueReservation    DocumentType = "venue_reservation"
	DocumentTypeCommitteeAssignment DocumentType = "committee_assignment"
)

var documentTypes = map[DocumentType]bool{
	DocumentTypeActivityProposal:    true,
	DocumentTypeLetterOfRequest:     true,
	DocumentTypeBudgetProposal:      true,
	DocumentTypeProgramFlow:         true,
	DocumentTypeParentalConsent:     true,
	DocumentTypeRiskAssessment:      true,
	DocumentTypeVenueReservation:    true,
	DocumentTypeCommitteeAssignment: true,
}

func (t DocumentType) Valid() bool {
	return documentTypes[t]
}

// EventProposal is created directly by a recognized organization or council.
type EventProposal struct {
	ID        int32           `json:"id"`
	OwnerType OwnerType       `json:"owner_type"`
	OwnerID   int32           `json:"owner_id"`
	TermID    int32           `json:"academic_term_id"`
	Title     string          `json:"title"`
	Venue     string          `json:"venue"`
	CreatedBy int32           `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	Documents []EventDocument `json:"documents,omitempty"`
}

// EventDocument holds the audit fields of a document's review. The review
// state itself is obtained through ProjectState.
type EventDocument struct {
	ID                int32        `json:"id"`
	ProposalID        int32        `json:"event_proposal_id"`
	DocumentType      DocumentType `json:"document_type"`
	FilePath          string       `json:"file_path"`
	SubmittedBy       int32        `json:"submitted_by"`
	AdviserApprovedAt *time.Time   `json:"adviser_approved_at,omitempty"`
	AdviserRejectedAt *time.Time   `json:"adviser_rejected_at,omitempty"`
	OsasApprovedAt    *time.Time   `json:"osas_approved_at,omitempty"`
	OsasRejectedAt    *time.Time   `json:"osas_rejected_at,omitempty"`
	RejectionReason   *string      `json:"rejection_reason,omitempty"`
	SubmittedAt       time.Time    `json:"submitted_at"`
}

// Upload is an in-memory file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// DocumentUpload pairs an upload with the document kind it fulfils.
type DocumentUpload struct {
	DocumentType DocumentType
	File         Upload
}

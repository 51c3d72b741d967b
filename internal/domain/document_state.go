package domain

import (
	"strings"
	"time"
)

type DocumentStatus string

const (
	DocumentStatusPending         DocumentStatus = "pending"
	DocumentStatusAdviserApproved DocumentStatus = "adviser_approved"
	DocumentStatusAdviserRejected DocumentStatus = "adviser_rejected"
	DocumentStatusOsasApproved    DocumentStatus = "osas_approved"
	DocumentStatusOsasRejected    DocumentStatus = "osas_rejected"
)

// DocumentState is the review state of an event document. The set of
// variants is closed: Pending, AdviserApproved, AdviserRejected,
// OsasApproved and OsasRejected.
type DocumentState interface {
	Status() DocumentStatus
	documentState()
}

type Pending struct{}

type AdviserApproved struct {
	At time.Time
}

type AdviserRejected struct {
	At     time.Time
	Reason string
}

type OsasApproved struct {
	AdviserAt time.Time
	At        time.Time
}

type OsasRejected struct {
	AdviserAt time.Time
	At        time.Time
	Reason    string
}

func (Pending) Status() DocumentStatus         { return DocumentStatusPending }
func (AdviserApproved) Status() DocumentStatus { return DocumentStatusAdviserApproved }
func (AdviserRejected) Status() DocumentStatus { return DocumentStatusAdviserRejected }
func (OsasApproved) Status() DocumentStatus    { return DocumentStatusOsasApproved }
func (OsasRejected) Status() DocumentStatus    { return DocumentStatusOsasRejected }

func (Pending) documentState()         {}
func (AdviserApproved) documentState() {}
func (AdviserRejected) documentState() {}
func (OsasApproved) documentState()    {}
func (OsasRejected) documentState()    {}

// ProjectState derives the review state from a document's audit fields.
// An adviser rejection wins over any OSAS timestamp, and OSAS timestamps
// are ignored unless the adviser approved.
func ProjectState(doc *EventDocument) DocumentState {
	reason := ""
	if doc.RejectionReason != nil {
		reason = *doc.RejectionReason
	}
	switch {
	case doc.AdviserRejectedAt != nil:
		return AdviserRejected{At: *doc.AdviserRejectedAt, Reason: reason}
	case doc.AdviserApprovedAt == nil:
		return Pending{}
	case doc.OsasRejectedAt != nil:
		return OsasRejected{AdviserAt: *doc.AdviserApprovedAt, At: *doc.OsasRejectedAt, Reason: reason}
	case doc.OsasApprovedAt != nil:
		return OsasApproved{AdviserAt: *doc.AdviserApprovedAt, At: *doc.OsasApprovedAt}
	default:
		return AdviserApproved{At: *doc.AdviserApprovedAt}
	}
}

// ApplyState writes a state back into the document's audit fields.
func ApplyState(doc *EventDocument, state DocumentState) {
	doc.AdviserApprovedAt = nil
	doc.AdviserRejectedAt = nil
	doc.OsasApprovedAt = nil
	doc.OsasRejectedAt = nil
	doc.RejectionReason = nil

	switch s := state.(type) {
	case Pending:
	case AdviserApproved:
		doc.AdviserApprovedAt = timePtr(s.At)
	case AdviserRejected:
		doc.AdviserRejectedAt = timePtr(s.At)
		doc.RejectionReason = stringPtr(s.Reason)
	case OsasApproved:
		doc.AdviserApprovedAt = timePtr(s.AdviserAt)
		doc.OsasApprovedAt = timePtr(s.At)
	case OsasRejected:
		doc.AdviserApprovedAt = timePtr(s.AdviserAt)
		doc.OsasRejectedAt = timePtr(s.At)
		doc.RejectionReason = stringPtr(s.Reason)
	}
}

// AdviserDecision moves a pending document to one of the adviser outcomes.
func AdviserDecision(state DocumentState, decision Decision, reason string, at time.Time) (DocumentState, error) {
	if _, ok := state.(Pending); !ok {
		return nil, StateViolationError("document is %s; adviser can only review pending documents", state.Status())
	}
	switch decision {
	case DecisionApprove:
		return AdviserApproved{At: at}, nil
	case DecisionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, ValidationError("rejection reason is required")
		}
		return AdviserRejected{At: at, Reason: reason}, nil
	}
	return nil, ValidationError("invalid decision %q", decision)
}

// OsasDecision moves an adviser-approved document to one of the OSAS
// outcomes.
func OsasDecision(state DocumentState, decision Decision, reason string, at time.Time) (DocumentState, error) {
	approved, ok := state.(AdviserApproved)
	if !ok {
		return nil, StateViolationError("document is %s; OSAS can only review adviser-approved documents", state.Status())
	}
	switch decision {
	case DecisionApprove:
		return OsasApproved{AdviserAt: approved.At, At: at}, nil
	case DecisionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, ValidationError("rejection reason is required")
		}
		return OsasRejected{AdviserAt: approved.At, At: at, Reason: reason}, nil
	}
	return nil, ValidationError("invalid decision %q", decision)
}

// Resubmission reopens a rejected document.
func Resubmission(state DocumentState) (DocumentState, error) {
	switch state.(type) {
	case AdviserRejected, OsasRejected:
		return Pending{}, nil
	}
	return nil, StateViolationError("document is %s; only rejected documents can be resubmitted", state.Status())
}

type ProposalStatus string

const (
	ProposalStatusEmpty         ProposalStatus = "empty"
	ProposalStatusPending       ProposalStatus = "pending"
	ProposalStatusForOsasReview ProposalStatus = "for_osas_review"
	ProposalStatusNeedsRevision ProposalStatus = "needs_revision"
	ProposalStatusApproved      ProposalStatus = "approved"
)

// ProposalSummary aggregates document states for an event proposal.
type ProposalSummary struct {
	Total           int            `json:"total"`
	Pending         int            `json:"pending"`
	SentToOsas      int            `json:"sent_to_osas"`
	AdviserRejected int            `json:"adviser_rejected"`
	OsasApproved    int            `json:"osas_approved"`
	OsasRejected    int            `json:"osas_rejected"`
	Overall         ProposalStatus `json:"overall"`
}

func Summarize(docs []EventDocument) ProposalSummary {
	var s ProposalSummary
	s.Total = len(docs)
	for i := range docs {
		switch ProjectState(&docs[i]).(type) {
		case Pending:
			s.Pending++
		case AdviserApproved:
			s.SentToOsas++
		case AdviserRejected:
			s.AdviserRejected++
		case OsasApproved:
			s.OsasApproved++
		case OsasRejected:
			s.OsasRejected++
		}
	}

	switch {
	case s.Total == 0:
		s.Overall = ProposalStatusEmpty
	case s.AdviserRejected+s.OsasRejected > 0:
		s.Overall = ProposalStatusNeedsRevision
	case s.OsasApproved == s.Total:
		s.Overall = ProposalStatusApproved
	case s.Pending == 0:
		s.Overall = ProposalStatusForOsasReview
	default:
		s.Overall = ProposalStatusPending
	}
	return s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func stringPtr(s string) *string {
	return &s
}

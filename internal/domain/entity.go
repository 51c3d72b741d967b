package domain

import "time"

// OwnerType names the entity category that owns officers and proposals.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "organization"
	OwnerTypeCouncil      OwnerType = "council"
)

func (o OwnerType) Valid() bool {
	return o == OwnerTypeOrganization || o == OwnerTypeCouncil
}

// Other returns the opposite entity category.
func (o OwnerType) Other() OwnerType {
	if o == OwnerTypeOrganization {
		return OwnerTypeCouncil
	}
	return OwnerTypeOrganization
}

type RecognitionStatus string

const (
	RecognitionUnrecognized RecognitionStatus = "unrecognized"
	RecognitionRecognized   RecognitionStatus = "recognized"
)

const EntityTypeNew = "new"

type College struct {
	ID   int32  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Course struct {
	ID        int32  `json:"id"`
	CollegeID int32  `json:"college_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

// Organization is a course-scoped student group.
type Organization struct {
	ID          int32             `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	CollegeID   int32             `json:"college_id"`
	CourseID    int32             `json:"course_id"`
	TermID      int32             `json:"academic_term_id"`
	PresidentID int32             `json:"president_id"`
	AdviserID   int32             `json:"adviser_id"`
	Status      RecognitionStatus `json:"status"`
	Type        string            `json:"type"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Council is a college-scoped student government body.
type Council struct {
	ID          int32             `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	CollegeID   int32             `json:"college_id"`
	TermID      int32             `json:"academic_term_id"`
	PresidentID int32             `json:"president_id"`
	AdviserID   int32             `json:"adviser_id"`
	Status      RecognitionStatus `json:"status"`
	Type        string            `json:"type"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Owner is the common view of an Organization or Council used by the
// proposal and officer flows.
type Owner struct {
	Type        OwnerType
	ID          int32
	Name        string
	PresidentID int32
	AdviserID   int32
	Status      RecognitionStatus
}

func (o *Owner) Recognized() bool {
	return o.Status == RecognitionRecognized
}

func (o *Organization) AsOwner() Owner {
	return Owner{Type: OwnerTypeOrganization, ID: o.ID, Name: o.Name, PresidentID: o.PresidentID, AdviserID: o.AdviserID, Status: o.Status}
}

func (c *Council) AsOwner() Owner {
	return Owner{Type: OwnerTypeCouncil, ID: c.ID, Name: c.Name, PresidentID: c.PresidentID, AdviserID: c.AdviserID, Status: c.Status}
}

package domain

import "time"

// AcademicTerm is a scheduling period. At most one term is active.
type AcademicTerm struct {
	ID         int32     `json:"id"`
	SchoolYear string    `json:"school_year"`
	Semester   string    `json:"semester"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	IsActive   bool      `json:"is_active"`
}

func (t *AcademicTerm) Label() string {
	return t.SchoolYear + " " + t.Semester
}

package domain

import "time"

const PositionPresident = "PRESIDENT"

// StudentOfficial is an officer seat held by a student for one owner in one
// academic term.
type StudentOfficial struct {
	ID            int32     `json:"id"`
	OwnerType     OwnerType `json:"owner_type"`
	OwnerID       int32     `json:"owner_id"`
	TermID        int32     `json:"academic_term_id"`
	StudentNumber string    `json:"student_number"`
	FullName      string    `json:"full_name"`
	Position      string    `json:"position"`
	Email         string    `json:"email,omitempty"`
	PicturePath   string    `json:"picture_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (o *StudentOfficial) IsPresident() bool {
	return o.Position == PositionPresident
}

// OfficerSeat is a position held by a student, with the owner it belongs to.
type OfficerSeat struct {
	Position  string
	OwnerType OwnerType
	OwnerID   int32
	OwnerName string
}

package utils

import (
	"testing"

	"orggov-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func int32Ptr(v int32) *int32 { return &v }

func validDraft() domain.ApplicationDraft {
	return domain.ApplicationDraft{
		Type:           domain.ApplicationTypeOrganization,
		CollegeID:      1,
		CourseID:       int32Ptr(2),
		OrgCode:        "CSC-01",
		OrgName:        "computer science club",
		PresidentName:  "Juan Dela Cruz",
		PresidentEmail: "juan@school.edu",
		AdviserName:    "Maria Santos",
		AdviserEmail:   "maria@school.edu",
		VerifiedBy:     domain.VerifiedByPresident,
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("Valid organization draft", func(t *testing.T) {
		d := validDraft()
		assert.NoError(t, ValidateStruct(&d))
	})

	t.Run("Council needs no course", func(t *testing.T) {
		d := validDraft()
		d.Type = domain.ApplicationTypeCouncil
		d.CourseID = nil
		d.OrgCode = ""
		d.OrgName = ""
		assert.NoError(t, ValidateStruct(&d))
	})

	t.Run("Organization requires course and code", func(t *testing.T) {
		d := validDraft()
		d.CourseID = nil
		d.OrgCode = ""
		err := ValidateStruct(&d)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "course_id is required")
		assert.Contains(t, err.Error(), "org_code is required")
	})

	t.Run("Bad org code characters", func(t *testing.T) {
		d := validDraft()
		d.OrgCode = "CS C!"
		err := ValidateStruct(&d)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "org_code may only contain")
	})

	t.Run("Same contact emails", func(t *testing.T) {
		d := validDraft()
		d.AdviserEmail = d.PresidentEmail
		err := ValidateStruct(&d)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "adviser_email must differ")
	})
}

func TestEmailInDomain(t *testing.T) {
	assert.True(t, EmailInDomain("a@school.edu", "school.edu"))
	assert.True(t, EmailInDomain("a@SCHOOL.edu", "@school.edu"))
	assert.False(t, EmailInDomain("a@gmail.com", "school.edu"))
	assert.False(t, EmailInDomain("nobody", "school.edu"))
	assert.True(t, EmailInDomain("a@gmail.com", ""))
}

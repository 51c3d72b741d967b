package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNames(t *testing.T) {
	assert.Equal(t, "Computer Science Club", NormalizeEntityName("computer science club"))
	assert.Equal(t, "Computer Science Club", NormalizeEntityName("  COMPUTER   science CLUB "))
	assert.Equal(t, "JUAN DELA CRUZ", NormalizePersonName("Juan  dela Cruz"))
	assert.Equal(t, "CSC-01", NormalizeCode(" csc-01 "))
	assert.Equal(t, "a@school.edu", NormalizeEmail(" A@School.EDU "))
}

func TestCouncilIdentity(t *testing.T) {
	code, name := CouncilIdentity(&College{Code: "ccs", Name: "college of computer studies"})
	assert.Equal(t, "CCS-SC", code)
	assert.Equal(t, "College Of Computer Studies Student Council", name)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("approve: %w", ConflictError("college already has %s", "CCS Student Council"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "college already has CCS Student Council", PublicMessage(err))

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
	assert.False(t, IsKind(nil, KindConflict))
	assert.True(t, IsKind(ErrAlreadyProcessed, KindStateViolation))
}

package memory

import (
	"context"
	"fmt"
	"os"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/security"

	"gopkg.in/yaml.v3"
)

// Seed is reference data loaded into a memory store at startup.
type Seed struct {
	Colleges []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"colleges"`
	Courses []struct {
		College string `yaml:"college"`
		Code    string `yaml:"code"`
		Name    string `yaml:"name"`
	} `yaml:"courses"`
	Terms []struct {
		SchoolYear string `yaml:"school_year"`
		Semester   string `yaml:"semester"`
		StartDate  string `yaml:"start_date"`
		EndDate    string `yaml:"end_date"`
		Active     bool   `yaml:"active"`
	} `yaml:"terms"`
	Accounts []struct {
		Username string      `yaml:"username"`
		Password string      `yaml:"password"`
		Email    string      `yaml:"email"`
		FullName string      `yaml:"full_name"`
		Role     domain.Role `yaml:"role"`
	} `yaml:"accounts"`
}

func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply inserts the seed into the store. Courses refer to colleges by code.
func (s *Store) Apply(ctx context.Context, seed *Seed) error {
	collegeIDs := map[string]int32{}
	for _, c := range seed.Colleges {
		college := s.AddCollege(domain.College{Code: domain.NormalizeCode(c.Code), Name: c.Name})
		collegeIDs[college.Code] = college.ID
	}

	for _, c := range seed.Courses {
		collegeID, ok := collegeIDs[domain.NormalizeCode(c.College)]
		if !ok {
			return fmt.Errorf("course %s refers to unknown college %s", c.Code, c.College)
		}
		s.AddCourse(domain.Course{CollegeID: collegeID, Code: domain.NormalizeCode(c.Code), Name: c.Name})
	}

	for _, t := range seed.Terms {
		start, err := time.Parse("2006-01-02", t.StartDate)
		if err != nil {
			return fmt.Errorf("invalid start_date for term %s: %w", t.SchoolYear, err)
		}
		end, err := time.Parse("2006-01-02", t.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end_date for term %s: %w", t.SchoolYear, err)
		}
		if _, err := s.AddTerm(domain.AcademicTerm{SchoolYear: t.SchoolYear, Semester: t.Semester, StartDate: start, EndDate: end, IsActive: t.Active}); err != nil {
			return err
		}
	}

	for _, a := range seed.Accounts {
		hash, err := security.HashPassword(a.Password)
		if err != nil {
			return err
		}
		account := &domain.Account{
			Username:     a.Username,
			PasswordHash: hash,
			Email:        domain.NormalizeEmail(a.Email),
			FullName:     domain.NormalizePersonName(a.FullName),
			Role:         a.Role,
		}
		if err := s.AddAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.Username, err)
		}
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/storage"
)

type officerService struct {
	store     repository.Store
	files     storage.StorageInterface
	validator *storage.FileValidator
}

func NewOfficerService(store repository.Store, files storage.StorageInterface) OfficerService {
	return &officerService{
		store:     store,
		files:     files,
		validator: storage.NewFileValidator(storage.PictureRules),
	}
}

// AddOfficer seats a student in an owner's position for the active term.
// Every guard runs inside the transaction that inserts the row.
func (s *officerService) AddOfficer(ctx context.Context, cmd domain.AddOfficer) (*domain.StudentOfficial, error) {
	logger.EnterMethod("officerService.AddOfficer", "ownerType", cmd.OwnerType, "ownerID", cmd.OwnerID, "position", cmd.Position)

	officer := &domain.StudentOfficial{
		OwnerType:     cmd.OwnerType,
		OwnerID:       cmd.OwnerID,
		StudentNumber: strings.TrimSpace(cmd.StudentNumber),
		FullName:      domain.NormalizePersonName(cmd.FullName),
		Position:      strings.ToUpper(strings.Join(strings.Fields(cmd.Position), " ")),
		Email:         domain.NormalizeEmail(cmd.Email),
	}
	if !cmd.OwnerType.Valid() {
		return nil, domain.ValidationError("invalid owner type %q", cmd.OwnerType)
	}
	if officer.StudentNumber == "" || officer.FullName == "" || officer.Position == "" {
		err := domain.ValidationError("student number, full name and position are required")
		logger.ExitMethodWithError("officerService.AddOfficer", err)
		return nil, err
	}
	if cmd.Picture != nil {
		if err := s.validator.Check(*cmd.Picture); err != nil {
			logger.ExitMethodWithError("officerService.AddOfficer", err)
			return nil, err
		}
	}

	repos := s.store.Repos()
	term, err := repos.Terms.CurrentActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active term: %w", err)
	}
	if term == nil {
		return nil, domain.ErrNoActiveTerm
	}
	officer.TermID = term.ID

	owner, err := loadOwner(ctx, repos, cmd.OwnerType, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if cmd.Picture != nil {
		key, err := s.files.SaveFile(ctx, storage.CategoryPictures, cmd.Picture.Filename, bytes.NewReader(cmd.Picture.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to store picture: %w", err)
		}
		officer.PicturePath = key
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		return s.seat(ctx, tx, owner, officer)
	})
	if err != nil {
		if officer.PicturePath != "" {
			if derr := s.files.DeleteFile(ctx, officer.PicturePath); derr != nil {
				logger.Warn("Failed to delete officer picture", "key", officer.PicturePath, "error", derr)
			}
		}
		logger.ExitMethodWithError("officerService.AddOfficer", err)
		return nil, err
	}

	logger.ExitMethod("officerService.AddOfficer", "officerID", officer.ID)
	return officer, nil
}

func (s *officerService) seat(ctx context.Context, tx *repository.Repositories, owner *domain.Owner, officer *domain.StudentOfficial) error {
	taken, err := tx.Officers.PositionTaken(ctx, owner.Type, owner.ID, officer.TermID, officer.Position)
	if err != nil {
		return fmt.Errorf("failed to check position: %w", err)
	}
	if taken {
		return domain.ConflictError("%s of %s is already filled for this term", officer.Position, owner.Name)
	}

	same, err := tx.Officers.FindSeats(ctx, officer.StudentNumber, officer.TermID, owner.Type)
	if err != nil {
		return fmt.Errorf("failed to check existing seats: %w", err)
	}
	for _, seat := range same {
		if seat.OwnerID == owner.ID {
			return domain.ConflictError("student %s is already %s of %s", officer.StudentNumber, seat.Position, owner.Name)
		}
	}

	pres, err := IsPresidentElsewhere(ctx, tx, officer.StudentNumber, officer.TermID, owner.Type)
	if err != nil {
		return fmt.Errorf("failed to check presidencies: %w", err)
	}
	if pres != nil {
		return domain.ConflictError("student %s is already %s of %s this term", officer.StudentNumber, pres.Position, pres.OwnerName)
	}

	if officer.IsPresident() {
		other, err := tx.Officers.FindSeats(ctx, officer.StudentNumber, officer.TermID, owner.Type.Other())
		if err != nil {
			return fmt.Errorf("failed to check existing seats: %w", err)
		}
		if len(other) > 0 {
			return domain.ConflictError("student %s already holds %s of %s and cannot be %s of %s",
				officer.StudentNumber, other[0].Position, other[0].OwnerName, domain.PositionPresident, owner.Name)
		}
	}

	if err := tx.Officers.Create(ctx, officer); err != nil {
		return fmt.Errorf("failed to create officer: %w", err)
	}
	return nil
}

func (s *officerService) ListOfficers(ctx context.Context, ownerType domain.OwnerType, ownerID int32) ([]domain.StudentOfficial, error) {
	repos := s.store.Repos()
	term, err := repos.Terms.CurrentActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active term: %w", err)
	}
	if term == nil {
		return nil, domain.ErrNoActiveTerm
	}
	return repos.Officers.ListByOwner(ctx, ownerType, ownerID, term.ID)
}

package service

import (
	"context"
	"fmt"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type entityService struct {
	store repository.Store
}

func NewEntityService(store repository.Store) EntityService {
	return &entityService{store: store}
}

func (s *entityService) GetOwner(ctx context.Context, ownerType domain.OwnerType, id int32) (*domain.Owner, error) {
	return loadOwner(ctx, s.store.Repos(), ownerType, id)
}

// Recognize flips an entity to recognized. Only recognized owners may
// create event proposals.
func (s *entityService) Recognize(ctx context.Context, ownerType domain.OwnerType, id int32) (*domain.Owner, error) {
	logger.EnterMethod("entityService.Recognize", "ownerType", ownerType, "id", id)

	var owner *domain.Owner
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		o, err := loadOwner(ctx, tx, ownerType, id)
		if err != nil {
			return err
		}
		if o.Recognized() {
			return domain.StateViolationError("%s is already recognized", o.Name)
		}
		switch ownerType {
		case domain.OwnerTypeOrganization:
			err = tx.Organizations.UpdateStatus(ctx, id, domain.RecognitionRecognized)
		case domain.OwnerTypeCouncil:
			err = tx.Councils.UpdateStatus(ctx, id, domain.RecognitionRecognized)
		}
		if err != nil {
			return fmt.Errorf("failed to update recognition status: %w", err)
		}
		o.Status = domain.RecognitionRecognized
		owner = o
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("entityService.Recognize", err)
		return nil, err
	}

	logger.Transition(string(ownerType), id, string(domain.RecognitionUnrecognized), string(domain.RecognitionRecognized))
	logger.ExitMethod("entityService.Recognize", "id", id)
	return owner, nil
}

// OwnerForPresident returns the organization or council the account
// presides over.
func (s *entityService) OwnerForPresident(ctx context.Context, account *domain.Account) (*domain.Owner, error) {
	repos := s.store.Repos()
	switch account.Role {
	case domain.RoleOrgPresident:
		org, err := repos.Organizations.GetByPresident(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		o := org.AsOwner()
		return &o, nil
	case domain.RoleCouncilPresident:
		c, err := repos.Councils.GetByPresident(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		o := c.AsOwner()
		return &o, nil
	}
	return nil, domain.ForbiddenError("account %s does not preside over an organization or council", account.Username)
}

func loadOwner(ctx context.Context, repos *repository.Repositories, ownerType domain.OwnerType, id int32) (*domain.Owner, error) {
	switch ownerType {
	case domain.OwnerTypeOrganization:
		org, err := repos.Organizations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		o := org.AsOwner()
		return &o, nil
	case domain.OwnerTypeCouncil:
		c, err := repos.Councils.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		o := c.AsOwner()
		return &o, nil
	}
	return nil, domain.ValidationError("invalid owner type %q", ownerType)
}

package service

import (
	"context"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
)

// Result carries whatever a command produced; the field matching the
// command is set.
type Result struct {
	Command     string                  `json:"command"`
	Application *domain.Application     `json:"application,omitempty"`
	Provision   *ProvisionResult        `json:"-"`
	Document    *DocumentView           `json:"document,omitempty"`
	Officer     *domain.StudentOfficial `json:"officer,omitempty"`
}

// Engine is the single entry point for reviewer and owner actions.
type Engine struct {
	applications ApplicationService
	documents    DocumentService
	officers     OfficerService
}

func NewEngine(applications ApplicationService, documents DocumentService, officers OfficerService) *Engine {
	return &Engine{
		applications: applications,
		documents:    documents,
		officers:     officers,
	}
}

func (e *Engine) Apply(ctx context.Context, cmd domain.Command) (*Result, error) {
	name := domain.CommandName(cmd)
	log := logger.WithCommand(name)
	log.Debug("Applying command")

	res := &Result{Command: name}
	var err error
	switch c := cmd.(type) {
	case domain.ApproveApplication:
		res.Provision, err = e.applications.Approve(ctx, c.ApplicationID, c.ReviewerID)
		if err == nil {
			res.Application = res.Provision.Application
		}
	case domain.RejectApplication:
		res.Application, err = e.applications.Reject(ctx, c.ApplicationID, c.ReviewerID, c.Reason)
	case domain.AdviserDecideDocument:
		res.Document, err = e.documents.AdviserDecide(ctx, c.DocumentID, c.AdviserID, c.Decision, c.Reason)
	case domain.OsasDecideDocument:
		res.Document, err = e.documents.OsasDecide(ctx, c.DocumentID, c.ReviewerID, c.Decision, c.Reason)
	case domain.ResubmitDocument:
		res.Document, err = e.documents.Resubmit(ctx, c.DocumentID, c.SubmittedBy, c.File)
	case domain.AddOfficer:
		res.Officer, err = e.officers.AddOfficer(ctx, c)
	default:
		err = domain.ValidationError("unsupported command %T", cmd)
	}
	if err != nil {
		log.Warn("Command failed", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}
	log.Info("Command applied")
	return res, nil
}

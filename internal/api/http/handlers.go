package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/service"
	"orggov-backend/internal/storage"
	"orggov-backend/internal/utils"

	"github.com/gorilla/mux"
)

// Services are the workflow components the handlers call.
type Services struct {
	Auth         service.AuthService
	Applications service.ApplicationService
	Submissions  service.SubmissionService
	Documents    service.DocumentService
	Officers     service.OfficerService
	Entities     service.EntityService
	Engine       *service.Engine
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	Account     *domain.Account `json:"account"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}
	token, account, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, Account: account})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Auth.GetAccount(r.Context(), ClaimsFromContext(r.Context()).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) StageSubmission(w http.ResponseWriter, r *http.Request) {
	var draft domain.ApplicationDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	preview, err := h.svc.Submissions.Stage(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, preview)
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

func (h *Handler) VerifySubmission(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.Submissions.Verify(r.Context(), mux.Vars(r)["token"], req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

type councilPreviewResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *Handler) CouncilPreview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	code, name, err := h.svc.Submissions.CouncilPreview(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, councilPreviewResponse{Code: code, Name: name})
}

func (h *Handler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Applications.ListPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.Applications.GetApplication(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type decisionRequest struct {
	Decision domain.Decision `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string          `json:"reason" validate:"required_if=Decision reject,max=1000"`
}

type entityResponse struct {
	Type domain.OwnerType `json:"type"`
	ID   int32            `json:"id"`
	Code string           `json:"code"`
	Name string           `json:"name"`
}

type applicationDecisionResponse struct {
	Application *domain.Application `json:"application"`
	Entity      *entityResponse     `json:"entity,omitempty"`
}

func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeDecision(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviewer := ClaimsFromContext(r.Context()).AccountID

	var cmd domain.Command = domain.ApproveApplication{ApplicationID: id, ReviewerID: reviewer}
	if req.Decision == domain.DecisionReject {
		cmd = domain.RejectApplication{ApplicationID: id, ReviewerID: reviewer, Reason: req.Reason}
	}
	res, err := h.svc.Engine.Apply(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := applicationDecisionResponse{Application: res.Application}
	if p := res.Provision; p != nil {
		resp.Entity = &entityResponse{Type: p.OwnerType, ID: p.EntityID, Code: p.EntityCode, Name: p.EntityName}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RecognizeEntity(w http.ResponseWriter, r *http.Request) {
	ownerType, id, err := ownerFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := h.svc.Entities.Recognize(r.Context(), ownerType, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, owner)
}

// CreateProposal accepts a multipart form with title, venue and one file
// per document type, each sent under the document type's name.
func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	claims := ClaimsFromContext(r.Context())
	account, err := h.svc.Auth.GetAccount(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := h.svc.Entities.OwnerForPresident(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	docs, err := documentUploads(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.svc.Documents.CreateProposal(r.Context(), service.ProposalInput{
		OwnerType: owner.Type,
		OwnerID:   owner.ID,
		CreatedBy: account.ID,
		Title:     r.FormValue("title"),
		Venue:     r.FormValue("venue"),
		Documents: docs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.Documents.GetProposal(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	ownerType, id, err := ownerFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.svc.Documents.ListProposals(r.Context(), ownerType, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) AdviserDecision(w http.ResponseWriter, r *http.Request) {
	h.documentDecision(w, r, func(id, actor int32, req decisionRequest) domain.Command {
		return domain.AdviserDecideDocument{DocumentID: id, AdviserID: actor, Decision: req.Decision, Reason: req.Reason}
	})
}

func (h *Handler) OsasDecision(w http.ResponseWriter, r *http.Request) {
	h.documentDecision(w, r, func(id, actor int32, req decisionRequest) domain.Command {
		return domain.OsasDecideDocument{DocumentID: id, ReviewerID: actor, Decision: req.Decision, Reason: req.Reason}
	})
}

func (h *Handler) documentDecision(w http.ResponseWriter, r *http.Request, build func(id, actor int32, req decisionRequest) domain.Command) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeDecision(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Engine.Apply(r.Context(), build(id, ClaimsFromContext(r.Context()).AccountID, req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Document)
}

// ResubmitDocument expects the replacement under the "file" field.
func (h *Handler) ResubmitDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	file, err := formFile(r, "file", storage.MaxDocumentSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if file == nil {
		writeError(w, r, domain.ValidationError("file is required"))
		return
	}

	res, err := h.svc.Engine.Apply(r.Context(), domain.ResubmitDocument{
		DocumentID:  id,
		SubmittedBy: ClaimsFromContext(r.Context()).AccountID,
		File:        *file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Document)
}

// AddOfficer accepts a multipart form; the caller must be the president or
// adviser of the owner.
func (h *Handler) AddOfficer(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	ownerType := domain.OwnerType(r.FormValue("owner_type"))
	ownerID, err := parseID(r.FormValue("owner_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := h.svc.Entities.GetOwner(r.Context(), ownerType, ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller := ClaimsFromContext(r.Context()).AccountID
	if caller != owner.PresidentID && caller != owner.AdviserID {
		writeError(w, r, domain.ForbiddenError("only the president or adviser of %s can add officers", owner.Name))
		return
	}
	picture, err := formFile(r, "picture", storage.MaxPictureSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Engine.Apply(r.Context(), domain.AddOfficer{
		OwnerType:     ownerType,
		OwnerID:       ownerID,
		StudentNumber: r.FormValue("student_number"),
		FullName:      r.FormValue("full_name"),
		Position:      r.FormValue("position"),
		Email:         r.FormValue("email"),
		Picture:       picture,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Officer)
}

func (h *Handler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	ownerType, id, err := ownerFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	officers, err := h.svc.Officers.ListOfficers(r.Context(), ownerType, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if officers == nil {
		officers = []domain.StudentOfficial{}
	}
	writeJSON(w, http.StatusOK, officers)
}

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC()})
}

func decodeDecision(r *http.Request) (decisionRequest, error) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if err := utils.ValidateStruct(&req); err != nil {
		return req, err
	}
	return req, nil
}

func pathID(r *http.Request, name string) (int32, error) {
	return parseID(mux.Vars(r)[name])
}

func parseID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("invalid id %q", raw)
	}
	return int32(id), nil
}

func ownerFromPath(r *http.Request) (domain.OwnerType, int32, error) {
	ownerType := domain.OwnerType(mux.Vars(r)["type"])
	if !ownerType.Valid() {
		return "", 0, domain.ValidationError("invalid owner type %q", ownerType)
	}
	id, err := pathID(r, "id")
	return ownerType, id, err
}

package http

import (
	"net/http"

	"orggov-backend/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter registers every route. Path templates must match the keys of
// config.EndpointSecurityConfig.
func NewRouter(h *Handler, files *FileHandler, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware, LoggingMiddleware, AuthMiddleware(tm))

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	api.HandleFunc("/submissions", h.StageSubmission).Methods(http.MethodPost)
	api.HandleFunc("/submissions/{token}/verify", h.VerifySubmission).Methods(http.MethodPost)
	api.HandleFunc("/colleges/{id}/council-preview", h.CouncilPreview).Methods(http.MethodGet)

	api.HandleFunc("/applications", h.ListPendingApplications).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}", h.GetApplication).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}/decision", h.DecideApplication).Methods(http.MethodPost)

	api.HandleFunc("/entities/{type}/{id}/recognize", h.RecognizeEntity).Methods(http.MethodPost)
	api.HandleFunc("/entities/{type}/{id}/proposals", h.ListProposals).Methods(http.MethodGet)
	api.HandleFunc("/entities/{type}/{id}/officers", h.ListOfficers).Methods(http.MethodGet)

	api.HandleFunc("/proposals", h.CreateProposal).Methods(http.MethodPost)
	api.HandleFunc("/proposals/{id}", h.GetProposal).Methods(http.MethodGet)

	api.HandleFunc("/documents/{id}/adviser-decision", h.AdviserDecision).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/osas-decision", h.OsasDecision).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/resubmit", h.ResubmitDocument).Methods(http.MethodPost)

	api.HandleFunc("/officers", h.AddOfficer).Methods(http.MethodPost)

	api.HandleFunc("/files/{category}/{name}", files.HandleDownload).Methods(http.MethodGet)

	return router
}

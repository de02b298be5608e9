package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/model"
)

// CompanyService is the slice of service.CompanyService the handler needs.
// Tests substitute a stub.
type CompanyService interface {
	List(ctx context.Context) ([]model.Company, error)
	Create(ctx context.Context, name, comments string) (*model.Company, error)
	Update(ctx context.Context, id, name string, rejected bool, comments string) (*model.Company, error)
	Delete(ctx context.Context, id string) (*model.Company, error)
}

// CompanyHandler serves /api/companies.
//
// All four operations share one path; the id travels in the JSON body, not
// the URL, because that is the contract existing clients speak.
type CompanyHandler struct {
	service CompanyService
	logger  *slog.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(svc CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{service: svc, logger: logger}
}

// ListResponse is the body of GET /api/companies.
type ListResponse struct {
	Companies []model.Company `json:"companies"`
}

// CompanyResponse wraps a single record for POST, PATCH and DELETE.
type CompanyResponse struct {
	Company *model.Company `json:"company"`
}

// CreateRequest is the body of POST /api/companies.
type CreateRequest struct {
	Name     string `json:"name"`
	Comments string `json:"comments"`
}

// UpdateRequest is the body of PATCH /api/companies.
type UpdateRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rejected bool   `json:"rejected"`
	Comments string `json:"comments"`
}

// DeleteRequest is the body of DELETE /api/companies.
type DeleteRequest struct {
	ID string `json:"id"`
}

// HandleList returns every record, newest first.
//
// HTTP: GET /api/companies
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// A nil slice would encode as null; clients expect [].
	if companies == nil {
		companies = []model.Company{}
	}

	noCache(w)
	writeJSON(w, http.StatusOK, ListResponse{Companies: companies})
}

// HandleCreate adds a record.
//
// HTTP: POST /api/companies
// REQUEST BODY: {"name": "Acme", "comments": "referral"}
func (h *CompanyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.Create(r.Context(), req.Name, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}

	noCache(w)
	writeJSON(w, http.StatusCreated, CompanyResponse{Company: company})
}

// HandleUpdate replaces name, rejected and comments of an existing record.
//
// HTTP: PATCH /api/companies
// REQUEST BODY: {"id": "...", "name": "Acme", "rejected": true, "comments": ""}
func (h *CompanyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.Update(r.Context(), req.ID, req.Name, req.Rejected, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}

	noCache(w)
	writeJSON(w, http.StatusOK, CompanyResponse{Company: company})
}

// HandleDelete removes a record and echoes it back.
//
// HTTP: DELETE /api/companies
// REQUEST BODY: {"id": "..."}
func (h *CompanyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.Delete(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompanyResponse{Company: company})
}

// decode reads the JSON body into dst. On failure it writes a 400 and
// returns false.
func (h *CompanyHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("invalid request JSON",
			slog.String("method", r.Method),
			slog.String("error", err.Error()),
		)
		writeError(w, apperror.ValidationFailed("body", MsgInvalidJSON))
		return false
	}
	return true
}

// HandleNotFound answers unmatched routes and unsupported methods.
func HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Message: MsgRouteNotFound})
}

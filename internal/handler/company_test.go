package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/handler"
	"github.com/sakif/applytrack/internal/model"
)

// StubService records the arguments it was called with and returns canned
// results, so handler tests run without a repository.
type StubService struct {
	Companies []model.Company
	Company   *model.Company
	Err       error

	GotID       string
	GotName     string
	GotRejected bool
	GotComments string
}

func (s *StubService) List(context.Context) ([]model.Company, error) {
	return s.Companies, s.Err
}

func (s *StubService) Create(_ context.Context, name, comments string) (*model.Company, error) {
	s.GotName, s.GotComments = name, comments
	return s.Company, s.Err
}

func (s *StubService) Update(_ context.Context, id, name string, rejected bool, comments string) (*model.Company, error) {
	s.GotID, s.GotName, s.GotRejected, s.GotComments = id, name, rejected, comments
	return s.Company, s.Err
}

func (s *StubService) Delete(_ context.Context, id string) (*model.Company, error) {
	s.GotID = id
	return s.Company, s.Err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Message
}

func TestCompanyHandler_HandleList(t *testing.T) {
	t.Run("returns companies", func(t *testing.T) {
		stub := &StubService{Companies: []model.Company{
			{ID: "c2", Name: "Globex", Date: "Oct 18 2026"},
			{ID: "c1", Name: "Acme", Date: "Oct 17 2026", Rejected: true},
		}}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var res handler.ListResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		require.Len(t, res.Companies, 2)
		assert.Equal(t, "c2", res.Companies[0].ID)
		assert.True(t, res.Companies[1].Rejected)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		h := handler.NewCompanyHandler(&StubService{}, testLogger())

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"companies":[]}`, rr.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		stub := &StubService{Err: apperror.Storage("Unable to retrieve companies. Please try again later.", errors.New("db down"))}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		msg := decodeMessage(t, rr)
		assert.Equal(t, "Unable to retrieve companies. Please try again later.", msg)
		assert.NotContains(t, msg, "db down")
	})
}

func TestCompanyHandler_HandleCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		stub := &StubService{Company: &model.Company{ID: "c1", Name: "Acme", Date: "Oct 18 2026"}}
		h := handler.NewCompanyHandler(stub, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/companies",
			bytes.NewBufferString(`{"name":"Acme","comments":"referral"}`))
		rr := httptest.NewRecorder()
		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
		assert.Equal(t, "Acme", stub.GotName)
		assert.Equal(t, "referral", stub.GotComments)

		var res handler.CompanyResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		require.NotNil(t, res.Company)
		assert.Equal(t, "c1", res.Company.ID)
		assert.False(t, res.Company.Rejected)
	})

	t.Run("validation error", func(t *testing.T) {
		stub := &StubService{Err: apperror.ValidationFailed("name", "Company name is required!")}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleCreate(rr, httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewBufferString(`{"name":""}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Company name is required!", decodeMessage(t, rr))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		h := handler.NewCompanyHandler(&StubService{}, testLogger())

		rr := httptest.NewRecorder()
		h.HandleCreate(rr, httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewBufferString(`{"name":`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, handler.MsgInvalidJSON, decodeMessage(t, rr))
	})
}

func TestCompanyHandler_HandleUpdate(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		stub := &StubService{Company: &model.Company{ID: "c1", Name: "Acme", Rejected: true, Comments: "no fit"}}
		h := handler.NewCompanyHandler(stub, testLogger())

		req := httptest.NewRequest(http.MethodPatch, "/api/companies",
			bytes.NewBufferString(`{"id":"c1","name":"Acme","rejected":true,"comments":"no fit"}`))
		rr := httptest.NewRecorder()
		h.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
		assert.Equal(t, "c1", stub.GotID)
		assert.True(t, stub.GotRejected)
		assert.Equal(t, "no fit", stub.GotComments)
	})

	t.Run("not found", func(t *testing.T) {
		stub := &StubService{Err: apperror.NotFound("company", "missing")}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleUpdate(rr, httptest.NewRequest(http.MethodPatch, "/api/companies",
			bytes.NewBufferString(`{"id":"missing","name":"x"}`)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "company not found with id missing", decodeMessage(t, rr))
	})

	t.Run("storage failure hides cause", func(t *testing.T) {
		stub := &StubService{Err: apperror.Storage("Failed to edit. Please try again later.", errors.New("pq: deadlock"))}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleUpdate(rr, httptest.NewRequest(http.MethodPatch, "/api/companies",
			bytes.NewBufferString(`{"id":"c1","name":"x"}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to edit. Please try again later.", decodeMessage(t, rr))
	})
}

func TestCompanyHandler_HandleDelete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		stub := &StubService{Company: &model.Company{ID: "c1", Name: "Acme"}}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleDelete(rr, httptest.NewRequest(http.MethodDelete, "/api/companies", bytes.NewBufferString(`{"id":"c1"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "c1", stub.GotID)

		var res handler.CompanyResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "c1", res.Company.ID)
	})

	t.Run("not found", func(t *testing.T) {
		stub := &StubService{Err: apperror.NotFound("company", "x")}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleDelete(rr, httptest.NewRequest(http.MethodDelete, "/api/companies", bytes.NewBufferString(`{"id":"x"}`)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		stub := &StubService{Err: errors.New("open /var/lib/db: permission denied")}
		h := handler.NewCompanyHandler(stub, testLogger())

		rr := httptest.NewRecorder()
		h.HandleDelete(rr, httptest.NewRequest(http.MethodDelete, "/api/companies", bytes.NewBufferString(`{"id":"x"}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, handler.MsgUnknownFailure, decodeMessage(t, rr))
	})
}

func TestHandleNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.HandleNotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, handler.MsgRouteNotFound, decodeMessage(t, rr))
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), testLogger())

		rr := httptest.NewRecorder()
		h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("unavailable", func(t *testing.T) {
		h := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("refused") }), testLogger())

		rr := httptest.NewRecorder()
		h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

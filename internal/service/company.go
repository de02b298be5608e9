// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// CompanyService takes a repository.CompanyRepository (interface), never a
// concrete database type, so tests inject an in-memory mock and main picks
// SQLite or Postgres.
package service

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/model"
	"github.com/sakif/applytrack/internal/repository"
)

// Messages returned to API clients.
const (
	MsgNameRequired = "Company name is required!"
	MsgIDRequired   = "Company id is required!"
	MsgListFailed   = "Unable to retrieve companies. Please try again later."
	MsgCreateFailed = "Failed to add new company. Please try again later"
	MsgEditFailed   = "Failed to edit. Please try again later."
	MsgDeleteFailed = "Failed to delete. Please try again later."
)

// CompanyService handles business logic for application records.
type CompanyService struct {
	repo   repository.CompanyRepository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a CompanyService.
type Option func(*CompanyService)

// WithClock replaces time.Now, used to stamp the creation date.
func WithClock(now func() time.Time) Option {
	return func(s *CompanyService) {
		s.now = now
	}
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(repo repository.CompanyRepository, logger *slog.Logger, opts ...Option) *CompanyService {
	s := &CompanyService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every record, newest first.
func (s *CompanyService) List(ctx context.Context) ([]model.Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list companies", slog.String("error", err.Error()))
		return nil, apperror.Storage(MsgListFailed, err)
	}

	return companies, nil
}

// Create validates and saves a new record.
//
// The name is trimmed and must not be empty; it is stored HTML-escaped. The
// date is stamped from the service clock and rejected starts out false.
func (s *CompanyService) Create(ctx context.Context, name, comments string) (*model.Company, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:     name,
		Date:     s.now().Format(model.DateLayout),
		Rejected: false,
		Comments: comments,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		s.logger.Error("failed to create company",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Storage(MsgCreateFailed, err)
	}

	s.logger.Info("company created",
		slog.String("id", company.ID),
		slog.String("name", company.Name),
	)

	return company, nil
}

// Update replaces the mutable fields of an existing record.
//
// STRATEGY: "Fetch then update". The fetch turns an unknown id into a
// NotFound error and gives us the write-once fields (date) to return.
func (s *CompanyService) Update(ctx context.Context, id, name string, rejected bool, comments string) (*model.Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", MsgIDRequired)
	}

	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	company, err := s.fetch(ctx, id, MsgEditFailed)
	if err != nil {
		return nil, err
	}

	company.Name = name
	company.Rejected = rejected
	company.Comments = comments

	if err := s.repo.Update(ctx, company); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update company",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Storage(MsgEditFailed, err)
	}

	s.logger.Info("company updated",
		slog.String("id", company.ID),
		slog.Bool("rejected", company.Rejected),
	)

	return company, nil
}

// Delete removes a record and returns what was removed.
func (s *CompanyService) Delete(ctx context.Context, id string) (*model.Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", MsgIDRequired)
	}

	company, err := s.fetch(ctx, id, MsgDeleteFailed)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to delete company",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Storage(MsgDeleteFailed, err)
	}

	s.logger.Info("company deleted", slog.String("id", id))
	return company, nil
}

// fetch loads a record by id. NotFound passes through untouched; any other
// failure becomes a storage error carrying failMsg.
func (s *CompanyService) fetch(ctx context.Context, id, failMsg string) (*model.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return company, nil
	}
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	s.logger.Error("failed to load company",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return nil, apperror.Storage(failMsg, err)
}

// cleanName trims and HTML-escapes a company name, rejecting empty input.
// Unescaping first makes it idempotent: a name that round-trips through the
// client in escaped form is stored unchanged on edit.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(html.UnescapeString(name))
	if name == "" {
		return "", apperror.ValidationFailed("name", MsgNameRequired)
	}
	return html.EscapeString(name), nil
}

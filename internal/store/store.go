// Package store is the client-side state of applytrack: the record list as
// last seen from the server, the search query and the current View.
//
// Mutations go to the server first; the local list is patched from the
// server's response only when the call succeeds, so a failed request never
// leaves the list out of step with the server.
package store

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/model"
)

// MsgNameRequired is shown when an add is attempted with an empty title.
const MsgNameRequired = "Company name is required!"

var (
	// ErrModalOpen is returned when opening a modal while the view is not Idle.
	ErrModalOpen = errors.New("store: another view is active")
	// ErrNoModal is returned by SetDraft and Submit when no modal is open.
	ErrNoModal = errors.New("store: no modal is open")
	// ErrUnknownRecord is returned when opening a modal for an id not in the list.
	ErrUnknownRecord = errors.New("store: unknown record")
)

// API is the server contract the store depends on. *client.Client
// implements it.
type API interface {
	List(ctx context.Context) ([]model.Company, error)
	Create(ctx context.Context, name, comments string) (*model.Company, error)
	Update(ctx context.Context, id, name string, rejected bool, comments string) (*model.Company, error)
	Delete(ctx context.Context, id string) (*model.Company, error)
}

// Store holds client state. It is safe for concurrent use; the lock is
// released while a request is in flight, so overlapping operations apply
// in the order they complete.
type Store struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	records recordList
	query   string
	view    View
}

func New(api API, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger,
		records: recordList{},
		view:    Idle{},
	}
}

// ---- snapshots ----

// Records returns a copy of every record, newest first.
func (s *Store) Records() []model.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.clone()
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Store) IsLoading() bool {
	_, ok := s.View().(Loading)
	return ok
}

// ErrorMessage returns the message of the last failure, or "" when the view
// is not ErrorShown.
func (s *Store) ErrorMessage() string {
	if v, ok := s.View().(ErrorShown); ok {
		return v.Message
	}
	return ""
}

func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Visible is DerivedView applied to the current query.
func (s *Store) Visible() []model.Company {
	return s.DerivedView(s.Query())
}

// DerivedView returns the records whose name contains query, ignoring case,
// in list order. An empty query returns every record. The list itself is
// never modified.
func (s *Store) DerivedView(query string) []model.Company {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		return s.records.clone()
	}
	out := make([]model.Company, 0, len(s.records))
	for _, c := range s.records {
		if c.Matches(query) {
			out = append(out, c)
		}
	}
	return out
}

// RejectionRate is the share of rejected records as a whole percentage,
// rounded half away from zero. It is 0 for an empty list.
func (s *Store) RejectionRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return 0
	}
	rejected := 0
	for _, c := range s.records {
		if c.Rejected {
			rejected++
		}
	}
	return int(math.Round(100 * float64(rejected) / float64(len(s.records))))
}

// RejectionDisplay formats RejectionRate for the header: "0" when the rate
// is zero, otherwise "<n>%".
func (s *Store) RejectionDisplay() string {
	rate := s.RejectionRate()
	if rate == 0 {
		return "0"
	}
	return strconv.Itoa(rate) + "%"
}

// ---- server mutations ----

// Refresh replaces the list wholesale with the server's.
func (s *Store) Refresh(ctx context.Context) error {
	s.setView(Loading{})

	companies, err := s.api.List(ctx)
	if err != nil {
		return s.fail("refresh", err)
	}

	s.mu.Lock()
	s.records = recordList(companies)
	if s.records == nil {
		s.records = recordList{}
	}
	s.view = Idle{}
	s.mu.Unlock()

	s.logger.Debug("records refreshed", slog.Int("count", len(companies)))
	return nil
}

// AddRecord creates a record and inserts the server's copy at the front.
// A blank title fails locally without contacting the server.
func (s *Store) AddRecord(ctx context.Context, title, comments string) (*model.Company, error) {
	if strings.TrimSpace(title) == "" {
		return nil, s.fail("add", apperror.ValidationFailed("name", MsgNameRequired))
	}

	s.setView(Loading{})

	company, err := s.api.Create(ctx, title, comments)
	if err != nil {
		return nil, s.fail("add", err)
	}

	s.mu.Lock()
	s.records = s.records.prepend(*company)
	s.view = Idle{}
	s.mu.Unlock()

	s.logger.Debug("record added", slog.String("id", company.ID))
	return company, nil
}

// EditRecord updates a record and replaces the element carrying the
// server's id with the server's copy.
func (s *Store) EditRecord(ctx context.Context, id, title string, rejected bool, comments string) (*model.Company, error) {
	s.setView(Loading{})

	company, err := s.api.Update(ctx, id, title, rejected, comments)
	if err != nil {
		return nil, s.fail("edit", err)
	}

	s.mu.Lock()
	// A record removed while this request was in flight stays removed.
	s.records.replace(*company)
	s.view = Idle{}
	s.mu.Unlock()

	s.logger.Debug("record edited", slog.String("id", company.ID))
	return company, nil
}

// RemoveRecord deletes a record and drops the element carrying the
// server's id. A failed call leaves the list untouched.
func (s *Store) RemoveRecord(ctx context.Context, id string) (*model.Company, error) {
	s.setView(Loading{})

	company, err := s.api.Delete(ctx, id)
	if err != nil {
		return nil, s.fail("remove", err)
	}

	s.mu.Lock()
	s.records, _ = s.records.remove(company.ID)
	s.view = Idle{}
	s.mu.Unlock()

	s.logger.Debug("record removed", slog.String("id", company.ID))
	return company, nil
}

func (s *Store) setView(v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// fail records err as the visible error and returns it unchanged.
func (s *Store) fail(op string, err error) error {
	msg := apperror.Message(err)
	s.setView(ErrorShown{Message: msg})
	s.logger.Warn("operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return err
}

// ---- modal transitions ----

// OpenAdd opens the add modal with an empty draft.
func (s *Store) OpenAdd() error {
	return s.open(func() (View, error) {
		return Adding{}, nil
	})
}

// OpenEdit opens the edit modal pre-filled from the record with id.
// Names are stored HTML-escaped; the draft holds the readable form.
func (s *Store) OpenEdit(id string) error {
	return s.open(func() (View, error) {
		c, ok := s.records.get(id)
		if !ok {
			return nil, ErrUnknownRecord
		}
		return Editing{ID: id, Draft: Draft{
			Title:    html.UnescapeString(c.Name),
			Comments: c.Comments,
			Rejected: c.Rejected,
		}}, nil
	})
}

// OpenDelete opens the delete confirmation for the record with id.
func (s *Store) OpenDelete(id string) error {
	return s.open(func() (View, error) {
		c, ok := s.records.get(id)
		if !ok {
			return nil, ErrUnknownRecord
		}
		return Deleting{Record: c}, nil
	})
}

func (s *Store) open(next func() (View, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, idle := s.view.(Idle); !idle {
		return ErrModalOpen
	}
	v, err := next()
	if err != nil {
		return err
	}
	s.view = v
	return nil
}

// SetDraft replaces the draft of the open add or edit modal.
func (s *Store) SetDraft(d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := s.view.(type) {
	case Adding:
		s.view = Adding{Draft: d}
	case Editing:
		s.view = Editing{ID: v.ID, Draft: d}
	default:
		return ErrNoModal
	}
	return nil
}

// Cancel closes an open modal and discards its draft. Other views are left
// as they are.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.view.(type) {
	case Adding, Editing, Deleting:
		s.view = Idle{}
	}
}

// DismissError returns from ErrorShown to Idle.
func (s *Store) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.view.(ErrorShown); ok {
		s.view = Idle{}
	}
}

// Submit sends the open modal's content to the matching mutation.
func (s *Store) Submit(ctx context.Context) error {
	var err error
	switch v := s.View().(type) {
	case Adding:
		_, err = s.AddRecord(ctx, v.Draft.Title, v.Draft.Comments)
	case Editing:
		_, err = s.EditRecord(ctx, v.ID, v.Draft.Title, v.Draft.Rejected, v.Draft.Comments)
	case Deleting:
		_, err = s.RemoveRecord(ctx, v.Record.ID)
	default:
		err = ErrNoModal
	}
	return err
}

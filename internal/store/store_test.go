package store

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/client"
	"github.com/sakif/applytrack/internal/model"
)

// fakeAPI mimics the server: records live in a slice, newest first, and
// unknown ids answer with a 404 APIError.
type fakeAPI struct {
	mu      sync.Mutex
	records []model.Company
	nextID  int
	calls   int
	failAll error
}

func (f *fakeAPI) List(context.Context) ([]model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := make([]model.Company, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeAPI) Create(_ context.Context, name, comments string) (*model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.nextID++
	c := model.Company{
		ID:       fmt.Sprintf("id-%d", f.nextID),
		Name:     html.EscapeString(strings.TrimSpace(name)),
		Date:     "Oct 18 2026",
		Comments: comments,
	}
	f.records = append([]model.Company{c}, f.records...)
	return &c, nil
}

func (f *fakeAPI) Update(_ context.Context, id, name string, rejected bool, comments string) (*model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Name = html.EscapeString(strings.TrimSpace(name))
			f.records[i].Rejected = rejected
			f.records[i].Comments = comments
			c := f.records[i]
			return &c, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "company not found with id " + id}
}

func (f *fakeAPI) Delete(_ context.Context, id string) (*model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	for i := range f.records {
		if f.records[i].ID == id {
			c := f.records[i]
			f.records = append(f.records[:i], f.records[i+1:]...)
			return &c, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "company not found with id " + id}
}

func newTestStore(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	return New(api, slog.New(slog.NewTextHandler(io.Discard, nil))), api
}

func seed(t *testing.T, s *Store, names ...string) []model.Company {
	t.Helper()
	var out []model.Company
	for _, n := range names {
		c, err := s.AddRecord(context.Background(), n, "")
		require.NoError(t, err)
		out = append(out, *c)
	}
	return out
}

func TestNew_StartsIdleAndEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, Idle{}, s.View())
	assert.Empty(t, s.Records())
	assert.False(t, s.IsLoading())
	assert.Equal(t, "", s.ErrorMessage())
}

func TestAddRecord_BlankTitleNeverReachesServer(t *testing.T) {
	for _, title := range []string{"", "   ", "\t"} {
		s, api := newTestStore(t)
		seed(t, s, "Acme")
		callsBefore := api.calls

		_, err := s.AddRecord(context.Background(), title, "comments")

		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, callsBefore, api.calls)
		assert.Len(t, s.Records(), 1)
		assert.Equal(t, ErrorShown{Message: MsgNameRequired}, s.View())
	}
}

func TestAddRecord_InsertsAtFront(t *testing.T) {
	s, _ := newTestStore(t)
	seed(t, s, "first", "second")

	c, err := s.AddRecord(context.Background(), "Acme", "referral")
	require.NoError(t, err)

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, c.ID, records[0].ID)
	assert.Equal(t, "Acme", records[0].Name)
	assert.False(t, records[0].Rejected)
	assert.Equal(t, "Oct 18 2026", records[0].Date)
	assert.Equal(t, Idle{}, s.View())
}

func TestEditRecord_ReplacesOnlyMatchingID(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A", "B", "C")
	before := s.Records()

	_, err := s.EditRecord(context.Background(), seeded[1].ID, "B2", true, "no fit")
	require.NoError(t, err)

	after := s.Records()
	require.Len(t, after, 3)
	for i := range after {
		if after[i].ID == seeded[1].ID {
			assert.Equal(t, "B2", after[i].Name)
			assert.True(t, after[i].Rejected)
			assert.Equal(t, "no fit", after[i].Comments)
			assert.Equal(t, before[i].Date, after[i].Date)
		} else {
			assert.Equal(t, before[i], after[i])
		}
	}
}

func TestEditRecord_KeyedByIDAfterReorder(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A", "B")

	// A record added between opening the edit and the response shifts
	// positions; the patch must still land on B.
	seed(t, s, "C")
	_, err := s.EditRecord(context.Background(), seeded[1].ID, "B", true, "")
	require.NoError(t, err)

	for _, c := range s.Records() {
		assert.Equal(t, c.ID == seeded[1].ID, c.Rejected, "record %s", c.Name)
	}
}

func TestEditRecord_Failure(t *testing.T) {
	s, _ := newTestStore(t)
	seed(t, s, "A")
	before := s.Records()

	_, err := s.EditRecord(context.Background(), "missing", "x", true, "")

	assert.Equal(t, 404, client.StatusCode(err))
	assert.Equal(t, before, s.Records())
	assert.Equal(t, "company not found with id missing", s.ErrorMessage())
}

func TestRemoveRecord(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A", "B", "C")

	removed, err := s.RemoveRecord(context.Background(), seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[1].ID, removed.ID)

	records := s.Records()
	require.Len(t, records, 2)
	for _, c := range records {
		assert.NotEqual(t, seeded[1].ID, c.ID)
	}
}

func TestRemoveRecord_UnknownIDLeavesList(t *testing.T) {
	s, _ := newTestStore(t)
	seed(t, s, "A", "B")

	_, err := s.RemoveRecord(context.Background(), "nope")

	require.Error(t, err)
	assert.Len(t, s.Records(), 2)
	assert.NotEmpty(t, s.ErrorMessage())
}

func TestDerivedView(t *testing.T) {
	s, _ := newTestStore(t)
	seed(t, s, "Acme", "Globex", "ACME Labs", "Initech")
	before := s.Records()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Initech", "ACME Labs", "Globex", "Acme"}},
		{"acme", []string{"ACME Labs", "Acme"}},
		{"LABS", []string{"ACME Labs"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			names := []string{}
			for _, c := range s.DerivedView(tt.query) {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Equal(t, before, s.Records())
}

func TestVisible_UsesQuery(t *testing.T) {
	s, _ := newTestStore(t)
	seed(t, s, "Acme", "Globex")

	s.SetQuery("glo")
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "Globex", s.Visible()[0].Name)
	assert.Equal(t, "glo", s.Query())
}

func TestRejectionRate(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, 0, s.RejectionRate())
	assert.Equal(t, "0", s.RejectionDisplay())

	seeded := seed(t, s, "A", "B", "C", "D")
	assert.Equal(t, "0", s.RejectionDisplay())

	_, err := s.EditRecord(context.Background(), seeded[0].ID, "A", true, "")
	require.NoError(t, err)
	assert.Equal(t, 25, s.RejectionRate())
	assert.Equal(t, "25%", s.RejectionDisplay())
}

func TestRejectionRate_Rounds(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A", "B", "C")
	_, err := s.EditRecord(context.Background(), seeded[0].ID, "A", true, "")
	require.NoError(t, err)
	_, err = s.EditRecord(context.Background(), seeded[1].ID, "B", true, "")
	require.NoError(t, err)

	assert.Equal(t, 67, s.RejectionRate())
}

func TestRefresh(t *testing.T) {
	s, api := newTestStore(t)
	api.records = []model.Company{{ID: "x", Name: "Server side"}}

	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, s.Records(), 1)
	assert.Equal(t, "x", s.Records()[0].ID)

	api.failAll = errors.New("connection refused")
	require.Error(t, s.Refresh(context.Background()))
	assert.Len(t, s.Records(), 1)
	assert.Equal(t, "connection refused", s.ErrorMessage())
}

// blockingAPI holds every call until release is closed, so a test can
// observe the Loading view.
type blockingAPI struct {
	fakeAPI
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) List(ctx context.Context) ([]model.Company, error) {
	close(b.entered)
	<-b.release
	return b.fakeAPI.List(ctx)
}

func TestRefresh_LoadingWhileInFlight(t *testing.T) {
	api := &blockingAPI{entered: make(chan struct{}), release: make(chan struct{})}
	s := New(api, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error)
	go func() { done <- s.Refresh(context.Background()) }()

	<-api.entered
	assert.True(t, s.IsLoading())
	// The lock is free while the request is in flight.
	assert.Empty(t, s.Records())

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle{}, s.View())
}

func TestModals_OnlyOneAtATime(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A")

	require.NoError(t, s.OpenAdd())
	assert.ErrorIs(t, s.OpenEdit(seeded[0].ID), ErrModalOpen)
	assert.ErrorIs(t, s.OpenDelete(seeded[0].ID), ErrModalOpen)
	assert.IsType(t, Adding{}, s.View())

	s.Cancel()
	assert.Equal(t, Idle{}, s.View())
	assert.ErrorIs(t, s.OpenEdit("missing"), ErrUnknownRecord)
	assert.Equal(t, Idle{}, s.View())
}

func TestModals_SubmitAdd(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.OpenAdd())
	require.NoError(t, s.SetDraft(Draft{Title: "Acme", Comments: "referral"}))
	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, Idle{}, s.View())
	require.Len(t, s.Records(), 1)
	assert.Equal(t, "referral", s.Records()[0].Comments)

	// Reopening starts from an empty draft.
	require.NoError(t, s.OpenAdd())
	assert.Equal(t, Adding{}, s.View())
}

func TestModals_SubmitAddBlankShowsError(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.OpenAdd())
	require.NoError(t, s.SetDraft(Draft{Title: "  "}))
	assert.Error(t, s.Submit(context.Background()))
	assert.Equal(t, ErrorShown{Message: MsgNameRequired}, s.View())

	assert.ErrorIs(t, s.OpenAdd(), ErrModalOpen)
	s.DismissError()
	assert.Equal(t, Idle{}, s.View())
}

func TestModals_EditPrefillsUnescapedName(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "AT&T")
	require.Equal(t, "AT&amp;T", seeded[0].Name)

	require.NoError(t, s.OpenEdit(seeded[0].ID))
	v, ok := s.View().(Editing)
	require.True(t, ok)
	assert.Equal(t, "AT&T", v.Draft.Title)

	require.NoError(t, s.SetDraft(Draft{Title: v.Draft.Title, Rejected: true}))
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, "AT&amp;T", s.Records()[0].Name)
	assert.True(t, s.Records()[0].Rejected)
}

func TestModals_SubmitDelete(t *testing.T) {
	s, _ := newTestStore(t)
	seeded := seed(t, s, "A", "B")

	require.NoError(t, s.OpenDelete(seeded[0].ID))
	assert.Equal(t, Deleting{Record: seeded[0]}, s.View())
	assert.ErrorIs(t, s.SetDraft(Draft{}), ErrNoModal)
	require.NoError(t, s.Submit(context.Background()))

	require.Len(t, s.Records(), 1)
	assert.Equal(t, seeded[1].ID, s.Records()[0].ID)
}

func TestSubmit_NoModal(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ErrorIs(t, s.Submit(context.Background()), ErrNoModal)
}

// Create Acme, mark it rejected, delete it, end with an empty list.
func TestScenario_AddEditDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	assert.Empty(t, s.Records())

	created, err := s.AddRecord(ctx, "Acme", "")
	require.NoError(t, err)
	assert.Equal(t, "0", s.RejectionDisplay())

	_, err = s.EditRecord(ctx, created.ID, "Acme", true, "no fit")
	require.NoError(t, err)
	assert.Equal(t, "100%", s.RejectionDisplay())
	assert.Equal(t, "no fit", s.Records()[0].Comments)

	_, err = s.RemoveRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Records())
	assert.Equal(t, "0", s.RejectionDisplay())
}

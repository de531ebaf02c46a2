package session

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/navigator"
	"github.com/desertthunder/gnx/internal/shared"
	tu "github.com/desertthunder/gnx/internal/testing"
)

var header = []string{"PageID", "DateTime", "Story", "Video URL"}

// newStore holds two sheets; "2024-02" sorts first so it is selected on open.
func newStore() *tu.MockStore {
	return tu.NewMockStore().
		AddSheet("2024-01", [][]string{
			header,
			{"42", "2024-01-05", "answer", "https://v/42"},
			{"7", "2024-01-01", "seven", "https://v/7"},
		}).
		AddSheet("2024-02", [][]string{
			header,
			{"3", "2024-02-03", "three", "https://v/3"},
			{"1", "2024-02-01", "one", "https://v/1"},
			{"2", "2024-02-02", "two", "https://v/2"},
		})
}

type recorder struct {
	models []RenderModel
}

func (r *recorder) Render(m RenderModel) { r.models = append(r.models, m) }

func (r *recorder) last() RenderModel { return r.models[len(r.models)-1] }

func open(t *testing.T, store *tu.MockStore, opts ...Option) *Session {
	t.Helper()
	s := New(store, opts...)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() returned %v", err)
	}
	return s
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Open selects newest sheet", func(t *testing.T) {
		s := open(t, newStore())
		m := s.Model()

		if m.SelectedSheet != "2024-02" || m.Position != 1 || m.Count != 3 {
			t.Fatalf("unexpected model %+v", m)
		}
		if len(m.Sheets) != 2 || m.Sheets[0] != "2024-02" {
			t.Errorf("expected sheets newest first, got %v", m.Sheets)
		}
		if m.ID != 1 || m.Story != "one" || m.Buffer != "one" || m.Dirty {
			t.Errorf("expected row 1 displayed with buffer seeded, got %+v", m)
		}
		if m.PrevEnabled || !m.NextEnabled || !m.SliderEnabled {
			t.Errorf("unexpected control state %+v", m)
		}
	})

	t.Run("ids ascending then next then switch", func(t *testing.T) {
		s := open(t, newStore())

		if err := s.Next(ctx); err != nil {
			t.Fatalf("Next() returned %v", err)
		}
		if m := s.Model(); m.ID != 2 || m.Position != 2 {
			t.Errorf("expected id 2 at position 2, got id %d at %d", m.ID, m.Position)
		}

		if err := s.Select(ctx, "2024-01"); err != nil {
			t.Fatalf("Select() returned %v", err)
		}
		if m := s.Model(); m.Position != 1 || m.ID != 7 || m.Count != 2 {
			t.Errorf("expected id 7 at position 1 of 2, got id %d at %d of %d", m.ID, m.Position, m.Count)
		}
	})

	t.Run("switch from last position resets to 1", func(t *testing.T) {
		s := open(t, newStore())
		s.SetPosition(ctx, 3)
		s.Select(ctx, "2024-01")
		s.Select(ctx, "2024-02")
		if m := s.Model(); m.Position != 1 || m.ID != 1 {
			t.Errorf("expected position 1, got %d", m.Position)
		}
	})

	t.Run("reselecting the sheet does not reload", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Next(ctx)
		fetches := len(store.Fetches)

		s.Select(ctx, "2024-02")
		if len(store.Fetches) != fetches {
			t.Errorf("expected no fetch, got %d more", len(store.Fetches)-fetches)
		}
		if s.Model().Position != 2 {
			t.Errorf("expected position kept, got %d", s.Model().Position)
		}
	})

	t.Run("sheet change reloads rows", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Select(ctx, "2024-01")
		s.Select(ctx, "2024-02")

		want := []string{"2024-02", "2024-01", "2024-02"}
		if len(store.Fetches) != len(want) {
			t.Fatalf("expected fetches %v, got %v", want, store.Fetches)
		}
		for i := range want {
			if store.Fetches[i] != want[i] {
				t.Errorf("fetch %d: expected %s, got %s", i, want[i], store.Fetches[i])
			}
		}
	})

	t.Run("batch with sheet change discards moves", func(t *testing.T) {
		s := open(t, newStore())
		err := s.Dispatch(ctx, navigator.NextEvent(), navigator.SelectEvent("2024-01"), navigator.PositionEvent(2))
		if err != nil {
			t.Fatalf("Dispatch() returned %v", err)
		}
		if m := s.Model(); m.SelectedSheet != "2024-01" || m.Position != 1 {
			t.Errorf("expected 2024-01 at 1, got %s at %d", m.SelectedSheet, m.Position)
		}
	})

	t.Run("out of range slider is reported", func(t *testing.T) {
		s := open(t, newStore())
		s.Next(ctx)

		err := s.SetPosition(ctx, 4)
		if !errors.Is(err, shared.ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
		m := s.Model()
		if !m.Failed(shared.ErrOutOfRange) || m.Position != 2 {
			t.Errorf("expected inline error at position 2, got %+v", m)
		}

		s.Previous(ctx)
		if s.Model().Err != nil {
			t.Error("expected error cleared by the next interaction")
		}
	})

	t.Run("navigation discards the buffer", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Edit("draft")
		if m := s.Model(); m.Buffer != "draft" || !m.Dirty {
			t.Fatalf("expected dirty draft, got %+v", m)
		}

		s.Next(ctx)
		s.Previous(ctx)
		if m := s.Model(); m.Buffer != "one" || m.Dirty {
			t.Errorf("expected buffer reseeded from story, got %+v", m)
		}
		if len(store.Writes) != 0 {
			t.Errorf("expected no writes, got %v", store.Writes)
		}
	})

	t.Run("Goto", func(t *testing.T) {
		s := open(t, newStore())
		if err := s.Goto(ctx, 3); err != nil {
			t.Fatalf("Goto() returned %v", err)
		}
		if m := s.Model(); m.Position != 3 || m.ID != 3 {
			t.Errorf("expected id 3 at position 3, got %d at %d", m.ID, m.Position)
		}
		if err := s.Goto(ctx, 99); !errors.Is(err, shared.ErrRowNotFound) {
			t.Errorf("expected ErrRowNotFound, got %v", err)
		}
	})

	t.Run("every view sees the same snapshot", func(t *testing.T) {
		a, b := &recorder{}, &recorder{}
		s := open(t, newStore(), WithView(a))
		s.Bind(b)
		s.Next(ctx)

		if len(a.models) != 2 || len(b.models) != 2 {
			t.Fatalf("expected two renders each, got %d and %d", len(a.models), len(b.models))
		}
		if a.last().Position != b.last().Position || a.last().ID != b.last().ID {
			t.Errorf("views diverged: %+v vs %+v", a.last(), b.last())
		}
	})

	t.Run("Close unbinds views", func(t *testing.T) {
		r := &recorder{}
		s := open(t, newStore(), WithView(r))
		s.Close()
		n := len(r.models)
		s.Edit("ignored")
		if len(r.models) != n {
			t.Error("expected no renders after Close")
		}
		if m := s.Model(); m.HasSheet || m.HasRow {
			t.Errorf("expected empty model after Close, got %+v", m)
		}
	})
}

func TestSessionEmptySheet(t *testing.T) {
	ctx := context.Background()
	store := tu.NewMockStore().AddSheet("empty", [][]string{header})
	s := open(t, store)

	m := s.Model()
	if m.Count != 0 || m.HasRow || m.Detail || m.SliderEnabled || m.NextEnabled || m.PrevEnabled {
		t.Errorf("expected empty sheet state, got %+v", m)
	}
	if m.Err != nil {
		t.Errorf("expected no error, got %v", m.Err)
	}

	if err := s.Next(ctx); err != nil {
		t.Errorf("expected Next to be a no-op, got %v", err)
	}
	if err := s.Commit(ctx); !errors.Is(err, shared.ErrNoRow) {
		t.Errorf("expected ErrNoRow, got %v", err)
	}
	if len(store.Writes) != 0 {
		t.Errorf("expected no writes, got %v", store.Writes)
	}
}

func TestSessionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("sheet without expected columns", func(t *testing.T) {
		store := tu.NewMockStore().AddSheet("s", [][]string{
			{"PageID", "DateTime"},
			{"1", "2024-01-01"},
			{"2", "2024-01-02"},
		})
		s := open(t, store)

		m := s.Model()
		if !m.Failed(shared.ErrValidation) || m.Detail {
			t.Fatalf("expected validation error without detail, got %+v", m)
		}
		if m.Message() != "the selected sheet does not have the expected columns (missing Story, Video URL)" {
			t.Errorf("unexpected message %q", m.Message())
		}
		if !m.NextEnabled {
			t.Error("expected navigation to stay usable")
		}
		if err := s.Commit(ctx); !errors.Is(err, shared.ErrNoRow) {
			t.Errorf("expected ErrNoRow, got %v", err)
		}
	})

	t.Run("bad PageID", func(t *testing.T) {
		store := tu.NewMockStore().AddSheet("s", [][]string{header, {"one", "", "", ""}})
		s := New(store)
		if err := s.Open(ctx); !errors.Is(err, shared.ErrFormat) {
			t.Fatalf("expected ErrFormat, got %v", err)
		}
		if m := s.Model(); m.SelectedSheet != "s" || m.Count != 0 || m.SliderEnabled {
			t.Errorf("expected selected sheet with no rows, got %+v", m)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := newStore()
		store.ListErr = errors.New("quota exceeded")
		s := New(store)
		if err := s.Open(ctx); !errors.Is(err, shared.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if !s.Model().Failed(shared.ErrStore) {
			t.Error("expected inline store error")
		}
	})

	t.Run("Reload without sheet", func(t *testing.T) {
		s := New(tu.NewMockStore())
		if err := s.Reload(ctx); !errors.Is(err, shared.ErrNoSheet) {
			t.Errorf("expected ErrNoSheet, got %v", err)
		}
	})
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("writes exactly one cell at the located row", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Select(ctx, "2024-01")
		if err := s.Goto(ctx, 42); err != nil {
			t.Fatalf("Goto() returned %v", err)
		}
		s.Edit("X")

		if err := s.Commit(ctx); err != nil {
			t.Fatalf("Commit() returned %v", err)
		}
		if len(store.Writes) != 1 {
			t.Fatalf("expected one write, got %v", store.Writes)
		}
		want := tu.Write{Sheet: "2024-01", Row: 2, Col: 3, Value: "X"}
		if store.Writes[0] != want {
			t.Errorf("expected %+v, got %+v", want, store.Writes[0])
		}
		if store.Cell("2024-01", 2, 3) != "X" {
			t.Errorf("expected store cell updated")
		}
	})

	t.Run("keeps position and buffer and updates the row without refetch", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Next(ctx)
		s.Edit("new story")
		fetches := len(store.Fetches)

		if err := s.Commit(ctx); err != nil {
			t.Fatalf("Commit() returned %v", err)
		}
		m := s.Model()
		if m.Notice != CommitNotice {
			t.Errorf("expected notice %q, got %q", CommitNotice, m.Notice)
		}
		if m.Position != 2 || m.SelectedSheet != "2024-02" {
			t.Errorf("expected position and sheet unchanged, got %s at %d", m.SelectedSheet, m.Position)
		}
		if m.Buffer != "new story" || m.Story != "new story" || m.Dirty {
			t.Errorf("expected committed buffer kept and story updated, got %+v", m)
		}
		if len(store.Fetches) != fetches {
			t.Error("expected no refetch after commit")
		}
	})

	t.Run("row deleted externally", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Edit("draft")
		store.AddSheet("2024-02", [][]string{header, {"2", "", "two", ""}})

		err := s.Commit(ctx)
		if !errors.Is(err, shared.ErrRowNotFound) {
			t.Fatalf("expected ErrRowNotFound, got %v", err)
		}
		m := s.Model()
		if m.Notice != "" || !m.Failed(shared.ErrRowNotFound) {
			t.Errorf("expected inline not found error, got %+v", m)
		}
		if m.Buffer != "draft" {
			t.Errorf("expected buffer kept after failure, got %q", m.Buffer)
		}
		if len(store.Writes) != 0 {
			t.Errorf("expected no writes, got %v", store.Writes)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		store := newStore()
		store.WriteErr = errors.New("permission denied")
		s := open(t, store)
		s.Edit("draft")

		if err := s.Commit(ctx); !errors.Is(err, shared.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if m := s.Model(); m.Story != "one" || !m.Dirty {
			t.Errorf("expected story unchanged and buffer dirty, got %+v", m)
		}
	})

	t.Run("journal records the attempt", func(t *testing.T) {
		journal := &tu.MockJournal{}
		s := open(t, newStore(), WithJournal(journal))
		s.Edit("X")
		s.Commit(ctx)

		if len(journal.Commits) != 1 {
			t.Fatalf("expected one journal entry, got %d", len(journal.Commits))
		}
		c := journal.Commits[0]
		if c.Status != models.CommitApplied || c.Previous != "one" || c.Value != "X" || c.Row != 3 || c.Column != 3 {
			t.Errorf("unexpected journal entry %+v", c)
		}
	})

	t.Run("CommitRow writes the row it names", func(t *testing.T) {
		store := newStore()
		s := open(t, store)

		if err := s.CommitRow(ctx, "2024-02", 1, "X"); err != nil {
			t.Fatalf("CommitRow() returned %v", err)
		}
		want := tu.Write{Sheet: "2024-02", Row: 3, Col: 3, Value: "X"}
		if len(store.Writes) != 1 || store.Writes[0] != want {
			t.Fatalf("expected %+v, got %v", want, store.Writes)
		}
		if m := s.Model(); m.Notice != CommitNotice || m.Story != "X" {
			t.Errorf("expected committed story, got %+v", m)
		}
	})

	t.Run("CommitRow after navigation does not touch the new row", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Edit("meant for one")
		if err := s.Next(ctx); err != nil {
			t.Fatalf("Next() returned %v", err)
		}

		err := s.CommitRow(ctx, "2024-02", 1, "meant for one")
		if !errors.Is(err, shared.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
		if len(store.Writes) != 0 {
			t.Fatalf("expected no writes, got %v", store.Writes)
		}
		m := s.Model()
		if m.ID != 2 || m.Story != "two" || m.Buffer != "two" || m.Dirty {
			t.Errorf("expected PageID 2 displayed with its own story, got %+v", m)
		}
		if !m.Failed(shared.ErrNoRow) {
			t.Errorf("expected inline stale row error, got %+v", m)
		}
	})

	t.Run("CommitRow after sheet switch is rejected", func(t *testing.T) {
		store := newStore()
		s := open(t, store)
		s.Select(ctx, "2024-01")

		if err := s.CommitRow(ctx, "2024-02", 1, "X"); !errors.Is(err, shared.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
		if len(store.Writes) != 0 {
			t.Errorf("expected no writes, got %v", store.Writes)
		}
	})

	t.Run("CommitRow on an empty sheet is rejected", func(t *testing.T) {
		store := newStore().AddSheet("2024-03", [][]string{header})
		s := open(t, store)
		s.Select(ctx, "2024-03")

		if err := s.CommitRow(ctx, "2024-03", 0, "X"); !errors.Is(err, shared.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
		if len(store.Writes) != 0 {
			t.Errorf("expected no writes, got %v", store.Writes)
		}
	})

	t.Run("duplicate Story header edits the column it displays", func(t *testing.T) {
		store := tu.NewMockStore().AddSheet("2024-05", [][]string{
			{"PageID", "Story", "DateTime", "Video URL", "Story"},
			{"1", "shown", "2024-05-01", "https://v/1", "shadow"},
		})
		s := open(t, store)
		if m := s.Model(); m.Story != "shown" {
			t.Fatalf("expected first Story column displayed, got %q", m.Story)
		}

		if err := s.CommitRow(ctx, "2024-05", 1, "X"); err != nil {
			t.Fatalf("CommitRow() returned %v", err)
		}
		want := tu.Write{Sheet: "2024-05", Row: 2, Col: 2, Value: "X"}
		if len(store.Writes) != 1 || store.Writes[0] != want {
			t.Errorf("expected %+v, got %v", want, store.Writes)
		}
	})

	t.Run("journal failure does not fail the commit", func(t *testing.T) {
		store := newStore()
		s := open(t, store, WithJournal(&tu.MockJournal{Err: errors.New("disk full")}))
		s.Edit("X")
		if err := s.Commit(ctx); err != nil {
			t.Fatalf("expected commit to succeed, got %v", err)
		}
		if len(store.Writes) != 1 {
			t.Errorf("expected one write, got %d", len(store.Writes))
		}
	})
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Owner string `json:"owner"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateGetUpdateDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	doc := note{ID: "n1", Title: "first", Owner: "coach-1"}
	if err := st.Create(ctx, "notes", doc.ID, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	var got note
	if err := st.Get(ctx, "notes", "n1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != doc {
		t.Errorf("got %+v, want %+v", got, doc)
	}

	doc.Title = "renamed"
	if err := st.Update(ctx, "notes", doc.ID, doc); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.Get(ctx, "notes", "n1", &got); err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("update not applied, got title %q", got.Title)
	}

	if err := st.Delete(ctx, "notes", "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Get(ctx, "notes", "n1", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	st := newTestStore(t)
	err := st.Update(context.Background(), "notes", "missing", note{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutIsUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Put(ctx, "notes", "n1", note{ID: "n1", Title: "a"}); err != nil {
		t.Fatalf("put create: %v", err)
	}
	if err := st.Put(ctx, "notes", "n1", note{ID: "n1", Title: "b"}); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}

	var got note
	if err := st.Get(ctx, "notes", "n1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "b" {
		t.Errorf("last write should win, got title %q", got.Title)
	}
}

func TestQueryFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, doc := range []note{
		{ID: "n1", Title: "a", Owner: "coach-1"},
		{ID: "n2", Title: "b", Owner: "coach-2"},
		{ID: "n3", Title: "c", Owner: "coach-1"},
	} {
		if err := st.Create(ctx, "notes", doc.ID, doc); err != nil {
			t.Fatalf("create %s: %v", doc.ID, err)
		}
	}

	got, err := QueryAs[note](ctx, st, "notes", Filter{"owner": "coach-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(got))
	}
	if got[0].ID != "n1" || got[1].ID != "n3" {
		t.Errorf("expected oldest-first n1,n3, got %s,%s", got[0].ID, got[1].ID)
	}

	all, err := st.Query(ctx, "notes", nil)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 documents, got %d", len(all))
	}
}

func TestQueryRejectsHostileFilterField(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Query(context.Background(), "notes", Filter{"a') OR ('1'='1": "x"})
	if err == nil {
		t.Error("expected filter field validation error")
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ch, cancel := st.Subscribe("notes")
	defer cancel()

	if err := st.Create(ctx, "notes", "n1", note{ID: "n1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Delete(ctx, "notes", "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Other collections are filtered out.
	if err := st.Create(ctx, "other", "x", note{ID: "x"}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	want := []Event{
		{Collection: "notes", ID: "n1", Op: OpCreate},
		{Collection: "notes", ID: "n1", Op: OpDelete},
	}
	for i, w := range want {
		select {
		case ev := <-ch:
			if ev != w {
				t.Errorf("event %d: got %+v, want %+v", i, ev, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected extra event %+v", ev)
	default:
	}
}

func TestRunInTxRollbackSuppressesEvents(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ch, cancel := st.Subscribe("")
	defer cancel()

	boom := errors.New("boom")
	err := st.RunInTx(ctx, func(tx *Store) error {
		if err := tx.Create(ctx, "notes", "n1", note{ID: "n1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var got note
	if err := st.Get(ctx, "notes", "n1", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("rolled-back write should not persist, got %v", err)
	}
	select {
	case ev := <-ch:
		t.Errorf("rolled-back write must not publish events, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunInTxCommitPublishesEvents(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ch, cancel := st.Subscribe("notes")
	defer cancel()

	err := st.RunInTx(ctx, func(tx *Store) error {
		if err := tx.Create(ctx, "notes", "n1", note{ID: "n1"}); err != nil {
			return err
		}
		return tx.Delete(ctx, "notes", "n1")
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Op != OpCreate {
			t.Errorf("expected create first, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for committed events")
	}
}

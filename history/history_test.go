package history

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAssignsGrowingIDs(t *testing.T) {
	s := newTestStore(t)

	var prev uint64
	for i := 0; i < 3; i++ {
		id, err := s.Append(Record{Text: "take"})
		if err != nil {
			t.Fatal(err)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestAppendSetsCreatedAt(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Append(Record{Text: "take"})
	if err != nil {
		t.Fatal(err)
	}
	rec, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
	if time.Since(rec.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt too old: %v", rec.CreatedAt)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.Append(Record{Text: text}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Text != "third" || got[1].Text != "second" {
		t.Errorf("order wrong: %q, %q", got[0].Text, got[1].Text)
	}
}

func TestRecentZeroLimit(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Append(Record{Text: "take"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestSearchMatchesBothTexts(t *testing.T) {
	s := newTestStore(t)

	records := []Record{
		{Text: "buy some milk"},
		{Text: "raw words", ProcessedText: "Schedule the Milk delivery."},
		{Text: "unrelated"},
	}
	for _, rec := range records {
		if _, err := s.Append(rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Search("MILK")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Newest first.
	if got[0].ProcessedText == "" || got[1].Text != "buy some milk" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Append(Record{Text: "remove me"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(id); err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	// Unknown id is not an error.
	if err := s.Delete(9999); err != nil {
		t.Errorf("delete of unknown id: %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	firstID, err := s.Append(Record{Text: "before restart"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec, err := s.Get(firstID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Text != "before restart" {
		t.Errorf("got %q", rec.Text)
	}

	secondID, err := s.Append(Record{Text: "after restart"})
	if err != nil {
		t.Fatal(err)
	}
	if secondID <= firstID {
		t.Errorf("id %d not greater than %d after reopen", secondID, firstID)
	}
}

func TestFinal(t *testing.T) {
	if got := (Record{Text: "raw"}).Final(); got != "raw" {
		t.Errorf("got %q", got)
	}
	if got := (Record{Text: "raw", ProcessedText: "clean"}).Final(); got != "clean" {
		t.Errorf("got %q", got)
	}
}

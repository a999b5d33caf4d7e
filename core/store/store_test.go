package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
)

const base = "http://reports.local/"

func report(id, source string) core.GeneratedReport {
	return core.GeneratedReport{
		ID:          id,
		RequestID:   "req-1",
		SourceURL:   source,
		FileName:    id + ".pdf",
		Format:      core.FormatPDF,
		Content:     []byte("%PDF-" + id),
		MIMEType:    "application/pdf",
		Size:        int64(len("%PDF-" + id)),
		GeneratedAt: time.Date(2024, 5, 6, 7, 8, 9, 123, time.UTC),
	}
}

func stores(t *testing.T) map[string]core.Store {
	t.Helper()
	sqlite, err := OpenSQL("sqlite", "file::memory:", base)
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]core.Store{
		"memory": NewMemory(base),
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			saved, err := s.Save(ctx, report("a", "http://src/1"))
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if saved.DownloadURL != "http://reports.local/api/reports/a/download" {
				t.Errorf("DownloadURL = %q", saved.DownloadURL)
			}
			if _, err := s.Save(ctx, report("b", "http://src/2")); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Save(ctx, report("c", "http://src/1")); err != nil {
				t.Fatal(err)
			}

			got, err := s.FindByID(ctx, "a")
			if err != nil {
				t.Fatalf("FindByID: %v", err)
			}
			if string(got.Content) != "%PDF-a" || got.RequestID != "req-1" || got.Format != core.FormatPDF {
				t.Errorf("FindByID = %+v", got)
			}
			if !got.GeneratedAt.Equal(report("a", "").GeneratedAt) {
				t.Errorf("GeneratedAt = %v", got.GeneratedAt)
			}

			bySource, err := s.FindBySourceURL(ctx, "http://src/1")
			if err != nil {
				t.Fatal(err)
			}
			if len(bySource) != 2 || bySource[0].ID != "a" || bySource[1].ID != "c" {
				t.Errorf("FindBySourceURL = %v", ids(bySource))
			}

			if err := s.Delete(ctx, "a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete(missing) = %v, want nil", err)
			}
			if _, err := s.FindByID(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("FindByID after delete: err = %v, want ErrNotFound", err)
			}
			bySource, _ = s.FindBySourceURL(ctx, "http://src/1")
			if len(bySource) != 1 || bySource[0].ID != "c" {
				t.Errorf("after delete: %v", ids(bySource))
			}
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		r := report("x", "http://src")
		if _, err := s.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
		r.FileName = "renamed.pdf"
		if _, err := s.Save(ctx, r); err != nil {
			t.Fatalf("%s: second save: %v", name, err)
		}
		all, _ := s.FindBySourceURL(ctx, "http://src")
		if len(all) != 1 || all[0].FileName != "renamed.pdf" {
			t.Errorf("%s: after replace = %+v", name, all)
		}
	}
}

func TestMemoryCopies(t *testing.T) {
	m := NewMemory(base)
	r := report("a", "s")
	if _, err := m.Save(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	r.Content[0] = 'X'
	got, _ := m.FindByID(context.Background(), "a")
	if got.Content[0] != '%' {
		t.Error("store shares the caller's content buffer")
	}
	got.Content[0] = 'Y'
	again, _ := m.FindByID(context.Background(), "a")
	if again.Content[0] != '%' {
		t.Error("store hands out its own buffer")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestRebind(t *testing.T) {
	s := &SQL{driver: "postgres"}
	if got := s.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	s.driver = "sqlite"
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestOpen(t *testing.T) {
	if s, err := Open("", "", base); err != nil {
		t.Errorf("Open default: %v", err)
	} else if _, ok := s.(*Memory); !ok {
		t.Errorf("Open default = %T, want *Memory", s)
	}
	if _, err := Open("mongo", "", base); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func ids(rs []core.GeneratedReport) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

package history_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"reelforge/internal/config"
	"reelforge/internal/history"
	"reelforge/internal/pipeline"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
)

func mustOpen(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestInsertAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mustOpen(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.Insert(ctx, history.Run{
		JobID:          "job-1",
		RenderPath:     "captioned",
		Background:     "/media/bg.mp4",
		Audio:          "/media/voice.mp3",
		Output:         "/out/final.mp4",
		Captions:       4,
		Rasterizations: 3,
		Frames:         600,
		AudioDuration:  20,
		FrameRate:      29.97,
		StartedAt:      started,
		FinishedAt:     started.Add(42 * time.Second),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected row id")
	}

	run, err := store.GetByJobID(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if run == nil {
		t.Fatal("expected stored run")
	}
	if run.Status != history.StatusSucceeded || run.Frames != 600 || run.Rasterizations != 3 || run.FrameRate != 29.97 {
		t.Fatalf("unexpected run %+v", run)
	}
	if !run.StartedAt.Equal(started) || run.Elapsed() != 42*time.Second {
		t.Fatalf("unexpected timestamps %v %v", run.StartedAt, run.FinishedAt)
	}
	if run.FailureKind != "" || run.ErrorMessage != "" {
		t.Fatalf("expected empty failure fields, got %q %q", run.FailureKind, run.ErrorMessage)
	}

	missing, err := store.GetByJobID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown job, got %+v (%v)", missing, err)
	}
}

func TestInsertRequiresJobID(t *testing.T) {
	store := mustOpen(t, testsupport.NewConfig(t))
	if _, err := store.Insert(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for missing job id")
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := mustOpen(t, testsupport.NewConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// The half-second offset checks that fractional timestamps sort correctly.
	offsets := []time.Duration{0, 1500 * time.Millisecond, time.Second}
	for i, offset := range offsets {
		if _, err := store.Insert(ctx, history.Run{JobID: fmt.Sprintf("job-%d", i), StartedAt: base.Add(offset)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].JobID != "job-1" || runs[1].JobID != "job-2" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestRecordRender(t *testing.T) {
	store := mustOpen(t, testsupport.NewConfig(t))
	ctx := context.Background()

	req := pipeline.Request{Background: "bg.mp4", Audio: "voice.mp3", Narration: "Café. Déjà vu.", Output: "out.mp4"}
	ok := pipeline.Result{JobID: "ok", Output: "/abs/out.mp4", Path: pipeline.PathFast, Frames: 90, StartedAt: time.Now()}
	if err := store.RecordRender(ctx, req, ok, nil); err != nil {
		t.Fatalf("RecordRender: %v", err)
	}
	failErr := services.Wrap(services.ErrEncoding, "captioned_path", "finish encoder", "output encoder failed", errors.New("exit status 1"))
	failed := pipeline.Result{JobID: "bad", Output: "/abs/out.mp4", Path: pipeline.PathCaptioned, StartedAt: time.Now()}
	if err := store.RecordRender(ctx, req, failed, failErr); err != nil {
		t.Fatalf("RecordRender: %v", err)
	}

	run, err := store.GetByJobID(ctx, "ok")
	if err != nil || run == nil {
		t.Fatalf("GetByJobID: %+v %v", run, err)
	}
	if run.RenderPath != "fast" || run.NarrationChars != 14 || run.Output != "/abs/out.mp4" {
		t.Fatalf("unexpected success row %+v", run)
	}

	bad, err := store.GetByJobID(ctx, "bad")
	if err != nil || bad == nil {
		t.Fatalf("GetByJobID: %+v %v", bad, err)
	}
	if bad.Status != history.StatusFailed || bad.FailureKind != "encoding" || bad.ErrorMessage == "" {
		t.Fatalf("unexpected failure row %+v", bad)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Total != 2 || summary.Succeeded != 1 || summary.Failed != 1 || summary.Frames != 90 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestPruneBefore(t *testing.T) {
	store := mustOpen(t, testsupport.NewConfig(t))
	ctx := context.Background()
	now := time.Now()
	for i, started := range []time.Time{now.Add(-48 * time.Hour), now} {
		if _, err := store.Insert(ctx, history.Run{JobID: fmt.Sprintf("job-%d", i), StartedAt: started}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	removed, err := store.PruneBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d rows, want 1", removed)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

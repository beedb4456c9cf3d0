package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/cadencelabs/driftwatch/internal/errors"
)

func writeBatchFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	var content string
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
}

func TestNewSpoolRequiresDir(t *testing.T) {
	if _, err := NewSpool("  "); err == nil {
		t.Fatal("NewSpool() error = nil, want error for blank directory")
	}
}

func TestNextDrainedOnEmptyDir(t *testing.T) {
	spool, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	batch, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if batch.Source != "" || len(batch.Messages) != 0 {
		t.Errorf("Next() = %+v, want zero batch", batch)
	}
}

func TestNextReadsOldestFirst(t *testing.T) {
	dir := t.TempDir()
	writeBatchFile(t, dir, "2026-03-02.jsonl",
		`{"id":"m2","unit_id":"team-beta","text":"later batch"}`)
	writeBatchFile(t, dir, "2026-03-01.jsonl",
		`{"id":"m1","unit_id":"team-alpha","text":"earlier batch"}`)

	spool, err := NewSpool(dir)
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	first, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() first error = %v", err)
	}
	if first.Source != "2026-03-01.jsonl" {
		t.Errorf("first Source = %q, want %q", first.Source, "2026-03-01.jsonl")
	}
	if len(first.Messages) != 1 || first.Messages[0].ID != "m1" {
		t.Errorf("first Messages = %+v, want m1", first.Messages)
	}

	second, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() second error = %v", err)
	}
	if second.Source != "2026-03-02.jsonl" {
		t.Errorf("second Source = %q, want %q", second.Source, "2026-03-02.jsonl")
	}

	third, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() third error = %v", err)
	}
	if third.Source != "" {
		t.Errorf("third Source = %q, want drained spool", third.Source)
	}
}

func TestNextArchivesConsumedFile(t *testing.T) {
	dir := t.TempDir()
	writeBatchFile(t, dir, "batch.jsonl",
		`{"id":"m1","unit_id":"team-alpha","text":"hello"}`)

	spool, err := NewSpool(dir)
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}
	if _, err := spool.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "batch.jsonl")); !os.IsNotExist(err) {
		t.Errorf("consumed file still present, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "processed", "batch.jsonl")); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
}

func TestNextSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeBatchFile(t, dir, "batch.jsonl",
		`{"id":"m1","unit_id":"team-alpha","text":"first"}`,
		`{not json at all`,
		``,
		`{"id":"m2","unit_id":"team-alpha","text":"second"}`)

	spool, err := NewSpool(dir)
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	batch, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(batch.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(batch.Messages))
	}
	if batch.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", batch.Malformed)
	}
}

func TestNextIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a batch"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	spool, err := NewSpool(dir)
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	batch, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if batch.Source != "" {
		t.Errorf("Source = %q, want drained spool", batch.Source)
	}
}

func TestNextNormalizesMessages(t *testing.T) {
	dir := t.TempDir()
	writeBatchFile(t, dir, "batch.jsonl",
		`{"id":" m1 ","unit_id":" team-alpha ","text":"  padded text  ","timestamp":"2026-03-01T10:00:00-05:00","user_id":" u1 "}`)

	spool, err := NewSpool(dir)
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	batch, err := spool.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(batch.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(batch.Messages))
	}

	msg := batch.Messages[0]
	if msg.UnitID != "team-alpha" {
		t.Errorf("UnitID = %q, want %q", msg.UnitID, "team-alpha")
	}
	if msg.Text != "padded text" {
		t.Errorf("Text = %q, want %q", msg.Text, "padded text")
	}
	want := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
	}
	if loc := msg.Timestamp.Location(); loc != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", loc)
	}
}

func TestNextCanceledContext(t *testing.T) {
	spool, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := spool.Next(ctx); err == nil {
		t.Fatal("Next() error = nil, want context error")
	}
}

func TestNextMissingDirectory(t *testing.T) {
	spool, err := NewSpool(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	_, err = spool.Next(context.Background())
	if err == nil {
		t.Fatal("Next() error = nil, want error for missing directory")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeSpoolUnreadable {
		t.Errorf("CodeOf() = %v, want %v", code, apperrors.CodeSpoolUnreadable)
	}
}

func TestReadFileLeavesBatchInPlace(t *testing.T) {
	dir := t.TempDir()
	writeBatchFile(t, dir, "review.jsonl",
		`{"id":"m1","unit_id":"team-alpha","text":"standup moved to noon."}`,
		"{bad json",
	)

	path := filepath.Join(dir, "review.jsonl")
	batch, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if batch.Source != "review.jsonl" {
		t.Errorf("Source = %q, want review.jsonl", batch.Source)
	}
	if len(batch.Messages) != 1 || batch.Malformed != 1 {
		t.Errorf("messages = %d malformed = %d, want 1 and 1", len(batch.Messages), batch.Malformed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("batch file consumed: %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err == nil {
		t.Fatal("ReadFile() error = nil, want error for missing file")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeSpoolBadBatch {
		t.Errorf("CodeOf() = %v, want %v", code, apperrors.CodeSpoolBadBatch)
	}
}

// Package source supplies message batches to the engine runtime.
package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	apperrors "github.com/cadencelabs/driftwatch/internal/errors"
)

const (
	batchSuffix      = ".jsonl"
	processedDirName = "processed"
)

// spoolMessage is the wire shape of one batch line.
type spoolMessage struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unit_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
}

// Batch is the content of one consumed spool file. Malformed counts the
// skipped lines that did not decode.
type Batch struct {
	Messages  []domain.Message
	Source    string
	Malformed int
}

// Spool reads message batches from a drop directory. Producers write one
// JSON message per line into *.jsonl files; consumed files move to a
// processed/ subdirectory.
type Spool struct {
	dir string
}

// NewSpool returns a spool over dir. The directory must exist by the first
// call to Next.
func NewSpool(dir string) (*Spool, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.New(apperrors.CodeSpoolUnreadable, "spool directory is required")
	}
	return &Spool{dir: dir}, nil
}

// Next consumes the oldest pending batch file, by name, and archives it. A
// zero Batch means the spool is drained.
func (s *Spool) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeSpoolUnreadable, "read spool directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), batchSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return Batch{}, nil
	}
	sort.Strings(names)

	name := names[0]
	path := filepath.Join(s.dir, name)
	batch, err := ReadFile(path)
	if err != nil {
		return Batch{}, err
	}

	processedDir := filepath.Join(s.dir, processedDirName)
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeSpoolUnreadable, "create processed directory", err)
	}
	if err := os.Rename(path, filepath.Join(processedDir, name)); err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeSpoolBadBatch, "archive batch file", err)
	}
	return batch, nil
}

// ReadFile parses a single batch file without consuming it.
func ReadFile(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, apperrors.Wrap(apperrors.CodeSpoolBadBatch, "read batch file", err)
	}

	batch := Batch{Source: filepath.Base(path)}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var wire spoolMessage
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			batch.Malformed++
			continue
		}
		msg := domain.Message{
			ID:        wire.ID,
			UnitID:    wire.UnitID,
			Text:      wire.Text,
			Timestamp: wire.Timestamp,
			UserID:    wire.UserID,
		}
		batch.Messages = append(batch.Messages, msg.Normalize())
	}
	return batch, nil
}

// Package domain defines the value types shared by the analysis pipeline.
package domain

import (
	"strings"
	"time"

	"github.com/cadencelabs/driftwatch/internal/errors"
)

// Message is one normalized communication message entering the pipeline.
// Messages are immutable once ingested; anonymization produces a copy.
type Message struct {
	ID        string
	UnitID    string
	Text      string
	Timestamp time.Time
	UserID    string
}

// Normalize trims identifier and text fields and forces the timestamp to UTC.
func (m Message) Normalize() Message {
	m.ID = strings.TrimSpace(m.ID)
	m.UnitID = strings.TrimSpace(m.UnitID)
	m.UserID = strings.TrimSpace(m.UserID)
	m.Text = strings.TrimSpace(m.Text)
	if !m.Timestamp.IsZero() {
		m.Timestamp = m.Timestamp.UTC()
	}
	return m
}

// Validate reports whether the message can be analyzed. Blank text is not an
// error at batch level; callers skip and count those messages instead.
func (m Message) Validate() error {
	if strings.TrimSpace(m.UnitID) == "" {
		return errors.New(errors.CodeMessageEmptyUnitID, "message unit id is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return errors.New(errors.CodeMessageEmptyText, "message text is empty")
	}
	return nil
}

package models

import (
	"fmt"
	"time"
)

// CommitStatus tracks a commit attempt through the journal.
type CommitStatus string

const (
	CommitPending CommitStatus = "pending"
	CommitApplied CommitStatus = "applied"
	CommitFailed  CommitStatus = "failed"
)

var _ Model = (*Commit)(nil)

// Commit records one attempt to write a story back to the sheet store.
//
// Previous holds the story as displayed before the edit, which is what the user overwrote.
type Commit struct {
	id        string
	sequence  int
	Sheet     string
	PageID    int
	Row       int
	Column    int
	Previous  string
	Value     string
	Status    CommitStatus
	Message   string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCommit creates a pending [Commit] for the story value written to sheet at pageID.
func NewCommit(sheet string, pageID int, previous, value string) *Commit {
	now := time.Now()
	return &Commit{
		Sheet:     sheet,
		PageID:    pageID,
		Previous:  previous,
		Value:     value,
		Status:    CommitPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Commit) ID() string            { return c.id }
func (c *Commit) Sequence() int         { return c.sequence }
func (c *Commit) CreatedAt() time.Time  { return c.createdAt }
func (c *Commit) UpdatedAt() time.Time  { return c.updatedAt }
func (c *Commit) DeletedAt() *time.Time { return c.deletedAt }

func (c *Commit) SetID(id string)           { c.id = id }
func (c *Commit) SetSequence(seq int)       { c.sequence = seq }
func (c *Commit) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *Commit) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *Commit) SetDeletedAt(t *time.Time) { c.deletedAt = t }
func (c *Commit) IsDeleted() bool           { return c.deletedAt != nil }
func (c *Commit) Located(row, column int)   { c.Row, c.Column = row, column }

// Resolve marks the commit applied, or failed with the message of err.
func (c *Commit) Resolve(err error) *Commit {
	if err != nil {
		c.Status = CommitFailed
		c.Message = err.Error()
	} else {
		c.Status = CommitApplied
		c.Message = ""
	}
	return c
}

// Validate checks required fields and the status value.
func (c *Commit) Validate() error {
	if c.Sheet == "" {
		return fmt.Errorf("sheet is required")
	}
	switch c.Status {
	case CommitPending, CommitApplied, CommitFailed:
	default:
		return fmt.Errorf("invalid status %q", c.Status)
	}
	if c.Row < 0 || c.Column < 0 {
		return fmt.Errorf("cell position cannot be negative")
	}
	return nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
)

var _ models.Repository[*models.Commit] = (*CommitRepository)(nil)

const commitColumns = `id, sequence, sheet, page_id, row_number, column_number, previous, value, status, message,
	created_at, updated_at, deleted_at`

// CommitRepository implements [models.Repository] for [models.Commit] persistence.
type CommitRepository struct {
	db *sql.DB
}

// NewCommitRepository creates a new [CommitRepository] with the given database connection
func NewCommitRepository(db *sql.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

// Create inserts a new commit with a generated ID and sequence
func (r *CommitRepository) Create(commit *models.Commit) error {
	if err := commit.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "commits")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO commits (id, sequence, sheet, page_id, row_number, column_number, previous, value, status, message,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, commit.Sheet, commit.PageID, commit.Row, commit.Column, commit.Previous,
		commit.Value, string(commit.Status), commit.Message, commit.CreatedAt(), commit.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert commit: %w", err)
	}

	commit.SetID(id)
	commit.SetSequence(sequence)
	return nil
}

// Get retrieves a commit by ID, excluding soft-deleted commits
func (r *CommitRepository) Get(id string) (*models.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE id = ? AND deleted_at IS NULL`

	commit, err := scanCommit(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commit not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query commit: %w", err)
	}
	return commit, nil
}

// Update stores the located cell, status and message of an existing commit
func (r *CommitRepository) Update(commit *models.Commit) error {
	if err := commit.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE commits
		SET row_number = ?, column_number = ?, status = ?, message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, commit.Row, commit.Column, string(commit.Status), commit.Message, now, commit.ID())
	if err != nil {
		return fmt.Errorf("failed to update commit: %w", err)
	}

	if err := expectOne(result, commit.ID()); err != nil {
		return err
	}
	commit.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a commit by ID
func (r *CommitRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE commits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete commit: %w", err)
	}
	return expectOne(result, id)
}

// List retrieves commits matching the given criteria, newest first.
//
// Supported criteria: "sheet" (string), "page_id" (int), "status" ([models.CommitStatus]) and "limit" (int).
func (r *CommitRepository) List(criteria map[string]any) ([]*models.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE deleted_at IS NULL`
	args := []any{}

	if sheet, ok := criteria["sheet"].(string); ok && sheet != "" {
		query += " AND sheet = ?"
		args = append(args, sheet)
	}
	if pageID, ok := criteria["page_id"].(int); ok {
		query += " AND page_id = ?"
		args = append(args, pageID)
	}
	if status, ok := criteria["status"].(models.CommitStatus); ok && status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var commits []*models.Commit
	for rows.Next() {
		commit, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		commits = append(commits, commit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return commits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCommit(s scanner) (*models.Commit, error) {
	var (
		id        string
		sequence  int
		status    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
		c         models.Commit
	)

	err := s.Scan(&id, &sequence, &c.Sheet, &c.PageID, &c.Row, &c.Column, &c.Previous, &c.Value, &status, &c.Message,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	c.Status = models.CommitStatus(status)
	c.SetID(id)
	c.SetSequence(sequence)
	c.SetCreatedAt(createdAt)
	c.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		c.SetDeletedAt(&deletedAt.Time)
	}
	return &c, nil
}

// package repositories persists journal entities in SQLite.
//
// Each repository implements models.Repository[T] for one entity type, with soft deletes
// and a per-table sequence counter.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/gnx/internal/shared"
)

// sequenceTables maps entity tables to their single-row counter tables.
var sequenceTables = map[string]string{
	"commits": "commits_sequence",
}

// NextSequence increments and returns the counter for table in one statement.
//
// Sequence numbers order the journal and are shown as "#n" in history output.
func NextSequence(db *sql.DB, table string) (int, error) {
	counter, ok := sequenceTables[table]
	if !ok {
		return 0, fmt.Errorf("%w: no sequence for table %q", shared.ErrInvalidArgument, table)
	}

	var sequence int
	query := "UPDATE " + counter + " SET value = value + 1 WHERE id = 1 RETURNING value"
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}

// expectOne reports a missing or deleted row when result touched nothing.
func expectOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("commit not found or already deleted: %s", id)
	}
	return nil
}

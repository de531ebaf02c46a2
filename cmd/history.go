package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gnx/internal/models"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/urfave/cli/v3"
)

type commitView struct {
	ID        string `json:"id"`
	Sequence  int    `json:"sequence"`
	Sheet     string `json:"sheet"`
	PageID    int    `json:"page_id"`
	Cell      string `json:"cell,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Previous  string `json:"previous"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
}

func newCommitView(c *models.Commit) commitView {
	v := commitView{
		ID:        c.ID(),
		Sequence:  c.Sequence(),
		Sheet:     c.Sheet,
		PageID:    c.PageID,
		Status:    string(c.Status),
		Message:   c.Message,
		Previous:  c.Previous,
		Value:     c.Value,
		CreatedAt: c.CreatedAt().Format("2006-01-02 15:04:05"),
	}
	if c.Row > 0 && c.Column > 0 {
		v.Cell = fmt.Sprintf("R%dC%d", c.Row, c.Column)
	}
	return v
}

// History lists journaled commits, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	commits, err := r.Commits()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if sheet := cmd.String("sheet"); sheet != "" {
		criteria["sheet"] = sheet
	}
	if cmd.IsSet("id") {
		criteria["page_id"] = int(cmd.Int("id"))
	}
	if status := cmd.String("status"); status != "" {
		switch models.CommitStatus(status) {
		case models.CommitPending, models.CommitApplied, models.CommitFailed:
			criteria["status"] = models.CommitStatus(status)
		default:
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
		}
	}

	list, err := commits.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list commits: %w", err)
	}

	views := make([]commitView, len(list))
	for i, c := range list {
		views[i] = newCommitView(c)
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, true)
	}

	if len(views) == 0 {
		return r.writePlain("No commits recorded\n")
	}

	r.writePlainHeader(fmt.Sprintf("Story commits (%d)", len(views)))
	for _, v := range views {
		r.writePlain("#%d  %s  %s PageID %d  %s\n", v.Sequence, v.CreatedAt, v.Sheet, v.PageID, v.Status)
		if v.Message != "" {
			r.writePlain("    %s\n", v.Message)
		}
		r.writePlain("    %q → %q\n", shared.Truncate(v.Previous, 40), shared.Truncate(v.Value, 40))
	}
	return nil
}

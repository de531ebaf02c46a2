package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/gnx/internal/session"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/urfave/cli/v3"
)

// StorySet commits a new story for one row through the same controller the TUI uses.
func (r *Runner) StorySet(ctx context.Context, cmd *cli.Command) error {
	text, err := r.storyText(cmd)
	if err != nil {
		return err
	}

	s, err := r.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sheet, id := cmd.String("sheet"), int(cmd.Int("id"))
	if err := s.Select(ctx, sheet); err != nil {
		return err
	}
	if err := s.Goto(ctx, id); err != nil {
		return err
	}
	if m := s.Model(); !m.Detail {
		if m.Err != nil {
			return m.Err
		}
		return fmt.Errorf("%w: PageID %d in sheet %q", shared.ErrNoRow, id, sheet)
	}

	s.Edit(text)
	if !s.Model().Dirty {
		return r.writePlain("Story for PageID %d in %s is unchanged\n", id, sheet)
	}
	if err := s.Commit(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ %s\n", session.CommitNotice)
}

// storyText reads the new story from --text or --file.
func (r *Runner) storyText(cmd *cli.Command) (string, error) {
	text, file := cmd.String("text"), cmd.String("file")
	switch {
	case cmd.IsSet("text") && file != "":
		return "", fmt.Errorf("%w: cannot specify both --text and --file", shared.ErrInvalidArgument)
	case cmd.IsSet("text"):
		return text, nil
	case file == "":
		return "", fmt.Errorf("%w: either --text or --file must be provided", shared.ErrMissingArgument)
	}

	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read story: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

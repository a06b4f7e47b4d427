package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/poiesic/lomatch/dataset"
	"github.com/poiesic/lomatch/storage"
	"github.com/urfave/cli/v2"
)

func historyCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	cfg.Embedding.Enabled = new(bool)

	session, err := openSession(cfg, "")
	if err != nil {
		return err
	}
	defer session.Close()
	decisions := session.Decisions()

	id := c.String("session")
	if c.Bool("delete") {
		if id == "" {
			return fmt.Errorf("--delete requires --session")
		}
		if err := decisions.DeleteSession(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("session %q not found", id)
			}
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted session %s\n", id)
		return nil
	}

	if id != "" {
		rows, err := decisions.GetSessionDecisions(ctx, id)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("session %q not found", id)
		}
		return dataset.WriteDecisions(c.App.Writer, rows)
	}

	sessions, err := decisions.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.App.Writer, "No sessions recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tACCEPTED\tSKIPPED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.ID, s.StartedAt.Local().Format(time.DateTime), s.Accepted, s.Skipped)
	}
	return tw.Flush()
}

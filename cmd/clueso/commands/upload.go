package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/timmy/clueso/internal/client"
	"github.com/timmy/clueso/internal/domain"
)

// UploadAction uploads the file named by the first argument.
func UploadAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("upload: missing FILE argument")
	}

	api := client.New(cmd.String("server"), 10*time.Minute)
	resp, err := api.Upload(ctx, path)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Uploaded %s (%s)\n", resp.FileInfo.Name, resp.FileInfo.Size)
	fmt.Fprintf(w, "Job:   %s\n", resp.JobID)
	fmt.Fprintf(w, "Video: %s\n", resp.VideoURL)

	if !cmd.Bool("watch") {
		return nil
	}
	snap, err := pollJob(ctx, api, resp.JobID, cmd.Duration("interval"), w)
	if err != nil {
		return err
	}
	return jobOutcome(snap)
}

// JobsAction prints the server's job listing.
func JobsAction(ctx context.Context, cmd *cli.Command) error {
	api := client.New(cmd.String("server"), 30*time.Second)
	list, err := api.Jobs(ctx)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "%d jobs\n", list.Total)
	for _, j := range list.Jobs {
		fmt.Fprintf(w, "%-32s %-10s %2d steps  %s\n", j.ID, j.Status, j.StepsCount, j.VideoName)
	}
	return nil
}

func describe(snap domain.JobSnapshot) string {
	switch snap.Status {
	case domain.JobStatusCompleted:
		return fmt.Sprintf("completed: %q, %d steps in %dms", snap.TemplateTitle, snap.TotalSteps, snap.ProcessingTime)
	case domain.JobStatusFailed:
		return "failed: " + snap.Error
	default:
		return string(snap.Status)
	}
}

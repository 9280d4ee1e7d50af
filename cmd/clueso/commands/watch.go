package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/timmy/clueso/internal/client"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/playback"
	"github.com/timmy/clueso/internal/timecode"
)

const replayTick = 250 * time.Millisecond

// WatchAction polls a job and replays its steps.
func WatchAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("watch: missing JOB_ID argument")
	}

	w := cmd.Root().Writer
	api := client.New(cmd.String("server"), 30*time.Second)
	snap, err := pollJob(ctx, api, id, cmd.Duration("interval"), w)
	if err != nil {
		return err
	}
	if err := jobOutcome(snap); err != nil {
		return err
	}
	if cmd.Bool("no-replay") {
		return nil
	}

	for _, s := range snap.Steps {
		fmt.Fprintf(w, "  %d. [%s] %s\n", s.StepNumber, s.Timestamp, s.Text)
	}
	return replay(ctx, snap.Steps, replayOptions{
		speed:  cmd.Float("speed"),
		tick:   replayTick,
		jumpTo: int(cmd.Int("select")),
	}, w)
}

func pollJob(ctx context.Context, api *client.Client, id string, interval time.Duration, w io.Writer) (domain.JobSnapshot, error) {
	var last domain.JobStatus
	poller := client.NewPoller(api, interval)
	snap, err := poller.Poll(ctx, id, func(s domain.JobSnapshot) {
		if s.Status != last {
			fmt.Fprintf(w, "%s: %s\n", id, describe(s))
			last = s.Status
		}
	})
	if client.IsNotFound(err) {
		return snap, fmt.Errorf("job %s not found", id)
	}
	return snap, err
}

// jobOutcome turns a failed job into an error so scripts see a non-zero exit.
func jobOutcome(snap domain.JobSnapshot) error {
	if snap.Status != domain.JobStatusFailed {
		return nil
	}
	name := snap.OriginalName
	if name == "" {
		name = "FILE"
	}
	return fmt.Errorf("job %s failed: %s; retry with: clueso upload %s", snap.ID, snap.Error, name)
}

// clockPlayer is a player whose position advances with a simulated clock.
type clockPlayer struct {
	position float64
	playing  bool
}

func (p *clockPlayer) Seek(seconds float64) { p.position = seconds }

func (p *clockPlayer) Play() { p.playing = true }

type replayOptions struct {
	speed  float64
	tick   time.Duration
	jumpTo int
}

// replay plays the steps on a clockPlayer, printing every step switch, and
// stops one stride past the last step.
func replay(ctx context.Context, steps []domain.StepSnapshot, opts replayOptions, w io.Writer) error {
	if len(steps) == 0 {
		return nil
	}
	if opts.speed <= 0 {
		opts.speed = 1
	}

	player := &clockPlayer{playing: true}
	ps, err := playback.New(player, steps)
	if err != nil {
		return err
	}
	end, err := replayEnd(steps)
	if err != nil {
		return err
	}

	active, _ := ps.Active()
	fmt.Fprintf(w, "%s  step %d\n", timecode.Clock(player.position), active)
	if opts.jumpTo > 0 {
		if err := ps.Select(opts.jumpTo); err != nil {
			return err
		}
		active = opts.jumpTo
		fmt.Fprintf(w, "%s  step %d (selected)\n", timecode.Clock(player.position), active)
	}

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()
	for player.position < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if player.playing {
			player.position += opts.tick.Seconds() * opts.speed
		}
		if n, changed := ps.Observe(player.position); changed {
			fmt.Fprintf(w, "%s  step %d\n", timecode.Clock(player.position), n)
		}
	}
	fmt.Fprintln(w, "done")
	return nil
}

func replayEnd(steps []domain.StepSnapshot) (float64, error) {
	last := steps[len(steps)-1]
	sec, err := timecode.Parse(last.Timestamp)
	if err != nil {
		return 0, err
	}
	stride := 7.0
	if d, err := time.ParseDuration(last.Duration); err == nil && d > 0 {
		stride = d.Seconds()
	} else if n, err := strconv.Atoi(last.Duration); err == nil && n > 0 {
		stride = float64(n)
	}
	return float64(sec) + stride, nil
}

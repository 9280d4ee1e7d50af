package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/timmy/clueso/cmd/clueso/commands"
	"github.com/timmy/clueso/internal/client"
	"github.com/timmy/clueso/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := logger.LoadFromEnv()
	cfg.Format = "text"
	cfg.Output = os.Stderr
	logger.SetDefaultLogger(logger.New(cfg))
	defer logger.Sync()

	serverFlag := &cli.StringFlag{
		Name:    "server",
		Usage:   "backend base URL",
		Value:   "http://localhost:5000",
		Sources: cli.EnvVars("CLUESO_SERVER"),
	}

	app := &cli.Command{
		Name:  "clueso",
		Usage: "upload screen recordings and follow their tutorial steps",
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "upload a video and print the job id",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					serverFlag,
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "poll the job until it finishes",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "poll interval",
						Value: client.DefaultPollInterval,
					},
				},
				Action: commands.UploadAction,
			},
			{
				Name:      "watch",
				Usage:     "poll a job, then replay its steps against a simulated player",
				ArgsUsage: "JOB_ID",
				Flags: []cli.Flag{
					serverFlag,
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "poll interval",
						Value: client.DefaultPollInterval,
					},
					&cli.FloatFlag{
						Name:  "speed",
						Usage: "playback speed multiplier",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "select",
						Usage: "step to jump to before playing",
					},
					&cli.BoolFlag{
						Name:  "no-replay",
						Usage: "stop after the job finishes",
					},
				},
				Action: commands.WatchAction,
			},
			{
				Name:  "jobs",
				Usage: "list jobs known to the server",
				Flags: []cli.Flag{serverFlag},
				Action: commands.JobsAction,
			},
			{
				Name:  "check-key",
				Usage: "verify the OpenAI API key with a tiny request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "environment file path",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "model to call",
					},
					&cli.StringFlag{
						Name:    "base-url",
						Usage:   "OpenAI-compatible API base URL",
						Sources: cli.EnvVars("OPENAI_BASE_URL"),
					},
				},
				Action: commands.CheckKeyAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

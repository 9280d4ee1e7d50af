package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/timmy/clueso/internal/generator"
)

// CheckKeyAction verifies OPENAI_API_KEY with a single chat completion.
func CheckKeyAction(ctx context.Context, cmd *cli.Command) error {
	// .env is optional
	_ = godotenv.Load(cmd.String("env"))

	w := cmd.Root().Writer
	key := os.Getenv("OPENAI_API_KEY")
	fmt.Fprintln(w, "Testing your OpenAI API key...")
	fmt.Fprintf(w, "Key starts with: %s\n", generator.MaskKey(key))

	check, err := generator.NewKeyCheck(key, cmd.String("base-url"), cmd.String("model"))
	if err != nil {
		return err
	}

	res, err := check.Run(ctx)
	if err != nil {
		var kerr *generator.KeyCheckError
		if errors.As(err, &kerr) && len(kerr.Hints) > 0 {
			fmt.Fprintln(w, "Tips:")
			for i, h := range kerr.Hints {
				fmt.Fprintf(w, "%d. %s\n", i+1, h)
			}
		}
		return err
	}

	fmt.Fprintln(w, "OpenAI API is working!")
	fmt.Fprintf(w, "Response: %s\n", res.Reply)
	fmt.Fprintf(w, "Model used: %s\n", res.Model)
	return nil
}

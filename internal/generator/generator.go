package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/timecode"
)

// Generator turns an uploaded video into tutorial steps and a transcript.
// Failures are returned as *domain.GenerationError.
type Generator interface {
	Generate(ctx context.Context, video domain.Video) (domain.GenerationResult, error)
	// Mode names the variant, e.g. "simulated" or "openai".
	Mode() string
}

// Step colors, cycled by ordinal.
var palette = []string{"3b82f6", "10b981", "8b5cf6", "f59e0b", "ef4444", "06b6d4", "8b5cf6", "ec4899"}

var narration = []string{
	"Alright, let me show you how to",
	"First thing you'll want to do is",
	"The key here is to make sure you",
	"Next, we're going to",
	"This part is important because",
	"Once that's done, you can",
	"Finally, to wrap things up",
	"And that's basically it for",
}

const defaultVideoName = "screen_recording.mp4"

// Schedule places step i at BaseOffset + i*Stride.
type Schedule struct {
	BaseOffset time.Duration
	Stride     time.Duration
}

// DefaultSchedule is 5s then every 7s.
var DefaultSchedule = Schedule{BaseOffset: 5 * time.Second, Stride: 7 * time.Second}

func (s Schedule) offset(i int) int {
	return int((s.BaseOffset + time.Duration(i)*s.Stride) / time.Second)
}

// LayoutSteps binds instructions to the schedule.
func LayoutSteps(instructions []string, sched Schedule) []domain.Step {
	steps := make([]domain.Step, 0, len(instructions))
	for i, text := range instructions {
		n := i + 1
		color := palette[i%len(palette)]
		steps = append(steps, domain.Step{
			Number:     n,
			Timestamp:  timecode.Format(sched.offset(i)),
			Text:       text,
			Screenshot: fmt.Sprintf("https://placehold.co/600x400/%s/ffffff?text=Step+%d&font=roboto", color, n),
			Thumbnail:  fmt.Sprintf("https://placehold.co/300x200/%s/ffffff?text=Step+%d", color, n),
			Color:      color,
			Type:       domain.StepTypes[i%len(domain.StepTypes)],
			Duration:   sched.Stride,
		})
	}
	return steps
}

// Transcript narrates the template with a timecoded line per step.
func Transcript(tpl Template, videoName string, sched Schedule) string {
	if videoName == "" {
		videoName = defaultVideoName
	}
	title := strings.ToLower(tpl.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "# Transcript: %s\n\n", tpl.Title)
	fmt.Fprintf(&b, "Video: %s\n", videoName)
	fmt.Fprintf(&b, "Category: %s\n\n", tpl.Category)
	fmt.Fprintf(&b, "**NARRATOR:** Today I'll show you how to %s. ", title)
	b.WriteString("This is a straightforward process that should take just a few minutes.\n\n")

	for i, step := range tpl.Steps {
		phrase := narration[i%len(narration)]
		fmt.Fprintf(&b, "**Step %d (%s):** %s %s.\n", i+1, timecode.Clock(float64(sched.offset(i))), phrase, strings.ToLower(step))
		if i%3 == 0 {
			b.WriteString("[brief pause]\n")
		}
	}

	fmt.Fprintf(&b, "\n**CONCLUSION:** And that's how you %s. Thanks for watching!\n", title)
	return b.String()
}

// EnhancedScript renders the tutorial as a markdown article.
func EnhancedScript(tpl Template, steps []domain.Step, sched Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## Overview\n%s\n\n## Steps\n", tpl.Title, tpl.Description)
	for i, s := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", s.Number, s.Text)
	}
	total := time.Duration(len(steps)) * sched.Stride
	fmt.Fprintf(&b, "\n\n## Summary\nComplete this tutorial in approximately %d seconds.", int(total/time.Second))
	return b.String()
}

// Build assembles a full result from a template.
func Build(tpl Template, video domain.Video, sched Schedule, mode string) domain.GenerationResult {
	steps := LayoutSteps(tpl.Steps, sched)
	return domain.GenerationResult{
		Steps:          steps,
		Transcript:     Transcript(tpl, video.OriginalName, sched),
		EnhancedScript: EnhancedScript(tpl, steps, sched),
		Template: domain.TemplateInfo{
			ID:          tpl.ID,
			Title:       tpl.Title,
			Category:    tpl.Category,
			Description: tpl.Description,
		},
		AIMode: mode,
	}
}

// New selects the generator variant named by cfg.Generator.Mode.
func New(cfg *config.Config) (Generator, error) {
	sched := Schedule{BaseOffset: cfg.Generator.BaseOffset, Stride: cfg.Generator.Stride}
	switch cfg.Generator.Mode {
	case config.GeneratorModeSimulated:
		return NewSimulator(SimulatorConfig{
			Templates: DefaultTemplates,
			Schedule:  sched,
			MinDelay:  cfg.Generator.MinDelay,
			MaxDelay:  cfg.Generator.MaxDelay,
			Seed:      cfg.Generator.Seed,
		}), nil
	case config.GeneratorModeOpenAI:
		return NewOpenAIGenerator(&OpenAIConfig{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Timeout:  cfg.OpenAI.Timeout,
			Schedule: sched,
		})
	default:
		return nil, fmt.Errorf("unknown generator mode %q", cfg.Generator.Mode)
	}
}

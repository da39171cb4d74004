package route

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgnsrekt/navvoice/voice"
)

// Runner replays route steps against an instruction player.
type Runner struct {
	player  voice.InstructionPlayer
	limiter *rate.Limiter

	// OnStep is called before each step is applied.
	OnStep func(Step)
}

// NewRunner creates a runner that applies at most stepsPerSecond steps per
// second, allowing bursts of burst steps.
func NewRunner(player voice.InstructionPlayer, stepsPerSecond float64, burst int) *Runner {
	if burst < 1 {
		burst = 1
	}
	return &Runner{
		player:  player,
		limiter: rate.NewLimiter(rate.Limit(stepsPerSecond), burst),
	}
}

// Run applies steps in order until they are exhausted or ctx is done.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		if r.OnStep != nil {
			r.OnStep(step)
		}
		if err := r.apply(ctx, step); err != nil {
			return fmt.Errorf("line %d: %w", step.Line, err)
		}
	}
	return nil
}

func (r *Runner) apply(ctx context.Context, step Step) error {
	switch step.Action {
	case ActionSay:
		return r.player.Speak(step.Text)
	case ActionMute:
		r.player.SetMuted(true)
	case ActionUnmute:
		r.player.SetMuted(false)
	case ActionOffRoute:
		r.player.OnOffRoute()
	case ActionWait:
		timer := time.NewTimer(step.Wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

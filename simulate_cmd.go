package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/navvoice/internal/route"
	"github.com/dgnsrekt/navvoice/voice/engines"
)

var (
	simulateWatch bool
	simulateDrain time.Duration

	simulateCmd = &cobra.Command{
		Use:   "simulate SCRIPT",
		Short: "Replay a scripted route through the speech engine",
		Long: paragraph(fmt.Sprintf("\n%s a route script, one step per line: instructions to speak, mute and unmute toggles, off-route events and waits. Scripts ending in .zst are decompressed, and - reads from stdin.", keyword("Replay"))),
		Example: paragraph(`navvoice simulate commute.route
navvoice simulate --rate 2 --watch commute.route.zst`),
		Args: cobra.ExactArgs(1),
		RunE: runSimulate,
	}
)

func init() {
	flags := simulateCmd.Flags()
	flags.Float64("rate", 1.0, "route steps applied per second")
	flags.Int("burst", 1, "route steps that may be applied back to back")
	flags.BoolVarP(&simulateWatch, "watch", "w", false, "apply mute changes from the config file while replaying")
	flags.DurationVar(&simulateDrain, "drain", 30*time.Second, "how long to wait for queued instructions after the last step")

	_ = viper.BindPFlag("voice.simulate.steps_per_second", flags.Lookup("rate"))
	_ = viper.BindPFlag("voice.simulate.burst", flags.Lookup("burst"))
}

func runSimulate(cmd *cobra.Command, args []string) error {
	rc, err := route.Open(args[0])
	if err != nil {
		return err
	}
	steps, err := route.Parse(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("unable to parse %s: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	players, err := engines.NewPlayers(ctx, cfg, log.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := players.Shutdown(); err != nil {
			log.Warn("Could not shut down speech engine", "error", err)
		}
	}()

	if err := players.WaitReady(ctx); err != nil {
		return fmt.Errorf("speech engine did not become ready: %w", err)
	}
	if !players.CanSpeak() && !players.IsMuted() {
		log.Warn("Speech engine cannot speak, instructions will be skipped", "engine", cfg.Engine, "language", cfg.Language)
	}

	printer := newEventPrinter(cmd.OutOrStdout())
	players.SetListener(printer)

	if simulateWatch {
		watchMuted(players, printer.Flush)
	}

	runner := route.NewRunner(players, cfg.Simulate.StepsPerSecond, cfg.Simulate.Burst)
	runner.OnStep = func(step route.Step) {
		trackStep(printer, players, step)
	}

	log.Debug("Replaying route", "script", args[0], "steps", len(steps), "rate", cfg.Simulate.StepsPerSecond)
	if err := runner.Run(ctx, steps); err != nil {
		printer.Flush()
		return err
	}

	drain, cancel := context.WithTimeout(ctx, simulateDrain)
	defer cancel()
	select {
	case <-printer.Idle():
	case <-drain.Done():
		printer.Flush()
		log.Warn("Gave up waiting for queued instructions", "after", simulateDrain)
	}

	log.Info("Route finished", "steps", len(steps), "player", players.Status())
	return nil
}

// speechState is the part of a player trackStep consults.
type speechState interface {
	CanSpeak() bool
	IsMuted() bool
}

// trackStep prints step and keeps the printer's pending instructions in
// line with the callbacks the player will deliver. Skipped instructions
// are never queued, and mute and off-route drop everything the engine is
// about to flush.
func trackStep(printer *eventPrinter, player speechState, step route.Step) {
	printer.Step(step)

	switch step.Action {
	case route.ActionSay:
		if strings.TrimSpace(step.Text) != "" && player.CanSpeak() && !player.IsMuted() {
			printer.Queued(step.Text)
		}
	case route.ActionMute, route.ActionOffRoute:
		printer.Flush()
	}
}

type mutable interface {
	IsMuted() bool
	SetMuted(bool)
}

// watchMuted applies voice.muted from the config file whenever it is
// written. onMute runs after the player has been muted.
func watchMuted(player mutable, onMute func()) {
	if viper.ConfigFileUsed() == "" {
		log.Warn("No config file to watch")
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		muted := viper.GetBool("voice.muted")
		if muted == player.IsMuted() {
			return
		}
		log.Info("Config changed", "file", e.Name, "muted", muted)
		player.SetMuted(muted)
		if muted && onMute != nil {
			onMute()
		}
	})
	viper.WatchConfig()
}

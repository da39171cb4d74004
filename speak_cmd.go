package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/navvoice/voice"
	"github.com/dgnsrekt/navvoice/voice/engines"
)

var (
	speakTimeout time.Duration

	speakCmd = &cobra.Command{
		Use:   "speak [INSTRUCTION]",
		Short: "Speak a single instruction, or one per line from stdin",
		Long: paragraph(fmt.Sprintf("\n%s an instruction through the configured engine and wait until it has been spoken. Without arguments, every line on stdin is queued as its own instruction.", keyword("Speak"))),
		Example: paragraph(`navvoice speak "In 200 meters, turn left"
navvoice speak --engine piper --language de "Links abbiegen"
cat instructions.txt | navvoice speak`),
		RunE: runSpeak,
	}
)

func init() {
	speakCmd.Flags().DurationVar(&speakTimeout, "timeout", 2*time.Minute, "give up waiting for speech after this long")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	texts, err := instructionsFromArgs(args, os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, speakTimeout)
	defer cancel()

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

	printer := newEventPrinter(cmd.OutOrStdout())
	players.SetListener(printer)

	if players.IsMuted() {
		fmt.Fprintln(cmd.OutOrStdout(), faint("Voice instructions are muted, nothing to speak."))
		return nil
	}
	if !players.CanSpeak() {
		return fmt.Errorf("%w: %s cannot speak %q", voice.ErrEngineUnavailable, cfg.Engine, cfg.Language)
	}

	for _, text := range texts {
		printer.Queued(text)
		if err := players.Speak(text); err != nil {
			printer.Flush()
			return err
		}
	}

	select {
	case <-printer.Idle():
		return nil
	case <-ctx.Done():
		players.OnOffRoute()
		return ctx.Err()
	}
}

// instructionsFromArgs joins args into one instruction, or reads one
// instruction per non-blank line from stdin when no args are given.
func instructionsFromArgs(args []string, stdin *os.File) ([]string, error) {
	if len(args) > 0 {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return nil, errors.New("missing instruction")
		}
		return []string{text}, nil
	}

	if term.IsTerminal(int(stdin.Fd())) {
		return nil, errors.New("missing instruction: pass it as an argument or pipe it on stdin")
	}
	return readInstructions(stdin)
}

func readInstructions(r io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read instructions: %w", err)
	}
	if len(texts) == 0 {
		return nil, errors.New("missing instruction")
	}
	return texts, nil
}

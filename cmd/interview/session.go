package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/mockview/internal/generator"
	"github.com/kiranshivaraju/mockview/internal/session"
	"github.com/kiranshivaraju/mockview/internal/speech"
	"github.com/kiranshivaraju/mockview/internal/speech/console"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

// Typed-mode commands, entered on a line of their own.
const (
	cmdBack = ":back"
	cmdQuit = ":quit"
)

var errQuit = errors.New("session left before completion")

func (a *app) runSession(ctx context.Context, args []string) error {
	fs := a.flagSet("run")
	textOnly := fs.Bool("text-only", false, "type the answers instead of using the speech engine")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: run takes exactly one interview id", errUsage)
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	ctrl := session.NewController(a.api,
		session.WithLogger(a.log.Named("session")),
		session.WithRedirectDelay(a.cfg.Session.RedirectDelay),
		session.OnComplete(a.printFeedback),
	)
	if err := ctrl.Load(ctx, id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return fmt.Errorf("interview %s not found", id)
		}
		return describe(err)
	}

	if ctrl.Phase() == session.Completed {
		fmt.Fprintln(a.out, "This interview is already completed.")
		if f := ctrl.Feedback(); f != nil {
			a.printFeedback(*f)
		}
		return nil
	}
	if err := ctrl.Start(ctx); err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Starting interview with %d questions.\n", ctrl.Total())

	listener := console.NewListener(a.in, console.WithPrompt(a.out, "You: "))
	if !*textOnly {
		if err := a.voiceRound(ctx, ctrl, listener); err != nil {
			return err
		}
	}
	if ctrl.Phase() != session.Completed {
		if err := a.typedRound(ctx, ctrl, listener); err != nil {
			if errors.Is(err, errQuit) {
				fmt.Fprintln(a.out, "Progress saved. Resume with: interview run", id)
				return nil
			}
			return err
		}
	}

	delay := ctrl.RedirectDelay()
	fmt.Fprintf(a.out, "Returning to your interviews in %s.\n", delay)
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
	return a.list(ctx, nil)
}

// voiceRound lets the speech engine ask the remaining questions. When the
// engine gives up, typed answers take over from the same question.
func (a *app) voiceRound(ctx context.Context, ctrl *session.Controller, listener *console.Listener) error {
	speaker := console.NewSpeaker(a.out,
		console.WithPace(console.PaceForRate(a.cfg.Speech.Rate)),
		console.WithVoices(a.cfg.Speech.Voices...),
	)
	engine := speech.NewEngine(speaker, listener,
		speech.WithDelays(a.cfg.Speech.ListenDelay, a.cfg.Speech.NextQuestionDelay),
		speech.WithLogger(a.log.Named("speech")),
	)

	if err := ctrl.StartVoice(ctx, engine); err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			fmt.Fprintln(a.out, "Voice is unavailable: type your answers instead.")
			return nil
		}
		return describe(err)
	}

	err := engine.Wait()
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, speech.ErrNoSpeech):
		fmt.Fprintln(a.out, "No answer heard: continue by typing.")
	default:
		fmt.Fprintf(a.out, "Voice stopped (%v): continue by typing.\n", err)
	}
	return nil
}

// typedRound asks each remaining question and reads one answer line per
// question. An empty line skips the question.
func (a *app) typedRound(ctx context.Context, ctrl *session.Controller, listener *console.Listener) error {
	fmt.Fprintf(a.out, "Type %s to revisit the previous question or %s to stop.\n", cmdBack, cmdQuit)

	for ctrl.Phase() != session.Completed {
		fmt.Fprintf(a.out, "\n[%d/%d %.0f%%] Interviewer: %s\n",
			ctrl.Index()+1, ctrl.Total(), ctrl.Progress(), ctrl.CurrentQuestion())
		if prev := ctrl.CurrentAnswer(); prev != "" {
			fmt.Fprintf(a.out, "Saved answer: %s\n(press enter to keep it)\n", prev)
		}

		line, err := listener.Recognize(ctx)
		switch {
		case errors.Is(err, speech.ErrNoSpeech):
			line = ""
		case errors.Is(err, speech.ErrUnavailable):
			return fmt.Errorf("input closed before the interview finished")
		case err != nil:
			return err
		}

		switch strings.TrimSpace(line) {
		case cmdQuit:
			return errQuit
		case cmdBack:
			ctrl.Retreat()
			continue
		case "":
		default:
			if err := ctrl.SetAnswer(line); err != nil {
				return err
			}
		}

		if _, err := ctrl.Advance(ctx); err != nil {
			fmt.Fprintf(a.out, "Could not save your answer: %v\n", describe(err))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

func (a *app) printFeedback(f models.Feedback) {
	fmt.Fprintf(a.out, "\nInterview complete. Rating: %d/10 (%s)\n", f.Rating, generator.RatingLabel(f.Rating))
	fmt.Fprintln(a.out, f.Feedback)
	if len(f.Suggestions) > 0 {
		fmt.Fprintln(a.out, "Suggestions:")
		for _, s := range f.Suggestions {
			fmt.Fprintf(a.out, "  - %s\n", s)
		}
	}
}

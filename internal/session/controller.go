// Package session runs the spoken dialogue loop: utterances in, spoken
// responses and side effects out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/parley/internal/audio"
	"github.com/rbright/parley/internal/dialogue"
	"github.com/rbright/parley/internal/ipc"
	"github.com/rbright/parley/internal/recognition"
)

// Phase is the loop's coarse activity, reported over IPC.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseListening  Phase = "listening"
	PhaseResponding Phase = "responding"
	PhaseStopped    Phase = "stopped"
)

// Result summarizes one Run.
type Result struct {
	// Closed reports the user ended the dialogue by voice.
	Closed bool
	// Interrupted reports the run ended because ctx was cancelled.
	Interrupted bool
	// Stopped reports a stop request arrived over IPC.
	Stopped bool
	Err     error

	Utterances     int
	Heard          int
	Responses      int
	LookupFailures int
	SpeechFailures int
	LinksOpened    int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Controller owns the single dialogue goroutine.
type Controller struct {
	logger  *slog.Logger
	stream  Utterances
	handler Handler
	speaker Speaker
	opener  LinkOpener
	console Console
	cues    Cues

	mu       sync.Mutex
	phase    Phase
	turns    int
	lastCmd  dialogue.Command
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewController constructs a controller with no-op fallbacks for optional
// collaborators. stream and handler are required.
func NewController(
	logger *slog.Logger,
	stream Utterances,
	handler Handler,
	speaker Speaker,
	opener LinkOpener,
	console Console,
	cues Cues,
) *Controller {
	if speaker == nil {
		speaker = noopSpeaker{}
	}
	if opener == nil {
		opener = noopOpener{}
	}
	if console == nil {
		console = noopConsole{}
	}
	return &Controller{
		logger:  logger,
		stream:  stream,
		handler: handler,
		speaker: speaker,
		opener:  opener,
		console: console,
		cues:    cues,
		phase:   PhaseStarting,
		stopCh:  make(chan struct{}),
	}
}

// Phase returns the current activity snapshot.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Run speaks the intro and processes utterances one at a time until the user
// says close, ctx is cancelled, or a stop is requested. The stream is stopped
// before Run returns.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-ctx.Done():
			c.stopStream("interrupt")
		case <-c.stopCh:
			c.stopStream("stop request")
		case <-done:
		}
		return nil
	})
	g.Go(func() error {
		defer close(done)
		return c.loop(ctx, &result)
	})

	result.Err = g.Wait()
	c.stopStream("session end")
	c.setPhase(PhaseStopped)

	if !result.Closed {
		result.Interrupted = ctx.Err() != nil
		select {
		case <-c.stopCh:
			result.Stopped = !result.Interrupted
		default:
		}
	}
	result.FinishedAt = time.Now()
	return result
}

func (c *Controller) loop(ctx context.Context, result *Result) error {
	c.respond(ctx, result, dialogue.IntroText)
	c.listen(ctx)

	for {
		utterance, err := c.stream.Next(ctx)
		if err != nil {
			if errors.Is(err, recognition.ErrStreamClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next utterance: %w", err)
		}
		result.Utterances++

		out := c.handler.Handle(ctx, utterance)
		c.record(out.Command)
		if !out.Heard {
			c.logDebug("utterance ignored", "utterance", utterance)
			continue
		}

		c.setPhase(PhaseResponding)
		result.Heard++
		c.console.User(utterance)
		c.logInfo("utterance handled", "command", string(out.Command), "responses", len(out.Responses))

		if out.Err != nil {
			result.LookupFailures++
			c.logWarn("lookup failed", "utterance", utterance, "error", out.Err.Error())
			c.chime(ctx, c.cues.Error)
		}

		for _, text := range out.Responses {
			c.respond(ctx, result, text)
		}

		if out.OpenLink != "" {
			if err := c.opener.Open(ctx, out.OpenLink); err != nil {
				c.logWarn("open link failed", "url", out.OpenLink, "error", err.Error())
			} else {
				result.LinksOpened++
			}
		}

		if out.Terminate {
			c.chime(ctx, c.cues.Farewell)
			result.Closed = true
			return nil
		}

		if out.Command != dialogue.CommandHello {
			c.console.Prompt()
		}
		c.listen(ctx)
	}
}

func (c *Controller) respond(ctx context.Context, result *Result, text string) {
	c.console.Assistant(text)
	result.Responses++
	if err := c.speaker.Say(ctx, text); err != nil {
		result.SpeechFailures++
		c.logWarn("speak response failed", "error", err.Error())
	}
}

func (c *Controller) listen(ctx context.Context) {
	c.chime(ctx, c.cues.Listening)
	c.setPhase(PhaseListening)
}

func (c *Controller) chime(ctx context.Context, pcm audio.PCM) {
	if len(pcm.Samples) == 0 {
		return
	}
	if err := c.speaker.Chime(ctx, pcm); err != nil {
		c.logWarn("play cue failed", "error", err.Error())
	}
}

// Handle serves IPC commands for the active session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		c.mu.Lock()
		defer c.mu.Unlock()
		msg := fmt.Sprintf("turns=%d", c.turns)
		if c.lastCmd != "" {
			msg += fmt.Sprintf(" last=%s", c.lastCmd)
		}
		return ipc.Response{OK: true, State: string(c.phase), Message: msg}
	case "stop":
		return c.requestStop()
	default:
		return ipc.Response{OK: false, State: string(c.Phase()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) requestStop() ipc.Response {
	phase := c.Phase()
	if phase == PhaseStopped {
		return ipc.Response{OK: false, State: string(phase), Error: "session already stopped"}
	}

	requested := false
	c.stopOnce.Do(func() {
		close(c.stopCh)
		requested = true
	})
	if !requested {
		return ipc.Response{OK: true, State: string(phase), Message: "stop already requested"}
	}
	return ipc.Response{OK: true, State: string(phase), Message: "stop requested"}
}

func (c *Controller) stopStream(reason string) {
	if err := c.stream.Stop(); err != nil {
		c.logWarn("stop recognition stream failed", "reason", reason, "error", err.Error())
	}
}

func (c *Controller) setPhase(phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phase
}

func (c *Controller) record(cmd dialogue.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns++
	c.lastCmd = cmd
}

func (c *Controller) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Controller) logInfo(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

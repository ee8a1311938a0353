package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"shopbot/lib/sl"
	"shopbot/pkg/metrics"
)

type Config struct {
	// ProgressEvery bounds the number of status edits: one edit per this
	// many attempts. Zero falls back to 5.
	ProgressEvery int
	// RatePerSec limits recipient sends per second; zero means unlimited.
	RatePerSec int
}

// Runner executes broadcasts over an injected Transport.
type Runner struct {
	transport     Transport
	log           *slog.Logger
	limiter       *rate.Limiter
	progressEvery int
}

func NewRunner(transport Transport, log *slog.Logger, cfg Config) *Runner {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 5
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Runner{
		transport:     transport,
		log:           log.With(sl.Module("broadcast")),
		limiter:       limiter,
		progressEvery: cfg.ProgressEvery,
	}
}

// Run executes one broadcast and always leaves a report in the admin's
// chat: the full delivery report after a completed loop, or a partial one
// when the run could not be established or was interrupted. It never
// returns an error; the outcome tally is the result.
func (r *Runner) Run(ctx context.Context, run Run) Outcome {
	runID := uuid.NewString()
	log := r.log.With(slog.String("run", runID))

	r.cleanup(ctx, log, run)

	recipients := make([]string, 0, len(run.Recipients))
	for _, id := range run.Recipients {
		if id == run.AdminID {
			continue
		}
		recipients = append(recipients, id)
	}
	outcome := Outcome{Total: len(recipients)}

	statusID, err := r.transport.SendText(ctx, run.StatusChat, "<b>Sending broadcast...</b>", htmlOpts())
	if err != nil {
		// Without a status message there is nothing to edit progress into;
		// abort the run and surface a partial report instead.
		log.Error("posting status message", sl.Err(err))
		r.partialReport(ctx, log, run, 0, outcome)
		return outcome
	}

	log.Info("broadcast started",
		slog.Int("recipients", outcome.Total),
		slog.String("content", run.Content.Describe()),
	)

	for i, chatID := range recipients {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				// Context gone mid-run: report what we have.
				log.Error("broadcast interrupted", sl.Err(err))
				r.partialReport(ctx, log, run, statusID, outcome)
				return outcome
			}
		}

		if err := r.deliver(ctx, chatID, run.Content); err != nil {
			outcome.Failed++
			metrics.BroadcastSends.WithLabelValues("failed").Inc()
			log.Warn("delivery failed", slog.String("chat", chatID), sl.Err(err))
		} else {
			outcome.Success++
			metrics.BroadcastSends.WithLabelValues("ok").Inc()
		}

		attempted := i + 1
		if attempted%r.progressEvery == 0 {
			progress := fmt.Sprintf("<b>Sending broadcast...</b>\n\nProgress: %d/%d", attempted, outcome.Total)
			if err := r.transport.EditText(ctx, run.StatusChat, statusID, progress, htmlOpts()); err != nil {
				log.Warn("updating progress", sl.Err(err))
			}
		}
	}

	report := formatReport(run.Content, outcome)
	if err := r.transport.EditText(ctx, run.StatusChat, statusID, report, htmlOpts()); err != nil {
		log.Warn("editing final report", sl.Err(err))
		if _, err := r.transport.SendText(ctx, run.StatusChat, report, htmlOpts()); err != nil {
			log.Error("sending final report", sl.Err(err))
		}
	}

	log.Info("broadcast finished",
		slog.Int("success", outcome.Success),
		slog.Int("failed", outcome.Failed),
		slog.Int("total", outcome.Total),
	)
	return outcome
}

// ReportFailure leaves a partial report for a run that failed before it
// could start, e.g. when the recipient list could not be retrieved. The
// run's source messages are still cleaned up.
func (r *Runner) ReportFailure(ctx context.Context, run Run) {
	log := r.log.With(slog.String("run", uuid.NewString()))
	r.cleanup(ctx, log, run)
	r.partialReport(ctx, log, run, 0, Outcome{})
}

func (r *Runner) deliver(ctx context.Context, chatID string, content Content) error {
	if content.IsPhoto() {
		_, err := r.transport.SendPhoto(ctx, chatID, content.PhotoID, content.Caption, &SendOptions{
			CaptionEntities: content.CaptionEntities,
		})
		return err
	}
	_, err := r.transport.SendText(ctx, chatID, content.Text, &SendOptions{
		Entities: content.Entities,
	})
	return err
}

// cleanup deletes the admin's source message and the instruction prompt.
// Both deletions are cosmetic; failures are logged and ignored.
func (r *Runner) cleanup(ctx context.Context, log *slog.Logger, run Run) {
	if run.SourceMessageID != 0 {
		if err := r.transport.DeleteMessage(ctx, run.StatusChat, run.SourceMessageID); err != nil {
			log.Warn("deleting source message", sl.Err(err))
		}
	}
	if run.InstructionMessageID != 0 {
		if err := r.transport.DeleteMessage(ctx, run.StatusChat, run.InstructionMessageID); err != nil {
			log.Warn("deleting instruction message", sl.Err(err))
		}
	}
}

// partialReport edits the status message into a partial report, or sends
// a fresh message when no status message exists.
func (r *Runner) partialReport(ctx context.Context, log *slog.Logger, run Run, statusID int64, outcome Outcome) {
	report := formatPartialReport(run.Content, outcome)
	if statusID != 0 {
		if err := r.transport.EditText(ctx, run.StatusChat, statusID, report, htmlOpts()); err == nil {
			return
		}
	}
	if _, err := r.transport.SendText(ctx, run.StatusChat, report, htmlOpts()); err != nil {
		log.Error("sending partial report", sl.Err(err))
	}
}

func formatReport(content Content, outcome Outcome) string {
	return fmt.Sprintf(
		"<b>Broadcast complete</b>\n\n"+
			"<b>Delivery report:</b>\n"+
			"• Message: <i>%s</i>\n"+
			"• Delivered: %d\n"+
			"• Failed: %d\n"+
			"• Total: %d",
		content.Describe(), outcome.Success, outcome.Failed, outcome.Success+outcome.Failed,
	)
}

func formatPartialReport(content Content, outcome Outcome) string {
	return fmt.Sprintf(
		"<b>The broadcast was interrupted.</b>\n\n"+
			"Sent before the interruption:\n"+
			"• Message: <i>%s</i>\n"+
			"• Delivered: %d\n"+
			"• Failed: %d",
		content.Describe(), outcome.Success, outcome.Failed,
	)
}

func htmlOpts() *SendOptions {
	return &SendOptions{ParseMode: "HTML"}
}

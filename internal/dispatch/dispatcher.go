package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tarminik/tg-ai-gen/pkg/logx"
)

// Generator produces content for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sender delivers text to a chat. Destination validation (membership, admin
// rights, reachability) is the transport's problem, not the dispatcher's.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Dispatcher drives the generate-then-send pipeline over a list of tasks.
type Dispatcher struct {
	gen    Generator
	sender Sender
	log    logx.Logger
}

func New(gen Generator, sender Sender, log logx.Logger) *Dispatcher {
	return &Dispatcher{gen: gen, sender: sender, log: log}
}

// Run processes tasks strictly in order, one at a time. One task's failure
// never halts the run; its error is recorded and the next task is attempted.
// Sequential execution keeps at most one completion call and one delivery in
// flight, bounding load on both APIs. A bounded-concurrency variant would have
// to keep this same contract: one outcome per task, outcomes in input order.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task) Report {
	rep := Report{
		RunID:     uuid.NewString(),
		Outcomes:  make([]Outcome, 0, len(tasks)),
		StartedAt: time.Now(),
	}
	log := d.log.With(logx.String("run", rep.RunID))
	log.Info("run started", logx.Int("channels", len(tasks)))

	for _, t := range tasks {
		rep.Outcomes = append(rep.Outcomes, d.runOne(ctx, log, t))
	}
	rep.FinishedAt = time.Now()

	fields := []logx.Field{
		logx.Int("total", len(rep.Outcomes)),
		logx.Int("failed", rep.Failed()),
		logx.Duration("dur", rep.FinishedAt.Sub(rep.StartedAt)),
	}
	if rep.Failed() > 0 {
		log.Warn("run finished with failures", fields...)
	} else {
		log.Info("run finished", fields...)
	}
	return rep
}

func (d *Dispatcher) runOne(ctx context.Context, log logx.Logger, t Task) Outcome {
	text, err := d.gen.Generate(ctx, t.Prompt)
	if err != nil {
		log.Warn("generation failed", logx.Int64("chat_id", t.ChannelID), logx.Err(err))
		return Outcome{ChannelID: t.ChannelID, Status: StatusFailure, Detail: err.Error()}
	}

	// Delivery is attempted only after generation fully succeeded; text is
	// never partially delivered.
	if err := d.sender.SendText(ctx, t.ChannelID, text); err != nil {
		log.Warn("delivery failed", logx.Int64("chat_id", t.ChannelID), logx.Err(err))
		return Outcome{ChannelID: t.ChannelID, Status: StatusFailure, Detail: err.Error()}
	}

	log.Info("message sent", logx.Int64("chat_id", t.ChannelID), logx.Int("chars", len(text)))
	return Outcome{ChannelID: t.ChannelID, Status: StatusSuccess}
}

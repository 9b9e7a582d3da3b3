package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tarminik/tg-ai-gen/pkg/logx"
)

type fakeGenerator struct {
	// failOn maps a prompt to the error Generate should return for it.
	failOn map[string]error
	calls  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls = append(g.calls, prompt)
	if err, ok := g.failOn[prompt]; ok {
		return "", err
	}
	return "text for " + prompt, nil
}

type fakeSender struct {
	failOn map[int64]error
	sent   map[int64]string
}

func (s *fakeSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err, ok := s.failOn[chatID]; ok {
		return err
	}
	if s.sent == nil {
		s.sent = make(map[int64]string)
	}
	s.sent[chatID] = text
	return nil
}

func newTestDispatcher(gen *fakeGenerator, sender *fakeSender) *Dispatcher {
	return New(gen, sender, logx.Nop())
}

func TestRunReportMatchesTaskOrder(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		{ChannelID: 10, Prompt: "a"},
		{ChannelID: 20, Prompt: "b"},
		{ChannelID: 30, Prompt: "c"},
	}
	d := newTestDispatcher(&fakeGenerator{}, &fakeSender{})

	rep := d.Run(context.Background(), tasks)
	if len(rep.Outcomes) != len(tasks) {
		t.Fatalf("outcomes = %d, want %d", len(rep.Outcomes), len(tasks))
	}
	for i, o := range rep.Outcomes {
		if o.ChannelID != tasks[i].ChannelID {
			t.Fatalf("outcome %d is for channel %d, want %d", i, o.ChannelID, tasks[i].ChannelID)
		}
		if o.Status != StatusSuccess {
			t.Fatalf("outcome %d = %s, want success", i, o.Status)
		}
	}
	if rep.RunID == "" {
		t.Fatal("expected a run id")
	}
}

func TestRunIsolatesGenerationFailure(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		{ChannelID: 1, Prompt: "a"},
		{ChannelID: 2, Prompt: "b"},
		{ChannelID: 3, Prompt: "c"},
	}
	gen := &fakeGenerator{failOn: map[string]error{
		"b": errors.New("completion api error 500: internal failure"),
	}}
	sender := &fakeSender{}
	d := newTestDispatcher(gen, sender)

	rep := d.Run(context.Background(), tasks)

	want := []Status{StatusSuccess, StatusFailure, StatusSuccess}
	for i, o := range rep.Outcomes {
		if o.Status != want[i] {
			t.Fatalf("outcome %d = %s, want %s", i, o.Status, want[i])
		}
	}
	if !strings.Contains(rep.Outcomes[1].Detail, "internal failure") {
		t.Fatalf("failure detail = %q", rep.Outcomes[1].Detail)
	}
	if rep.Outcomes[0].Detail != "" || rep.Outcomes[2].Detail != "" {
		t.Fatal("success outcomes must carry no detail")
	}
	if len(gen.calls) != 3 {
		t.Fatalf("generator called %d times, want 3", len(gen.calls))
	}
	if _, ok := sender.sent[2]; ok {
		t.Fatal("nothing must be delivered when generation fails")
	}
	if rep.Failed() != 1 {
		t.Fatalf("Failed() = %d, want 1", rep.Failed())
	}
}

func TestRunIsolatesDeliveryFailure(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		{ChannelID: 1, Prompt: "a"},
		{ChannelID: 2, Prompt: "b"},
	}
	sender := &fakeSender{failOn: map[int64]error{
		1: errors.New("telegram delivery to chat 1 failed: chat not found"),
	}}
	d := newTestDispatcher(&fakeGenerator{}, sender)

	rep := d.Run(context.Background(), tasks)
	if rep.Outcomes[0].Status != StatusFailure {
		t.Fatalf("outcome 0 = %s, want failure", rep.Outcomes[0].Status)
	}
	if !strings.Contains(rep.Outcomes[0].Detail, "chat not found") {
		t.Fatalf("detail = %q", rep.Outcomes[0].Detail)
	}
	if rep.Outcomes[1].Status != StatusSuccess {
		t.Fatalf("outcome 1 = %s, want success", rep.Outcomes[1].Status)
	}
	if sender.sent[2] != "text for b" {
		t.Fatalf("channel 2 received %q", sender.sent[2])
	}
}

func TestRunAllowsDuplicateChannelIDs(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		{ChannelID: 7, Prompt: "first"},
		{ChannelID: 7, Prompt: "second"},
	}
	gen := &fakeGenerator{}
	d := newTestDispatcher(gen, &fakeSender{})

	rep := d.Run(context.Background(), tasks)
	if len(rep.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(rep.Outcomes))
	}
	if len(gen.calls) != 2 || gen.calls[0] != "first" || gen.calls[1] != "second" {
		t.Fatalf("generator calls = %v", gen.calls)
	}
}

func TestRunEmptyTaskList(t *testing.T) {
	t.Parallel()
	d := newTestDispatcher(&fakeGenerator{}, &fakeSender{})
	rep := d.Run(context.Background(), nil)
	if len(rep.Outcomes) != 0 {
		t.Fatalf("outcomes = %d, want 0", len(rep.Outcomes))
	}
	if rep.Failed() != 0 {
		t.Fatalf("Failed() = %d, want 0", rep.Failed())
	}
}

func TestRunReportsEveryFailureIndependently(t *testing.T) {
	t.Parallel()
	var tasks []Task
	failOn := make(map[string]error)
	for i := 0; i < 10; i++ {
		p := fmt.Sprintf("p%d", i)
		tasks = append(tasks, Task{ChannelID: int64(100 + i), Prompt: p})
		if i%3 == 0 {
			failOn[p] = fmt.Errorf("boom %d", i)
		}
	}
	d := newTestDispatcher(&fakeGenerator{failOn: failOn}, &fakeSender{})

	rep := d.Run(context.Background(), tasks)
	if len(rep.Outcomes) != len(tasks) {
		t.Fatalf("outcomes = %d, want %d", len(rep.Outcomes), len(tasks))
	}
	for i, o := range rep.Outcomes {
		wantFail := i%3 == 0
		if o.Failed() != wantFail {
			t.Fatalf("outcome %d failed=%v, want %v", i, o.Failed(), wantFail)
		}
	}
	if rep.Failed() != len(failOn) {
		t.Fatalf("Failed() = %d, want %d", rep.Failed(), len(failOn))
	}
}

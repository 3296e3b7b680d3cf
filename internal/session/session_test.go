package session

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/jenkins"
	"github.com/pipepilot/pipepilot/internal/llm"
)

// fakeGen returns one queued result per Complete call.
type fakeGen struct {
	results []result
	calls   int
	msgs    [][]llm.Message
}

type result struct {
	set *generate.ArtifactSet
	err error
}

func (g *fakeGen) InitialMessages(*analyze.Summary, *jenkins.Context) ([]llm.Message, error) {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "system"},
		{Role: llm.RoleUser, Content: "user"},
	}, nil
}

func (g *fakeGen) FeedbackMessage(feedback string, _ *generate.ArtifactSet, _ *analyze.Summary) (llm.Message, error) {
	return llm.Message{Role: llm.RoleUser, Content: "feedback: " + feedback}, nil
}

func (g *fakeGen) Complete(_ context.Context, messages []llm.Message) (*generate.ArtifactSet, llm.Message, error) {
	g.msgs = append(g.msgs, append([]llm.Message(nil), messages...))
	r := g.results[g.calls]
	g.calls++
	if r.err != nil {
		return nil, llm.Message{}, r.err
	}
	return r.set, llm.Message{Role: llm.RoleAssistant, Content: "response"}, nil
}

type fakeSink struct {
	saved []*generate.ArtifactSet
}

func (s *fakeSink) Save(set *generate.ArtifactSet) error {
	s.saved = append(s.saved, set)
	return nil
}

type fakeFinalizer struct {
	calls int
	got   *generate.ArtifactSet
	err   error
}

func (f *fakeFinalizer) Finalize(_ context.Context, set *generate.ArtifactSet) error {
	f.calls++
	f.got = set
	return f.err
}

func set(name string) *generate.ArtifactSet {
	return &generate.ArtifactSet{Jenkinsfile: name, JobConfig: "<x/>", RequiredPlugins: "<p/>"}
}

func run(t *testing.T, gen *fakeGen, sink *fakeSink, fin *fakeFinalizer, input string) (*Outcome, string) {
	t.Helper()
	var out bytes.Buffer
	loop := New(gen, sink, fin, bufio.NewScanner(strings.NewReader(input)), &out,
		&analyze.Summary{Text: "summary"}, &jenkins.Context{URL: "http://localhost:8080"})
	outcome, err := loop.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return outcome, out.String()
}

func TestGenerateThenReady(t *testing.T) {
	gen := &fakeGen{results: []result{{set: set("v1")}}}
	sink := &fakeSink{}
	fin := &fakeFinalizer{}

	outcome, _ := run(t, gen, sink, fin, "ready\n")
	if !outcome.Finalized {
		t.Error("not finalized")
	}
	if outcome.Rounds != 1 {
		t.Errorf("Rounds = %d", outcome.Rounds)
	}
	if fin.calls != 1 {
		t.Errorf("finalizer called %d times, want exactly once", fin.calls)
	}
	if fin.got.Jenkinsfile != "v1" {
		t.Errorf("finalized set = %q", fin.got.Jenkinsfile)
	}
	if len(sink.saved) != 1 {
		t.Errorf("sink saw %d sets", len(sink.saved))
	}
}

func TestFeedbackRound(t *testing.T) {
	gen := &fakeGen{results: []result{{set: set("v1")}, {set: set("v2")}}}
	sink := &fakeSink{}
	fin := &fakeFinalizer{}

	outcome, _ := run(t, gen, sink, fin, "add a deploy stage\nready\n")
	if outcome.Rounds != 2 {
		t.Errorf("Rounds = %d", outcome.Rounds)
	}
	if fin.got.Jenkinsfile != "v2" {
		t.Errorf("finalized set = %q, want v2", fin.got.Jenkinsfile)
	}

	// The conversation grows monotonically: round two sees the initial
	// pair, the first assistant reply, and the feedback message.
	if len(gen.msgs) != 2 {
		t.Fatalf("Complete called %d times", len(gen.msgs))
	}
	if len(gen.msgs[0]) != 2 {
		t.Errorf("round 1 saw %d messages", len(gen.msgs[0]))
	}
	if len(gen.msgs[1]) != 4 {
		t.Errorf("round 2 saw %d messages, want 4", len(gen.msgs[1]))
	}
	if gen.msgs[1][3].Content != "feedback: add a deploy stage" {
		t.Errorf("last message = %q", gen.msgs[1][3].Content)
	}
}

// A failed refinement round keeps the previous artifact set.
func TestFailedRoundKeepsPreviousSet(t *testing.T) {
	gen := &fakeGen{results: []result{
		{set: set("v1")},
		{err: &generate.GenerationError{Stage: "parse", Err: fmt.Errorf("bad response")}},
	}}
	sink := &fakeSink{}
	fin := &fakeFinalizer{}

	outcome, out := run(t, gen, sink, fin, "tweak it\nready\n")
	if !outcome.Finalized {
		t.Error("not finalized")
	}
	if outcome.Set.Jenkinsfile != "v1" {
		t.Errorf("finalized set = %q, want v1", outcome.Set.Jenkinsfile)
	}
	if outcome.Rounds != 1 {
		t.Errorf("Rounds = %d", outcome.Rounds)
	}
	if !strings.Contains(out, "Previous files are unchanged") {
		t.Errorf("output missing retained-files note: %q", out)
	}
	if len(sink.saved) != 1 {
		t.Errorf("sink saw %d sets", len(sink.saved))
	}
}

// Round one failing leaves the session usable: the user can retry with
// feedback or exit, but cannot finalize.
func TestFirstRoundFailure(t *testing.T) {
	gen := &fakeGen{results: []result{
		{err: &generate.GenerationError{Stage: "chat", Err: fmt.Errorf("timeout")}},
		{set: set("v1")},
	}}
	fin := &fakeFinalizer{}

	outcome, out := run(t, gen, &fakeSink{}, fin, "ready\ntry again\nready\n")
	if !strings.Contains(out, "No files generated yet") {
		t.Errorf("output missing guard message: %q", out)
	}
	if !outcome.Finalized {
		t.Error("retry should allow finalizing")
	}
	if fin.got.Jenkinsfile != "v1" {
		t.Errorf("finalized set = %q", fin.got.Jenkinsfile)
	}
}

func TestExitWithoutFinalizing(t *testing.T) {
	gen := &fakeGen{results: []result{{set: set("v1")}}}
	fin := &fakeFinalizer{}

	outcome, _ := run(t, gen, &fakeSink{}, fin, "exit\n")
	if outcome.Finalized {
		t.Error("exit should not finalize")
	}
	if fin.calls != 0 {
		t.Errorf("finalizer called %d times", fin.calls)
	}
	if outcome.Set == nil || outcome.Set.Jenkinsfile != "v1" {
		t.Error("outcome should still carry the generated set")
	}
}

func TestClosedInputTerminates(t *testing.T) {
	gen := &fakeGen{results: []result{{set: set("v1")}}}
	outcome, _ := run(t, gen, &fakeSink{}, &fakeFinalizer{}, "")
	if outcome.Finalized {
		t.Error("EOF should not finalize")
	}
}

func TestHelpAndBlankLines(t *testing.T) {
	gen := &fakeGen{results: []result{{set: set("v1")}}}
	_, out := run(t, gen, &fakeSink{}, &fakeFinalizer{}, "\nhelp\nexit\n")
	if !strings.Contains(out, "Commands:") {
		t.Errorf("help output missing: %q", out)
	}
	if gen.calls != 1 {
		t.Errorf("blank line or help triggered generation: %d calls", gen.calls)
	}
}

// Package session runs the interactive refinement loop: generate
// artifacts, collect user feedback, re-generate, and finalize on
// request.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pipepilot/pipepilot/internal/analyze"
	"github.com/pipepilot/pipepilot/internal/generate"
	"github.com/pipepilot/pipepilot/internal/jenkins"
	"github.com/pipepilot/pipepilot/internal/llm"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateGenerating       State = "generating"
	StateAwaitingFeedback State = "awaiting_feedback"
	StateFinalizing       State = "finalizing"
	StateTerminated       State = "terminated"
)

// Generator produces artifact sets from a conversation. Implemented by
// *generate.Generator.
type Generator interface {
	InitialMessages(summary *analyze.Summary, jctx *jenkins.Context) ([]llm.Message, error)
	FeedbackMessage(feedback string, current *generate.ArtifactSet, summary *analyze.Summary) (llm.Message, error)
	Complete(ctx context.Context, messages []llm.Message) (*generate.ArtifactSet, llm.Message, error)
}

// Sink receives each successfully generated artifact set.
type Sink interface {
	Save(set *generate.ArtifactSet) error
}

// Finalizer runs once when the user accepts the artifacts.
type Finalizer interface {
	Finalize(ctx context.Context, set *generate.ArtifactSet) error
}

// Outcome reports how a session ended.
type Outcome struct {
	Finalized bool
	Rounds    int
	Set       *generate.ArtifactSet
}

// Loop drives one refinement session over a shared input scanner.
type Loop struct {
	gen     Generator
	sink    Sink
	fin     Finalizer
	in      *bufio.Scanner
	out     io.Writer
	summary *analyze.Summary
	jctx    *jenkins.Context

	state        State
	conversation []llm.Message
	current      *generate.ArtifactSet
	rounds       int
}

// New creates a Loop. fin may be nil when finalization is disabled; the
// "ready" command then just ends the session with the current set.
func New(gen Generator, sink Sink, fin Finalizer, in *bufio.Scanner, out io.Writer, summary *analyze.Summary, jctx *jenkins.Context) *Loop {
	return &Loop{
		gen:     gen,
		sink:    sink,
		fin:     fin,
		in:      in,
		out:     out,
		summary: summary,
		jctx:    jctx,
		state:   StateGenerating,
	}
}

// State returns the current lifecycle phase.
func (l *Loop) State() State {
	return l.state
}

// Run executes the session until the user finalizes or exits.
func (l *Loop) Run(ctx context.Context) (*Outcome, error) {
	msgs, err := l.gen.InitialMessages(l.summary, l.jctx)
	if err != nil {
		return nil, err
	}
	l.conversation = msgs

	l.generate(ctx)

	for l.state == StateAwaitingFeedback {
		fmt.Fprint(l.out, "\nFeedback (or 'ready' to finish, 'help' for commands): ")
		if !l.in.Scan() {
			// Input closed; treat as exit.
			l.state = StateTerminated
			break
		}
		line := strings.TrimSpace(l.in.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "help":
			l.printHelp()
		case "exit", "quit":
			fmt.Fprintln(l.out, "Session ended without finalizing.")
			l.state = StateTerminated
		case "ready", "done":
			if l.current == nil {
				fmt.Fprintln(l.out, "No files generated yet. Give feedback to retry, or 'exit' to quit.")
				continue
			}
			l.state = StateFinalizing
			if l.fin != nil {
				if err := l.fin.Finalize(ctx, l.current); err != nil {
					return nil, err
				}
			}
			return &Outcome{Finalized: true, Rounds: l.rounds, Set: l.current}, nil
		default:
			l.feedback(ctx, line)
		}
	}

	return &Outcome{Finalized: false, Rounds: l.rounds, Set: l.current}, nil
}

// generate runs the first round over the initial conversation.
func (l *Loop) generate(ctx context.Context) {
	l.state = StateGenerating
	fmt.Fprintln(l.out, "Generating pipeline files...")

	set, assistant, err := l.gen.Complete(ctx, l.conversation)
	if err != nil {
		fmt.Fprintf(l.out, "Generation failed: %v\n", err)
		fmt.Fprintln(l.out, "Give feedback to retry, or 'exit' to quit.")
		l.state = StateAwaitingFeedback
		return
	}

	l.conversation = append(l.conversation, assistant)
	l.accept(set)
}

// feedback appends a refinement round to the conversation and runs it.
// A failed round keeps the previous artifact set.
func (l *Loop) feedback(ctx context.Context, text string) {
	msg, err := l.gen.FeedbackMessage(text, l.current, l.summary)
	if err != nil {
		fmt.Fprintf(l.out, "Could not build feedback prompt: %v\n", err)
		return
	}
	l.conversation = append(l.conversation, msg)

	l.state = StateGenerating
	fmt.Fprintln(l.out, "Updating pipeline files...")

	set, assistant, err := l.gen.Complete(ctx, l.conversation)
	if err != nil {
		fmt.Fprintf(l.out, "Update failed: %v\n", err)
		if l.current != nil {
			fmt.Fprintln(l.out, "Previous files are unchanged.")
		}
		l.state = StateAwaitingFeedback
		return
	}

	l.conversation = append(l.conversation, assistant)
	l.accept(set)
}

// accept records a successful round and hands the set to the sink.
func (l *Loop) accept(set *generate.ArtifactSet) {
	l.current = set
	l.rounds++
	if l.sink != nil {
		if err := l.sink.Save(set); err != nil {
			fmt.Fprintf(l.out, "Warning: could not save files: %v\n", err)
		}
	}
	l.state = StateAwaitingFeedback
}

func (l *Loop) printHelp() {
	fmt.Fprintln(l.out, "Commands:")
	fmt.Fprintln(l.out, "  ready, done   accept the files and continue")
	fmt.Fprintln(l.out, "  exit, quit    end the session without finalizing")
	fmt.Fprintln(l.out, "  help          show this message")
	fmt.Fprintln(l.out, "Anything else is sent to the model as feedback.")
}

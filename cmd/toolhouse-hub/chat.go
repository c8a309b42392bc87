// ABOUTME: Chat command: one-shot messages or an interactive loop with slash commands
// ABOUTME: Streams replies on a terminal and prints rendered Markdown otherwise

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389/toolhouse-hub/internal/catalog"
	"github.com/2389/toolhouse-hub/internal/chat"
	"github.com/2389/toolhouse-hub/internal/history"
)

func newChatCmd(get func() *app) *cobra.Command {
	var (
		resumeID string
		message  string
	)

	cmd := &cobra.Command{
		Use:   "chat <agent-id>",
		Short: "Chat with an agent",
		Long: `Chat with an agent interactively, or send a single message with --message.

Completed exchanges are saved to history; pass --resume with a history id to
continue an earlier conversation.`,
		Example: `  toolhouse-hub chat inbox-triage
  toolhouse-hub chat resume-reviewer --message "Review this summary: ..."
  toolhouse-hub chat inbox-triage --resume 1f0c...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()

			agent, err := a.catalog.Find(args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintf(a.out, "Agent not found: %s (see: toolhouse-hub agents)\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}

			session := chat.NewSession(&agent, a.client, a.store, chat.WithLogger(a.logger))
			defer session.Close()

			r := &repl{app: a, agent: agent, session: session}
			if resumeID != "" {
				r.resume(ctx, resumeID)
			}

			if message != "" {
				return r.send(ctx, message)
			}
			return r.run(ctx)
		},
	}

	cmd.Flags().StringVarP(&resumeID, "resume", "r", "", "continue the saved conversation with this history id")
	cmd.Flags().StringVarP(&message, "message", "m", "", "send one message, print the reply and exit")
	return cmd
}

// repl is the interactive chat loop for one agent.
type repl struct {
	app     *app
	agent   catalog.Agent
	session *chat.Session
}

func (r *repl) run(ctx context.Context) error {
	a := r.app

	fmt.Fprintf(a.out, "%s %s\n", r.label(), a.ui.dim.Sprint(r.agent.Description))
	fmt.Fprintln(a.out, a.ui.dim.Sprint("Type a message and press Enter. /help for commands, /quit or Ctrl+D to leave."))
	if len(r.session.Messages()) == 0 {
		r.printSuggestions()
	}
	fmt.Fprintln(a.out)

	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1024*1024)

	for {
		fmt.Fprint(a.out, a.ui.prompt.Sprint("you> "))

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)
		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
				return
			}
			if err := scanner.Err(); err != nil {
				errCh <- err
				return
			}
			errCh <- io.EOF
		}()

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		case err := <-errCh:
			fmt.Fprintln(a.out)
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := r.command(ctx, input); quit {
				return nil
			}
			fmt.Fprintln(a.out)
			continue
		}

		// Failures are already shown as the reply; keep the loop going.
		_ = r.send(ctx, input)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// command runs a slash command and reports whether the loop should end.
func (r *repl) command(ctx context.Context, input string) bool {
	a := r.app
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/help":
		printChatHelp(a.out)

	case "/clear":
		r.session.Clear()
		fmt.Fprintln(a.out, "Started a new conversation.")

	case "/suggest":
		if arg == "" {
			r.printSuggestions()
			break
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(r.agent.Suggestions) {
			fmt.Fprintf(a.out, "No suggestion %q. Use /suggest to list them.\n", arg)
			break
		}
		prompt := r.agent.Suggestions[n-1]
		fmt.Fprintf(a.out, "%s %s\n", a.ui.prompt.Sprint("you>"), prompt)
		_ = r.send(ctx, prompt)

	case "/history":
		printEntries(a.out, a.store.ForAgent(ctx, r.agent.ID), time.Now())

	case "/resume":
		if arg == "" {
			fmt.Fprintln(a.out, "Usage: /resume <history-id>")
			break
		}
		r.resume(ctx, arg)

	default:
		fmt.Fprintf(a.out, "Unknown command %s. /help lists commands.\n", name)
	}
	return false
}

func printChatHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  /suggest       List suggested prompts")
	fmt.Fprintln(out, "  /suggest <n>   Send suggested prompt n")
	fmt.Fprintln(out, "  /clear         Start a new conversation")
	fmt.Fprintln(out, "  /history       List saved conversations with this agent")
	fmt.Fprintln(out, "  /resume <id>   Continue a saved conversation")
	fmt.Fprintln(out, "  /help          Show this help")
	fmt.Fprintln(out, "  /quit          Leave the chat")
}

func (r *repl) printSuggestions() {
	a := r.app
	if len(r.agent.Suggestions) == 0 {
		fmt.Fprintln(a.out, "This agent has no suggested prompts.")
		return
	}
	fmt.Fprintln(a.out, a.ui.title.Sprint("Try asking:"))
	for i, s := range r.agent.Suggestions {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, s)
	}
}

// resume loads a saved conversation into the session. A missing id or one
// belonging to another agent leaves the session as it is.
func (r *repl) resume(ctx context.Context, id string) {
	a := r.app
	entry, err := a.store.Get(ctx, id)
	if err != nil || entry.AgentID != r.agent.ID {
		fmt.Fprintf(a.out, "Conversation not found for %s: %s\n", r.agent.Name, id)
		return
	}

	r.session.Resume(entry)
	fmt.Fprintln(a.out, a.ui.dim.Sprintf("Resumed conversation from %s.", entry.Timestamp.Local().Format("Jan 02 15:04")))
	fmt.Fprintln(a.out)
	printTranscript(a, r.label(), entry.Messages)
}

func (r *repl) label() string {
	return r.app.agentLabel(r.agent)
}

// send sends one message and prints the reply. On a terminal the reply is
// streamed as it arrives; otherwise it is printed once, rendered.
func (r *repl) send(ctx context.Context, message string) error {
	a := r.app
	fmt.Fprintln(a.out, r.label())

	var (
		printer *streamPrinter
		wg      sync.WaitGroup
	)
	subCtx, unsubscribe := context.WithCancel(ctx)
	defer unsubscribe()

	if a.streaming {
		printer = &streamPrinter{w: a.out}
		updates := r.session.Subscribe(subCtx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for snap := range updates {
				if !snap.IsLoading || len(snap.Messages) == 0 {
					continue
				}
				printer.write(snap.Messages[len(snap.Messages)-1].Content)
			}
		}()
	}

	err := r.session.Send(ctx, message)

	unsubscribe()
	wg.Wait()

	switch {
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrNoAgent):
		fmt.Fprintln(a.out, a.ui.warn.Sprint(err.Error()))
		return err
	}

	reply := lastReply(r.session.Messages())
	if printer != nil {
		if !printer.finish(reply) {
			r.printReply(reply, err)
		}
	} else {
		r.printReply(reply, err)
	}
	fmt.Fprintln(a.out)
	return err
}

func (r *repl) printReply(reply string, err error) {
	a := r.app
	if err != nil {
		fmt.Fprintln(a.out, a.ui.err.Sprint(reply))
		return
	}
	fmt.Fprintln(a.out, a.formatReply(reply))
}

func lastReply(msgs []history.Message) string {
	if n := len(msgs); n > 0 && msgs[n-1].Role == history.RoleAssistant {
		return msgs[n-1].Content
	}
	return ""
}

// formatReply renders assistant Markdown when ui.markdown is on.
func (a *app) formatReply(text string) string {
	if !a.cfg.UI.Markdown {
		return text
	}
	return a.renderer.Render(text)
}

// streamPrinter writes the growth of a cumulative reply.
type streamPrinter struct {
	w       io.Writer
	printed string
}

func (p *streamPrinter) write(cumulative string) {
	if !strings.HasPrefix(cumulative, p.printed) {
		return
	}
	if delta := cumulative[len(p.printed):]; delta != "" {
		fmt.Fprint(p.w, delta)
		p.printed = cumulative
	}
}

// finish prints whatever of final has not been streamed yet. It returns false
// when final does not continue the streamed text (an error replaced it) or
// nothing was streamed, leaving the caller to print it.
func (p *streamPrinter) finish(final string) bool {
	if p.printed == "" || !strings.HasPrefix(final, p.printed) {
		if p.printed != "" {
			fmt.Fprintln(p.w)
		}
		return false
	}
	p.write(final)
	fmt.Fprintln(p.w)
	return true
}

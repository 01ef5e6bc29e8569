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
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/termsherpa"
	"pkt.systems/termsherpa/internal/appconfig"
	"pkt.systems/termsherpa/internal/eventbus"
	"pkt.systems/termsherpa/schema"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var shell string
	var workingDir string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive shell session with the assistant",
		Long: `Start a shell under termsherpa. Regular input goes to the shell.
Lines starting with ? ask the assistant for a command, :y runs the
suggestion, :n dismisses it, :q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if shell != "" {
				cfg.Shell.Command = shell
			}
			if workingDir != "" {
				cfg.Shell.WorkingDir = workingDir
			}
			return runInteractive(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&shell, "shell", "s", "", "shell executable (defaults to $SHELL)")
	cmd.Flags().StringVarP(&workingDir, "dir", "d", "", "initial working directory")
	return cmd
}

func runInteractive(ctx context.Context, cfg appconfig.Config, out io.Writer, in io.Reader) error {
	logger := pslog.Ctx(ctx)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := termsherpa.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("session close failed", "err", err)
		}
	}()

	req := schema.CreateSessionRequest{}
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if cols, rows, err := term.GetSize(fd); err == nil {
			req.Rows, req.Cols = rows, cols
		}
	}
	resp, err := app.Service.CreateSession(ctx, req)
	if err != nil {
		return err
	}
	sessionID := resp.SessionID
	logger.Info("session started", "session", sessionID, "shell", resp.Shell)
	if !app.AssistantAvailable() {
		fmt.Fprintln(out, "[sherpa] no API key found; assistant features are off")
	}

	events, cancelSub := app.Bus.Subscribe(sessionID)
	defer cancelSub()

	go watchResize(ctx, app, sessionID)

	closed := make(chan struct{})
	render := &renderer{out: out}
	go func() {
		defer close(closed)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				switch event.Type {
				case eventbus.EventTerminal:
					render.terminal(event.Terminal)
				case eventbus.EventAssistant:
					render.assistant(event.Assistant)
				case eventbus.EventSession:
					if event.Session.Kind == schema.SessionClosed {
						render.notice(fmt.Sprintf("session closed: %s", event.Session.Reason))
						return
					}
				}
			}
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit, err := dispatch(ctx, app, sessionID, line, render); err != nil {
				render.notice(err.Error())
			} else if quit {
				return nil
			}
		}
	}
}

// dispatch routes one typed line: assistant queries and workflow verbs
// stay local, everything else is forwarded to the shell.
func dispatch(ctx context.Context, app *termsherpa.App, id schema.SessionID, line string, render *renderer) (bool, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "?"):
		query := strings.TrimSpace(strings.TrimPrefix(trimmed, "?"))
		_, err := app.Service.SubmitQuery(ctx, schema.SubmitQueryRequest{SessionID: id, Query: query})
		if errors.Is(err, schema.ErrAssistantUnavailable) {
			return false, errors.New("[sherpa] assistant is off; set the API key and restart")
		}
		if err == nil {
			render.notice("thinking...")
		}
		return false, err
	case trimmed == ":y":
		_, err := app.Service.ConfirmPending(ctx, schema.ConfirmPendingRequest{SessionID: id})
		if errors.Is(err, schema.ErrNoPendingCommand) {
			return false, errors.New("[sherpa] nothing to confirm")
		}
		return false, err
	case trimmed == ":n":
		_, err := app.Service.RejectPending(ctx, schema.RejectPendingRequest{SessionID: id})
		if errors.Is(err, schema.ErrNoPendingCommand) {
			return false, errors.New("[sherpa] nothing to dismiss")
		}
		return false, err
	case trimmed == ":q":
		return true, nil
	default:
		_, err := app.Service.SendKeystrokes(ctx, schema.SendKeystrokesRequest{
			SessionID: id, Data: []byte(line + "\n"),
		})
		return false, err
	}
}

// renderer prints terminal deltas append-style: completed rows scroll
// up, the last row is rewritten in place as the shell updates it.
type renderer struct {
	out     io.Writer
	printed int
	broke   bool
}

func (r *renderer) terminal(event schema.TerminalEvent) {
	switch event.Kind {
	case schema.TerminalReset:
		fmt.Fprint(r.out, "\x1b[2J\x1b[H")
		fmt.Fprint(r.out, strings.Join(event.Lines, "\n"))
		r.printed = len(event.Lines)
		r.broke = false
	case schema.TerminalDelta:
		for i, line := range event.Lines {
			row := event.FromRow + i
			switch {
			case row < r.printed-1:
				// Rows above the tail already scrolled past.
			case row == r.printed-1 && !r.broke:
				fmt.Fprintf(r.out, "\r\x1b[K%s", line)
			default:
				if r.printed > 0 || r.broke {
					fmt.Fprintln(r.out)
				}
				fmt.Fprint(r.out, line)
				r.broke = false
			}
		}
		if end := event.FromRow + len(event.Lines); end > r.printed {
			r.printed = end
		}
	}
}

func (r *renderer) assistant(event schema.AssistantEvent) {
	switch event.Kind {
	case schema.AssistantSuggestion:
		r.notice(fmt.Sprintf("suggested: %s  (:y to run, :n to dismiss)", event.Command))
	case schema.AssistantExecuted:
		r.notice(fmt.Sprintf("running: %s", event.Command))
	case schema.AssistantRejected:
		r.notice("dismissed")
	case schema.AssistantAnalysisStarted:
		r.notice(fmt.Sprintf("analyzing failure of %q...", event.Command))
	case schema.AssistantAnalysis:
		r.notice(event.Text)
	case schema.AssistantBackendError:
		r.notice(fmt.Sprintf("backend error: %s", event.Text))
	}
}

func (r *renderer) notice(text string) {
	fmt.Fprintf(r.out, "\n[sherpa] %s\n", text)
	// The shell's current row will be reprinted on the next delta.
	r.broke = true
}

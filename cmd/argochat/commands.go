package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"argo-chat/internal/models"
	"argo-chat/internal/widget"
)

func newAskCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeStore, err := openWidget(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeStore()

			if !w.Submit(cmd.Context(), strings.Join(args, " ")) {
				return fmt.Errorf("nothing to send")
			}
			printLast(cmd.OutOrStdout(), w)
			return nil
		},
	}
}

func newChatCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation (/clear, /toggle, /history, /quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeStore, err := openWidget(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeStore()

			return runChat(cmd.Context(), w, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	if w.ShouldShow() && !w.IsCollapsed() {
		printHistory(out, w.Messages())
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		switch line := strings.TrimSpace(scanner.Text()); line {
		case "/quit", "/exit":
			return nil
		case "/clear":
			w.Clear(ctx)
			fmt.Fprintln(out, "Conversation cleared.")
		case "/toggle":
			if w.ToggleCollapse(ctx) {
				fmt.Fprintln(out, "Conversation collapsed.")
			} else {
				printHistory(out, w.Messages())
			}
		case "/history":
			printHistory(out, w.Messages())
		default:
			if w.Submit(ctx, line) {
				printLast(out, w)
			}
		}
	}
}

func newHistoryCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeStore, err := openWidget(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeStore()

			if !w.HasMessages() {
				fmt.Fprintln(cmd.OutOrStdout(), "Start a conversation about ocean data!")
				return nil
			}
			printHistory(cmd.OutOrStdout(), w.Messages())
			return nil
		},
	}
}

func newClearCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeStore, err := openWidget(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeStore()

			w.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
			return nil
		},
	}
}

func newToggleCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Collapse or expand the conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeStore, err := openWidget(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeStore()

			state := "expanded"
			if w.ToggleCollapse(cmd.Context()) {
				state = "collapsed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %s.\n", state)
			return nil
		},
	}
}

func newModelsCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models available behind the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			relay := widget.NewHTTPRelay(s.RelayURL, s.Timeout)
			body, err := relay.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, body, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
}

func printLast(out io.Writer, w *widget.Widget) {
	msgs := w.Messages()
	if len(msgs) == 0 {
		return
	}
	printMessage(out, msgs[len(msgs)-1])
}

func printHistory(out io.Writer, msgs []models.Message) {
	for _, m := range msgs {
		printMessage(out, m)
	}
}

func printMessage(out io.Writer, m models.Message) {
	who := "you"
	if m.Role == models.RoleAssistant {
		who = "assistant"
	}
	fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), who, m.Content)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanhutch/helpbot/internal/app"
	"github.com/evanhutch/helpbot/internal/config"
	"github.com/evanhutch/helpbot/internal/gateway"
)

func NewRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "helpbot",
		Short: "Helpbot answers workplace questions from a curated knowledge base",
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newAskCommand(logger))
	root.AddCommand(newHistoryCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack connector and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runtime, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			return runtime.Run(ctx)
		},
	}
}

// newAskCommand runs one question through the full pipeline without any
// connector, which is handy for validating a knowledge base edit.
func newAskCommand(logger *slog.Logger) *cobra.Command {
	var userID string

	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			runtime, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			output, err := runtime.Gateway().HandleMessage(ctx, gateway.MessageInput{
				Kind:       gateway.KindMention,
				Connector:  "cli",
				FromUserID: userID,
				Text:       strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			cmd.Println(output.Reply)
			return nil
		},
	}
	ask.Flags().StringVar(&userID, "user", "cli", "user id recorded in conversation history")
	return ask
}

func newHistoryCommand(logger *slog.Logger) *cobra.Command {
	var userID string

	history := &cobra.Command{
		Use:   "history",
		Short: "Print a user's stored conversation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			runtime, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			records, err := runtime.Memory().History(ctx, userID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("no conversations recorded")
				return nil
			}
			for _, record := range records {
				cmd.Println(fmt.Sprintf("[%s] Q: %s", record.Timestamp.Format(time.RFC3339), record.Question))
				cmd.Println("  A: " + record.Response)
			}
			return nil
		},
	}
	history.Flags().StringVar(&userID, "user", "cli", "user id to look up")
	return history
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(app.Version)
		},
	}
}

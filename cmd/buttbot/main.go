// Copyright 2024-2026 Aiku AI

// Command buttbot runs the buttbot chat bot on Mattermost and Matrix.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aiku/buttbot/pkg/buttify"
	"github.com/aiku/buttbot/pkg/config"
	"github.com/aiku/buttbot/pkg/settings"
	"github.com/aiku/buttbot/pkg/syllable"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errConfigCreated) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Tag, Commit, BuildTime)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "buttbot",
		Short:         "A chat bot that replaces random syllables with butt",
		Version:       versionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newTryCmd())
	root.AddCommand(newSyllablesCmd())
	root.AddCommand(newExampleConfigCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "buttbot", versionString())
		},
	})
	return root
}

func newTryCmd() *cobra.Command {
	var word string
	cmd := &cobra.Command{
		Use:   "try <text>",
		Short: "Buttify a message once, ignoring the trigger rate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			state := buttify.ChannelState{TriggerRate: settings.DefaultRate, Word: word}
			res := buttify.NewEngine().Force(text, &state, buttify.DefaultIgnoreSet())
			if res.Outcome == buttify.OutcomeSubstituted {
				text = res.Text
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&word, "word", "w", settings.DefaultWord, "substitution word")
	return cmd
}

func newSyllablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "syllables <text>",
		Short: "Show how a message is split into words and syllables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenizer := syllable.NewTokenizer(nil)
			return printSentence(cmd.OutOrStdout(), tokenizer.Tokenize(strings.Join(args, " ")))
		},
	}
}

func printSentence(w io.Writer, s syllable.Sentence) error {
	words := make([]string, len(s))
	for i, word := range s {
		words[i] = strings.Join(word, "|")
	}
	_, err := fmt.Fprintln(w, strings.Join(words, " "))
	return err
}

func newExampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Print the example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), config.ExampleConfig)
			return err
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

func analyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [description]",
		Short: "Analyze a project description (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			session, closeFn, err := openSession(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			_, err = session.Submit(cmd.Context(), input)
			return describe(err)
		},
	}
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// describe turns session errors into the message a user should see.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var te *domain.TransportError
	if errors.As(err, &te) && te.Kind == domain.TransportUnreachable {
		return fmt.Errorf("%s (is the risk service running?)", te.Message)
	}
	return err
}

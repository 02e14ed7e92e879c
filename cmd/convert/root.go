package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/username/bankconv/src/config"
	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/logger"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

// notFoundError carries the path the user asked for, so the message does not depend on wrapping.
type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string { return "File not found: " + e.path }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	defaults := config.FromEnv()

	var (
		profileName string
		profilePath string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a bank export (CSV or XLSX) into an Actual Budget CSV",
		Long: `convert reads an Intesa SanPaolo movements export, finds the header row behind any
leading metadata and writes the eight-column CSV the Actual Budget importer expects.
Without an output path the result is printed to stdout.`,
		Example:       "convert movimenti.xlsx actual.csv",
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.InitLogger(logLevel, stderr)

			profile, err := converter.ResolveProfile(profileName, profilePath)
			if err != nil {
				return err
			}
			conv, err := converter.New(profile)
			if err != nil {
				return err
			}

			input, output := args[0], ""
			if len(args) == 2 {
				output = args[1]
			}

			out, err := conv.ConvertFile(cmd.Context(), input, output)
			if err != nil {
				if errors.Is(err, converter.ErrSourceNotFound) {
					return &notFoundError{path: input}
				}
				return err
			}

			if output == "" {
				_, err = stdout.Write(out)
				return err
			}
			fmt.Fprintf(stdout, "Converted successfully! Output saved to: %s\n", output)
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&profileName, "profile", "p", defaults.Profile, "built-in source bank profile")
	cmd.Flags().StringVar(&profilePath, "profile-path", defaults.ProfilePath, "JSON profile file; overrides --profile")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	return cmd
}

// run executes the command and maps the outcome to a process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %s\n", err)
	var nf *notFoundError
	if errors.As(err, &nf) {
		return exitNotFound
	}
	return exitFailure
}

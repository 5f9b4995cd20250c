// Package cmd (root.go) defines the root command for the vsclient CLI and
// the persistent connection flags shared by every subcommand.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "vsclient",
	Short: "A CLI client for the Vidispine media asset API",
	Long: `vsclient talks to a Vidispine server over its HTTP/XML API.

It can issue raw API requests, run item and collection searches, list jobs,
users and storage files, upload files in chunks, and read or write simple
metadata. Connection settings come from the configuration file, the
VIDISPINE_* environment variables and the flags below, in increasing order
of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Interrupts cancel the running request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(app.FlagServer, "", "Server URL, e.g. https://vs.example.com:8443")
	flags.String(app.FlagHost, "", "Server host name")
	flags.Int(app.FlagPort, 0, "Server port")
	flags.String(app.FlagUser, "", "User name (the password is read from VIDISPINE_PASSWORD or the config file)")
	flags.String(app.FlagRunAs, "", "Run requests on behalf of this user")
	flags.Bool(app.FlagDebug, false, "Enable debug logging of requests and retries")
	flags.String(app.FlagLogFormat, "", "Log format: text or json")
}

// newAppForCommand is app.NewApp, replaced in tests.
var newAppForCommand = func(cmd *cobra.Command) (*app.App, error) {
	return app.NewApp(cmd)
}

// runWithApp builds the App for cmd and hands it to logic.
func runWithApp(logic func(a *app.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newAppForCommand(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for '%s': %w", cmd.CommandPath(), err)
		}
		defer a.Close()
		return logic(a, cmd, args)
	}
}

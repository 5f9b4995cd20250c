package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(usersLogic),
}

func usersLogic(a *app.App, cmd *cobra.Command, args []string) error {
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	pageSize := pageSizeFor(paging, a.Config.Server)

	users, total, err := collect(cmd.Context(), a.SDK.ListUsers(pageSize), paging, pageSize)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	ui.DisplayUsers(users, total)
	return nil
}

func init() {
	ui.AddPagingFlags(usersCmd)
	rootCmd.AddCommand(usersCmd)
}

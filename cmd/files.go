package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect files on a storage",
}

var filesListCmd = &cobra.Command{
	Use:   "list <storage-id>",
	Short: "List the files of a storage",
	Long:  "Lists files on a storage under a path, optionally filtered by state and joined with the items they belong to.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(filesListLogic),
}

var filesCountCmd = &cobra.Command{
	Use:   "count <storage-id>",
	Short: "Count the files of a storage",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(filesCountLogic),
}

func fileQueryFromFlags(cmd *cobra.Command) vidispine.FileQuery {
	path, _ := cmd.Flags().GetString("path")
	state, _ := cmd.Flags().GetString("state")
	omitItem, _ := cmd.Flags().GetBool("omit-item")
	return vidispine.FileQuery{Path: path, State: state, OmitItem: omitItem}
}

func filesListLogic(a *app.App, cmd *cobra.Command, args []string) error {
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	q := fileQueryFromFlags(cmd)
	q.PageSize = pageSizeFor(paging, a.Config.Server)

	files, total, err := collect(cmd.Context(), a.SDK.ListStorageFiles(args[0], q), paging, q.PageSize)
	if err != nil {
		return fmt.Errorf("listing files of storage %s: %w", args[0], err)
	}
	ui.DisplayFiles(files, total)
	return nil
}

func filesCountLogic(a *app.App, cmd *cobra.Command, args []string) error {
	n, err := a.SDK.StorageFileCount(cmd.Context(), args[0], fileQueryFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("counting files of storage %s: %w", args[0], err)
	}
	fmt.Println(n)
	return nil
}

func addFileQueryFlags(c *cobra.Command) {
	c.Flags().String("path", "/", "Directory on the storage")
	c.Flags().String("state", "", "Only files in this state, e.g. CLOSED or LOST")
	c.Flags().Bool("omit-item", false, "Leave out the item each file belongs to")
}

func init() {
	addFileQueryFlags(filesListCmd)
	addFileQueryFlags(filesCountCmd)
	ui.AddPagingFlags(filesListCmd)
	filesCmd.AddCommand(filesListCmd, filesCountCmd)
	rootCmd.AddCommand(filesCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read or write simple metadata of an entity",
	Long: `Reads or writes the flat field/value metadata of an entity. The entity is
given as an API path such as "item/VX-1" or "collection/VX-2".`,
}

var metadataGetCmd = &cobra.Command{
	Use:   "get <entity-path>",
	Short: "Print the simple metadata of an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(metadataGetLogic),
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <entity-path> <field=value>...",
	Short: "Set simple metadata fields of an entity",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runWithApp(metadataSetLogic),
}

func entityPath(arg string) string {
	return "/" + strings.Trim(arg, "/")
}

func metadataGetLogic(a *app.App, cmd *cobra.Command, args []string) error {
	md, err := a.SDK.GetSimpleMetadata(cmd.Context(), entityPath(args[0]))
	if err != nil {
		return fmt.Errorf("getting metadata of %s: %w", args[0], err)
	}
	ui.DisplayMetadata(md)
	return nil
}

func metadataSetLogic(a *app.App, cmd *cobra.Command, args []string) error {
	pairs, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	md := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		md[kv[0]] = kv[1]
	}
	mode := vidispine.MetadataReplace
	if add, _ := cmd.Flags().GetBool("add"); add {
		mode = vidispine.MetadataAdd
	}

	if _, err := a.SDK.SetSimpleMetadata(cmd.Context(), entityPath(args[0]), md, mode); err != nil {
		return fmt.Errorf("setting metadata of %s: %w", args[0], err)
	}
	ui.Success(fmt.Sprintf("Updated %d field(s) of %s", len(md), args[0]))
	return nil
}

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails <item-id>",
	Short: "List the thumbnail URIs of an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(thumbnailsLogic),
}

func thumbnailsLogic(a *app.App, cmd *cobra.Command, args []string) error {
	uris, err := a.SDK.ThumbnailURIs(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing thumbnails of %s: %w", args[0], err)
	}
	ui.DisplayURIs(uris)
	return nil
}

func init() {
	metadataSetCmd.Flags().Bool("add", false, "Add values instead of replacing existing ones")
	metadataCmd.AddCommand(metadataGetCmd, metadataSetCmd)
	rootCmd.AddCommand(metadataCmd, thumbnailsCmd)
}

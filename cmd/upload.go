package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> <api-path>",
	Short: "Upload a file in chunks",
	Long: `Uploads a local file to an API path in fixed-size chunks sharing one
transfer id, e.g. "vsclient upload clip.mov import/raw" or
"vsclient upload clip.mov storage/VX-1/file/raw". The first failing chunk
aborts the upload and nothing is resumed.`,
	Args: cobra.ExactArgs(2),
	RunE: runWithApp(uploadLogic),
}

func uploadLogic(a *app.App, cmd *cobra.Command, args []string) error {
	localPath, apiPath := args[0], "/"+strings.TrimPrefix(args[1], "/")

	flags := cmd.Flags()
	chunkSize, _ := flags.GetInt64("chunk-size")
	priority, _ := flags.GetInt("priority")
	noThrottle, _ := flags.GetBool("no-throttle")
	filename, _ := flags.GetString("filename")
	contentType, _ := flags.GetString("content-type")
	quiet, _ := flags.GetBool("quiet")
	queryArgs, _ := flags.GetStringArray("query")

	query, err := paramsFromFlags(queryArgs)
	if err != nil {
		return fmt.Errorf("parsing --query: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening local file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("getting local file info: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory", localPath)
	}
	if info.Size() == 0 {
		return fmt.Errorf("'%s' is an empty file, nothing to upload", localPath)
	}
	if filename == "" {
		filename = filepath.Base(localPath)
	}

	opts := vidispine.UploadOptions{
		Priority:    priority,
		NoThrottle:  noThrottle,
		Filename:    filename,
		ContentType: contentType,
		Query:       query,
	}
	if !quiet {
		bar := ui.NewProgressBar(info.Size(), fmt.Sprintf("Uploading %s", filename))
		opts.Progress = ui.UploadProgress(bar)
		defer bar.Finish()
	}

	doc, err := a.SDK.ChunkedUpload(cmd.Context(), f, info.Size(), chunkSize, apiPath, opts)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", localPath, err)
	}

	ui.Success(fmt.Sprintf("Uploaded %s (%d bytes) to %s", localPath, info.Size(), apiPath))
	if !doc.Empty() {
		ui.DisplayDocument(doc)
	}
	return nil
}

func addUploadFlags(c *cobra.Command) {
	f := c.Flags()
	f.Int64("chunk-size", vidispine.DefaultChunkSize, "Chunk size in bytes")
	f.Int("priority", vidispine.DefaultTransferPriority, "Transfer priority")
	f.Bool("no-throttle", false, "Ask the server not to throttle the transfer")
	f.String("filename", "", "File name reported to the server (default the local name)")
	f.String("content-type", "", "Content-Type of the chunks (default application/octet-stream)")
	f.StringArrayP("query", "q", nil, "Extra query parameter key=value, repeatable")
	f.Bool("quiet", false, "Do not show a progress bar")
}

func init() {
	addUploadFlags(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}

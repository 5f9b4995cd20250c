package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var requestCmd = &cobra.Command{
	Use:   "request <api-path>",
	Short: "Send a request to an API path and print the response",
	Long: `Sends a single API request, retrying while the server is unavailable, and
prints the response. The path is relative to /API, e.g. "item/VX-1/metadata".
Matrix and query parameters are given as repeated key=value flags.`,
	Aliases: []string{"get"},
	Args:    cobra.ExactArgs(1),
	RunE:    runWithApp(requestLogic),
}

func requestLogic(a *app.App, cmd *cobra.Command, args []string) error {
	ep, err := endpointFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := a.SDK.Request(cmd.Context(), ep)
	if err != nil {
		return fmt.Errorf("%s %s: %w", ep.Method, ep.URL(), err)
	}
	ui.DisplayDocument(doc)
	return nil
}

func endpointFromFlags(cmd *cobra.Command, path string) (vidispine.Endpoint, error) {
	flags := cmd.Flags()
	method, _ := flags.GetString("method")
	accept, _ := flags.GetString("accept")
	contentType, _ := flags.GetString("content-type")
	bodyFile, _ := flags.GetString("body-file")
	matrixArgs, _ := flags.GetStringArray("matrix")
	queryArgs, _ := flags.GetStringArray("query")

	matrix, err := paramsFromFlags(matrixArgs)
	if err != nil {
		return vidispine.Endpoint{}, fmt.Errorf("parsing --matrix: %w", err)
	}
	query, err := paramsFromFlags(queryArgs)
	if err != nil {
		return vidispine.Endpoint{}, fmt.Errorf("parsing --query: %w", err)
	}

	ep := vidispine.Endpoint{
		Path:        "/" + strings.TrimPrefix(path, "/"),
		Method:      strings.ToUpper(method),
		Matrix:      matrix,
		Query:       query,
		Accept:      accept,
		ContentType: contentType,
	}
	if bodyFile != "" {
		body, err := os.ReadFile(bodyFile)
		if err != nil {
			return vidispine.Endpoint{}, fmt.Errorf("reading request body: %w", err)
		}
		ep.Body = body
	}
	return ep, nil
}

func addRequestFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringP("method", "X", http.MethodGet, "HTTP method")
	f.String("accept", vidispine.ContentTypeXML, "Accept header; anything but XML is printed as text")
	f.String("content-type", "", "Content-Type of the body (default application/xml)")
	f.String("body-file", "", "Read the request body from this file")
	f.StringArrayP("matrix", "m", nil, "Matrix parameter key=value, repeatable")
	f.StringArrayP("query", "q", nil, "Query parameter key=value, repeatable")
}

func init() {
	addRequestFlags(requestCmd)
	rootCmd.AddCommand(requestCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var searchCmd = &cobra.Command{
	Use:   "search <items|collections>",
	Short: "Search items or collections",
	Long: `Runs an item or collection search. Criteria are given as repeated
--field name=value flags; several values for the same field match any of
them. Without criteria every entity matches.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"items", "collections"},
	RunE:      runWithApp(searchLogic),
}

func searchLogic(a *app.App, cmd *cobra.Command, args []string) error {
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	doc, err := searchDocumentFromFlags(cmd)
	if err != nil {
		return err
	}
	pageSize := pageSizeFor(paging, a.Config.Server)

	var cur *vidispine.Cursor[vidispine.SearchHit]
	switch args[0] {
	case "items", "item":
		cur, err = a.SDK.SearchItems(doc, pageSize)
	case "collections", "collection":
		cur, err = a.SDK.SearchCollections(doc, pageSize)
	default:
		return fmt.Errorf("unknown search target %q, expected items or collections", args[0])
	}
	if err != nil {
		return err
	}

	hits, total, err := collect(cmd.Context(), cur, paging, pageSize)
	if err != nil {
		return fmt.Errorf("searching %s: %w", args[0], err)
	}
	ui.DisplaySearchHits(hits, total)

	if withFacets, _ := cmd.Flags().GetStringArray("facet"); len(withFacets) > 0 {
		facets, err := cur.Facets(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading facets: %w", err)
		}
		ui.DisplayFacets(facets)
	}
	return nil
}

func searchDocumentFromFlags(cmd *cobra.Command) (*vidispine.SearchDocument, error) {
	flags := cmd.Flags()
	fields, _ := flags.GetStringArray("field")
	facets, _ := flags.GetStringArray("facet")
	sorts, _ := flags.GetStringArray("sort")
	group, _ := flags.GetString("group")
	container, _ := flags.GetString("in")

	doc := vidispine.NewSearchDocument()
	doc.Group = group
	doc.Container = container

	pairs, err := parseAssignments(fields)
	if err != nil {
		return nil, fmt.Errorf("parsing --field: %w", err)
	}
	var order []string
	values := map[string][]any{}
	for _, kv := range pairs {
		if _, seen := values[kv[0]]; !seen {
			order = append(order, kv[0])
		}
		values[kv[0]] = append(values[kv[0]], kv[1])
	}
	for _, name := range order {
		doc.Field(name, values[name]...)
	}

	for _, f := range facets {
		doc.Facet(vidispine.FacetSpec{Field: f, Count: true})
	}
	for _, s := range sorts {
		field, dir, _ := strings.Cut(s, ":")
		if dir == "" {
			dir = string(vidispine.Ascending)
		}
		if err := doc.AddSort(field, vidispine.SortOrder(dir)); err != nil {
			return nil, fmt.Errorf("parsing --sort: %w", err)
		}
	}
	return doc, nil
}

func addSearchFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringArrayP("field", "f", nil, "Criterion name=value, repeatable")
	f.StringArray("facet", nil, "Count hits per value of this field, repeatable")
	f.StringArray("sort", nil, "Sort by field[:ascending|descending], repeatable")
	f.String("group", "", "Metadata group to search in")
	f.String("in", "", "Restrict the search to this collection or library")
	ui.AddPagingFlags(c)
}

func init() {
	addSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

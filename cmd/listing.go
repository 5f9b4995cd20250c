package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

// collect reads the results selected by the paging flags: one explicit page,
// every page, or the first pageSize results. It also returns the total
// reported by the server.
func collect[T any](ctx context.Context, cur *vidispine.Cursor[T], p ui.Paging, pageSize int) ([]T, int, error) {
	if p.Page >= 0 {
		return cur.PageWithTotal(ctx, p.Page)
	}

	var out []T
	for v, err := range cur.All(ctx) {
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
		if !p.All && len(out) >= pageSize {
			break
		}
	}
	total, err := cur.Total(ctx)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// pageSizeFor picks the page size of a listing: the flag, else the
// configured value.
func pageSizeFor(p ui.Paging, cfg vidispine.Config) int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	if cfg.PageSize > 0 {
		return cfg.PageSize
	}
	return vidispine.DefaultPageSize
}

// parseAssignments splits "key=value" arguments.
func parseAssignments(args []string) ([][2]string, error) {
	out := make([][2]string, 0, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		out = append(out, [2]string{k, v})
	}
	return out, nil
}

// paramsFromFlags builds Params from repeated key=value flags. A key given
// more than once becomes a list.
func paramsFromFlags(args []string) (vidispine.Params, error) {
	pairs, err := parseAssignments(args)
	if err != nil {
		return nil, err
	}
	var p vidispine.Params
	for _, kv := range pairs {
		if existing, ok := p.Get(kv[0]); ok {
			p = p.Set(kv[0], vidispine.List(append(existing.Values(), kv[1])...))
			continue
		}
		p = p.Add(kv[0], vidispine.Scalar(kv[1]))
	}
	return p, nil
}

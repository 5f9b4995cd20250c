package vidispine

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Materializer turns one result element into a value. ok is false when the
// element is not a kind the listing can contain.
type Materializer[T any] func(el *etree.Element) (v T, ok bool, err error)

// CursorOptions describes a paginated listing.
type CursorOptions struct {
	Path   string
	Method string
	Body   []byte
	Matrix Params
	Query  Params

	PageSize  int    // defaults to DefaultPageSize
	OffsetKey string // defaults to "first"
	CountKey  string // defaults to "number"
	InQuery   bool   // paging parameters go in the query string instead of the matrix
	ZeroBased bool   // the first offset is 0 instead of 1
}

// FacetCount is one value of a facet with its hit count.
type FacetCount struct {
	Value string
	Count int64
}

// Facet is the aggregation of a search result over one field.
type Facet struct {
	Field  string
	Counts []FacetCount
}

// Cursor iterates a paginated listing. Pages are fetched on demand and only
// the current one is kept. A Cursor is single-pass and not safe for
// concurrent use.
//
//	cur := client.FindJobs(vidispine.JobQuery{State: []string{"FAILED_TOTAL"}})
//	for cur.Next(ctx) {
//		fmt.Println(cur.Value().ID)
//	}
//	if err := cur.Err(); err != nil {
//		return err
//	}
type Cursor[T any] struct {
	req         Requester
	opts        CursorOptions
	materialize Materializer[T]

	retrieved int
	total     int
	page      *etree.Element
	nodes     []*etree.Element
	pos       int

	cur  T
	err  error
	done bool
}

// NewCursor returns a cursor over the listing described by opts. Nothing is
// fetched until the first call to Next, Total or Facets.
func NewCursor[T any](req Requester, opts CursorOptions, materialize Materializer[T]) *Cursor[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.OffsetKey == "" {
		opts.OffsetKey = "first"
	}
	if opts.CountKey == "" {
		opts.CountKey = "number"
	}
	return &Cursor[T]{req: req, opts: opts, materialize: materialize, total: -1}
}

// Next advances to the next value, fetching a page when the current one is
// exhausted. It returns false at the end of the listing or on error.
func (c *Cursor[T]) Next(ctx context.Context) bool {
	if c.err != nil || c.done {
		return false
	}
	for {
		if c.pos < len(c.nodes) {
			el := c.nodes[c.pos]
			c.pos++
			v, err := c.convert(el)
			if err != nil {
				c.err = err
				return false
			}
			c.cur = v
			return true
		}
		if c.total >= 0 && c.retrieved >= c.total {
			c.done = true
			return false
		}
		if err := c.advance(ctx); err != nil {
			c.err = err
			return false
		}
		if len(c.nodes) == 0 {
			c.done = true
			return false
		}
	}
}

// Value returns the value Next moved to.
func (c *Cursor[T]) Value() T {
	return c.cur
}

// Err returns the error that stopped iteration, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}

// Total returns the hit count reported by the first page, fetching it if needed.
func (c *Cursor[T]) Total(ctx context.Context) (int, error) {
	if err := c.ensureFirstPage(ctx); err != nil {
		return 0, err
	}
	return c.total, nil
}

// Retrieved returns how many results have been fetched so far.
func (c *Cursor[T]) Retrieved() int {
	return c.retrieved
}

// Facets returns the facet counts of the current page without consuming values.
func (c *Cursor[T]) Facets(ctx context.Context) ([]Facet, error) {
	if err := c.ensureFirstPage(ctx); err != nil {
		return nil, err
	}
	return parseFacets(c.page)
}

// Page fetches the n-th page (0-based) directly. It does not affect Next.
func (c *Cursor[T]) Page(ctx context.Context, n int) ([]T, error) {
	values, _, err := c.PageWithTotal(ctx, n)
	return values, err
}

// PageWithTotal is Page that also returns the hit count reported with that
// page, so random access never needs a call to Total.
func (c *Cursor[T]) PageWithTotal(ctx context.Context, n int) ([]T, int, error) {
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: negative page index %d", ErrInvalidData, n)
	}
	root, err := c.fetch(ctx, c.base()+n*c.opts.PageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := parseHits(root)
	if err != nil {
		return nil, 0, err
	}
	nodes := resultNodes(root)
	out := make([]T, 0, len(nodes))
	for _, el := range nodes {
		v, err := c.convert(el)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// All adapts the cursor to a range-over-func sequence. Iteration stops after
// yielding the first error.
func (c *Cursor[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for c.Next(ctx) {
			if !yield(c.cur, nil) {
				return
			}
		}
		if c.err != nil {
			var zero T
			yield(zero, c.err)
		}
	}
}

// Collect drains the cursor into a slice.
func (c *Cursor[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for c.Next(ctx) {
		out = append(out, c.cur)
	}
	return out, c.err
}

func (c *Cursor[T]) base() int {
	if c.opts.ZeroBased {
		return 0
	}
	return 1
}

func (c *Cursor[T]) ensureFirstPage(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	if c.page != nil {
		return nil
	}
	if err := c.advance(ctx); err != nil {
		c.err = err
		return err
	}
	return nil
}

// advance replaces the cached page with the next one.
func (c *Cursor[T]) advance(ctx context.Context) error {
	root, err := c.fetch(ctx, c.retrieved+c.base())
	if err != nil {
		return err
	}
	hits, err := parseHits(root)
	if err != nil {
		return err
	}
	if c.total < 0 {
		c.total = hits
	}
	c.page = root
	c.nodes = resultNodes(root)
	c.pos = 0
	c.retrieved += len(c.nodes)
	return nil
}

func (c *Cursor[T]) fetch(ctx context.Context, offset int) (*etree.Element, error) {
	paging := Params{}.
		Set(c.opts.OffsetKey, Int(int64(offset))).
		Set(c.opts.CountKey, Int(int64(c.opts.PageSize)))

	ep := Endpoint{
		Path:   c.opts.Path,
		Method: c.opts.Method,
		Body:   c.opts.Body,
		Matrix: c.opts.Matrix,
		Query:  c.opts.Query,
	}
	if c.opts.InQuery {
		ep.Query = ep.Query.Merge(paging)
	} else {
		ep.Matrix = ep.Matrix.Merge(paging)
	}

	doc, err := c.req.Request(ctx, ep)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: %s returned no document", ErrUnexpectedShape, c.opts.Path)
	}
	return root, nil
}

func (c *Cursor[T]) convert(el *etree.Element) (T, error) {
	v, ok, err := c.materialize(el)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%w: unexpected <%s> in %s listing", ErrUnexpectedShape, el.Tag, c.opts.Path)
	}
	return v, nil
}

func parseHits(root *etree.Element) (int, error) {
	el := root.SelectElement("hits")
	if el == nil {
		return 0, fmt.Errorf("%w: <%s> has no hits element", ErrUnexpectedShape, root.Tag)
	}
	n, err := strconv.Atoi(strings.TrimSpace(el.Text()))
	if err != nil {
		return 0, fmt.Errorf("%w: hits %q is not a number", ErrUnexpectedShape, el.Text())
	}
	return n, nil
}

// resultNodes returns the children of a page that carry results.
func resultNodes(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, el := range root.ChildElements() {
		if el.Tag == "hits" || el.Tag == "facet" {
			continue
		}
		out = append(out, el)
	}
	return out
}

func parseFacets(root *etree.Element) ([]Facet, error) {
	var facets []Facet
	for _, el := range root.SelectElements("facet") {
		f := Facet{}
		if field := el.SelectElement("field"); field != nil {
			f.Field = field.Text()
		}
		for _, count := range el.SelectElements("count") {
			n, err := strconv.ParseInt(strings.TrimSpace(count.Text()), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: facet count %q is not a number", ErrUnexpectedShape, count.Text())
			}
			f.Counts = append(f.Counts, FacetCount{Value: count.SelectAttrValue("fieldValue", ""), Count: n})
		}
		facets = append(facets, f)
	}
	return facets, nil
}

package vidispine

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// SearchTarget is the entity type a search runs against.
type SearchTarget string

const (
	SearchItem       SearchTarget = "item"
	SearchCollection SearchTarget = "collection"
)

// HitKind says whether a search hit is an item or a collection.
type HitKind string

const (
	HitItem       HitKind = "Item"
	HitCollection HitKind = "Collection"
)

// SearchHit is one result of an item or collection search. Start and End are
// only set for item hits.
type SearchHit struct {
	Kind  HitKind
	ID    string
	Start string
	End   string
}

// SortOrder for SearchDocument.AddSort.
type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

// Range is an inclusive value range. Start and End are rendered with
// FormatSearchValue.
type Range struct {
	Start any
	End   any
}

// Operator combines criteria with AND, OR or NOT.
type Operator struct {
	Operation string
	criteria  []criterion
}

// NewOperator returns an empty operator node.
func NewOperator(operation string) *Operator {
	return &Operator{Operation: operation}
}

// Field adds a field criterion to the operator.
func (o *Operator) Field(name string, values ...any) *Operator {
	o.criteria = append(o.criteria, criterion{name: name, values: values})
	return o
}

// Range adds a field range criterion to the operator.
func (o *Operator) Range(name string, r Range) *Operator {
	o.criteria = append(o.criteria, criterion{name: name, rng: &r})
	return o
}

// Nest adds a nested operator.
func (o *Operator) Nest(inner *Operator) *Operator {
	o.criteria = append(o.criteria, criterion{op: inner})
	return o
}

type criterion struct {
	name   string
	values []any
	rng    *Range
	op     *Operator
}

// FacetSpec requests aggregated counts over a field.
type FacetSpec struct {
	Field  string
	Count  bool
	Ranges []Range
}

// SearchDocument builds the ItemSearchDocument body of a search.
type SearchDocument struct {
	Group     string
	Container string // restrict the search to a collection or library
	criteria  []criterion
	facets    []FacetSpec
	sorts     []sortSpec
}

type sortSpec struct {
	field string
	order SortOrder
}

// NewSearchDocument returns an empty search. An empty search matches everything.
func NewSearchDocument() *SearchDocument {
	return &SearchDocument{}
}

// Field adds a criterion matching any of values.
func (s *SearchDocument) Field(name string, values ...any) *SearchDocument {
	s.criteria = append(s.criteria, criterion{name: name, values: values})
	return s
}

// Range adds a criterion matching values within r.
func (s *SearchDocument) Range(name string, r Range) *SearchDocument {
	s.criteria = append(s.criteria, criterion{name: name, rng: &r})
	return s
}

// Operator adds a combined criterion.
func (s *SearchDocument) Operator(op *Operator) *SearchDocument {
	s.criteria = append(s.criteria, criterion{op: op})
	return s
}

// Facet requests a facet in the result.
func (s *SearchDocument) Facet(f FacetSpec) *SearchDocument {
	s.facets = append(s.facets, f)
	return s
}

// AddSort orders results by field. order must be Ascending or Descending.
func (s *SearchDocument) AddSort(field string, order SortOrder) error {
	if order != Ascending && order != Descending {
		return fmt.Errorf("%w: sort order must be ascending or descending, got %q", ErrInvalidData, order)
	}
	s.sorts = append(s.sorts, sortSpec{field: field, order: order})
	return nil
}

// Bytes renders the document.
func (s *SearchDocument) Bytes() ([]byte, error) {
	doc, root := NewXMLDocument("ItemSearchDocument")
	if s.Group != "" {
		root.CreateElement("group").SetText(s.Group)
	}
	for _, c := range s.criteria {
		c.render(root)
	}
	for _, f := range s.facets {
		el := root.CreateElement("facet")
		el.CreateAttr("count", strconv.FormatBool(f.Count))
		el.CreateElement("field").SetText(f.Field)
		for _, r := range f.Ranges {
			rng := el.CreateElement("range")
			rng.CreateAttr("start", FormatSearchValue(r.Start))
			rng.CreateAttr("end", FormatSearchValue(r.End))
		}
	}
	for _, so := range s.sorts {
		el := root.CreateElement("sort")
		el.CreateElement("field").SetText(so.field)
		el.CreateElement("order").SetText(string(so.order))
	}
	return doc.WriteToBytes()
}

func (c criterion) render(parent *etree.Element) {
	if c.op != nil {
		op := parent.CreateElement("operator")
		op.CreateAttr("operation", c.op.Operation)
		for _, inner := range c.op.criteria {
			inner.render(op)
		}
		return
	}
	field := parent.CreateElement("field")
	field.CreateElement("name").SetText(c.name)
	if c.rng != nil {
		rng := field.CreateElement("range")
		rng.CreateElement("value").SetText(FormatSearchValue(c.rng.Start))
		rng.CreateElement("value").SetText(FormatSearchValue(c.rng.End))
		return
	}
	for _, v := range c.values {
		field.CreateElement("value").SetText(FormatSearchValue(v))
	}
}

// FormatSearchValue renders a criterion value. Times use the server's
// millisecond-precision UTC format.
func FormatSearchValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format("2006-01-02T15:04:05.000Z")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Search runs s against target and returns a cursor over the hits.
func (c *Client) Search(target SearchTarget, s *SearchDocument, pageSize int) (*Cursor[SearchHit], error) {
	c.logger.Debugf("Search called with target: %s, pageSize: %d", target, pageSize)

	body, err := s.Bytes()
	if err != nil {
		return nil, fmt.Errorf("rendering search document: %w", err)
	}
	path := "/" + string(target)
	if s.Container != "" {
		path += "/" + s.Container + "/item"
	}
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}
	return NewCursor(c, CursorOptions{
		Path:     path,
		Method:   http.MethodPut,
		Body:     body,
		PageSize: pageSize,
	}, materializeSearchHit), nil
}

// SearchItems is Search against items.
func (c *Client) SearchItems(s *SearchDocument, pageSize int) (*Cursor[SearchHit], error) {
	return c.Search(SearchItem, s, pageSize)
}

// SearchCollections is Search against collections.
func (c *Client) SearchCollections(s *SearchDocument, pageSize int) (*Cursor[SearchHit], error) {
	return c.Search(SearchCollection, s, pageSize)
}

func materializeSearchHit(el *etree.Element) (SearchHit, bool, error) {
	switch el.Tag {
	case "item":
		id := el.SelectAttrValue("id", "")
		if id == "" {
			return SearchHit{}, false, fmt.Errorf("%w: <item> without id", ErrUnexpectedShape)
		}
		return SearchHit{
			Kind:  HitItem,
			ID:    id,
			Start: el.SelectAttrValue("start", ""),
			End:   el.SelectAttrValue("end", ""),
		}, true, nil

	case "collection":
		id := el.SelectAttrValue("id", "")
		if id == "" {
			if n := el.SelectElement("id"); n != nil {
				id = n.Text()
			}
		}
		if id == "" {
			return SearchHit{}, false, fmt.Errorf("%w: <collection> without id attribute or element", ErrUnexpectedShape)
		}
		return SearchHit{Kind: HitCollection, ID: id}, true, nil

	case "entry":
		kind := HitKind(el.SelectAttrValue("type", ""))
		if kind != HitItem && kind != HitCollection {
			return SearchHit{}, false, fmt.Errorf("%w: <entry> of unknown type %q", ErrUnexpectedShape, kind)
		}
		return SearchHit{Kind: kind, ID: el.SelectAttrValue("id", "")}, true, nil
	}
	return SearchHit{}, false, nil
}

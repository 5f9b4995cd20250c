package vidispine

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// JobQuery filters FindJobs. Empty fields are not sent.
type JobQuery struct {
	State []string // e.g. RUNNING, FINISHED, FAILED_TOTAL
	Type  []string // e.g. IMPORT, TRANSCODE, THUMBNAIL
	Sort  string

	// OnlyUser restricts the listing to jobs of the authenticated user.
	OnlyUser bool

	PageSize int
}

// JobRef is one entry of a job listing.
type JobRef struct {
	ID     string
	User   string
	Type   string
	Status string
	Start  string
}

// Failed reports whether the job ended in a FAILED or ABORTED state.
func (j JobRef) Failed() bool {
	return strings.HasPrefix(j.Status, "FAILED") || strings.HasPrefix(j.Status, "ABORTED")
}

// FindJobs lists jobs matching q. Job offsets start at zero.
func (c *Client) FindJobs(q JobQuery) *Cursor[JobRef] {
	c.logger.Debugf("FindJobs called with state: %v, type: %v", q.State, q.Type)

	var matrix Params
	if len(q.State) > 0 {
		matrix = matrix.Set("state", Scalar(strings.Join(q.State, ",")))
	}
	if len(q.Type) > 0 {
		matrix = matrix.Set("type", Scalar(strings.Join(q.Type, ",")))
	}
	if q.Sort != "" {
		matrix = matrix.Set("sort", Scalar(q.Sort))
	}
	if !q.OnlyUser {
		matrix = matrix.Set("user", Bool(false))
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}
	return NewCursor(c, CursorOptions{
		Path:      "/job",
		Matrix:    matrix,
		PageSize:  pageSize,
		ZeroBased: true,
	}, materializeJob)
}

func materializeJob(el *etree.Element) (JobRef, bool, error) {
	if el.Tag != "job" {
		return JobRef{}, false, nil
	}
	id := childText(el, "jobId", "")
	if id == "" {
		return JobRef{}, false, fmt.Errorf("%w: <job> without jobId", ErrUnexpectedShape)
	}
	return JobRef{
		ID:     id,
		User:   childText(el, "user", ""),
		Type:   childText(el, "type", ""),
		Status: childText(el, "status", ""),
		Start:  childText(el, "started", ""),
	}, true, nil
}

package vidispine

import (
	"fmt"

	"github.com/beevik/etree"
)

// UserRef is one entry of the user listing.
type UserRef struct {
	UserName string
	RealName string
	Origin   string
	Disabled bool
}

// ListUsers lists every user on the server. Paging parameters go in the
// query string for this resource.
func (c *Client) ListUsers(pageSize int) *Cursor[UserRef] {
	c.logger.Debugf("ListUsers called with pageSize: %d", pageSize)

	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}
	return NewCursor(c, CursorOptions{
		Path:     "/user",
		PageSize: pageSize,
		InQuery:  true,
	}, materializeUser)
}

func materializeUser(el *etree.Element) (UserRef, bool, error) {
	if el.Tag != "user" {
		return UserRef{}, false, nil
	}
	name := childText(el, "userName", "")
	if name == "" {
		return UserRef{}, false, fmt.Errorf("%w: <user> without userName", ErrUnexpectedShape)
	}
	return UserRef{
		UserName: name,
		RealName: childText(el, "realName", ""),
		Origin:   childText(el, "origin", ""),
		Disabled: el.SelectAttrValue("disabled", "false") == "true",
	}, true, nil
}

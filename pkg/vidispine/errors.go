package vidispine

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// Sentinel errors
var (
	ErrNotFound           = errors.New("not found")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("conflict")
	ErrServer             = errors.New("server error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrGatewayTimeout     = errors.New("gateway timeout")
	ErrTransport          = errors.New("transport failure")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrParse              = errors.New("response is not valid XML")
	ErrUnexpectedShape    = errors.New("unexpected document shape")
	ErrInvalidData        = errors.New("invalid data")
)

// ErrorKind identifies which family a server error belongs to.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindNotFound
	KindBadRequest
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindConflict:
		return "Conflict"
	default:
		return "Generic"
	}
}

// Error is a non-2xx response mapped onto the Vidispine exception model.
// It is built once by Classify and not modified afterwards.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Reason     string

	// Request context. Empty for KindNotFound.
	Method      string
	URL         string
	RequestBody []byte

	// Fields from the server's ExceptionDocument.
	ExceptionType    string
	ExceptionWhat    string
	ExceptionID      string
	ExceptionContext string

	RawBody []byte
}

func (e *Error) Error() string {
	if e.ExceptionType == "" {
		return fmt.Sprintf("vidispine %s error: server returned %d (%s) for %s %s: %s",
			e.Kind, e.StatusCode, e.Reason, e.Method, e.URL, string(e.RawBody))
	}
	return fmt.Sprintf("vidispine %s error: server returned %d (%s): type=%s context=%s what=%s id=%s",
		e.Kind, e.StatusCode, e.Reason, e.ExceptionType, e.ExceptionContext, e.ExceptionWhat, e.ExceptionID)
}

// Unwrap exposes the sentinel for the error's kind so errors.Is works on it.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindBadRequest:
		return ErrBadRequest
	case KindConflict:
		return ErrConflict
	default:
		return ErrServer
	}
}

// Is reports 503 responses as ErrServiceUnavailable in addition to the kind sentinel.
func (e *Error) Is(target error) bool {
	return target == ErrServiceUnavailable && e.StatusCode == StatusServiceUnavailable
}

// Classify turns a failed response into an *Error. It never fails: a body
// that is not a Vidispine exception document yields a KindGeneric error that
// carries the raw body and status only.
func Classify(status int, reason, method, url string, requestBody, responseBody []byte) *Error {
	exc, ok := parseException(responseBody)
	if !ok {
		return &Error{
			Kind:        KindGeneric,
			StatusCode:  status,
			Reason:      reason,
			Method:      method,
			URL:         url,
			RequestBody: requestBody,
			RawBody:     responseBody,
		}
	}

	e := &Error{
		StatusCode:       status,
		Reason:           reason,
		ExceptionType:    exc.kind,
		ExceptionWhat:    exc.what,
		ExceptionID:      exc.id,
		ExceptionContext: exc.context,
		RawBody:          responseBody,
	}

	switch status {
	case StatusNotFound:
		e.Kind = KindNotFound
		return e
	case StatusBadRequest:
		e.Kind = KindBadRequest
	case StatusConflict:
		e.Kind = KindConflict
	default:
		e.Kind = KindGeneric
	}
	e.Method = method
	e.URL = url
	e.RequestBody = requestBody
	return e
}

type serverException struct {
	kind    string
	what    string
	id      string
	context string
}

// parseException reads the single child of an ExceptionDocument root.
// ok is false when the body is not XML or the root does not have exactly one
// child element.
func parseException(body []byte) (serverException, bool) {
	if len(body) == 0 {
		return serverException{}, false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(decodeText(body)); err != nil {
		return serverException{}, false
	}
	root := doc.Root()
	if root == nil {
		return serverException{}, false
	}
	children := root.ChildElements()
	if len(children) != 1 {
		return serverException{}, false
	}

	child := children[0]
	return serverException{
		kind:    child.Tag,
		what:    childText(child, "explanation", noExplanation),
		id:      childText(child, "id", noID),
		context: childText(child, "context", noContext),
	}, true
}

func childText(el *etree.Element, tag, fallback string) string {
	n := el.SelectElement(tag)
	if n == nil {
		return fallback
	}
	return n.Text()
}

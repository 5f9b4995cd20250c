package vidispine

import "time"

// Namespace is the XML namespace of every Vidispine document.
const Namespace = "http://xml.vidispine.com/schema/vidispine"

// APIRoot is prefixed to every request path.
const APIRoot = "/API"

// Content types understood by the transport.
const (
	ContentTypeXML         = "application/xml"
	ContentTypeJSON        = "application/json"
	ContentTypeText        = "text/plain"
	ContentTypeOctetStream = "application/octet-stream"
)

// HTTP status codes that drive the retry policy.
const (
	StatusSeeOther           = 303
	StatusBadRequest         = 400
	StatusNotFound           = 404
	StatusConflict           = 409
	StatusServiceUnavailable = 503
	StatusGatewayTimeout     = 504
)

// Default transport configuration.
const (
	DefaultPort          = 8080
	DefaultRetryAttempts = 100
	DefaultRetryDelay    = 10 * time.Second
	DefaultPageSize      = 100
	DefaultTimeout       = 0 // zero disables the client-side deadline
)

// Connection recovery constants.
const (
	maxReconnectAttempts = 10
	reconnectPause       = 1 * time.Second

	gatewayInitialDelay = 1 * time.Second
	gatewayMaxDelay     = 8192 * time.Second
	gatewayCleanFactor  = 10
)

// Chunked upload defaults.
const (
	DefaultTransferPriority = 500
	DefaultChunkSize        = 5 * 1024 * 1024
)

// Defaults filled into server exception fields when the error document omits them.
const (
	noExplanation = "no explanation provided"
	noID          = "no id provided"
	noContext     = "no context provided"
)

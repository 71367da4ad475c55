package errors

import "net/http"

// Kind is the stable machine-readable error category reported to every
// surface. The HTTP surface maps a kind to a status code; the tool surface
// carries it next to the message.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidArgument  Kind = "invalid_argument"
	KindInvalidOperation Kind = "invalid_operation"
	KindUnavailable      Kind = "unavailable"
	KindInternal         Kind = "internal"
)

// Code represents an error code with HTTP status, kind and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Kind    Kind   // Stable error category
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer   = 1000
	ErrInvalidParams    = 1001
	ErrNotFound         = 1002
	ErrInvalidOperation = 1003
	ErrServiceUnavail   = 1008

	// Assistant errors (2000-2999)
	ErrAssistantNotFound = 2000

	// Topic errors (3000-3999)
	ErrTopicNotFound      = 3000
	ErrTopicAssistantRef  = 3001
	ErrTopicInvalidFields = 3002

	// Message errors (4000-4999)
	ErrMessageInvalidRole    = 4000
	ErrMessageMissingContent = 4001

	// Store errors (5000-5999)
	ErrStateUnavailable   = 5000
	ErrDurableUnavailable = 5001
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "", "Success"},

	// Common errors
	ErrInternalServer:   {ErrInternalServer, http.StatusInternalServerError, KindInternal, "Internal server error"},
	ErrInvalidParams:    {ErrInvalidParams, http.StatusBadRequest, KindInvalidArgument, "Invalid parameters"},
	ErrNotFound:         {ErrNotFound, http.StatusNotFound, KindNotFound, "Resource not found"},
	ErrInvalidOperation: {ErrInvalidOperation, http.StatusBadRequest, KindInvalidOperation, "Unknown operation"},
	ErrServiceUnavail:   {ErrServiceUnavail, http.StatusServiceUnavailable, KindUnavailable, "Service unavailable"},

	// Assistant errors
	ErrAssistantNotFound: {ErrAssistantNotFound, http.StatusNotFound, KindNotFound, "Assistant not found"},

	// Topic errors
	ErrTopicNotFound:      {ErrTopicNotFound, http.StatusNotFound, KindNotFound, "Topic not found"},
	ErrTopicAssistantRef:  {ErrTopicAssistantRef, http.StatusBadRequest, KindInvalidArgument, "Assistant ID is required"},
	ErrTopicInvalidFields: {ErrTopicInvalidFields, http.StatusBadRequest, KindInvalidArgument, "Invalid topic fields"},

	// Message errors
	ErrMessageInvalidRole:    {ErrMessageInvalidRole, http.StatusBadRequest, KindInvalidArgument, "Invalid message role"},
	ErrMessageMissingContent: {ErrMessageMissingContent, http.StatusBadRequest, KindInvalidArgument, "Message content is required"},

	// Store errors
	ErrStateUnavailable:   {ErrStateUnavailable, http.StatusServiceUnavailable, KindUnavailable, "State store unavailable"},
	ErrDurableUnavailable: {ErrDurableUnavailable, http.StatusServiceUnavailable, KindUnavailable, "Durable store unavailable"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns the HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetKind returns the stable kind string for a given error code
func GetKind(code int) Kind {
	return GetCode(code).Kind
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return msg + ": " + details[0]
	}
	return msg
}

package errors

import (
	"fmt"
	"net/http"
)

// Code binds a business error code to an HTTP status and a message.
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	// Common errors (1000-1999)
	ErrInternalServer = 1000

	// Configuration errors (2000-2999)
	ErrConfigInvalid = 2000

	// Generation errors (3000-3999)
	ErrGenerationFailed  = 3000
	ErrGenerationTimeout = 3001
)

var codeMap = map[int]Code{
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},

	ErrConfigInvalid: {ErrConfigInvalid, http.StatusInternalServerError, "Service is not configured"},

	ErrGenerationFailed:  {ErrGenerationFailed, http.StatusBadGateway, "Content generation failed"},
	ErrGenerationTimeout: {ErrGenerationTimeout, http.StatusGatewayTimeout, "Content generation timed out"},
}

// GetCode falls back to ErrInternalServer for unknown codes.
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError appends the first non-empty detail to the code's message.
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}

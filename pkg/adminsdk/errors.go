package adminsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultErrorMessage is used when an error body carries neither detail nor
// message.
const DefaultErrorMessage = "An error occurred"

// ErrInvalidID is returned before any request is made when a resource id is
// not a UUID.
var ErrInvalidID = errors.New("adminsdk: invalid id")

// APIError is a non-2xx response from the catalog API. Error returns Message
// unchanged so it can be shown to the operator as is.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Message is the human readable reason
	Message string

	// Body is the raw response body
	Body []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// errorBody covers the two error shapes the API produces: {"detail": ...} from
// HTTPException and validation failures, {"message": ...} from the rest.
// Detail is a string or a list of validation entries.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationEntry struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Body: body}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return apiErr
	}

	if msg := detailMessage(eb.Detail); msg != "" {
		apiErr.Message = msg
	} else if eb.Message != "" {
		apiErr.Message = eb.Message
	} else {
		apiErr.Message = DefaultErrorMessage
	}

	return apiErr
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var entries []validationEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

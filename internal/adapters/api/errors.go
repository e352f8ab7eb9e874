package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"labbooking/internal/domain"
)

// GenericMessage is surfaced when the backend rejects a request without a usable message.
const GenericMessage = "cannot complete operation"

// Error is a classified backend failure. It matches its Kind (a domain sentinel) with errors.Is.
type Error struct {
	Kind    error
	Status  int
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Field != "" {
		return e.Field + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// dependencyText matches backend messages about related records blocking a delete.
var dependencyText = regexp.MustCompile(`(?i)foreign key|reference|constraint|related|dependent|in use|being used`)

// classify maps a non-2xx response to an *Error.
func classify(method string, status int, body []byte) *Error {
	field, msg := extractMessage(body)
	e := &Error{Status: status, Message: msg}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = domain.ErrAuthenticationRequired
	case status == http.StatusForbidden:
		e.Kind = domain.ErrAccessDenied
	case status == http.StatusNotFound:
		e.Kind = domain.ErrNotFound
	case method == http.MethodDelete && (status == http.StatusConflict || dependencyText.Match(body)):
		e.Kind = domain.ErrDependencyConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = domain.ErrValidationRejected
		e.Field = field
		if e.Message == "" {
			e.Message = GenericMessage
		}
	default:
		e.Kind = domain.ErrUnexpectedStatus
	}
	return e
}

// extractMessage returns the first field-level message from a structured error body,
// or the top-level message. Field names are visited in sorted order so the pick is stable.
func extractMessage(body []byte) (field, message string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		// Plain-text bodies are passed through unless they look like an HTML error page.
		if strings.HasPrefix(trimmed, "<") {
			return "", ""
		}
		return "", trimmed
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		if s, ok := doc.(string); ok {
			return "", strings.TrimSpace(s)
		}
		return "", ""
	}

	if errs, ok := firstKey(obj, "errors", "Errors"); ok {
		switch v := errs.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if m := firstText(v[k]); m != "" {
					return k, m
				}
			}
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					f, _ := firstKey(m, "field", "Field", "propertyName", "PropertyName")
					if msg := firstText(pick(m, "message", "Message", "errorMessage", "ErrorMessage")); msg != "" {
						fs, _ := f.(string)
						return fs, msg
					}
					continue
				}
				if msg := firstText(item); msg != "" {
					return "", msg
				}
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return "", s
			}
		}
	}

	return "", firstText(pick(obj, "message", "Message", "error", "Error", "detail", "title"))
}

func firstKey(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pick(m map[string]any, keys ...string) any {
	v, _ := firstKey(m, keys...)
	return v
}

// firstText returns a string, the first string of a list, or a nested message.
func firstText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []any:
		for _, item := range x {
			if s := firstText(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return firstText(pick(x, "message", "Message"))
	}
	return ""
}

// IsRetryable reports whether the caller may offer a manual retry.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrUnreachable)
}

package httpclient

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/niksmo/techstore/internal/core/domain"
)

const maxErrorBody = 64 << 10

var ErrMalformedResponse = errors.New("malformed response")

// errorBody covers both {"detail": "..."} and the validation list form
// {"detail": [{"msg": "..."}]}, plus {"message": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

func kindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status >= http.StatusInternalServerError:
		return domain.ErrNetwork
	default:
		return domain.ErrValidation
	}
}

func newAPIError(res *http.Response) *domain.APIError {
	return &domain.APIError{
		Kind:   kindOf(res.StatusCode),
		Status: res.StatusCode,
		Detail: readDetail(res.Body),
	}
}

func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}

	var body errorBody
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}

	if d := detailText(body.Detail); d != "" {
		return d
	}
	return body.Message
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []validationItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}

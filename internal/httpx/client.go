package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error reply is read when mapping it to
// an APIError.
const maxErrorBody = 64 * 1024

// wireError covers the error body vocabularies of the backends we talk to.
// Different vendors put the code and message in different fields.
type wireError struct {
	Code             json.Number     `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Error            json.RawMessage `json:"error"` // string, or a nested {code, message} object
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w wireError) nested() (nestedError, bool) {
	var n nestedError
	if len(w.Error) > 0 && w.Error[0] == '{' && json.Unmarshal(w.Error, &n) == nil {
		return n, true
	}
	return n, false
}

func (w wireError) code() string {
	if w.ErrorCode != "" {
		return w.ErrorCode
	}
	var s string
	if len(w.Error) > 0 && json.Unmarshal(w.Error, &s) == nil && s != "" {
		return s
	}
	if n, ok := w.nested(); ok && n.Code != "" {
		return n.Code
	}
	return w.Code.String()
}

func (w wireError) message() string {
	for _, m := range []string{w.Message, w.Msg, w.ErrorDescription} {
		if m != "" {
			return m
		}
	}
	if n, ok := w.nested(); ok {
		return n.Message
	}
	return ""
}

// NewJSONRequest builds a request with a JSON-encoded body and the matching
// Content-Type header. A nil body produces a bodyless request.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// DoJSON executes req and decodes a JSON reply into out (which may be nil
// when the caller only cares about success). Non-2xx replies are read,
// best-effort parsed for a backend code and message, and returned as an
// *APIError. A 2xx body that fails to decode is reported via
// ErrUnexpectedShape.
func DoJSON(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ReadAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}

// ReadAPIError drains a non-2xx response body into an *APIError.
func ReadAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var w wireError
	if json.Unmarshal(data, &w) == nil {
		apiErr.Code = w.code()
		apiErr.Message = w.message()
	}
	if apiErr.Message == "" && len(data) > 0 && data[0] != '{' {
		apiErr.Message = string(bytes.TrimSpace(data))
	}
	return apiErr
}

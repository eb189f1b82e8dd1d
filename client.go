package microrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ClientOption is a function that configures a client.
type ClientOption func(*Client)

// Client builds JSON-RPC 2.0 request bytes for an engine reachable over any
// byte transport, and decodes the matching responses. It sits outside the
// allocation-free core: builders marshal through encoding/json and mint
// string ids, UUIDs by default.
//
// A Client must be created using NewClient.
type Client struct {
	newID func() string
}

var errInvalidResponse = errors.New("invalid jsonrpc response")

// NewClient creates a new client with the specified configuration.
func NewClient(options ...ClientOption) Client {
	c := Client{}
	for _, opt := range options {
		opt(&c)
	}
	if c.newID == nil {
		c.newID = func() string {
			return uuid.New().String()
		}
	}
	return c
}

// WithIDFunc sets the id source for the client, replacing the default UUID
// generator.
func WithIDFunc(fn func() string) ClientOption {
	return func(c *Client) {
		c.newID = fn
	}
}

type requestEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      string          `json:"id,omitempty"`
}

// NewRequest builds a single 2.0 request for method with a freshly minted id,
// returning the request bytes and the id to correlate the response with.
// params must be valid JSON, or empty to omit the member.
func (c Client) NewRequest(method, params string) ([]byte, string, error) {
	id := c.newID()
	req, err := json.Marshal(requestEnvelope{
		JSONRPC: "2.0",
		Method:  method,
		Params:  json.RawMessage(params),
		ID:      id,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return req, id, nil
}

// NewNotification builds a 2.0 notification for method: a request without an
// id, for which the engine emits no response.
func (c Client) NewNotification(method, params string) ([]byte, error) {
	req, err := json.Marshal(requestEnvelope{
		JSONRPC: "2.0",
		Method:  method,
		Params:  json.RawMessage(params),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return req, nil
}

// NewBatch joins previously built requests into one batch request. The
// response array carries the fragments in the same order.
func (c Client) NewBatch(requests ...[]byte) []byte {
	batch := append([]byte("["), bytes.Join(requests, []byte(", "))...)
	return append(batch, ']')
}

// ResponseError is the error object carried by a failed response.
type ResponseError struct {
	Code    ErrorCode
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Response is the decoded view of a single response. Result aliases the data
// the response was parsed from and is nil when the response carries an error;
// ID is the echoed id literal without string quotes.
type Response struct {
	ID     string
	Result []byte
	Err    *ResponseError
}

// ParseResponse decodes one non-batch response using the package's own
// tokenizer and the supplied arena. Batch responses are plain JSON arrays;
// callers take them apart with the Tree accessors instead.
func ParseResponse(data []byte, arena []Token) (Response, error) {
	t, err := ParseTree(data, arena)
	if err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if t.KindOf(0) != KindObject {
		return Response{}, errInvalidResponse
	}

	resp := Response{ID: t.Text(t.Value(0, 0, "id"))}

	errVal := t.Value(0, 0, "error")
	if errVal >= 0 && string(t.Bytes(errVal)) != "null" {
		code, err := strconv.ParseInt(t.Text(t.Value(errVal, 0, "code")), 10, 64)
		if err != nil {
			return Response{}, fmt.Errorf("failed to parse error code: %w", err)
		}
		resp.Err = &ResponseError{
			Code:    ErrorCode(code),
			Message: t.Text(t.Value(errVal, 0, "message")),
		}
		return resp, nil
	}

	resVal := t.Value(0, 0, "result")
	if resVal < 0 {
		return Response{}, errInvalidResponse
	}
	resp.Result = t.Bytes(resVal)
	return resp, nil
}

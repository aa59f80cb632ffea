package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ReplyErrorKind string

const (
	ReplyTransport ReplyErrorKind = "transport"
	ReplyStatus    ReplyErrorKind = "status"
	ReplyDecode    ReplyErrorKind = "decode"
	ReplyMissing   ReplyErrorKind = "no_reply"
)

// ReplyError describes why the relay did not produce a reply.
type ReplyError struct {
	Kind       ReplyErrorKind
	StatusCode int
	Err        error
}

func (e *ReplyError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("relay %s: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("relay %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("relay %s", e.Kind)
	}
}

func (e *ReplyError) Unwrap() error { return e.Err }

// IsNoReply reports whether err means the relay answered without a reply.
func IsNoReply(err error) bool {
	var re *ReplyError
	return errors.As(err, &re) && re.Kind == ReplyMissing
}

// RelayClient calls a reply endpoint that takes {"query"} and returns {"reply"}.
// It makes one attempt per call.
type RelayClient struct {
	Endpoint string
	Client   *http.Client
}

type relayReq struct {
	Query string `json:"query"`
}

type relayResp struct {
	Reply *string `json:"reply"`
}

// NewRelayClient builds a client; timeout 0 leaves only the request context
// in control.
func NewRelayClient(endpoint string, timeout time.Duration) *RelayClient {
	return &RelayClient{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (c *RelayClient) Reply(ctx context.Context, query string) (string, error) {
	if c.Client == nil {
		return "", &ReplyError{Kind: ReplyTransport, Err: errors.New("http client is nil")}
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return "", &ReplyError{Kind: ReplyTransport, Err: errors.New("endpoint is not configured")}
	}

	b, err := json.Marshal(relayReq{Query: query})
	if err != nil {
		return "", &ReplyError{Kind: ReplyTransport, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &ReplyError{Kind: ReplyTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", &ReplyError{Kind: ReplyTransport, Err: err}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	// The body is read whatever the status: error answers still carry JSON
	// and may hold a reply.
	var decoded relayResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if !ok {
			return "", &ReplyError{Kind: ReplyStatus, StatusCode: resp.StatusCode, Err: err}
		}
		return "", &ReplyError{Kind: ReplyDecode, Err: err}
	}
	if decoded.Reply == nil || *decoded.Reply == "" {
		re := &ReplyError{Kind: ReplyMissing}
		if !ok {
			re.StatusCode = resp.StatusCode
		}
		return "", re
	}
	return *decoded.Reply, nil
}

// Chat sends the latest user turn as the query.
func (c *RelayClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.Reply(ctx, lastUserContent(messages))
}

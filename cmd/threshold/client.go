package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/domain"
	"github.com/mosaic-lumen/threshold/internal/wire"
)

// Client talks to the THRESHOLD server. The cookie jar keeps the anonymous
// identity cookie across requests; the tab session ID rides a header.
type Client struct {
	base      string
	sessionID string
	http      *http.Client
}

func NewClient(base, sessionID string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		sessionID: sessionID,
		http:      &http.Client{Jar: jar},
	}, nil
}

// StreamEvent is one step of a chat turn arriving off the wire.
type StreamEvent struct {
	// Fragment is displayable text, possibly empty on the final event.
	Fragment string
	// Done marks the last event of the turn.
	Done bool
	// Result is the decoded stream, set only when Done.
	Result wire.Result
	// AnomalyTrailer is the out-of-band anomaly flag, set only when Done.
	AnomalyTrailer string
	// VoiceTrailer reports the one-shot identity voice, set only when Done.
	VoiceTrailer bool
	// Blocked is true when the server refused the turn because anomalies
	// remain unresolved.
	Blocked bool
	Err     error
}

// Chat posts one message and streams the reply. Events arrive on the
// returned channel; the channel closes after the Done event.
func (c *Client) Chat(ctx context.Context, message string) <-chan StreamEvent {
	ch := make(chan StreamEvent, 8)
	go func() {
		defer close(ch)
		c.chat(ctx, message, ch)
	}()
	return ch
}

func (c *Client) chat(ctx context.Context, message string, ch chan<- StreamEvent) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		ch <- StreamEvent{Done: true, Err: err}
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/chat", bytes.NewReader(body))
	if err != nil {
		ch <- StreamEvent{Done: true, Err: err}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Threshold-Session-ID", c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		ch <- StreamEvent{Done: true, Err: fmt.Errorf("chat request: %w", err)}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		io.Copy(io.Discard, resp.Body)
		ch <- StreamEvent{Done: true, Blocked: true}
		return
	}
	if resp.StatusCode != http.StatusOK {
		ch <- StreamEvent{Done: true, Err: apiError(resp)}
		return
	}

	var dec wire.Decoder
	buf := make([]byte, 2048)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if text := dec.Feed(string(buf[:n])); text != "" {
				ch <- StreamEvent{Fragment: text}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			ch <- StreamEvent{Done: true, Err: fmt.Errorf("chat stream: %w", readErr)}
			return
		}
	}

	result := dec.Finish()
	if result.Text != "" {
		ch <- StreamEvent{Fragment: result.Text}
	}
	ch <- StreamEvent{
		Done:           true,
		Result:         result,
		AnomalyTrailer: resp.Trailer.Get("X-Threshold-Anomaly"),
		VoiceTrailer:   resp.Trailer.Get("X-Threshold-Voice") == "1",
	}
}

// SessionView is the GET /api/session response.
type SessionView struct {
	SessionID  string           `json:"session_id"`
	Messages   []domain.Message `json:"messages"`
	Unresolved int              `json:"unresolved"`
	Blocked    bool             `json:"blocked"`
}

func (c *Client) Session(ctx context.Context) (*SessionView, error) {
	var view SessionView
	if err := c.getJSON(ctx, "/api/session", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ResolveResult is the POST /api/anomaly/resolve response.
type ResolveResult struct {
	Resolved   bool   `json:"resolved"`
	Original   string `json:"original"`
	Reveal     string `json:"reveal"`
	Unresolved int    `json:"unresolved"`
}

func (c *Client) Resolve(ctx context.Context, messageIndex int) (*ResolveResult, error) {
	body, err := json.Marshal(map[string]int{"message_index": messageIndex})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/anomaly/resolve", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Threshold-Session-ID", c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var result ResolveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode resolve response: %w", err)
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Threshold-Session-ID", c.sessionID)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

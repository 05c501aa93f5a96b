package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
)

// Remote talks to a running drill-server over the REST API.
type Remote struct {
	baseURL string
	http    *http.Client
}

// NewRemote creates a client for the server at baseURL, e.g. http://localhost:8080.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Status fetches the dashboard view.
func (r *Remote) Status(ctx context.Context) (engine.StatusView, error) {
	var view engine.StatusView
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/status", nil)
	if err != nil {
		return view, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return view, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return view, fmt.Errorf("status: server returned %s", resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&view)
	return view, err
}

// Send posts one intent. Rejections come back as a Reply with OK false and
// a nil error; only transport failures and malformed answers are errors.
func (r *Remote) Send(ctx context.Context, in Intent) (Reply, error) {
	var reply Reply
	body, err := json.Marshal(in)
	if err != nil {
		return reply, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/command", bytes.NewReader(body))
	if err != nil {
		return reply, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.http.Do(req)
	if err != nil {
		return reply, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return reply, fmt.Errorf("command %s: %s: %w", in.Type, resp.Status, err)
	}
	if reply.Intent == "" {
		reply.Intent = strings.ToUpper(in.Type)
	}
	return reply, nil
}

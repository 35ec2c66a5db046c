// Package remote is the snapshot store client: one shared bin on a
// jsonbin-style HTTP API, addressed by a fixed bin id and a master key.
// The bin holds exactly one snapshot; both directions are wholesale,
// last write wins.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/models"
)

const requestTimeout = 30 * time.Second

// Error is a transport or status failure talking to the snapshot store.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sync %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client talks to a single remote bin.
type Client struct {
	binURL    string
	masterKey string
	hc        *http.Client
}

// NewClient builds a client from the sync settings.
func NewClient(cfg config.SyncConfig) *Client {
	return &Client{
		binURL:    strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.BinID,
		masterKey: cfg.MasterKey,
		hc:        &http.Client{Timeout: requestTimeout},
	}
}

// jsonbin wraps stored documents in a record envelope on reads.
type recordEnvelope struct {
	Record models.Snapshot `json:"record"`
}

// Put overwrites the remote snapshot.
func (c *Client) Put(ctx context.Context, snap models.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return &Error{Op: "put", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.binURL, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: "put", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.masterKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return &Error{Op: "put", Err: err}
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &Error{Op: "put", Status: res.StatusCode}
	}
	return nil
}

// Get fetches the remote snapshot.
func (c *Client) Get(ctx context.Context) (models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.binURL, nil)
	if err != nil {
		return models.Snapshot{}, &Error{Op: "get", Err: err}
	}
	req.Header.Set("X-Master-Key", c.masterKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return models.Snapshot{}, &Error{Op: "get", Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return models.Snapshot{}, &Error{Op: "get", Status: res.StatusCode}
	}

	var envelope recordEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return models.Snapshot{}, &Error{Op: "get", Err: err}
	}
	return envelope.Record, nil
}

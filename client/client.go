// Package client is the Go consumer of the records API. It implements the
// workflow collaborator interfaces over HTTP, for deployments where the
// records service runs as a separate process and for automation against a
// running portal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"barangay-portal-backend/models"
	"barangay-portal-backend/workflow"
)

// Client talks to one records API base URL. A single Client satisfies
// workflow.RequestStore, workflow.LedgerStore and
// workflow.NotificationDispatcher.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ workflow.RequestStore           = (*Client)(nil)
	_ workflow.LedgerStore            = (*Client)(nil)
	_ workflow.NotificationDispatcher = (*Client)(nil)
)

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the records API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("records api returned status %d", e.Status)
	}
	return fmt.Sprintf("records api returned status %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &payload)
		msg := payload.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// UpdateStatus is the bare status write: PUT /api/document-requests/{id}.
func (c *Client) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	return c.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/document-requests/%d", id),
		map[string]string{"status": string(status)}, nil)
}

// Send triggers the state-specific requester email for a request.
func (c *Client) Send(ctx context.Context, req models.DocumentRequest, kind workflow.NotificationKind, payload workflow.Payload) error {
	suffix := "ready-notification"
	if kind == workflow.NotificationRejected {
		suffix = "reject-notification"
	}
	return c.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/document-requests/%d/%s", req.ID, suffix),
		payload, nil)
}

// Create posts a new revenue ledger row and returns it as stored.
func (c *Client) Create(ctx context.Context, entry models.ReportEntry) (models.ReportEntry, error) {
	var created models.ReportEntry
	if err := c.do(ctx, http.MethodPost, "/api/ledger-entries", entry, &created); err != nil {
		return models.ReportEntry{}, err
	}
	return created, nil
}

// DeleteByReference removes the ledger row for a reference number. A 404 from
// the API means there was no live row, which counts as a success.
func (c *Client) DeleteByReference(ctx context.Context, referenceNo string) error {
	err := c.do(ctx, http.MethodDelete,
		"/api/ledger-entries/by-reference/"+url.PathEscape(referenceNo), nil, nil)
	var ae *APIError
	if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
		return nil
	}
	return err
}

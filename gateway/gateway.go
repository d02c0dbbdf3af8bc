package gateway

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
)

// Record is an untyped field -> value mapping returned by the store. Records
// are ephemeral: the core builds an Identity or a routing decision from them
// and never persists one.
type Record map[string]any

// Config carries the connection settings for the backing record store.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BaseURL is the store root, e.g. "https://project.supabase.co".
	BaseURL string
	// APIKey is sent as both the apikey header and a bearer token.
	APIKey string
	// Timeout bounds each request. Zero means no per-request deadline beyond
	// the caller's context.
	Timeout time.Duration
	// HTTPClient overrides the transport; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// Client is an allow-listed keyed-record client. Safe for concurrent use.
type Client struct {
	base    string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	allowed map[string]struct{}
}

// New validates cfg and builds a Client restricted to the given tables.
func New(cfg Config, allowedTables []string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base URL required")
	}
	if len(allowedTables) == 0 {
		return nil, errors.New("gateway: allow-list must not be empty")
	}

	allowed := make(map[string]struct{}, len(allowedTables))
	for _, t := range allowedTables {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, errors.New("gateway: allow-list contains empty table name")
		}
		allowed[t] = struct{}{}
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    hc,
		allowed: allowed,
	}, nil
}

// Allowed reports whether table is in the allow-list.
func (c *Client) Allowed(table string) bool {
	_, ok := c.allowed[table]
	return ok
}

// FetchOne returns the single record in table whose field equals value.
// Zero rows yields ErrNotFound, more than one ErrAmbiguousMatch.
func (c *Client) FetchOne(ctx context.Context, table, field, value string) (Record, error) {
	if err := c.allow("fetch", table); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set(field, "eq."+value)

	body, err := c.do(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return nil, err
	}

	var rows []Record
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &StoreError{Op: "fetch", Table: table, Err: fmt.Errorf("malformed response: %w", err)}
	}

	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, table, field)
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%w: %s.%s (%d rows)", ErrAmbiguousMatch, table, field, len(rows))
	}
}

// Insert writes a new record into table.
func (c *Client) Insert(ctx context.Context, table string, record Record) error {
	if err := c.allow("insert", table); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return &StoreError{Op: "insert", Table: table, Err: err}
	}

	_, err = c.do(ctx, http.MethodPost, table, nil, payload)
	return err
}

// Update patches every record in table whose field equals value.
func (c *Client) Update(ctx context.Context, table, field, value string, changes Record) error {
	if err := c.allow("update", table); err != nil {
		return err
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return &StoreError{Op: "update", Table: table, Err: err}
	}

	query := url.Values{}
	query.Set(field, "eq."+value)

	_, err = c.do(ctx, http.MethodPatch, table, query, payload)
	return err
}

// Delete removes every record in table whose field equals value.
func (c *Client) Delete(ctx context.Context, table, field, value string) error {
	if err := c.allow("delete", table); err != nil {
		return err
	}

	query := url.Values{}
	query.Set(field, "eq."+value)

	_, err := c.do(ctx, http.MethodDelete, table, query, nil)
	return err
}

func (c *Client) allow(op, table string) error {
	if _, ok := c.allowed[table]; !ok {
		return fmt.Errorf("%w: %s (%s)", ErrForbiddenTable, table, op)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, payload []byte) ([]byte, error) {
	op := strings.ToLower(method)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.base + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StoreError{Op: op, Table: table, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	return data, nil
}

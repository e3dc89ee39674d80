// Package nocodb talks to the NocoDB v2 data API.
package nocodb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/config"
	"github.com/Serubin/AJD-Site/shared/logger"
)

const tokenHeader = "xc-token"

// Client holds the connection settings shared by all tables.
type Client struct {
	BaseURL    string
	Token      string
	HttpClient *http.Client
	log        *slog.Logger
}

func New(cfg config.NocoDB) *Client {
	base := cfg.BaseURL
	// Deployments usually configure a bare hostname.
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(base, "/"),
		Token:      cfg.APIToken,
		HttpClient: &http.Client{Timeout: timeout},
		log:        logger.Component("nocodb"),
	}
}

// Table returns the recordstore.Table for ref.
func (c *Client) Table(ref config.TableRef) *Table {
	return &Table{client: c, tableID: ref.TableID, viewID: ref.ViewID}
}

// Error is a non-2xx answer from NocoDB.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nocodb: status %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("nocodb: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("nocodb: build request: %w", err)
	}
	req.Header.Set(tokenHeader, c.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nocodb: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("nocodb: decode response: %w", err)
	}
	return nil
}

// Table is one NocoDB table, optionally read through a view.
type Table struct {
	client  *Client
	tableID string
	viewID  string
}

type listResponse struct {
	List     []recordstore.Record `json:"list"`
	PageInfo struct {
		TotalRows  int  `json:"totalRows"`
		IsLastPage bool `json:"isLastPage"`
	} `json:"pageInfo"`
}

func (t *Table) path() string {
	return "/api/v2/tables/" + url.PathEscape(t.tableID) + "/records"
}

func (t *Table) List(ctx context.Context, params recordstore.ListParams) (recordstore.Page, error) {
	if err := recordstore.CheckFilter(params.Where); err != nil {
		return recordstore.Page{}, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = recordstore.DefaultPageSize
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(params.Offset))
	if t.viewID != "" {
		q.Set("viewId", t.viewID)
	}
	if params.Where != nil {
		q.Set("where", params.Where.String())
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if len(params.Fields) > 0 {
		q.Set("fields", strings.Join(params.Fields, ","))
	}

	var resp listResponse
	if err := t.client.do(ctx, http.MethodGet, t.path(), q, nil, &resp); err != nil {
		return recordstore.Page{}, err
	}
	return recordstore.Page{
		Records:    resp.List,
		IsLastPage: resp.PageInfo.IsLastPage,
		TotalRows:  resp.PageInfo.TotalRows,
	}, nil
}

// Create inserts data. NocoDB answers with the new id only, so the returned
// record is data plus that id.
func (t *Table) Create(ctx context.Context, data recordstore.Record) (recordstore.Record, error) {
	var created recordstore.Record
	if err := t.client.do(ctx, http.MethodPost, t.path(), nil, data, &created); err != nil {
		return nil, err
	}
	rec := data.Clone()
	rec[recordstore.IDField] = created.ID()
	return rec, nil
}

func (t *Table) Update(ctx context.Context, id int64, data recordstore.Record) (recordstore.Record, error) {
	body := data.Clone()
	body[recordstore.IDField] = id
	if err := t.client.do(ctx, http.MethodPatch, t.path(), nil, body, nil); err != nil {
		var nerr *Error
		if errors.As(err, &nerr) && nerr.Status == http.StatusNotFound {
			return nil, &recordstore.NotFoundError{ID: id}
		}
		return nil, err
	}
	return body, nil
}

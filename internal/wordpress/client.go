package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client reads the four flat collection endpoints of a WordPress site.
// All filtering by parent happens client-side; the server is only asked
// for field-projected, capped collections.
type Client struct {
	baseURL    string
	perPage    int
	httpClient *http.Client
}

func NewClient(baseURL string, perPage int) *Client {
	if perPage <= 0 {
		perPage = 100
	}
	return &Client{
		baseURL: baseURL,
		perPage: perPage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Books returns the top-level catalog collection (id + title only).
func (c *Client) Books(ctx context.Context) ([]Item, error) {
	return c.collection(ctx, "books", "id,title")
}

// Chapters returns the full chapter collection.
func (c *Client) Chapters(ctx context.Context) ([]Item, error) {
	return c.collection(ctx, "chapters", "id,title,content,parent")
}

// Topics returns the full topic collection.
func (c *Client) Topics(ctx context.Context) ([]Item, error) {
	return c.collection(ctx, "topics", "id,title,content,parent")
}

// Sections returns the full section collection.
func (c *Client) Sections(ctx context.Context) ([]Item, error) {
	return c.collection(ctx, "sections", "id,title,content,parent")
}

func (c *Client) collection(ctx context.Context, slug, fields string) ([]Item, error) {
	q := url.Values{}
	q.Set("_fields", fields)
	q.Set("per_page", strconv.Itoa(c.perPage))
	u := c.baseURL + "/wp-json/wp/v2/" + slug + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", slug, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get %s: status %d: %s", slug, resp.StatusCode, string(respBody))
	}

	var raw []wpItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", slug, err)
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Item{
			ID:      r.ID,
			Title:   string(r.Title),
			Content: string(r.Content),
			Parent:  r.Parent,
		})
	}
	return items, nil
}

// Close releases any resources (currently idle connections).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

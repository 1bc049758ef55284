package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBody caps how much of a backend answer is read.
const maxBody = 8 << 20

// TokenSource yields the bearer token for an outgoing call, or "".
type TokenSource func(ctx context.Context) string

type bearerKey struct{}

// WithBearer stores the caller's token so outgoing calls forward it.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func BearerFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(bearerKey{}).(string)
	return tok
}

// Client talks to the NoLimits backend. The zero Token source forwards the
// bearer found in the request context.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   TokenSource
	Log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   BearerFromContext,
		Log:     log,
	}
}

var _ Repository = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != nil {
		if tok := c.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	text, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	c.Log.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("dur", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	return text, nil
}

func (c *Client) skipRecord(endpoint string) func(int, error) {
	return func(i int, err error) {
		c.Log.Warn("skipping malformed record",
			zap.String("endpoint", endpoint), zap.Int("index", i), zap.Error(err))
	}
}

// List returns every product (GET /api/v1/productos).
func (c *Client) List(ctx context.Context) ([]Product, error) {
	text, err := c.do(ctx, http.MethodGet, "/api/v1/productos", nil)
	if err != nil {
		return nil, err
	}
	items, err := listItems(text)
	if err != nil {
		return nil, err
	}
	return decodeEach[Product](items, c.skipRecord("productos")), nil
}

// Page lists one page; pages are 1-based on both sides.
func (c *Client) Page(ctx context.Context, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 3
	}
	text, err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/api/v1/productos/paginacion?page=%d&size=%d", page, size), nil)
	if err != nil {
		return Page{}, err
	}
	return decodePage(text, page, c.skipRecord("productos/paginacion"))
}

func (c *Client) GetByID(ctx context.Context, id int64) (*Product, error) {
	text, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/productos/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var p Product
	if err := json.Unmarshal(text, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

func (c *Client) Create(ctx context.Context, in ProductInput) (*Product, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	text, err := c.do(ctx, http.MethodPost, "/api/v1/productos", in)
	if err != nil {
		return nil, err
	}
	return optionalProduct(text), nil
}

func (c *Client) Update(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	text, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/productos/%d", id), in)
	if err != nil {
		return nil, err
	}
	return optionalProduct(text), nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/productos/%d", id), nil)
	return err
}

// Sagas lists saga names with their optional cover. Entries without a name
// are dropped and a blank cover becomes nil.
func (c *Client) Sagas(ctx context.Context) ([]SagaSummary, error) {
	text, err := c.do(ctx, http.MethodGet, "/api/v1/productos/sagas/resumen", nil)
	if err != nil {
		return nil, err
	}
	out := []SagaSummary{}
	var raw []map[string]json.RawMessage
	if len(bytes.TrimSpace(text)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(text, &raw); err != nil {
		c.Log.Warn("sagas: unexpected body", zap.Error(err))
		return out, nil
	}
	for _, r := range raw {
		name := looseString(r["nombre"])
		if name == "" {
			continue
		}
		s := SagaSummary{Nombre: name}
		if cover := strings.TrimSpace(looseString(r["portadaSaga"])); cover != "" {
			s.PortadaSaga = &cover
		}
		out = append(out, s)
	}
	return out, nil
}

// Lookup fetches a reference catalog.
func (c *Client) Lookup(ctx context.Context, kind LookupKind) ([]LookupItem, error) {
	text, err := c.do(ctx, http.MethodGet, kind.path(), nil)
	if err != nil {
		return nil, err
	}
	items, err := listItems(text)
	if err != nil {
		return nil, err
	}
	return decodeEach[LookupItem](items, c.skipRecord(string(kind))), nil
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/productos/sagas/resumen", nil)
	return err
}

// optionalProduct parses a write answer; some endpoints reply with an empty
// or non-JSON body, which is not an error.
func optionalProduct(text []byte) *Product {
	var p Product
	if err := json.Unmarshal(text, &p); err != nil {
		return nil
	}
	return &p
}

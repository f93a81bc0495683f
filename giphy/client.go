package giphy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mattLLVW/gifgrid/models"
	"github.com/pkg/errors"
)

const (
	DefaultEndpoint = "https://api.giphy.com/v1/gifs/search"
	DefaultLimit    = 12
)

// Client searches gifs on giphy.
type Client struct {
	apiKey   string
	endpoint string
	limit    int
	doer     models.Doer
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithLimit(limit int) Option {
	return func(c *Client) { c.limit = limit }
}

// WithDoer replaces the http client used to reach giphy.
func WithDoer(doer models.Doer) Option {
	return func(c *Client) { c.doer = doer }
}

// NewClient returns a client using apiKey for every request. The key is not
// checked, an empty key is sent as is.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		limit:    DefaultLimit,
		doer:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL returns the request target for term. Parameters keep the order
// giphy documents them in, which url.Values.Encode would not.
func (c *Client) SearchURL(term string) string {
	return fmt.Sprintf("%s?api_key=%s&q=%s&limit=%d", c.endpoint, url.QueryEscape(c.apiKey), url.QueryEscape(term), c.limit)
}

// Search sends a single request for term and returns the results in the
// order giphy ranked them. The term is not validated here.
func (c *Client) Search(ctx context.Context, term string) ([]models.GifResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(term), nil)
	if err != nil {
		return nil, newError(ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "searching gifs", slog.String("term", term))

	res, err := c.doer.Do(req)
	if err != nil {
		return nil, newError(ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, newError(ErrTransport, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, newError(ErrTransport, errors.Errorf("unexpected status %d: %s", res.StatusCode, truncate(body, 200)))
	}

	var data models.GiphyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, newError(ErrParse, err)
	}

	return project(data)
}

func project(data models.GiphyResponse) ([]models.GifResult, error) {
	if data.Data == nil {
		return nil, newError(ErrMalformedResponse, errors.New("missing data field"))
	}
	gifs := make([]models.GifResult, 0, len(*data.Data))
	for i, item := range *data.Data {
		if item.Id == nil {
			return nil, newError(ErrMalformedResponse, errors.Errorf("item %d has no id", i))
		}
		if item.Images == nil || item.Images.DownsizedMedium == nil || item.Images.DownsizedMedium.Url == nil {
			return nil, newError(ErrMalformedResponse, errors.Errorf("item %s has no images.downsized_medium.url", *item.Id))
		}
		gifs = append(gifs, models.GifResult{
			Id:    *item.Id,
			Title: item.Title,
			Url:   *item.Images.DownsizedMedium.Url,
		})
	}
	return gifs, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

var _ models.Searcher = &Client{}

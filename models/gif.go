package models

import (
	"context"
	"net/http"
)

// GifResult is a single search hit, reduced to what the grid displays.
type GifResult struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Url   string `json:"url"`
}

// Searcher turns a search term into an ordered list of gifs.
type Searcher interface {
	Search(ctx context.Context, term string) ([]GifResult, error)
}

// Doer sends http requests, *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

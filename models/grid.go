package models

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Number of categories searched at the same time when loading a page.
const maxConcurrentLoads = 4

// Grid is the state of one category on the page.
type Grid struct {
	Category  string
	Images    []GifResult
	IsLoading bool
}

func NewGrid(category string) Grid {
	return Grid{Category: category, Images: []GifResult{}, IsLoading: true}
}

// LoadGrid searches category and never fails: on error the grid is simply
// left empty and the error is logged.
func LoadGrid(ctx context.Context, s Searcher, category string) Grid {
	g := NewGrid(category)
	images, err := s.Search(ctx, category)
	g.IsLoading = false
	if err != nil {
		slog.ErrorContext(ctx, "error fetching gifs", slog.String("category", category), slog.Any("error", err))
		return g
	}
	if images != nil {
		g.Images = images
	}
	return g
}

// LoadGrids loads every category concurrently. Grids come back in the
// order of categories whatever order the searches finish in.
func LoadGrids(ctx context.Context, s Searcher, categories Categories) []Grid {
	grids := make([]Grid, len(categories))
	var eg errgroup.Group
	eg.SetLimit(maxConcurrentLoads)
	for i, category := range categories {
		i, category := i, category
		eg.Go(func() error {
			grids[i] = LoadGrid(ctx, s, category)
			return nil
		})
	}
	_ = eg.Wait()
	return grids
}

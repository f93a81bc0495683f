package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/mattLLVW/gifgrid/models"
	"github.com/mssola/user_agent"
	"github.com/pkg/errors"
)

const maxRedirects = 10

type page struct {
	Categories models.Categories
	Grids      []models.Grid
}

// Render the search form and a grid per category. Categories already on the
// page come back as hidden fields, the new one comes in the search box.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	qry := r.URL.Query()
	categories := models.ParseCategories(qry["categories"])
	categories.Add(qry.Get("category"))
	s.renderPage(w, r, categories)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, categories models.Categories) {
	p := page{
		Categories: categories,
		Grids:      models.LoadGrids(r.Context(), s.searcher, categories),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, p); err != nil {
		slog.ErrorContext(r.Context(), "could not render page", slog.Any("error", err))
	}
}

func (s *Server) apiSearchHandler(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(term) < 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search term must be at least 2 characters"})
		return
	}

	gifs, err := s.searcher.Search(r.Context(), term)
	if err != nil {
		slog.ErrorContext(r.Context(), "error fetching gifs", slog.String("term", term), slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not search gifs"})
		return
	}
	writeJSON(w, http.StatusOK, gifs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("could not encode response", slog.Any("error", err))
	}
}

// Stream a gif back as an attachment named after its title.
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	qry := r.URL.Query()
	target, err := url.Parse(qry.Get("url"))
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || !s.allowedHost(target.Hostname()) {
		http.Error(w, "invalid gif url", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "invalid gif url", http.StatusBadRequest)
		return
	}
	res, err := s.doer.Do(req)
	if err != nil {
		slog.ErrorContext(r.Context(), "error downloading the gif", slog.String("url", target.String()), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		slog.ErrorContext(r.Context(), "error downloading the gif", slog.String("url", target.String()), slog.Int("status", res.StatusCode))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": qry.Get("title") + ".gif"}))
	if _, err := io.Copy(w, res.Body); err != nil {
		slog.WarnContext(r.Context(), "download interrupted", slog.String("url", target.String()), slog.Any("error", err))
	}
}

func (s *Server) allowedHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range s.downloadHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Redirects are followed only while they stay on allowed hosts.
func (s *Server) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !s.allowedHost(req.URL.Hostname()) {
		return errors.Errorf("redirect to %s is not allowed", req.URL.Host)
	}
	return nil
}

// Check if request is made from a CLI
func isValidBrowser(browser string) bool {
	switch browser {
	case
		"curl",
		"Wget",
		"HTTPie":
		return true
	}
	return false
}

// Return proper handler depending on cli or browser
func (s *Server) conditionalHandler(w http.ResponseWriter, r *http.Request) {
	ua := user_agent.New(r.Header.Get("User-Agent"))
	name, _ := ua.Browser()
	if !isValidBrowser(name) {
		var categories models.Categories
		categories.Add(searchTerm(r))
		s.renderPage(w, r, categories)
	} else {
		s.terminalHandler(w, r)
	}
}

// Extract search terms from url, underscores stand for spaces
func searchTerm(r *http.Request) string {
	return strings.ReplaceAll(mux.Vars(r)["search"], "_", " ")
}

// Search a gif, render it in ansi and play it
func (s *Server) terminalHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	search := strings.TrimSpace(searchTerm(r))
	rev := r.URL.Query().Get("rev") != ""
	if utf8.RuneCountInString(search) < 2 {
		oops(w, search)
		return
	}

	gifs, err := s.searcher.Search(ctx, search)
	if err != nil || len(gifs) == 0 {
		slog.InfoContext(ctx, "nothing to play", slog.String("term", search), slog.Int("results", len(gifs)), slog.Any("error", err))
		oops(w, search)
		return
	}

	frames, err := s.renderedFrames(r, gifs[0], rev)
	if err != nil {
		slog.ErrorContext(ctx, "could not render gif", slog.String("id", gifs[0].Id), slog.Any("error", err))
		oops(w, search)
		return
	}
	s.sendGif(w, frames)
}

// Return the frames of gif, from the frame cache when there is one.
func (s *Server) renderedFrames(r *http.Request, gif models.GifResult, rev bool) ([]models.RenderedImg, error) {
	ctx := r.Context()
	if s.frames != nil {
		exists, err := s.frames.Exists(ctx, gif.Id)
		if err != nil {
			slog.WarnContext(ctx, "can't check if already exist", slog.String("id", gif.Id), slog.Any("error", err))
		} else if exists {
			slog.DebugContext(ctx, "fetching frames from database", slog.String("id", gif.Id))
			return s.frames.Frames(ctx, gif.Id, rev)
		}
	}

	var g models.AnsiGif
	if err := g.Get(ctx, s.doer, gif.Url); err != nil {
		return nil, err
	}
	if err := g.Render(); err != nil {
		return nil, err
	}
	if s.frames != nil {
		slog.DebugContext(ctx, "inserting frames into database", slog.String("id", gif.Id))
		if err := s.frames.Save(ctx, gif.Id, g.Rendered); err != nil {
			slog.WarnContext(ctx, "could not store frames", slog.String("id", gif.Id), slog.Any("error", errors.WithStack(err)))
		}
	}
	if rev {
		g.Reverse()
	}
	return g.Rendered, nil
}

// Send rendered gif as a response
func (s *Server) sendGif(w http.ResponseWriter, imgs []models.RenderedImg) {
	flusher, _ := w.(http.Flusher)
	// Clear terminal and position cursor
	fmt.Fprint(w, "\033[2J\033[1;1H")

	for _, srcImg := range imgs {
		s.sleep(time.Duration(srcImg.Delay*10) * time.Millisecond)
		fmt.Fprint(w, srcImg.Output)
		// Reposition cursor
		fmt.Fprint(w, "\033[1;1H")
		if flusher != nil {
			flusher.Flush()
		}
	}
	// Clear terminal
	fmt.Fprint(w, "\033[2J")
}

// If anything bad happen, say so
func oops(w http.ResponseWriter, search string) {
	fmt.Fprintf(w, "no gif found for %q, try another search\n", search)
}

package site

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ziadkadry99/cgblog/internal/pager"
	"github.com/ziadkadry99/cgblog/internal/search"
)

// moreRequest reports the sentinel's visibility.
type moreRequest struct {
	Visible bool `json:"visible"`
}

// moreResponse carries the cards appended by one load.
type moreResponse struct {
	Loaded  bool   `json:"loaded"`
	HTML    string `json:"html"`
	Items   []card `json:"items"`
	Page    int    `json:"page"`
	HasMore bool   `json:"hasMore"`
	Error   string `json:"error,omitempty"`
}

type cursorRequest struct {
	ScrollRatio float64 `json:"scrollRatio"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func (s *Site) handleMore(w http.ResponseWriter, r *http.Request) {
	var req moreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	defer s.lockListing(sessionID(r))()
	p, err := pager.Restore(ctx, s.indexSource(), s.cfg.PageSize, s.store, pager.Key(sessionID(r), BlogRoute))
	if err != nil {
		s.log.WithError(err).Warn("restoring listing")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load articles"})
		return
	}

	before := len(p.State().Items)
	loaded, err := p.Trigger(ctx, req.Visible)
	if err != nil {
		s.log.WithError(err).Warn("loading more posts")
		st := p.State()
		writeJSON(w, http.StatusBadGateway, moreResponse{
			Items:   []card{},
			Page:    st.Page,
			HasMore: st.HasMore,
			Error:   "failed to load more articles",
		})
		return
	}

	st := p.State()
	resp := moreResponse{Loaded: loaded, Items: []card{}, Page: st.Page, HasMore: st.HasMore}
	if loaded {
		if err := p.Save(ctx); err != nil {
			s.log.WithError(err).Warn("saving listing state")
		}
		resp.Items = s.postCards(ctx, st.Items[before:])
		html, err := s.renderCards(resp.Items)
		if err != nil {
			s.log.WithError(err).Error("rendering cards")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "rendering failed"})
			return
		}
		resp.HTML = html
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCursor records the listing scroll position for the session.
func (s *Site) handleCursor(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	defer s.lockListing(sessionID(r))()
	p, err := pager.Restore(ctx, s.indexSource(), s.cfg.PageSize, s.store, pager.Key(sessionID(r), BlogRoute))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load articles"})
		return
	}
	p.SetScrollRatio(req.ScrollRatio)
	if err := p.Save(ctx); err != nil {
		s.log.WithError(err).Warn("saving scroll position")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save position"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearch answers one search without debouncing. Query parameters:
// q, and content=true to search article bodies.
func (s *Site) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	includeContent, _ := strconv.ParseBool(r.URL.Query().Get("content"))

	results, err := s.newIndexer().Search(r.Context(), q, includeContent)
	if err != nil {
		s.log.WithError(err).WithField("query", q).Warn("search failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search is unavailable"})
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

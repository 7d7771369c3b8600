package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abdulachik/axitome/internal/db"
	"github.com/abdulachik/axitome/internal/quote"
)

func (s *Server) handleToday(c echo.Context) error {
	card, err := s.builder.ForDay(s.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) handleDay(c echo.Context) error {
	t, err := s.builder.Selector().ParseDay(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	card, err := s.builder.ForDay(t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

type quoteEntry struct {
	Index int `json:"index"`
	quote.Quote
}

type quotesResponse struct {
	Count  int          `json:"count"`
	Tags   []string     `json:"tags"`
	Quotes []quoteEntry `json:"quotes"`
}

func (s *Server) handleQuotes(c echo.Context) error {
	corpus := s.builder.Corpus()
	entries := corpus.ByTag(c.QueryParam("tag"))

	resp := quotesResponse{
		Count:  len(entries),
		Tags:   corpus.Tags(),
		Quotes: make([]quoteEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Quotes = append(resp.Quotes, quoteEntry{Index: e.Index, Quote: e.Quote})
	}
	return c.JSON(http.StatusOK, resp)
}

type runResponse struct {
	ID          string     `json:"id"`
	Day         string     `json:"day"`
	QuoteIndex  int64      `json:"quote_index"`
	Author      string     `json:"author"`
	Caption     string     `json:"caption"`
	Fallback    bool       `json:"caption_fallback"`
	Platform    string     `json:"platform"`
	Status      string     `json:"status"`
	Ref         string     `json:"ref,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func newRunResponse(r db.Run) runResponse {
	resp := runResponse{
		ID:         r.ID,
		Day:        r.Day,
		QuoteIndex: r.QuoteIndex,
		Author:     r.Author,
		Caption:    r.Caption,
		Fallback:   r.CaptionFallback,
		Platform:   r.Platform,
		Status:     r.Status,
		Ref:        r.PublishedRef.String,
		Error:      r.Error.String,
		CreatedAt:  r.CreatedAt,
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time
		resp.PublishedAt = &t
	}
	return resp
}

func (s *Server) handleRuns(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "run ledger not configured")
	}

	limit := defaultRunLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := s.store.ListRuns(c.Request().Context(), int64(limit))
	if err != nil {
		return err
	}

	out := make([]runResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, newRunResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

type healthResponse struct {
	Healthy    bool                       `json:"healthy"`
	Quotes     int                        `json:"quotes"`
	Components map[string]componentStatus `json:"components"`
}

type componentStatus struct {
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message"`
	LastCheck time.Time `json:"last_check"`
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{
		Healthy:    true,
		Quotes:     s.builder.Corpus().Len(),
		Components: map[string]componentStatus{},
	}

	if s.store != nil {
		if err := s.store.PingContext(c.Request().Context()); err != nil {
			resp.Healthy = false
			resp.Components["database"] = componentStatus{Message: err.Error(), LastCheck: s.now()}
		} else {
			resp.Components["database"] = componentStatus{Healthy: true, Message: "ok", LastCheck: s.now()}
		}
	}

	if s.health != nil {
		for name, st := range s.health.Snapshot() {
			resp.Components[name] = componentStatus{Healthy: st.Healthy, Message: st.Message, LastCheck: st.LastCheck}
			if !st.Healthy {
				resp.Healthy = false
			}
		}
	}

	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

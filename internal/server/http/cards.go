package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/lint"
)

type (
	// CardSummaryDTO is the list-view projection of an indexed card.
	CardSummaryDTO struct {
		ID        string    `json:"id"`
		Title     string    `json:"title,omitempty"`
		Tables    int       `json:"tables"`
		Rows      int       `json:"rows"`
		Findings  int       `json:"findings"`
		IndexedAt time.Time `json:"indexed_at"`
	}

	// ErrorDTO is the JSON error body.
	ErrorDTO struct {
		Error string `json:"error"`
	}
)

func (s *Server) handleListCards(c echo.Context) error {
	entries := s.builder.Registry().List()

	out := make([]CardSummaryDTO, 0, len(entries))
	for _, entry := range entries {
		rows := 0
		for i := range entry.Card.Tables {
			rows += len(entry.Card.Tables[i].Rows)
		}
		out = append(out, CardSummaryDTO{
			ID:        entry.Card.ID,
			Title:     entry.Card.Title,
			Tables:    len(entry.Card.Tables),
			Rows:      rows,
			Findings:  len(entry.Findings),
			IndexedAt: entry.IndexedAt,
		})
	}

	return c.JSON(http.StatusOK, out)
}

// handleGetCard serves a card or, with a trailing /lint, its findings.
// Card IDs are zoo-relative paths, so the route is a wildcard.
func (s *Server) handleGetCard(c echo.Context) error {
	id := c.Param("*")

	if rest, ok := strings.CutSuffix(id, "/lint"); ok {
		if entry, found := s.builder.Registry().Get(rest); found {
			findings := entry.Findings
			if findings == nil {
				findings = []lint.Finding{}
			}
			return c.JSON(http.StatusOK, findings)
		}
		// fall through: a card could itself be named .../lint
	}

	entry, ok := s.builder.Registry().Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorDTO{Error: "card not found: " + id})
	}

	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleGetIndex(c echo.Context) error {
	format := config.IndexFormat(c.QueryParam("format"))
	if format == "" {
		format = config.IndexFormatMarkdown
	}

	out, err := index.Render(s.builder.Registry().List(), format)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorDTO{Error: err.Error()})
	}

	if format == config.IndexFormatJSON {
		return c.JSONBlob(http.StatusOK, out)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", out)
}

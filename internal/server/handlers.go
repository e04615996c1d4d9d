package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	"github.com/janekbaraniewski/wfdash/internal/version"
)

func (s *Service) handleHealth(c *gin.Context) {
	n, err := s.store.Count(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, HealthResponse{
		Status:     "ok",
		Version:    version.Version,
		APIVersion: APIVersion,
		Rows:       n,
	})
}

// handleView serves the query boundary. With neither start nor end in the
// query the configured default range applies; an explicitly empty bound is
// open.
func (s *Service) handleView(c *gin.Context) {
	r := s.cfg.DefaultRange
	start, hasStart := c.GetQuery("start")
	end, hasEnd := c.GetQuery("end")
	if hasStart || hasEnd {
		parsed, err := projection.ParseRange(start, end)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_range", err)
			return
		}
		r = parsed
	}

	rows, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, projection.NewView(rows, r, projection.Today(s.now)))
}

func (s *Service) handleGrid(c *gin.Context) {
	rows, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	projection.SortByPublication(rows)
	respondOK(c, GridResponse{
		Rows:    codec.EncodeGrid(rows),
		Rosters: s.currentRosters(),
	})
}

// handleSaveGrid implements the save contract: the body is the whole grid
// and on success the store equals it.
func (s *Service) handleSaveGrid(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var body []map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if body == nil {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("body must be a JSON array of rows"))
		return
	}
	strict, _ := strconv.ParseBool(c.Query("strict"))

	records := make([]schema.RawRecord, 0, len(body))
	for _, row := range body {
		records = append(records, schema.RecordFromAny(row))
	}

	res, err := s.store.ReplaceAll(c.Request.Context(), records, codec.DecodeOptions{Strict: strict})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, SaveResponse{
		Rows:         res.Rows,
		DateFailures: res.Report.Count(),
		Summary:      res.Report.Summary(),
		Failures:     res.Report.Failures,
	})
}

func (s *Service) handleRosters(c *gin.Context) {
	rosters := s.currentRosters()
	if rosters.Empty() && s.source != nil {
		fresh, err := s.refreshRosters(c.Request.Context())
		if err != nil {
			// Rosters are an editing aid; serve empty lists rather than fail.
			s.log.Warn("rosters_refresh_failed", "error", err)
		} else {
			rosters = fresh
		}
	}
	respondOK(c, rosters)
}

func (s *Service) handleSeed(c *gin.Context) {
	res, err := s.seed(c.Request.Context())
	if err != nil {
		if errors.Is(err, core.ErrSourceUnavailable) {
			respondOK(c, SeedResponse{Degraded: true, Error: err.Error()})
			return
		}
		respondErr(c, err)
		return
	}
	respondOK(c, SeedResponse{
		Seeded:  res.Seeded,
		Rows:    res.Rows,
		Summary: res.Report.Summary(),
	})
}

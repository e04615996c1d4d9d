package server

import (
	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
)

const APIVersion = "v1"

type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
	Rows       int    `json:"rows"`
}

type GridResponse struct {
	Rows    []codec.GridRow `json:"rows"`
	Rosters core.Rosters    `json:"rosters"`
}

type SaveResponse struct {
	Rows         int                     `json:"rows"`
	DateFailures int                     `json:"date_failures"`
	Summary      string                  `json:"summary,omitempty"`
	Failures     []*core.DateFormatError `json:"failures,omitempty"`
}

type SeedResponse struct {
	Seeded   bool   `json:"seeded"`
	Rows     int    `json:"rows"`
	Summary  string `json:"summary,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

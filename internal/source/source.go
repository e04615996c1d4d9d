package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	"github.com/janekbaraniewski/wfdash/internal/version"
)

const defaultRequestTimeout = 10 * time.Second

// Source yields the bulk workbook used for first-run seeding and for the
// grid's picklists.
type Source interface {
	Workbook(ctx context.Context) (Workbook, error)
}

type Config struct {
	Path      string
	URL       string
	DataSheet string
	Timeout   time.Duration
}

// New picks the file source when a path is configured, the HTTP source
// otherwise. It returns nil when neither is set.
func New(cfg Config) Source {
	switch {
	case strings.TrimSpace(cfg.Path) != "":
		return &FileSource{Path: cfg.Path, DataSheet: cfg.DataSheet}
	case strings.TrimSpace(cfg.URL) != "":
		return &HTTPSource{URL: cfg.URL, DataSheet: cfg.DataSheet, Timeout: cfg.Timeout}
	default:
		return nil
	}
}

type FileSource struct {
	Path      string
	DataSheet string
}

func (s *FileSource) Workbook(ctx context.Context) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return Workbook{}, unavailable(err)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return Workbook{}, unavailable(err)
	}
	defer f.Close()

	wb, err := ParseWorkbook(io.LimitReader(f, maxWorkbookSize), s.DataSheet)
	if err != nil {
		return Workbook{}, unavailable(err)
	}
	return wb, nil
}

type HTTPSource struct {
	URL        string
	DataSheet  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (s *HTTPSource) Workbook(ctx context.Context) (Workbook, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Workbook{}, unavailable(fmt.Errorf("build workbook request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return Workbook{}, unavailable(fmt.Errorf("fetch workbook: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Workbook{}, unavailable(fmt.Errorf("fetch workbook: HTTP %d", resp.StatusCode))
	}

	wb, err := ParseWorkbook(io.LimitReader(resp.Body, maxWorkbookSize), s.DataSheet)
	if err != nil {
		return Workbook{}, unavailable(err)
	}
	return wb, nil
}

// SeedRecords adapts a Source to the store's seeder signature.
func SeedRecords(src Source) func(context.Context) ([]schema.RawRecord, error) {
	return func(ctx context.Context) ([]schema.RawRecord, error) {
		if src == nil {
			return nil, unavailable(errors.New("no source configured"))
		}
		wb, err := src.Workbook(ctx)
		if err != nil {
			return nil, err
		}
		return wb.Data, nil
	}
}

// Rosters fetches only the picklists. A nil source yields empty rosters.
func Rosters(ctx context.Context, src Source) (core.Rosters, error) {
	if src == nil {
		return core.Rosters{}, nil
	}
	wb, err := src.Workbook(ctx)
	if err != nil {
		return core.Rosters{}, err
	}
	return wb.Rosters, nil
}

func unavailable(err error) error {
	if errors.Is(err, core.ErrSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
}

// Package client calls the external sector benchmark API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

var ErrNotConfigured = errors.New("benchmark api not configured")

// SectorAverages is what the API returns for one sector: mean function scores on 0–5,
// keyed by function name.
type SectorAverages struct {
	Sector     string             `json:"secteur"`
	SampleSize int                `json:"taille_echantillon"`
	Fonctions  map[string]float64 `json:"fonctions"`
}

type SectorClient interface {
	SectorAverages(ctx context.Context, sector string) (SectorAverages, error)
}

type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTPClient) enabled() bool {
	return h != nil && h.baseURL != ""
}

// SectorAverages: GET {base}/sectors/{sector}/averages.
func (h *HTTPClient) SectorAverages(ctx context.Context, sector string) (SectorAverages, error) {
	if !h.enabled() {
		return SectorAverages{}, ErrNotConfigured
	}

	endpoint := h.baseURL + "/sectors/" + url.PathEscape(sector) + "/averages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SectorAverages{}, err
	}
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("X-API-KEY", h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return SectorAverages{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return SectorAverages{}, fmt.Errorf("benchmark api: status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SectorAverages{}, err
	}

	var out SectorAverages
	if err := sonic.Unmarshal(b, &out); err != nil {
		return SectorAverages{}, fmt.Errorf("benchmark api: decode: %w", err)
	}
	if len(out.Fonctions) == 0 {
		return SectorAverages{}, errors.New("benchmark api: empty payload")
	}
	if out.Sector == "" {
		out.Sector = sector
	}
	return out, nil
}

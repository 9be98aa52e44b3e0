// Package dailymed lists structured product labels from the DailyMed API.
package dailymed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"spillthepill/internal/adapter/upstream"
	"spillthepill/internal/domain"
)

const DefaultBaseURL = "https://dailymed.nlm.nih.gov/dailymed/services/v2"

// Client implements domain.LabelDirectory.
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// SPLs returns the first page of labels published for rxcui.
func (c *Client) SPLs(ctx context.Context, rxcui string) (*domain.SPLPage, error) {
	var page domain.SPLPage
	err := upstream.GetJSON(ctx, c.hc, c.base+"/spls.json?rxcui="+url.QueryEscape(rxcui), &page)
	if err != nil {
		return nil, fmt.Errorf("dailymed: %w: %w", domain.ErrDrugDataUnavailable, err)
	}
	if page.Data == nil {
		page.Data = []domain.SPL{}
	}
	return &page, nil
}

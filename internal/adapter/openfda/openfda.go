// Package openfda looks drug labels up in the openFDA drug label API.
package openfda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"spillthepill/internal/adapter/upstream"
	"spillthepill/internal/domain"
)

const DefaultBaseURL = "https://api.fda.gov"

// maxSection bounds each label section in runes. Label sections can run to
// many pages and the LLM prompt only needs the gist.
const maxSection = 1500

// NameResolver turns an RxCUI into a drug name.
type NameResolver interface {
	NameForRxCUI(ctx context.Context, rxcui string) (string, error)
}

// Source implements domain.DrugSource on top of openFDA.
type Source struct {
	base     string
	apiKey   string
	hc       *http.Client
	resolver NameResolver
}

func New(baseURL, apiKey string, hc *http.Client, resolver NameResolver) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Source{base: strings.TrimRight(baseURL, "/"), apiKey: apiKey, hc: hc, resolver: resolver}
}

type label struct {
	IndicationsAndUsage     []string `json:"indications_and_usage"`
	DosageAndAdministration []string `json:"dosage_and_administration"`
	Warnings                []string `json:"warnings"`
	AdverseReactions        []string `json:"adverse_reactions"`
	OpenFDA                 struct {
		GenericName []string `json:"generic_name"`
		BrandName   []string `json:"brand_name"`
		RxCUI       []string `json:"rxcui"`
	} `json:"openfda"`
}

// Lookup finds the first label whose generic or brand name matches query.
// A numeric query is treated as an RxCUI and resolved to a name first.
func (s *Source) Lookup(ctx context.Context, query string) (*domain.DrugInfo, error) {
	name := strings.TrimSpace(query)
	var rxcui string
	if domain.IsRxCUI(name) && s.resolver != nil {
		resolved, err := s.resolver.NameForRxCUI(ctx, name)
		if err != nil {
			return nil, err
		}
		rxcui, name = name, resolved
	}

	var body struct {
		Results []label `json:"results"`
	}
	if err := upstream.GetJSON(ctx, s.hc, s.searchURL(name), &body); err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			return nil, domain.ErrDrugNotFound
		}
		return nil, fmt.Errorf("openfda: %w: %w", domain.ErrDrugDataUnavailable, err)
	}
	if len(body.Results) == 0 {
		return nil, domain.ErrDrugNotFound
	}

	l := body.Results[0]
	if rxcui == "" && len(l.OpenFDA.RxCUI) > 0 {
		rxcui = l.OpenFDA.RxCUI[0]
	}
	return &domain.DrugInfo{
		Name:        name,
		RxCUI:       rxcui,
		Uses:        section(l.IndicationsAndUsage),
		Dosage:      section(l.DosageAndAdministration),
		Warnings:    section(l.Warnings),
		SideEffects: section(l.AdverseReactions),
		Source:      "openfda",
	}, nil
}

func (s *Source) searchURL(name string) string {
	quoted := `"` + strings.ReplaceAll(name, `"`, "") + `"`
	q := url.Values{}
	q.Set("search", "openfda.generic_name:"+quoted+" openfda.brand_name:"+quoted)
	q.Set("limit", "1")
	if s.apiKey != "" {
		q.Set("api_key", s.apiKey)
	}
	return s.base + "/drug/label.json?" + q.Encode()
}

func section(parts []string) string {
	text := strings.TrimSpace(strings.Join(parts, " "))
	r := []rune(text)
	if len(r) <= maxSection {
		return text
	}
	return strings.TrimSpace(string(r[:maxSection])) + "..."
}

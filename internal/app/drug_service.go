package app

import (
	"context"
	"log/slog"
	"strings"

	"spillthepill/internal/domain"
)

// DrugDeps are the ports DrugService reads drug data from.
type DrugDeps struct {
	Source    domain.DrugSource
	Suggester domain.DrugSuggester
	Reference domain.DrugReference
	Labels    domain.LabelDirectory
}

// DrugService answers drug lookups and simplify requests.
type DrugService struct {
	deps       DrugDeps
	simplifier *Simplifier
	log        *slog.Logger
}

func NewDrugService(deps DrugDeps, simplifier *Simplifier, log *slog.Logger) *DrugService {
	return &DrugService{deps: deps, simplifier: simplifier, log: log}
}

// Suggest returns drug names matching term.
func (s *DrugService) Suggest(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.Invalid("Search term is required")
	}
	names, err := s.deps.Suggester.Suggest(ctx, term)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// RxCUI resolves a drug name to its RxNorm identifier.
func (s *DrugService) RxCUI(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Invalid("Drug name is required")
	}
	return s.deps.Reference.RxCUI(ctx, name)
}

// Properties returns the RxNorm properties of a concept.
func (s *DrugService) Properties(ctx context.Context, rxcui string) (*domain.DrugProperties, error) {
	if !domain.IsRxCUI(rxcui) {
		return nil, domain.Invalid("Invalid RxCUI %q", rxcui)
	}
	return s.deps.Reference.Properties(ctx, rxcui)
}

// Labels lists the DailyMed labels published for a concept.
func (s *DrugService) Labels(ctx context.Context, rxcui string) (*domain.SPLPage, error) {
	if !domain.IsRxCUI(rxcui) {
		return nil, domain.Invalid("Invalid RxCUI %q", rxcui)
	}
	return s.deps.Labels.SPLs(ctx, rxcui)
}

// RawData returns the unsimplified record for a drug name or RxCUI.
func (s *DrugService) RawData(ctx context.Context, query string) (*domain.DrugInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("Drug name is required")
	}
	return s.deps.Source.Lookup(ctx, query)
}

// Simplify looks the drug up and rewrites it in plain language.
func (s *DrugService) Simplify(ctx context.Context, query string, opts SimplifyOptions) (*Simplified, error) {
	info, err := s.RawData(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.simplifier.Simplify(ctx, *info, opts)
}

// SimplifyInfo rewrites a caller-supplied record.
func (s *DrugService) SimplifyInfo(ctx context.Context, info domain.DrugInfo, opts SimplifyOptions) (*Simplified, error) {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return nil, domain.Invalid("Drug name is required.")
	}
	return s.simplifier.Simplify(ctx, info, opts)
}

package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// DrugInfo is the descriptive record a drug source produces for one drug.
// Every field except Name may be empty.
type DrugInfo struct {
	Name        string `json:"name"`
	RxCUI       string `json:"rxcui,omitempty"`
	Uses        string `json:"uses,omitempty"`
	Dosage      string `json:"dosage,omitempty"`
	Warnings    string `json:"warnings,omitempty"`
	SideEffects string `json:"sideEffects,omitempty"`
	Source      string `json:"source,omitempty"`
}

// HasContent reports whether any descriptive field is filled in.
func (d DrugInfo) HasContent() bool {
	return strings.TrimSpace(d.Uses+d.Dosage+d.Warnings+d.SideEffects) != ""
}

// DrugProperties mirrors the RxNorm properties of a concept.
type DrugProperties struct {
	RxCUI    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym"`
	TTY      string `json:"tty"`
	Language string `json:"language"`
	Suppress string `json:"suppress"`
	UMLSCUI  string `json:"umlscui"`
}

// SPL is one structured product label listed by DailyMed.
type SPL struct {
	SetID         string `json:"setid"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date"`
	Version       int    `json:"spl_version"`
}

// SPLPage is a page of DailyMed label listings. Metadata is passed through
// as returned by DailyMed.
type SPLPage struct {
	Data     []SPL           `json:"data"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// DrugSource resolves a drug name or RxCUI to a descriptive record.
type DrugSource interface {
	Lookup(ctx context.Context, query string) (*DrugInfo, error)
}

// DrugSuggester returns drug names matching a partial term.
type DrugSuggester interface {
	Suggest(ctx context.Context, term string) ([]string, error)
}

// DrugReference is the RxNorm concept lookup port.
type DrugReference interface {
	RxCUI(ctx context.Context, name string) (string, error)
	Properties(ctx context.Context, rxcui string) (*DrugProperties, error)
}

// LabelDirectory lists published drug labels for an RxCUI.
type LabelDirectory interface {
	SPLs(ctx context.Context, rxcui string) (*SPLPage, error)
}

// IsRxCUI reports whether s looks like an RxNorm concept identifier.
func IsRxCUI(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Package rxnav is a client for the NLM RxNav REST API.
package rxnav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"spillthepill/internal/adapter/upstream"
	"spillthepill/internal/domain"
)

const DefaultBaseURL = "https://rxnav.nlm.nih.gov/REST"

// Client talks to RxNav. It implements domain.DrugSuggester and
// domain.DrugReference.
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

type conceptProperties struct {
	RxCUI string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"`
}

type conceptGroup struct {
	TTY               string              `json:"tty"`
	ConceptProperties []conceptProperties `json:"conceptProperties"`
}

// Suggest returns the concept names RxNav lists for term, in order and
// without duplicates.
func (c *Client) Suggest(ctx context.Context, term string) ([]string, error) {
	var body struct {
		DrugGroup struct {
			ConceptGroup []conceptGroup `json:"conceptGroup"`
		} `json:"drugGroup"`
	}
	if err := c.get(ctx, "/drugs.json?name="+url.QueryEscape(term), &body); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := []string{}
	for _, g := range body.DrugGroup.ConceptGroup {
		for _, p := range g.ConceptProperties {
			if p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// RxCUI returns the first RxNorm id for name.
func (c *Client) RxCUI(ctx context.Context, name string) (string, error) {
	var body struct {
		IDGroup struct {
			RxNormID []string `json:"rxnormId"`
		} `json:"idGroup"`
	}
	if err := c.get(ctx, "/rxcui.json?name="+url.QueryEscape(name), &body); err != nil {
		return "", err
	}
	if len(body.IDGroup.RxNormID) == 0 || body.IDGroup.RxNormID[0] == "" {
		return "", domain.NotFound("RxCUI not found")
	}
	return body.IDGroup.RxNormID[0], nil
}

// Properties returns the properties of concept rxcui.
func (c *Client) Properties(ctx context.Context, rxcui string) (*domain.DrugProperties, error) {
	var body struct {
		Properties *domain.DrugProperties `json:"properties"`
	}
	if err := c.get(ctx, "/rxcui/"+url.PathEscape(rxcui)+"/properties.json", &body); err != nil {
		return nil, err
	}
	if body.Properties == nil {
		return nil, domain.ErrDrugNotFound
	}
	return body.Properties, nil
}

// NameForRxCUI resolves a concept id to a name. It asks for the concept's
// own properties first and falls back to its related concepts, preferring
// an ingredient.
func (c *Client) NameForRxCUI(ctx context.Context, rxcui string) (string, error) {
	props, err := c.Properties(ctx, rxcui)
	if err == nil && props.Name != "" {
		return props.Name, nil
	}

	var body struct {
		AllRelatedGroup struct {
			ConceptGroup []conceptGroup `json:"conceptGroup"`
		} `json:"allRelatedGroup"`
	}
	if err := c.get(ctx, "/rxcui/"+url.PathEscape(rxcui)+"/allrelated.json", &body); err != nil {
		return "", err
	}

	var first string
	for _, g := range body.AllRelatedGroup.ConceptGroup {
		for _, p := range g.ConceptProperties {
			if p.Name == "" {
				continue
			}
			if g.TTY == "IN" {
				return p.Name, nil
			}
			if first == "" {
				first = p.Name
			}
		}
	}
	if first == "" {
		return "", domain.ErrDrugNotFound
	}
	return first, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	err := upstream.GetJSON(ctx, c.hc, c.base+path, dst)
	if err == nil {
		return nil
	}
	if upstream.IsStatus(err, http.StatusNotFound) {
		return domain.ErrDrugNotFound
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("rxnav: %w: %w", domain.ErrDrugDataUnavailable, err)
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/httpclient"
)

// Variant is one bottle size of a perfume.
type Variant struct {
	SKU        string `json:"sku"`
	VolumeMl   int    `json:"volumeMl"`
	PriceCents int64  `json:"priceCents"`
	Stock      int    `json:"stock"`
}

// Perfume is the product document served by the catalog backend.
type Perfume struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Brand       string    `json:"brand"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images"`
	Variants    []Variant `json:"variants"`
}

// Client reads product documents from the catalog backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient uses an instrumented client when httpClient is nil.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("catalog base url required")
	}
	if httpClient == nil {
		httpClient = httpclient.New(timeout)
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// Perfume fetches one product by slug.
func (c *Client) Perfume(ctx context.Context, slug string) (Perfume, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Perfume{}, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	endpoint := httpclient.JoinURL(c.baseURL, "perfumes/"+url.PathEscape(slug))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Perfume{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Perfume{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Perfume{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Perfume{}, pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found").WithDetails(map[string]any{"slug": slug})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := httpclient.ErrorMessage(resp.StatusCode, body)
		return Perfume{}, pkgerrors.New(pkgerrors.CodeDependency, msg).WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var perfume Perfume
	if err := json.Unmarshal(body, &perfume); err != nil {
		return Perfume{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	return perfume, nil
}

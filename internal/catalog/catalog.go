package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

const source = "catalog"

// PriceConverter decorates a USD price with an INR one. Nil means unpriced.
type PriceConverter interface {
	Convert(ctx context.Context, amountUSD float64) *int64
}

type Service struct {
	client    *resty.Client
	converter PriceConverter
	cache     cache.CatalogCache
	sessionID string
	sfg       singleflight.Group // Prevents concurrent catalog fetches for one session
}

// NewService expects client to carry the catalog base URL.
func NewService(client *resty.Client, converter PriceConverter, c cache.CatalogCache, sessionID string) *Service {
	return &Service{
		client:    client,
		converter: converter,
		cache:     c,
		sessionID: sessionID,
	}
}

// ListProducts returns the session's decorated catalog, fetching it on the
// first call only.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.cache.Get(ctx, s.sessionID)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("catalog cache get error: %v", err)
	}

	v, err, _ := s.sfg.Do(s.sessionID, func() (interface{}, error) {
		body, err := s.get(ctx, "/products", nil)
		if err != nil {
			return nil, err
		}
		var raw []domain.Product
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, &domain.FetchError{Source: source, Err: fmt.Errorf("decode products: %w", err)}
		}

		decorated := make([]domain.Product, 0, len(raw))
		for _, p := range raw {
			decorated = append(decorated, s.decorate(ctx, p))
		}

		if err := s.cache.Set(ctx, s.sessionID, decorated); err != nil {
			log.Printf("catalog cache set error: %v", err)
		}
		return decorated, nil
	})
	if err != nil {
		return nil, err
	}

	out := v.([]domain.Product)
	return append([]domain.Product(nil), out...), nil
}

// GetProduct always fetches the product fresh.
func (s *Service) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, &domain.FetchError{Source: source, StatusCode: http.StatusNotFound, Err: domain.ErrProductNotFound}
	}

	body, err := s.get(ctx, "/products/{id}", map[string]string{"id": id.String()})
	if err != nil {
		return domain.Product{}, err
	}
	// the catalog API answers unknown ids with 200 and an empty body
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return domain.Product{}, &domain.FetchError{Source: source, StatusCode: http.StatusNotFound, Err: domain.ErrProductNotFound}
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, &domain.FetchError{Source: source, Err: fmt.Errorf("decode product %s: %w", id, err)}
	}
	return s.decorate(ctx, p), nil
}

// ByCategory matches the category case-insensitively.
func (s *Service) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.Find(ctx, category, "")
}

// Search matches a case-insensitive substring of the title. An empty term
// matches everything.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return s.Find(ctx, "", term)
}

// Find applies both filters to the session catalog. Empty arguments do not
// filter.
func (s *Service) Find(ctx context.Context, category, term string) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	term = strings.ToLower(strings.TrimSpace(term))
	if category == "" && term == "" {
		return products, nil
	}
	return filter(products, func(p domain.Product) bool {
		if category != "" && !strings.EqualFold(p.Category, category) {
			return false
		}
		return term == "" || strings.Contains(strings.ToLower(p.Title), term)
	}), nil
}

// Categories lists distinct categories in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

// Invalidate drops the cached catalog so the next list refetches it.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.sessionID)
}

func (s *Service) decorate(ctx context.Context, p domain.Product) domain.Product {
	p.PriceINR = s.converter.Convert(ctx, p.PriceUSD)
	return p
}

func (s *Service) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	if err != nil {
		return nil, &domain.FetchError{Source: source, Err: fmt.Errorf("request %s: %w", path, err)}
	}
	if resp.IsError() {
		fe := &domain.FetchError{Source: source, StatusCode: resp.StatusCode(), Err: fmt.Errorf("unexpected response from %s", path)}
		if resp.StatusCode() == http.StatusNotFound {
			fe.Err = domain.ErrProductNotFound
		}
		return nil, fe
	}
	return resp.Body(), nil
}

func filter(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Package airports loads the autocomplete airport list.
package airports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
)

const maxListBytes = 8 << 20

// Directory is an immutable airport list with suggestion lookup.
type Directory struct {
	airports []domain.Airport
}

// Load reads the airport list from a file path or an http(s) URL. The list is
// optional: any failure is logged and yields an empty directory.
func Load(ctx context.Context, source string, client *http.Client, logger *slog.Logger) *Directory {
	logger = logging.OrDiscard(logger)
	source = strings.TrimSpace(source)
	if source == "" {
		return New(nil)
	}

	list, err := fetch(ctx, source, client)
	if err != nil {
		logger.Info("airport list unavailable", "source", source, "error", err)
		return New(nil)
	}
	logger.Debug("airport list loaded", "source", source, "count", len(list))
	return New(list)
}

// New builds a directory, skipping entries without a city or code.
func New(list []domain.Airport) *Directory {
	kept := make([]domain.Airport, 0, len(list))
	for _, a := range list {
		a.City = strings.TrimSpace(a.City)
		a.Code = strings.TrimSpace(a.Code)
		a.Name = strings.TrimSpace(a.Name)
		if a.City == "" || a.Code == "" {
			continue
		}
		kept = append(kept, a)
	}
	return &Directory{airports: kept}
}

func (d *Directory) Len() int {
	return len(d.airports)
}

// All returns every airport as a suggestion, in list order.
func (d *Directory) All() []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(d.airports))
	for _, a := range d.airports {
		out = append(out, suggestionFor(a))
	}
	return out
}

// Suggest returns up to limit airports whose city, code or name contains
// query. Matches at the start of the city or code sort first.
func (d *Directory) Suggest(query string, limit int) []domain.Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var leading, inner []domain.Suggestion
	for _, a := range d.airports {
		city, code, name := strings.ToLower(a.City), strings.ToLower(a.Code), strings.ToLower(a.Name)
		switch {
		case strings.HasPrefix(city, q) || strings.HasPrefix(code, q):
			leading = append(leading, suggestionFor(a))
		case strings.Contains(city, q) || strings.Contains(name, q):
			inner = append(inner, suggestionFor(a))
		}
	}

	out := append(leading, inner...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func suggestionFor(a domain.Airport) domain.Suggestion {
	value := fmt.Sprintf("%s (%s)", a.City, a.Code)
	label := value
	if a.Name != "" {
		label = value + " – " + a.Name
	}
	return domain.Suggestion{Value: value, Label: label}
}

func fetch(ctx context.Context, source string, client *http.Client) ([]domain.Airport, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		res, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		body = res.Body
	} else {
		file, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		body = file
	}
	defer body.Close()

	var list []domain.Airport
	if err := json.NewDecoder(io.LimitReader(body, maxListBytes)).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode airport list: %w", err)
	}
	return list, nil
}

package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
)

var _ ports.SearchIndex = (*Index)(nil)

// Index keeps searchable listing fields in an Elasticsearch index keyed by plant id.
type Index struct {
	client *elasticsearch.Client
	name   string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	if strings.TrimSpace(name) == "" {
		name = "plants"
	}
	return &Index{client: client, name: name}
}

type plantDocument struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	SellerEmail string `json:"sellerEmail"`
}

func (i *Index) Index(ctx context.Context, plant *domain.Plant) error {
	body, err := json.Marshal(plantDocument{
		Name:        plant.Name,
		Category:    plant.Category,
		Description: plant.Description,
		SellerEmail: plant.Seller.Email,
	})
	if err != nil {
		return err
	}
	res, err := i.client.Index(i.name, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(plant.ID),
	)
	if err != nil {
		return fmt.Errorf("index plant %s: %w", plant.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index plant", res.Status(), res.Body)
	}
	return nil
}

// Search runs a fuzzy multi_match weighted towards the name. An empty
// query matches everything.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	var q map[string]any
	if strings.TrimSpace(query) == "" {
		q = map[string]any{"match_all": map[string]any{}}
	} else {
		q = map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]any{
		"query":   q,
		"size":    limit,
		"_source": false,
	}); err != nil {
		return nil, err
	}
	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search plants: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search plants", res.Status(), res.Body)
	}
	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func responseError(op, status string, body io.Reader) error {
	detail, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("%s: %s: %s", op, status, bytes.TrimSpace(detail))
}

// internal/store/elasticsearch.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"event-insights-workers/internal/models"
)

const (
	DefaultEventsIndex = "events"
	searchPageSize     = 1000
)

// ElasticsearchEventSource serves comparable-event lookups from the events index.
type ElasticsearchEventSource struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchEventSource(client *elasticsearch.Client, index string) *ElasticsearchEventSource {
	if index == "" {
		index = DefaultEventsIndex
	}
	return &ElasticsearchEventSource{client: client, index: index}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string       `json:"_id"`
			Source models.Event `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildComparableQuery(category string, before time.Time) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"category.keyword": map[string]interface{}{
								"value":            category,
								"case_insensitive": true,
							},
						},
					},
					map[string]interface{}{
						"range": map[string]interface{}{
							"date": map[string]interface{}{"lt": before.UTC().Format(time.RFC3339)},
						},
					},
				},
			},
		},
		"sort": []map[string]interface{}{{"date": "desc"}},
	}
}

func (s *ElasticsearchEventSource) FindByCategoryBefore(ctx context.Context, category string, before time.Time) ([]models.Event, error) {
	body, err := json.Marshal(buildComparableQuery(category, before))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	size := searchPageSize
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", ErrSearchFailed, s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: %s", ErrSearchFailed, s.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", ErrSearchFailed, err)
	}

	events := make([]models.Event, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ev := hit.Source
		if ev.ID == "" {
			ev.ID = hit.ID
		}
		events = append(events, ev)
	}
	return events, nil
}

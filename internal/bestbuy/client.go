package bestbuy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/pricewise/catalog-admin/internal/normalize"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
	"github.com/pricewise/catalog-admin/pkg/httpclient"
)

// showFields is the fixed field set requested from the products endpoint.
const showFields = "sku,name,manufacturer,modelNumber,shortDescription,longDescription,color," +
	"details.name,details.value,features.feature,includedItemList.includedItem,images,url"

// Client fetches product records from the Best Buy products API.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a Best Buy API client. An empty apiKey is allowed at
// construction time; Fetch reports it as a configuration error.
func NewClient(baseURL, apiKey string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http,
		logger:  logger,
	}
}

// Fetch retrieves the product record for a SKU, normalized field by field.
// It also returns the cleaned raw payload so the admin UI can show exactly
// what the provider sent, including fields the typed record does not model.
func (c *Client) Fetch(ctx context.Context, sku string) (*Record, map[string]any, error) {
	if c.apiKey == "" {
		return nil, nil, apperrors.Configuration("BESTBUY_API_KEY")
	}

	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("format", "json")
	query.Set("show", showFields)

	endpoint := fmt.Sprintf("%s/v1/products/%s.json?%s", c.baseURL, url.PathEscape(sku), query.Encode())

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrRemoteService, fmt.Sprintf("fetch sku %s: %v", sku, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "product api returned error status",
			slog.String("sku", sku),
			slog.Int("status", resp.StatusCode),
		)
		return nil, nil, apperrors.RemoteService("bestbuy", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrRemoteService, fmt.Sprintf("read response for sku %s: %v", sku, err))
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrRemoteService, fmt.Sprintf("decode response for sku %s: %v", sku, err))
	}
	record.Normalize()

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrRemoteService, fmt.Sprintf("decode raw payload for sku %s: %v", sku, err))
	}
	cleaned, _ := normalize.Value(raw).(map[string]any)

	c.logger.DebugContext(ctx, "fetched product record",
		slog.String("sku", sku),
		slog.String("name", record.Name),
	)

	return &record, cleaned, nil
}

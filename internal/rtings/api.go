package rtings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lepinkainen/hpdata/internal/errors"
	"github.com/lepinkainen/hpdata/internal/metrics"
)

const (
	productsListPath = "/api/v2/safe/table_tool__products_list"
	graphDataURLPath = "/api/v2/safe/app/graph_tool__product_graph_data_url"
	tableToolPath    = "/headphones/tools/table"

	graphDataURLField = "data.product.review.test_results[0].graph_data_url"
)

// CatalogTestBenchIDs are the test bench ids requested from the table tool.
var CatalogTestBenchIDs = []string{"90", "137", "153"}

type productsListRequest struct {
	Variables struct {
		TestBenchIDs []string `json:"test_bench_ids"`
		NamedVersion string   `json:"named_version"`
		IsAdmin      bool     `json:"is_admin"`
	} `json:"variables"`
}

type graphURLRequest struct {
	Variables struct {
		ProductID      string `json:"product_id"`
		TestOriginalID string `json:"test_original_id"`
		NamedVersion   string `json:"named_version"`
	} `json:"variables"`
}

type graphURLResponse struct {
	Data struct {
		Product *struct {
			Review *struct {
				TestResults []struct {
					GraphDataURL string `json:"graph_data_url"`
				} `json:"test_results"`
			} `json:"review"`
		} `json:"product"`
	} `json:"data"`
}

// GraphData is a frequency response table as served by the asset host.
// Missing measurements are nil.
type GraphData struct {
	Header []string     `json:"header"`
	Data   [][]*float64 `json:"data"`
}

// FetchProductsList requests the full headphone catalog and returns the raw
// response body.
func (c *Client) FetchProductsList(ctx context.Context) ([]byte, error) {
	var body productsListRequest
	body.Variables.TestBenchIDs = CatalogTestBenchIDs
	body.Variables.NamedVersion = "public"

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Content-Type", "application/json").
		SetHeader("Cookie", c.cookie()).
		SetHeader("Referer", c.origin+tableToolPath).
		SetBody(body).
		Post(c.origin + productsListPath)
	c.observe("products_list", res, err)
	if err != nil {
		return nil, fmt.Errorf("products list request failed: %w", err)
	}
	if err := checkStatus("products list", res); err != nil {
		return nil, err
	}

	return res.Body(), nil
}

// FetchDocument downloads the detail page at pageURL and returns its HTML.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache").
		SetHeader("Upgrade-Insecure-Requests", "1").
		SetHeader("Cookie", c.cookie()).
		Get(pageURL)
	c.observe("review_page", res, err)
	if err != nil {
		return "", fmt.Errorf("review page request failed: %w", err)
	}
	if err := checkStatus("review page", res); err != nil {
		return "", err
	}

	return res.String(), nil
}

// ResolveGraphURL looks up the location of the graph data for one product and test.
func (c *Client) ResolveGraphURL(ctx context.Context, productID, fullname, testID string) (string, error) {
	var body graphURLRequest
	body.Variables.ProductID = productID
	body.Variables.TestOriginalID = testID
	body.Variables.NamedVersion = "public"

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Content-Type", "application/json").
		SetHeader("Cookie", c.cookie()).
		SetHeader("Referer", c.graphReferer(productID, fullname, testID)).
		SetBody(body).
		Post(c.origin + graphDataURLPath)
	c.observe("graph_data_url", res, err)
	if err != nil {
		return "", fmt.Errorf("graph url request failed: %w", err)
	}
	if err := checkStatus("graph url", res); err != nil {
		return "", err
	}

	var parsed graphURLResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to decode graph url response: %w", err)
	}

	product := parsed.Data.Product
	if product == nil || product.Review == nil || len(product.Review.TestResults) == 0 {
		return "", errors.NewMissingFieldError(graphDataURLField)
	}
	graphURL := product.Review.TestResults[0].GraphDataURL
	if graphURL == "" {
		return "", errors.NewMissingFieldError(graphDataURLField)
	}
	return graphURL, nil
}

// FetchGraphData downloads the graph data table at path on the asset host.
func (c *Client) FetchGraphData(ctx context.Context, path string) (GraphData, error) {
	var data GraphData

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Referer", c.origin+"/").
		Get(c.assetOrigin + path)
	c.observe("graph_data", res, err)
	if err != nil {
		return data, fmt.Errorf("graph data request failed: %w", err)
	}
	if err := checkStatus("graph data", res); err != nil {
		return data, err
	}

	if err := json.Unmarshal(res.Body(), &data); err != nil {
		return data, fmt.Errorf("failed to decode graph data: %w", err)
	}
	return data, nil
}

func (c *Client) graphReferer(productID, fullname, testID string) string {
	slug := strings.Join(strings.Split(strings.ToLower(fullname), " "), "_")
	return fmt.Sprintf("%s/headphones/graph/%s/frequency-response/%s/%s", c.origin, testID, slug, productID)
}

func (c *Client) observe(endpoint string, res *resty.Response, err error) {
	code := "error"
	if err == nil && res != nil {
		code = strconv.Itoa(res.StatusCode())
	}
	metrics.RequestsTotal.WithLabelValues(endpoint, code).Inc()
}

func checkStatus(op string, res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		return errors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("%s: rate limited (HTTP 429)", op),
			parseRetryAfter(res.Header().Get("Retry-After")),
		)
	}
	return errors.NewHTTPStatusError(op, res.StatusCode())
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

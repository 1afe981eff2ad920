package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"go.uber.org/zap"
)

const searchPath = "/v1/search/shop.json"

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	timeout      time.Duration
	client       *http.Client
	logger       *zap.Logger
}

func NewClient(baseURL, clientID, clientSecret string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		timeout:      timeout,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Search calls the shopping search endpoint. Every failure is logged and
// reported as a nil result.
func (c *Client) Search(ctx context.Context, query string, display, start int, sort string) *domain.SearchResult {
	if !c.Configured() {
		c.logger.Warn("naver shopping api is not configured, set NAVER_CLIENT_ID and NAVER_CLIENT_SECRET")
		return nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", sort)
	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("naver request build failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	request.Header.Set("X-Naver-Client-Id", c.clientID)
	request.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	request.Header.Set("Accept", "application/json")

	began := time.Now()
	c.logger.Debug("naver request start", zap.String("query", query), zap.Int("display", display), zap.Int("start", start))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("naver request failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer response.Body.Close()

	c.logger.Info(
		"naver request complete",
		zap.String("query", query),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(began)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Error("naver request rejected", zap.String("query", query), zap.Error(fmt.Errorf("naver error: status %d", response.StatusCode)))
		return nil
	}

	var payload searchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		c.logger.Error("naver response decode failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	result := &domain.SearchResult{
		LastBuildDate: payload.LastBuildDate,
		Total:         payload.Total,
		Start:         payload.Start,
		Display:       payload.Display,
		Items:         make([]domain.SearchItem, 0, len(payload.Items)),
	}
	for _, item := range payload.Items {
		result.Items = append(result.Items, domain.SearchItem{
			Title:       item.Title,
			Link:        item.Link,
			Image:       item.Image,
			LowPrice:    item.LPrice.Ptr(),
			HighPrice:   item.HPrice.Ptr(),
			MallName:    item.MallName,
			ProductID:   item.ProductID,
			ProductType: item.ProductType,
			Maker:       item.Maker,
			Brand:       item.Brand,
			Category1:   item.Category1,
			Category2:   item.Category2,
			Category3:   item.Category3,
			Category4:   item.Category4,
		})
	}

	return result
}

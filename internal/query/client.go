// 包 query：商户查询后端的 HTTP 客户端；四种空间/文本查询加全量列表，统一返回有序记录序列
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bizmap/internal/business"
	"bizmap/internal/logger"
	"bizmap/internal/metrics"
)

const maxBodyBytes = 16 << 20

// Client：后端查询客户端
// 约束：baseURL 不含 /api 前缀之后的路径；http 为空时使用 5s 超时的默认客户端
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// All：GET /api/businesses/
func (c *Client) All(ctx context.Context) ([]business.Business, error) {
	return c.get(ctx, ModeAll, "/api/businesses/", nil)
}

// ByProximity：半径内全部商户，顺序由后端决定
func (c *Client) ByProximity(ctx context.Context, lat, lon, radiusMeters float64) ([]business.Business, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	q.Set("radius", formatFloat(radiusMeters))
	return c.get(ctx, ModeProximity, "/api/businesses/nearby/", q)
}

// ByNearest：最多 limit 个商户，按距离严格递增
func (c *Client) ByNearest(ctx context.Context, lat, lon float64, limit int) ([]business.Business, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	q.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, ModeNearest, "/api/businesses/nearest/", q)
}

// ByContainment：位于指定服务区多边形内的商户
func (c *Client) ByContainment(ctx context.Context, areaName string) ([]business.Business, error) {
	q := url.Values{}
	q.Set("name", areaName)
	return c.get(ctx, ModeContainment, "/api/businesses/within-area/", q)
}

// ByName：名称或描述匹配 text 的商户
// 约束：空白输入由调用方拒绝，这里不做校验
func (c *Client) ByName(ctx context.Context, text string) ([]business.Business, error) {
	q := url.Values{}
	q.Set("search", text)
	return c.get(ctx, ModeName, "/api/businesses/", q)
}

func (c *Client) get(ctx context.Context, mode Mode, path string, q url.Values) ([]business.Business, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &QueryFailed{Mode: mode, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	metrics.QueryRequestsTotal.WithLabelValues(string(mode)).Inc()
	logger.L().Debug("query_req", "mode", mode, "url", u)
	fail := func(status int, cause error) error {
		metrics.QueryFailTotal.WithLabelValues(string(mode)).Inc()
		logger.L().Error("query_error", "mode", mode, "status", status, "err", cause)
		return &QueryFailed{Mode: mode, Status: status, Cause: cause}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fail(resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, errors.New(statusDetail(body, resp.Status)))
	}
	out, err := normalize(mode, body)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("decode: %w", err))
	}
	dur := time.Since(t0).Milliseconds()
	metrics.QueryDurationMs.WithLabelValues(string(mode)).Observe(float64(dur))
	logger.L().Debug("query_resp", "mode", mode, "count", len(out), "duration_ms", dur)
	return out, nil
}

// statusDetail：优先取后端 {"detail": "..."} 文本，否则退回状态行
func statusDetail(body []byte, status string) string {
	var d struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &d); err == nil && d.Detail != "" {
		return d.Detail
	}
	return status
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

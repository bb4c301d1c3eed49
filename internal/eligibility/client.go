package eligibility

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"jobfit/internal/metrics"
)

// CheckPath 是外部打分服务的固定接口路径。
const CheckPath = "/api/check_eligibility"

// Client 负责调用外部打分服务。每次提交只发出一次请求，
// 不做重试，也不设置客户端超时；取消只能来自传入的 ctx。
type Client struct {
	http    *resty.Client
	baseURL string
}

type checkRequest struct {
	JobDescription string `json:"job_description"`
	Resume         string `json:"resume"`
}

// NewClient 构造打分服务客户端。
func NewClient(baseURL string) *Client {
	return &Client{
		http:    resty.New(),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// Check 提交一次资格检测并返回原始响应体。
// 非 2xx 状态返回 "Request failed: <code>" 形式的错误。
func (c *Client) Check(ctx context.Context, jobDescription, resumeB64 string) ([]byte, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(checkRequest{
			JobDescription: jobDescription,
			// 请求体里的简历必须是纯 base64，不带 data-URI 前缀。
			Resume: StripDataURI(resumeB64),
		}).
		Post(c.baseURL + CheckPath)
	if err != nil {
		metrics.ObserveUpstreamRequest("transport_error", time.Since(start))
		return nil, err
	}

	code := resp.StatusCode()
	metrics.ObserveUpstreamRequest(strconv.Itoa(code), time.Since(start))

	// 任何非 2xx 状态都视为失败，包括 1xx/3xx。
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("Request failed: %d", code)
	}

	return resp.Body(), nil
}

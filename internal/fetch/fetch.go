// 包 fetch 封装 HTTP 客户端（代理/超时/可选重试），用于下载表格导出与探测卡图。
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// EnvUserAgent 可覆盖默认 UA。
const EnvUserAgent = "MAGIC_LAIR_UA"

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// Client 为带可选重试的 HTTP 客户端。
type Client struct {
	http  *http.Client
	retry int
}

// Options 为客户端构造参数。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	// Retry 为失败后的额外尝试次数，0 表示只请求一次
	Retry int
}

// StatusError 表示非 2xx 响应。
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string { return fmt.Sprintf("GET %s: http status %s", e.URL, e.Status) }

// New 创建客户端，支持 http/https 代理与基础超时配置。
func New(opts Options) (*Client, error) {
	var proxyHTTP, proxyHTTPS *url.URL
	var err error
	if opts.ProxyHTTP != "" {
		if proxyHTTP, err = url.Parse(opts.ProxyHTTP); err != nil {
			return nil, fmt.Errorf("parse http proxy: %w", err)
		}
	}
	if opts.ProxyHTTPS != "" {
		if proxyHTTPS, err = url.Parse(opts.ProxyHTTPS); err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
	}
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && proxyHTTPS != nil {
				return proxyHTTPS, nil
			}
			if req.URL.Scheme == "http" && proxyHTTP != nil {
				return proxyHTTP, nil
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Client{
		http:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		retry: opts.Retry,
	}, nil
}

// Get 发起 GET 请求；仅 2xx 视为成功，调用方负责关闭 Body。
// 配置了重试时按指数退避重试，4xx 不重试。
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	op := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("new request: %w", err))
		}
		ua := os.Getenv(EnvUserAgent)
		if ua == "" {
			ua = defaultUA
		}
		req.Header.Set("User-Agent", ua)
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		resp.Body.Close()
		serr := &StatusError{URL: rawURL, Status: resp.Status, Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(serr)
		}
		return nil, serr
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 300 * time.Millisecond
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.retry+1)),
	)
}

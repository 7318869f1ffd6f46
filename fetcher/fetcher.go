package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dszqbsm/xiagu-crawler/extensions"
	"github.com/dszqbsm/xiagu-crawler/proxy"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// 一次HTTP GET请求的描述
type Request struct {
	URL     string
	Query   url.Values
	Cookie  string
	Referer string
}

// 响应状态码不是200
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error status code:%d url:%s", e.Code, e.URL)
}

type Fetcher interface {
	/*
	   输入上下文和请求，输出UTF-8编码的响应体和错误

	   状态码不为200时返回*StatusError
	*/
	Get(ctx context.Context, req *Request) ([]byte, error)
}

// 基于net/http的采集器，用于直接请求JSON接口
type BaseFetch struct {
	Timeout   time.Duration
	UserAgent string // 为空时每次请求随机生成
	Proxy     proxy.ProxyFunc
	Logger    *zap.Logger

	client *http.Client
}

func (b *BaseFetch) httpClient() *http.Client {
	if b.client != nil {
		return b.client
	}
	client := &http.Client{Timeout: b.Timeout}
	if b.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.Proxy
		client.Transport = transport
	}
	b.client = client
	return client
}

func (b *BaseFetch) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

/*
输入上下文和请求，输出响应体和错误

拼接查询参数，设置Cookie、Referer和User-Agent请求头，状态码不为200时返回*StatusError，否则检测响应编码并统一转换为UTF-8
*/
func (b *BaseFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	u, err := url.Parse(request.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url failed:%w", err)
	}
	if len(request.Query) > 0 {
		u.RawQuery = request.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}
	if len(request.Cookie) > 0 {
		req.Header.Set("Cookie", request.Cookie)
	}
	if len(request.Referer) > 0 {
		req.Header.Set("Referer", request.Referer)
	}
	ua := b.UserAgent
	if ua == "" {
		ua = extensions.GenerateRandomUA()
	}
	req.Header.Set("User-Agent", ua)

	resp, err := b.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: request.URL}
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := b.DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

// 根据响应头和前1024字节推断编码，推断失败时按UTF-8处理
func (b *BaseFetch) DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		b.logger().Error("peek body failed", zap.Error(err))
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, contentType)
	return e
}

package proxy

import (
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
)

// 与http.Transport.Proxy签名一致
type ProxyFunc func(*http.Request) (*url.URL, error)

var ErrEmptyProxy = errors.New("proxy url list is empty")

// 轮询代理切换器，HTTP客户端与浏览器共用同一组代理地址
type Switcher struct {
	proxyURLs []*url.URL
	index     uint32
}

/*
输入一组代理地址，输出轮询切换器和错误

地址列表为空或任一地址无法解析时返回错误
*/
func NewSwitcher(proxyURLs ...string) (*Switcher, error) {
	if len(proxyURLs) == 0 {
		return nil, ErrEmptyProxy
	}
	urls := make([]*url.URL, len(proxyURLs))
	for i, u := range proxyURLs {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		urls[i] = parsed
	}
	return &Switcher{proxyURLs: urls}, nil
}

// 取下一个代理地址
func (s *Switcher) Next() *url.URL {
	index := atomic.AddUint32(&s.index, 1) - 1
	return s.proxyURLs[index%uint32(len(s.proxyURLs))]
}

func (s *Switcher) GetProxy(_ *http.Request) (*url.URL, error) {
	return s.Next(), nil
}

// 直接返回可以赋值给http.Transport.Proxy的函数
func RoundRobinProxySwitcher(proxyURLs ...string) (ProxyFunc, error) {
	s, err := NewSwitcher(proxyURLs...)
	if err != nil {
		return nil, err
	}
	return s.GetProxy, nil
}

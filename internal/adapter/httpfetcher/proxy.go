package httpfetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
)

// proxyPool hands out outbound proxies in round-robin order.
type proxyPool struct {
	proxies []*url.URL
	next    atomic.Uint64
}

func newProxyPool(raw []string) (*proxyPool, error) {
	p := &proxyPool{}
	for _, r := range raw {
		if r == "" {
			continue
		}
		u, err := url.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", r, err)
		}
		p.proxies = append(p.proxies, u)
	}
	return p, nil
}

// Proxy matches http.Transport.Proxy. With no proxies configured it falls
// back to the environment.
func (p *proxyPool) Proxy(req *http.Request) (*url.URL, error) {
	if len(p.proxies) == 0 {
		return http.ProxyFromEnvironment(req)
	}
	n := p.next.Add(1) - 1
	return p.proxies[n%uint64(len(p.proxies))], nil
}

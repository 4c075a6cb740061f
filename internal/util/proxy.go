package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds a transport proxy selector from explicit proxy URLs.
// With neither set, the standard environment variables decide.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && httpsProxy != "":
			return url.Parse(httpsProxy)
		case httpProxy != "":
			return url.Parse(httpProxy)
		default:
			return http.ProxyFromEnvironment(req)
		}
	}
}

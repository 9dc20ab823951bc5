package tools

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"omnichat/pkg/models"
)

// Endpoint kinds. HTTP endpoints call out to a configured URL; mock
// endpoints echo their arguments back so registry entries work before
// their backend exists.
const (
	EndpointHTTP = "http"
	EndpointMock = "mock"
)

// ErrInvalidEndpoint marks endpoint configs that fail validation
var ErrInvalidEndpoint = errors.New("invalid endpoint config")

// Endpoint is the parsed form of a tool's endpoint_config
type Endpoint struct {
	Kind    string
	URL     string
	Method  string
	Headers map[string]string
}

// ParseEndpoint validates a raw endpoint config into its typed form. The
// config carries a "type" tag of "http" or "mock"; with no tag, a config
// with a URL is treated as http and an empty one as mock.
func ParseEndpoint(cfg models.JSONMap) (Endpoint, error) {
	kind, _ := cfg["type"].(string)
	rawURL, _ := cfg["url"].(string)

	if kind == "" {
		if rawURL == "" {
			kind = EndpointMock
		} else {
			kind = EndpointHTTP
		}
	}

	switch kind {
	case EndpointMock:
		return Endpoint{Kind: EndpointMock}, nil
	case EndpointHTTP:
	default:
		return Endpoint{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEndpoint, kind)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Endpoint{}, fmt.Errorf("%w: url must be absolute http(s), got %q", ErrInvalidEndpoint, rawURL)
	}

	method := http.MethodPost
	if m, ok := cfg["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
		switch method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return Endpoint{}, fmt.Errorf("%w: unsupported method %q", ErrInvalidEndpoint, m)
		}
	}

	var headers map[string]string
	if raw, ok := cfg["headers"].(map[string]interface{}); ok {
		headers = make(map[string]string, len(raw))
		for k, v := range raw {
			value, ok := v.(string)
			if !ok {
				return Endpoint{}, fmt.Errorf("%w: header %q must be a string", ErrInvalidEndpoint, k)
			}
			headers[k] = value
		}
	}

	return Endpoint{Kind: EndpointHTTP, URL: rawURL, Method: method, Headers: headers}, nil
}

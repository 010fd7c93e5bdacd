package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single query-string parameter. Params keep insertion order so
// encoded targets are stable and comparable.
type Param struct {
	Key   string
	Value string
}

type Params []Param

// Get returns the first value stored under key.
func (p Params) Get(key string) string {
	for _, param := range p {
		if param.Key == key {
			return param.Value
		}
	}
	return ""
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	for _, param := range p {
		if param.Key == key {
			return true
		}
	}
	return false
}

// Encode percent-encodes the parameters in order. Spaces become %20 so the
// output matches what a browser's encodeURIComponent would produce.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(param.Key))
		b.WriteByte('=')
		b.WriteString(escape(param.Value))
	}
	return b.String()
}

func escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// RequestDescriptor describes a backend call without performing it.
type RequestDescriptor struct {
	Method string
	Path   string
	Params Params
	// Body is the JSON payload for POST requests.
	Body []byte
}

// URL joins the descriptor onto base.
func (d RequestDescriptor) URL(base string) string {
	out := strings.TrimRight(base, "/") + d.Path
	if encoded := d.Params.Encode(); encoded != "" {
		out += "?" + encoded
	}
	return out
}

func (d RequestDescriptor) String() string {
	if len(d.Body) > 0 {
		return fmt.Sprintf("%s %s %s", d.Method, d.URL(""), d.Body)
	}
	return d.Method + " " + d.URL("")
}

// NavigationTarget is a page location handed to the page router.
type NavigationTarget struct {
	Path   string
	Params Params
}

func (t NavigationTarget) String() string {
	if encoded := t.Params.Encode(); encoded != "" {
		return t.Path + "?" + encoded
	}
	return t.Path
}

// IsZero reports whether the target is unset.
func (t NavigationTarget) IsZero() bool {
	return t.Path == "" && len(t.Params) == 0
}

// ParseNavigationTarget parses a "path?query" string, keeping parameter order.
func ParseNavigationTarget(raw string) (NavigationTarget, error) {
	path, rawQuery, _ := strings.Cut(raw, "?")
	if path == "" || !strings.HasPrefix(path, "/") {
		return NavigationTarget{}, fmt.Errorf("navigation target %q: path must be absolute", raw)
	}
	target := NavigationTarget{Path: path}
	if rawQuery == "" {
		return target, nil
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return NavigationTarget{}, fmt.Errorf("navigation target %q: %w", raw, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return NavigationTarget{}, fmt.Errorf("navigation target %q: %w", raw, err)
		}
		target.Params = append(target.Params, Param{Key: key, Value: value})
	}
	return target, nil
}

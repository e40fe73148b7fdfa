// Package source implements clients for the upstream services a link can
// point to. Each client resolves a tracked URL to the latest activity on
// the resource it identifies.
package source

import (
	"context"
	"strings"

	"github.com/linktrack/linktrack/internal/apperrors"
)

// Known source kinds, keyed by the host that identifies them.
const (
	KindGitHub        = "github.com"
	KindStackOverflow = "stackoverflow.com"
)

// Field is a single labelled value describing upstream activity.
type Field struct {
	Key   string
	Value string
}

// Info describes the latest activity on a tracked resource. Field order is
// meaningful: notification text renders fields in the order they appear.
type Info []Field

// Get returns the value for the given key, or "" when absent.
func (i Info) Get(key string) string {
	for _, f := range i {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Date returns the activity date field.
func (i Info) Date() string {
	return i.Get("date")
}

// Source fetches activity info for URLs of one upstream service.
type Source interface {
	// Fetch resolves the URL to its latest activity. Filters are
	// "key:value" pairs forwarded to the upstream API as query
	// parameters.
	Fetch(ctx context.Context, url string, filters []string) (Info, error)
}

// Detect returns the source kind for a URL based on its host.
func Detect(url string) (string, error) {
	switch {
	case strings.Contains(url, KindGitHub):
		return KindGitHub, nil
	case strings.Contains(url, KindStackOverflow):
		return KindStackOverflow, nil
	default:
		return "", apperrors.URLNotSupported(url)
	}
}

// Registry holds one client per supported source kind.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a registry with the default GitHub and StackOverflow
// clients.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{
		KindGitHub:        NewGitHub(),
		KindStackOverflow: NewStackOverflow(),
	}}
}

// NewRegistryWith creates a registry from explicit clients, keyed by kind.
func NewRegistryWith(sources map[string]Source) *Registry {
	return &Registry{sources: sources}
}

// For returns the client for the given URL, detecting its kind first.
func (r *Registry) For(url string) (Source, error) {
	kind, err := Detect(url)
	if err != nil {
		return nil, err
	}
	src, ok := r.sources[kind]
	if !ok {
		return nil, apperrors.URLNotSupported(url)
	}
	return src, nil
}

// filterParams converts "key:value" filters into query parameters.
func filterParams(filters []string) (map[string]string, error) {
	params := map[string]string{}
	for _, f := range filters {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			return nil, apperrors.UnsupportedFilter(f)
		}
		params[key] = value
	}
	return params, nil
}

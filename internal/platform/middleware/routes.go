// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"path"
	"strings"

	"github.com/taibuivan/notesput/pkg/slice"
)

// RouteClass is the result of classifying a request path.
type RouteClass int

const (
	// Protected paths require a valid session. It is the zero value, so an
	// unclassified path is protected.
	Protected RouteClass = iota
	// Public paths pass through without a session lookup.
	Public
)

// String implements fmt.Stringer.
func (c RouteClass) String() string {
	if c == Public {
		return "public"
	}
	return "protected"
}

// RouteMatcher reports whether a request path belongs to the public set.
type RouteMatcher interface {
	Match(requestPath string) bool
}

// MatcherFunc adapts a function to [RouteMatcher].
type MatcherFunc func(requestPath string) bool

// Match implements [RouteMatcher].
func (f MatcherFunc) Match(requestPath string) bool { return f(requestPath) }

// ExactOrPrefix matches route itself and every path below it on a segment
// boundary: "/signin" matches "/signin" and "/signin/otp" but not "/signins".
//
// The root route "/" matches only itself.
func ExactOrPrefix(route string) RouteMatcher {
	route = strings.TrimSuffix(route, "/")
	if route == "" {
		return MatcherFunc(func(requestPath string) bool { return requestPath == "/" })
	}
	return MatcherFunc(func(requestPath string) bool {
		return requestPath == route || strings.HasPrefix(requestPath, route+"/")
	})
}

// Prefix matches any path starting with prefix. Used for framework asset trees.
func Prefix(prefix string) RouteMatcher {
	return MatcherFunc(func(requestPath string) bool {
		return strings.HasPrefix(requestPath, prefix)
	})
}

// FileExtension matches paths whose last segment carries a file extension,
// such as "/favicon.ico" or "/images/logo.svg".
func FileExtension() RouteMatcher {
	return MatcherFunc(func(requestPath string) bool {
		return len(path.Ext(requestPath)) > 1
	})
}

// RouteTable is an ordered list of public-route matchers. A path is public if
// any matcher accepts it, and protected otherwise.
type RouteTable struct {
	matchers []RouteMatcher
}

// NewRouteTable builds the table from configuration. Matchers are evaluated in
// this order: public routes, asset prefixes, then the file-extension heuristic.
func NewRouteTable(publicRoutes, assetPrefixes []string) *RouteTable {
	table := &RouteTable{}
	table.matchers = append(table.matchers, slice.Map(slice.NonBlank(publicRoutes), ExactOrPrefix)...)
	table.matchers = append(table.matchers, slice.Map(slice.NonBlank(assetPrefixes), Prefix)...)
	table.matchers = append(table.matchers, FileExtension())
	return table
}

// defaultRoutes backs a nil table: only file-extension paths are public.
var defaultRoutes = NewRouteTable(nil, nil)

// Classify returns the class of requestPath. Paths are cleaned first, so
// "/signin/../dashboard" is classified as "/dashboard". A nil table behaves
// like one built from empty configuration.
func (t *RouteTable) Classify(requestPath string) RouteClass {
	if t == nil {
		t = defaultRoutes
	}
	cleaned := cleanPath(requestPath)
	for _, matcher := range t.matchers {
		if matcher.Match(cleaned) {
			return Public
		}
	}
	return Protected
}

func cleanPath(requestPath string) string {
	if requestPath == "" {
		return "/"
	}
	if requestPath[0] != '/' {
		requestPath = "/" + requestPath
	}
	return path.Clean(requestPath)
}

package route

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultSelector selects a top level array of routes.
const DefaultSelector = "$"

// Decode reads a JSON document and extracts the routes found at selector, a
// JSONPath expression such as "$.data.routes[*]". The selection must be a
// route object or an array of route objects.
func Decode(r io.Reader, selector string) ([]Route, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse routes: %w", err)
	}
	val, err := jsonpath.Get(selector, doc)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", selector, err)
	}
	// jsonpath returns either a single value or a list of matches; a single
	// array match is flattened.
	if list, ok := val.([]any); ok && len(list) == 1 {
		if inner, ok := list[0].([]any); ok {
			val = inner
		}
	}
	if _, ok := val.(map[string]any); ok {
		val = []any{val}
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var routes []Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil, fmt.Errorf("selection %q is not a list of routes: %w", selector, err)
	}
	for i, rt := range routes {
		if rt.RouteID == "" {
			return nil, fmt.Errorf("route %d has no routeId", i)
		}
		if rt.Year <= 0 {
			return nil, fmt.Errorf("route %s has no year", rt.RouteID)
		}
	}
	return routes, nil
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query runs the jq expression expr over the JSON form of v. A single
// result is returned as is; several results are returned as a slice.
func Query(expr string, v any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}

	// gojq only understands the generic JSON types.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal query input: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("unmarshal query input: %w", err)
	}

	var results []any
	iter := query.Run(input)
	for {
		r, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := r.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		results = append(results, r)
	}

	switch len(results) {
	case 0:
		return nil, fmt.Errorf("jq expression %q returned no result", expr)
	case 1:
		return results[0], nil
	}
	return results, nil
}

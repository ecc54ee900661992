package http

import (
	"fmt"
	"net/http"
	"strconv"

	"socialgraph/src/domain"
)

// pathID parses the {id}-style path segment named by key.
func pathID(r *http.Request, key string) (int64, error) {
	raw := r.PathValue(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, domain.ErrInvalidOperation)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; absent or malformed
// values come back as 0 and the service applies its default.
func queryInt(r *http.Request, key string) int {
	value, _ := strconv.Atoi(r.URL.Query().Get(key))
	return value
}

func queryInt64(r *http.Request, key string) int64 {
	value, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return value
}

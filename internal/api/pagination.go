package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// queryInt reads an integer query parameter. An absent or empty parameter
// yields def; anything that is not an integer is an error.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

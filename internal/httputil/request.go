package httputil

import (
	"fmt"
	"net/http"
	"strconv"
)

// GetOptionalIntQueryParameter reads a non-negative integer query parameter,
// returning 0 when it's absent. If the value isn't valid, it'll write a 400
// status code with the reason into the ResponseWriter and return false.
func GetOptionalIntQueryParameter(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		http.Error(w, fmt.Sprintf("expected %s to be a non-negative integer", key), http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

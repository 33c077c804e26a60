package shared

import (
	"net/http"
	"strconv"
)

// Every list endpoint (staff, salaries, notifications) uses the same page
// sizing; per-endpoint limits have not been needed.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Page struct {
	Limit  int
	Offset int
}

func ParsePage(r *http.Request) Page {
	page := Page{Limit: DefaultPageSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Limit = min(v, MaxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Offset = v
		}
	}
	return page
}

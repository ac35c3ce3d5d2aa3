package utils

import "strconv"

// PageSize is the number of products shown per catalog page.
const PageSize = 12

// Page describes one window over a result set.
type Page struct {
	Current     int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Offset      int   `json:"-"`
	Limit       int   `json:"-"`
}

// Paginate resolves the requested page number against total items.
// A page that is not an integer falls back to the first page; a page outside
// 1..TotalPages falls back to the last one. An empty result still has one page.
func Paginate(total int64, pageParam string, size int) Page {
	if size <= 0 {
		size = PageSize
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	current, err := strconv.Atoi(pageParam)
	if err != nil {
		current = 1
	} else if current < 1 || current > totalPages {
		current = totalPages
	}

	return Page{
		Current:     current,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     current < totalPages,
		HasPrevious: current > 1,
		Offset:      (current - 1) * size,
		Limit:       size,
	}
}

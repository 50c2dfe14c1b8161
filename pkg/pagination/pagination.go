package pagination

// Page-number pagination. Out-of-range requests never fail: a page below 1
// becomes 1 and a page past the end clamps to the last non-empty page.

const (
	// DefaultPageSize is the standard page size when a size is not configured.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any listing can request.
	MaxPageSize = 100
)

// Meta describes one page of a listing and travels in API responses.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// NormalizeSize enforces the default and maximum page sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Resolve turns a requested page number into the effective page for the
// given row count. An empty listing resolves to page 1 of 1.
func Resolve(page, size int, totalItems int64) Meta {
	size = NormalizeSize(size)

	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Meta{
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

// Offset returns the row offset for the resolved page.
func (m Meta) Offset() int {
	return (m.Page - 1) * m.PageSize
}

// Package pagination implements the offset page model used across list
// endpoints: one-based pages with a bounded page size and a derived
// total-page count in every response.
package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Meta describes one page of results for response envelopes.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Normalize clamps the parameters into their allowed ranges.
func Normalize(p Params) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized parameters.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.PageSize
}

// NewMeta builds page metadata from a total row count.
func NewMeta(total int64, p Params) Meta {
	n := Normalize(p)
	pages := int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	return Meta{
		Total:      total,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalPages: pages,
	}
}

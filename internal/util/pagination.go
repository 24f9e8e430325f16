package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NewPage[T any](items []T, total int64, page, size int) Page[T] {
	from, limit := Calculate(page, size)
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: from/limit + 1, Size: limit}
}

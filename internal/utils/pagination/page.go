package pagination

import (
	"fmt"
	"math"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a validated 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// NewPage validates a page request. number is 1-indexed and size must be in [1, MaxPageSize].
func NewPage(number, size int) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("page must be >= 1, got %d", number)
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, size)
	}
	return Page{Number: number, Size: size}, nil
}

// Offset is the number of rows to skip to reach this page.
// It saturates at math.MaxInt, which every store treats as past the end.
func (p Page) Offset() int {
	if p.Size > 0 && p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of rows on this page.
func (p Page) Limit() int {
	return p.Size
}

// TotalPages returns how many pages of p.Size hold total rows.
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

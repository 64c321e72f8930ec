package services

import (
	"portal-united/directory/internal/db/repositories"
)

// Pagination describes one page of a list view.
type Pagination struct {
	Number int
	Size   int
	Total  int64
}

func newPagination(number, size int, total int64) Pagination {
	p := Pagination{Number: number, Size: size, Total: total}
	if p.Number < 1 {
		p.Number = 1
	}
	return p
}

// clampPage keeps a requested page number inside [1, last page].
func clampPage(number, size int, total int64) int {
	if number < 1 {
		return 1
	}
	last := newPagination(1, size, total).Pages()
	if number > last {
		return last
	}
	return number
}

func (p Pagination) Pages() int {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Pagination) HasPrev() bool { return p.Number > 1 }
func (p Pagination) HasNext() bool { return p.Number < p.Pages() }
func (p Pagination) Prev() int { return p.Number - 1 }
func (p Pagination) Next() int { return p.Number + 1 }
func (p Pagination) Multiple() bool { return p.Pages() > 1 }

func (p Pagination) page() repositories.Page {
	return repositories.Page{Number: p.Number, Size: p.Size}
}

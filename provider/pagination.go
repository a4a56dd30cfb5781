/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package provider

// DefaultPageSize is the page size of a new Pagination.
const DefaultPageSize = 20

// Pagination holds the paging state of a provider.
type Pagination struct {
	pageSize  int
	page      int
	itemCount int64
}

// NewPagination returns a Pagination starting at the first page. A
// non-positive size selects DefaultPageSize.
func NewPagination(pageSize int) *Pagination {
	p := &Pagination{}
	p.SetPageSize(pageSize)
	return p
}

// PageSize returns the number of items per page.
func (p *Pagination) PageSize() int {
	return p.pageSize
}

// SetPageSize sets the number of items per page.
func (p *Pagination) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	p.pageSize = size
}

// SetCurrentPage selects a 0-based page. It is clamped once the item count is known.
func (p *Pagination) SetCurrentPage(page int) {
	p.page = page
}

// CurrentPage returns the selected page clamped to [0, PageCount()-1].
func (p *Pagination) CurrentPage() int {
	page := p.page
	if count := p.PageCount(); page >= count {
		page = count - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

// SetItemCount sets the total number of items.
func (p *Pagination) SetItemCount(n int64) {
	p.itemCount = n
}

// ItemCount returns the total number of items.
func (p *Pagination) ItemCount() int64 {
	return p.itemCount
}

// PageCount returns the number of pages needed for ItemCount items.
func (p *Pagination) PageCount() int {
	if p.itemCount <= 0 {
		return 0
	}
	size := int64(p.pageSize)
	return int((p.itemCount + size - 1) / size)
}

// Limit returns the query limit for the current page.
func (p *Pagination) Limit() int64 {
	return int64(p.pageSize)
}

// Offset returns the query offset for the current page.
func (p *Pagination) Offset() int64 {
	return int64(p.CurrentPage()) * int64(p.pageSize)
}

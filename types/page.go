/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "github.com/tomoncle/roster/dsl"

const DefaultPageSize = 10

// PageRequest selects one page of a query. Pages are 1-based; values below 1
// fall back to page 1 and DefaultPageSize.
type PageRequest struct {
	page     int
	pageSize int
	filter   *dsl.Predicate
	orders   []dsl.OrderSpecifier
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// GetFilter returns the optional filter; nil means all rows.
func (p *PageRequest) GetFilter() *dsl.Predicate {
	return p.filter
}

func (p *PageRequest) GetOrders() []dsl.OrderSpecifier {
	return p.orders
}

func NewPageRequest(page int, pageSize int, filter *dsl.Predicate, orders ...dsl.OrderSpecifier) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, orders: orders}
}

func NewPageRequestWithFilter(page int, pageSize int, filter *dsl.Predicate) *PageRequest {
	return NewPageRequest(page, pageSize, filter)
}

func NewPageRequestWithOrders(page int, pageSize int, orders ...dsl.OrderSpecifier) *PageRequest {
	return NewPageRequest(page, pageSize, nil, orders...)
}

func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil)
}

// Pagination is one page of items plus the total across all pages.
type Pagination[T any] struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Total    int  `json:"total"`
	Items    []*T `json:"items"`
}

func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}

func (p *Pagination[T]) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p *Pagination[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// QueryResults is an offset/limit slice of a query and the unpaged total.
type QueryResults[T any] struct {
	Total   int  `json:"total"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Results []*T `json:"results"`
}

// DerivableTotal reports the total when it follows from the page content
// alone: a first page that is not full, or a non-empty page that is not full.
// ok is false when a count query is needed.
func DerivableTotal(offset, pageSize, contentSize int) (total int, ok bool) {
	if offset == 0 {
		if pageSize == 0 || contentSize < pageSize {
			return contentSize, true
		}
		return 0, false
	}
	if contentSize != 0 && contentSize < pageSize {
		return offset + contentSize, true
	}
	return 0, false
}

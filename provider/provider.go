/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/model"
	"github.com/suparena/docmapper/storagemodels"
)

// Finder is the record source of a Provider. *model.Repository satisfies it.
type Finder[T model.Record] interface {
	// Model returns a record used to enumerate the declared attributes.
	Model() T
	// DbCriteria returns the live accumulated scope.
	DbCriteria() *storagemodels.Criteria
	// ResetScope drops the accumulated scope.
	ResetScope()
	FindAll(ctx context.Context, c *storagemodels.Criteria) ([]T, error)
	// Count may merge the scope into c and reset the scope.
	Count(ctx context.Context, c *storagemodels.Criteria) (int64, error)
}

// Provider fetches one page of records at a time, sorted on request, along
// with the total number of matching records.
//
// A Provider owns its Criteria and mutates it on every fetch; it is not safe
// for concurrent use.
type Provider[T model.Record] struct {
	id         string
	finder     Finder[T]
	model      T
	criteria   *storagemodels.Criteria
	keyField   string
	pagination *Pagination
	sort       *Sort
	logger     datastore.Logger

	data       []T
	dataLoaded bool
	keys       []any
	keysLoaded bool
	totalCount int64
	countKnown bool
}

type config struct {
	id           string
	criteria     *storagemodels.Criteria
	keyField     string
	pagination   *Pagination
	noPagination bool
	sort         *Sort
	noSort       bool
	logger       datastore.Logger
}

// Option configures a Provider.
type Option func(*config) error

// WithID sets the provider ID. It defaults to the record type name.
func WithID(id string) Option {
	return func(c *config) error {
		c.id = id
		return nil
	}
}

// WithCriteria merges c over the finder's current scope at construction.
func WithCriteria(c *storagemodels.Criteria) Option {
	return func(cfg *config) error {
		cfg.criteria = c
		return nil
	}
}

// WithKeyField sets the attribute read by FetchKeys. Composite keys are not
// supported: more than one field is a configuration error.
func WithKeyField(fields ...string) Option {
	return func(c *config) error {
		switch {
		case len(fields) > 1:
			return errors.NewConfigurationError("provider", "cannot handle multi-field key %s", strings.Join(fields, ","))
		case len(fields) == 0 || fields[0] == "":
			return errors.NewConfigurationError("provider", "key field must not be empty")
		}
		c.keyField = fields[0]
		return nil
	}
}

// WithPagination sets the pagination state.
func WithPagination(p *Pagination) Option {
	return func(c *config) error {
		c.pagination = p
		c.noPagination = p == nil
		return nil
	}
}

// WithoutPagination disables paging: no count is run and no limit or offset is set.
func WithoutPagination() Option {
	return WithPagination(nil)
}

// WithSort sets the sort state.
func WithSort(s *Sort) Option {
	return func(c *config) error {
		c.sort = s
		c.noSort = s == nil
		return nil
	}
}

// WithoutSort disables sorting.
func WithoutSort() Option {
	return WithSort(nil)
}

// WithLogger sets the logger.
func WithLogger(logger datastore.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// New returns a provider over finder. Its criteria start as the finder's
// live scope with the WithCriteria criteria merged in.
func New[T model.Record](finder Finder[T], opts ...Option) (*Provider[T], error) {
	if finder == nil {
		return nil, errors.NewConfigurationError("provider", "finder is required")
	}

	cfg := &config{keyField: model.DefaultKeyField}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	p := &Provider[T]{
		id:       cfg.id,
		finder:   finder,
		model:    finder.Model(),
		keyField: cfg.keyField,
		logger:   datastore.OrNop(cfg.logger),
	}

	p.criteria = finder.DbCriteria()
	if cfg.criteria != nil {
		p.criteria.MergeWith(cfg.criteria)
	}

	if !cfg.noPagination {
		p.pagination = cfg.pagination
		if p.pagination == nil {
			p.pagination = NewPagination(DefaultPageSize)
		}
	}
	if !cfg.noSort {
		p.sort = cfg.sort
		if p.sort == nil {
			p.sort = NewSort()
		}
	}
	if p.id == "" {
		p.id = typeName(p.model)
	}
	return p, nil
}

// ID returns the provider ID.
func (p *Provider[T]) ID() string {
	return p.id
}

// KeyField returns the attribute read by FetchKeys.
func (p *Provider[T]) KeyField() string {
	return p.keyField
}

// Criteria returns the live criteria. Fetching mutates it.
func (p *Provider[T]) Criteria() *storagemodels.Criteria {
	return p.criteria
}

// SetCriteria replaces the criteria.
func (p *Provider[T]) SetCriteria(c *storagemodels.Criteria) {
	if c == nil {
		c = storagemodels.NewCriteria()
	}
	p.criteria = c
}

// Pagination returns the pagination state, or nil when paging is disabled.
func (p *Provider[T]) Pagination() *Pagination {
	return p.pagination
}

// Sort returns the sort state, or nil when sorting is disabled. The sortable
// attributes are extended with the record's attributes and, for each
// declared embedded document, its attributes as "field.attribute".
func (p *Provider[T]) Sort() *Sort {
	if p.sort == nil {
		return nil
	}
	p.sort.Allow(model.AttributeNames(p.model)...)

	if declarer, ok := any(p.model).(model.EmbeddedDeclarer); ok {
		docs := declarer.EmbeddedDocuments()
		fields := make([]string, 0, len(docs))
		for field := range docs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			doc := docs[field]
			if doc == nil {
				continue
			}
			for _, attr := range model.AttributeNames(doc) {
				p.sort.Allow(field + "." + attr)
			}
		}
	}
	return p.sort
}

// FetchData runs the query for the current page and order.
//
// With paging enabled the total count is resolved first and the limit and
// offset of the page are set on the criteria. With sorting enabled and an
// order to apply, the criteria's sort is replaced. The criteria is then
// passed to FindAll after the finder's scope has been reset.
func (p *Provider[T]) FetchData(ctx context.Context) ([]T, error) {
	if p.pagination != nil {
		total, err := p.TotalItemCount(ctx)
		if err != nil {
			return nil, err
		}
		p.pagination.SetItemCount(total)
		p.criteria.SetLimit(p.pagination.Limit())
		p.criteria.SetOffset(p.pagination.Offset())
	}

	if s := p.Sort(); s != nil {
		if order := s.OrderBy(); order != "" {
			p.criteria.SetSort(ParseOrder(order))
		}
	}

	p.finder.ResetScope()
	records, err := p.finder.FindAll(ctx, p.criteria)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fetched page", "provider", p.id, "count", len(records),
		"limit", p.criteria.Limit, "offset", p.criteria.Offset)
	return records, nil
}

// FetchKeys returns the key attribute of every record of Data.
func (p *Provider[T]) FetchKeys(ctx context.Context) ([]any, error) {
	data, err := p.Data(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]any, len(data))
	for i, rec := range data {
		keys[i], _ = model.Attribute(rec, p.keyField)
	}
	return keys, nil
}

// CalculateTotalItemCount counts the records matching the criteria. The
// criteria is restored in place afterwards, whatever the count did to it.
func (p *Provider[T]) CalculateTotalItemCount(ctx context.Context) (int64, error) {
	saved := p.criteria.Clone()
	defer func() {
		*p.criteria = *saved
	}()

	p.finder.ResetScope()
	count, err := p.finder.Count(ctx, p.criteria)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Data returns the current page, fetching it on first use.
func (p *Provider[T]) Data(ctx context.Context) ([]T, error) {
	if !p.dataLoaded {
		data, err := p.FetchData(ctx)
		if err != nil {
			return nil, err
		}
		p.data = data
		p.dataLoaded = true
	}
	return p.data, nil
}

// Keys returns the keys of the current page, fetching it on first use.
func (p *Provider[T]) Keys(ctx context.Context) ([]any, error) {
	if !p.keysLoaded {
		keys, err := p.FetchKeys(ctx)
		if err != nil {
			return nil, err
		}
		p.keys = keys
		p.keysLoaded = true
	}
	return p.keys, nil
}

// ItemCount returns the number of records on the current page.
func (p *Provider[T]) ItemCount(ctx context.Context) (int, error) {
	data, err := p.Data(ctx)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// TotalItemCount returns the number of matching records, counting them on first use.
func (p *Provider[T]) TotalItemCount(ctx context.Context) (int64, error) {
	if !p.countKnown {
		count, err := p.CalculateTotalItemCount(ctx)
		if err != nil {
			return 0, err
		}
		p.totalCount = count
		p.countKnown = true
	}
	return p.totalCount, nil
}

// SetTotalItemCount sets the total instead of counting.
func (p *Provider[T]) SetTotalItemCount(n int64) {
	p.totalCount = n
	p.countKnown = true
}

// Refresh drops the cached page, keys and total count.
func (p *Provider[T]) Refresh() {
	p.data, p.dataLoaded = nil, false
	p.keys, p.keysLoaded = nil, false
	p.totalCount, p.countKnown = 0, false
}

func typeName(v any) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

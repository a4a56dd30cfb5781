/*
Package provider serves paginated, sorted result pages over a model.Repository.

A Provider keeps one Criteria for its lifetime. Each fetch first resolves
the total item count (restoring the criteria afterwards, since the
repository's Count merges its scope into the criteria it is given), then
applies the page window and the requested order before running the query:

	repo, _ := model.NewRepository(store, func() *Person { return &Person{} })

	sort := provider.NewSort()
	sort.SetOrder("age desc, name")

	pagination := provider.NewPagination(10)
	pagination.SetCurrentPage(2)

	p, err := provider.New[*Person](repo,
		provider.WithSort(sort),
		provider.WithPagination(pagination),
	)
	if err != nil {
		return err
	}
	people, err := p.Data(ctx)

Sorting is restricted to the record's attributes plus, for records that
declare embedded documents, "field.attribute" paths into them. Requested
fields outside that set are dropped.
*/
package provider

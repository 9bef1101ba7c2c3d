// Package pagination implements the paginated retrieval engine: the
// page-offset plan, single-page fetching, and the coordinator that fans
// requests out and merges pages back in plan order.
//
// Map-service layers cap each query at maxRecordCount records, so a full
// fetch is a sequence of Query requests windowed by resultOffset and
// resultRecordCount. The plan covers [0, totalRecords) with no gaps or
// overlaps; its order defines the merge order of the final collection.
//
// Example usage:
//
//	plan, err := pagination.Plan(md.TotalRecords, md.MaxPageSize)
//	coord := pagination.NewCoordinator(fetcher)
//	coll, err := coord.FetchAll(ctx, md, true)
//
// The coordinator:
//   - Builds the plan from service metadata
//   - Dispatches one request per page, in parallel or in plan order
//   - Writes each result into a slot indexed by plan position
//   - Concatenates slots 0..N-1 once all pages are in
//   - Aborts the whole fetch on the first page failure; no partial
//     collections are ever returned
package pagination

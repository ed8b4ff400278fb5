// Package pagination walks page-numbered HH search results sequentially.
//
// The HH vacancy search is 0-indexed, reports the total page count in every
// response and refuses to serve results deeper than 2000 items. The walker
// requests one page at a time, pauses between pages and stops when:
//
//   - the page handler returns ErrStopPaging (e.g. the result limit is reached),
//   - a page comes back empty,
//   - the last reported page was consumed,
//   - the next page would exceed the search depth.
//
// Example usage:
//
//	walker := pagination.NewWalker(pagination.DefaultConfig())
//	stats, err := walker.Walk(ctx, func(ctx context.Context, page, perPage int) (pagination.PageInfo, error) {
//		resp, err := hh.SearchVacancies(ctx, client.SearchParams{Text: "golang", Page: page, PerPage: perPage})
//		if err != nil {
//			return pagination.PageInfo{}, err
//		}
//		return pagination.PageInfo{Items: len(resp.Items), TotalPages: resp.Pages}, nil
//	})
//
// The walker never runs pages in parallel and never returns partial results
// on failure: the first page error ends the walk.
package pagination

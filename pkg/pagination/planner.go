package pagination

import (
	"fmt"
)

// Page is one entry of a page plan: the request window at a given plan
// position.
type Page struct {
	// Index is the plan position; it defines the page's slot in the
	// merged collection.
	Index int

	// Offset is the resultOffset of the page request.
	Offset int

	// RecordCount is the resultRecordCount of the page request.
	RecordCount int
}

// Plan computes the ordered page plan covering [0, totalRecords).
//
// Every page requests maxPageSize records; the final page may request
// past the true remaining count, which the service truncates. A zero
// totalRecords still yields a single page at offset 0 so an empty layer
// produces a well-formed empty collection.
func Plan(totalRecords, maxPageSize int) ([]Page, error) {
	if totalRecords < 0 {
		return nil, fmt.Errorf("%w: negative total record count %d", ErrInvalidPlanInput, totalRecords)
	}
	if maxPageSize <= 0 {
		return nil, fmt.Errorf("%w: non-positive max page size %d", ErrInvalidPlanInput, maxPageSize)
	}

	if totalRecords == 0 {
		return []Page{{Index: 0, Offset: 0, RecordCount: maxPageSize}}, nil
	}

	pages := make([]Page, 0, (totalRecords+maxPageSize-1)/maxPageSize)
	for offset := 0; offset < totalRecords; offset += maxPageSize {
		pages = append(pages, Page{
			Index:       len(pages),
			Offset:      offset,
			RecordCount: maxPageSize,
		})
	}

	return pages, nil
}

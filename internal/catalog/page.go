package catalog

import "fmt"

// DefaultPageSize is how many entries one list page shows.
const DefaultPageSize = 30

// Page is one slice of the catalog. Number is 1-based.
type Page struct {
	Entries []Entry
	Number  int
	Total   int
}

// PageRangeError reports a page outside 1..Total.
type PageRangeError struct {
	Page  int
	Total int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("catalog: page %d out of range 1..%d", e.Page, e.Total)
}

// Code lets the router summary log an err_code.
func (e *PageRangeError) Code() string { return "PAGE_OUT_OF_RANGE" }

// PageCount returns how many pages n entries fill.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// Paginate returns page number of entries. An empty catalog yields an empty page 1 of 0.
func Paginate(entries []Entry, number, size int) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := PageCount(len(entries), size)
	if total == 0 {
		return Page{Number: 1}, nil
	}
	if number < 1 || number > total {
		return Page{}, &PageRangeError{Page: number, Total: total}
	}
	start := (number - 1) * size
	end := min(start+size, len(entries))
	return Page{
		Entries: append([]Entry(nil), entries[start:end]...),
		Number:  number,
		Total:   total,
	}, nil
}

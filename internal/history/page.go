package history

// Page is one slice of a longer list
type Page[T any] struct {
	Items  []T
	Number int // 1-based
	Size   int
	Total  int
	Pages  int
}

// HasPrevious reports whether a page exists before this one
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page exists after this one
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }

// Paginate returns page number (1-based) of size items. Pages below 1 clamp
// to the first page and pages past the end clamp to the last one.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	start := (number - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page[T]{
		Items:  items[start:end],
		Number: number,
		Size:   size,
		Total:  total,
		Pages:  pages,
	}
}

package listview

// Page size limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Cursor is a position in a paged list.
type Cursor struct {
	Page int
	Size int
}

// TotalPages is ceil(n/size), and 1 for an empty list.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp normalizes the cursor against a list of n items so that
// 1 <= Page <= TotalPages(n, Size).
func (c Cursor) Clamp(n int) Cursor {
	if c.Size <= 0 {
		c.Size = DefaultPageSize
	}
	if c.Size > MaxPageSize {
		c.Size = MaxPageSize
	}
	total := TotalPages(n, c.Size)
	switch {
	case c.Page < 1:
		c.Page = 1
	case c.Page > total:
		c.Page = total
	}
	return c
}

// Page is one slice of a list.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// Paginate clamps c against items and returns the selected slice.
func Paginate[T any](items []T, c Cursor) Page[T] {
	c = c.Clamp(len(items))
	start := (c.Page - 1) * c.Size
	end := min(start+c.Size, len(items))
	if start > end {
		start = end
	}
	return Page[T]{
		Items:      items[start:end],
		Page:       c.Page,
		PageSize:   c.Size,
		TotalPages: TotalPages(len(items), c.Size),
		Total:      len(items),
	}
}

// GroupPage is one group of a list paged by group key.
type GroupPage[T Item] struct {
	Key        string
	Keys       []string
	Items      []T
	Page       int
	TotalPages int
	Total      int
}

// PaginateGroups shows one whole group per page. The page number is
// clamped to [1, len(groups)] and Total counts the records of every group.
func PaginateGroups[T Item](groups []Group[T], page int) GroupPage[T] {
	out := GroupPage[T]{TotalPages: max(len(groups), 1), Page: 1}
	out.Keys = make([]string, len(groups))
	for i, g := range groups {
		out.Keys[i] = g.Key
		out.Total += len(g.Items)
	}
	if len(groups) == 0 {
		return out
	}
	out.Page = min(max(page, 1), len(groups))
	g := groups[out.Page-1]
	out.Key = g.Key
	out.Items = g.Items
	return out
}

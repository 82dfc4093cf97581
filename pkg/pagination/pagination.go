// Package pagination implements deterministic page slicing and the
// fixed five-link navigation contract shared by all list endpoints.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rhuss/artikel/pkg/api"
)

// Config bounds the page size requested by clients.
type Config struct {
	// DefaultSize is used when the client requests no size or a size <= 0.
	DefaultSize int

	// MaxSize caps the requested size to prevent unbounded result dumps.
	MaxSize int
}

// DefaultConfig returns the standard pagination bounds.
func DefaultConfig() Config {
	return Config{DefaultSize: 10, MaxSize: 100}
}

// Params are the client-requested page coordinates.
type Params struct {
	Number int
	Size   int
}

// ParseParams reads page[number] and page[size] from query parameters.
// Missing or malformed values are left zero and resolved by Clamp.
func ParseParams(query url.Values) Params {
	var p Params
	if v, err := strconv.Atoi(query.Get("page[number]")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(query.Get("page[size]")); err == nil {
		p.Size = v
	}
	return p
}

// Clamp resolves requested params against the configured bounds:
// number >= 1, size defaulted when <= 0 and capped at MaxSize.
func (c Config) Clamp(p Params) Params {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = c.DefaultSize
	}
	if p.Size > c.MaxSize {
		p.Size = c.MaxSize
	}
	return p
}

// Page is one slice of an ordered result set together with the
// metadata needed to render navigation links.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalCount int
	TotalPages int
}

// New builds a page from items already sliced by the store. Params
// must be clamped. TotalPages is ceil(total/size).
func New[T any](items []T, total int, p Params) Page[T] {
	return Page[T]{
		Items:      items,
		Number:     p.Number,
		Size:       p.Size,
		TotalCount: total,
		TotalPages: (total + p.Size - 1) / p.Size,
	}
}

// Offset returns the zero-based index of the first item of the page.
func (p Params) Offset() int {
	return (p.Number - 1) * p.Size
}

// Slice paginates an in-memory ordered sequence. A page number past
// the end yields an empty page, not an error. Two calls with identical
// inputs and ordering produce identical pages.
func Slice[T any](items []T, p Params) Page[T] {
	total := len(items)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return New(items[start:end], total, p)
}

// Links renders the five-key navigation contract for the page. Prev
// and Next are present but empty on the first and last page; the keys
// themselves never disappear.
func (p Page[T]) Links(path string) api.Links {
	last := p.TotalPages
	if last < 1 {
		last = 1
	}
	links := api.Links{
		First: pageURL(path, 1, p.Size),
		Last:  pageURL(path, last, p.Size),
		Self:  pageURL(path, p.Number, p.Size),
	}
	if p.Number > 1 {
		links.Prev = pageURL(path, p.Number-1, p.Size)
	}
	if p.Number < last {
		links.Next = pageURL(path, p.Number+1, p.Size)
	}
	return links
}

func pageURL(path string, number, size int) string {
	return fmt.Sprintf("%s?page[number]=%d&page[size]=%d", path, number, size)
}

// Render wraps a page into the collection envelope using the given
// per-resource serializer. Pure function of its inputs.
func Render[T any](p Page[T], path string, serialize func(T) api.Resource) api.ListDocument {
	data := make([]api.Resource, 0, len(p.Items))
	for _, item := range p.Items {
		data = append(data, serialize(item))
	}
	return api.ListDocument{Data: data, Links: p.Links(path)}
}

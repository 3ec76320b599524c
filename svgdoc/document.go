package svgdoc

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
)

var errNotOutermost = errors.New("svgdoc: only outermost fragments belong to a document")

// Document is the root of the model, holding the
// outermost fragments in document order.
type Document struct {
	// Logger receives the warnings emitted while painting.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	fragments []*Fragment
	byID      map[string]*Fragment // separated from the fragments namespaces
}

func NewDocument() *Document {
	return &Document{byID: make(map[string]*Fragment)}
}

// AddFragment appends an outermost fragment.
// Fragments with an empty id are not addressable.
func (d *Document) AddFragment(f *Fragment) error {
	if !f.Outermost() {
		return errNotOutermost
	}
	if id := f.ID(); id != "" {
		if _, has := d.byID[id]; has {
			return fmt.Errorf("fragment %q: %w", id, ErrDuplicateID)
		}
		d.byID[id] = f
	}
	d.fragments = append(d.fragments, f)
	return nil
}

// Fragment returns the fragment with the given id, or nil.
func (d *Document) Fragment(id string) *Fragment { return d.byID[id] }

// Fragments returns the outermost fragments, in document order.
func (d *Document) Fragments() []*Fragment { return d.fragments }

// Viewport returns the viewport of the first fragment.
func (d *Document) Viewport() Bounds {
	if len(d.fragments) == 0 {
		return Bounds{}
	}
	return d.fragments[0].Viewport()
}

func (d *Document) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

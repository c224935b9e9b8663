// Package pagetest provides in-memory implementations of the page
// capabilities for tests.
package pagetest

import (
	"context"
	"fmt"

	"proximity.onebusaway.org/internal/page"
)

// Inserted records a node inserted next to an element.
type Inserted struct {
	Anchor    string
	Placement page.Placement
	Node      page.Node
}

// StyleChange records a single inline style mutation.
type StyleChange struct {
	Selector string
	Property string
	Value    string
	Removed  bool
}

// Document is a fake page.Document keyed by selector.
type Document struct {
	Values    map[string]string
	Styles    map[string]map[string]string
	Inserted  []Inserted
	Changes   []StyleChange
	Reloads   int
	Queries   []string
	ReloadErr error
	InsertErr error
	// StyleErr is returned by style mutations once FailStyleAfter successful
	// mutations have been applied.
	StyleErr       error
	FailStyleAfter int

	generation map[string]int
}

// NewDocument returns a document containing one element per selector.
// Selectors mapped to an empty string are present but have no value.
func NewDocument(elements map[string]string) *Document {
	d := &Document{
		Values:     make(map[string]string),
		Styles:     make(map[string]map[string]string),
		generation: make(map[string]int),
	}
	for selector, value := range elements {
		d.Add(selector, value)
	}
	return d
}

// Add places an element with the given value into the document. Adding a
// selector that is already present replaces its node, as a re-render would:
// style handles taken from the old node stop working.
func (d *Document) Add(selector, value string) {
	d.Values[selector] = value
	d.Styles[selector] = make(map[string]string)
	d.generation[selector]++
}

// Remove deletes an element from the document.
func (d *Document) Remove(selector string) {
	delete(d.Values, selector)
	delete(d.Styles, selector)
}

// Query implements page.Document.
func (d *Document) Query(ctx context.Context, selector string) (page.Element, error) {
	d.Queries = append(d.Queries, selector)
	if _, ok := d.Values[selector]; !ok {
		return nil, page.NotFound(selector)
	}
	return &element{doc: d, selector: selector}, nil
}

// Reload implements page.Document.
func (d *Document) Reload(ctx context.Context) error {
	if d.ReloadErr != nil {
		return d.ReloadErr
	}
	d.Reloads++
	return nil
}

// Style returns the current value of an inline style property.
func (d *Document) Style(selector, property string) (string, bool) {
	v, ok := d.Styles[selector][property]
	return v, ok
}

type element struct {
	doc      *Document
	selector string
}

func (e *element) Selector() string { return e.selector }

func (e *element) Value(ctx context.Context) (string, error) {
	v, ok := e.doc.Values[e.selector]
	if !ok {
		return "", page.NotFound(e.selector)
	}
	return v, nil
}

func (e *element) Insert(ctx context.Context, placement page.Placement, node page.Node) error {
	if e.doc.InsertErr != nil {
		return e.doc.InsertErr
	}
	e.doc.Inserted = append(e.doc.Inserted, Inserted{Anchor: e.selector, Placement: placement, Node: node})
	return nil
}

func (e *element) Style(ctx context.Context) (page.Style, error) {
	if _, ok := e.doc.Values[e.selector]; !ok {
		return nil, page.NotFound(e.selector)
	}
	return &style{doc: e.doc, selector: e.selector, generation: e.doc.generation[e.selector]}, nil
}

type style struct {
	doc        *Document
	selector   string
	generation int
}

func (s *style) SetProperty(ctx context.Context, name, value string) error {
	if err := s.check(); err != nil {
		return err
	}
	s.doc.Styles[s.selector][name] = value
	s.doc.Changes = append(s.doc.Changes, StyleChange{Selector: s.selector, Property: name, Value: value})
	return nil
}

func (s *style) RemoveProperty(ctx context.Context, name string) error {
	if err := s.check(); err != nil {
		return err
	}
	delete(s.doc.Styles[s.selector], name)
	s.doc.Changes = append(s.doc.Changes, StyleChange{Selector: s.selector, Property: name, Removed: true})
	return nil
}

func (s *style) check() error {
	if s.doc.StyleErr != nil && len(s.doc.Changes) >= s.doc.FailStyleAfter {
		return s.doc.StyleErr
	}
	if _, ok := s.doc.Styles[s.selector]; !ok || s.doc.generation[s.selector] != s.generation {
		return fmt.Errorf("style target %s detached: %w", s.selector, page.ErrElementNotFound)
	}
	return nil
}

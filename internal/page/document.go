// Package page describes the capabilities the monitor needs from the hosting
// tracking page: element lookup, value reads, node insertion, inline style
// mutation, reload, and timer scheduling.
//
// The hosting page is owned by someone else. Nothing in this package knows
// about a concrete layout; selectors are always supplied by the caller.
package page

import (
	"context"
	"fmt"
)

// Document is the host document as seen by the monitor.
type Document interface {
	// Query returns the first element matching the CSS selector. It returns an
	// error wrapping ErrElementNotFound when nothing matches.
	Query(ctx context.Context, selector string) (Element, error)

	// Reload triggers a full navigation of the current page. Once it succeeds
	// every element handle obtained from this document is stale.
	Reload(ctx context.Context) error
}

// Element is a handle to a node inside the host document.
type Element interface {
	Selector() string

	// Value reads the element's string value (the value property of an input).
	Value(ctx context.Context) (string, error)

	// Insert places node relative to this element.
	Insert(ctx context.Context, placement Placement, node Node) error

	// Style pins this element and returns its inline style declaration.
	// The returned Style keeps addressing the node that matched when Style
	// was called; if the page replaces that node, mutations fail with an
	// error wrapping ErrElementNotFound instead of moving to the new node.
	Style(ctx context.Context) (Style, error)
}

// Style is an element's inline style declaration.
type Style interface {
	SetProperty(ctx context.Context, name, value string) error
	RemoveProperty(ctx context.Context, name string) error
}

// Node is a small element created by the monitor and inserted into the page.
type Node struct {
	Tag  string
	ID   string
	Text string
}

// Placement mirrors the positions accepted by insertAdjacentElement.
type Placement string

const (
	BeforeBegin Placement = "beforebegin"
	AfterBegin  Placement = "afterbegin"
	BeforeEnd   Placement = "beforeend"
	AfterEnd    Placement = "afterend"
)

// ParsePlacement validates a placement read from configuration.
func ParsePlacement(s string) (Placement, error) {
	switch p := Placement(s); p {
	case BeforeBegin, AfterBegin, BeforeEnd, AfterEnd:
		return p, nil
	}
	return "", fmt.Errorf("unknown placement %q, expected one of beforebegin, afterbegin, beforeend, afterend", s)
}

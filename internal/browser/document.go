package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"proximity.onebusaway.org/internal/page"
)

// Document is a page.Document backed by a Chrome tab driven over the
// DevTools protocol. Elements are addressed by selector and resolved on every
// operation, so a handle obtained before a reload simply stops matching.
type Document struct {
	tab     context.Context
	timeout time.Duration
}

// NewDocument wraps a chromedp tab context.
func NewDocument(tab context.Context, timeout time.Duration) *Document {
	return &Document{tab: tab, timeout: timeout}
}

// run executes actions on the tab, bounded by the document timeout and by
// the caller's context.
func (d *Document) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.tab, d.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Query implements page.Document.
func (d *Document) Query(ctx context.Context, selector string) (page.Element, error) {
	var found bool
	if err := d.run(ctx, chromedp.Evaluate(existsScript(selector), &found)); err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if !found {
		return nil, page.NotFound(selector)
	}
	return &element{doc: d, selector: selector}, nil
}

// Reload implements page.Document.
func (d *Document) Reload(ctx context.Context) error {
	return d.run(ctx,
		chromedp.Reload(),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
}

type element struct {
	doc      *Document
	selector string
}

func (e *element) Selector() string { return e.selector }

type valueResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

func (e *element) Value(ctx context.Context) (string, error) {
	var res valueResult
	if err := e.doc.run(ctx, chromedp.Evaluate(valueScript(e.selector), &res)); err != nil {
		return "", err
	}
	if !res.Found {
		return "", page.NotFound(e.selector)
	}
	return res.Value, nil
}

func (e *element) Insert(ctx context.Context, placement page.Placement, node page.Node) error {
	var ok bool
	if err := e.doc.run(ctx, chromedp.Evaluate(insertScript(e.selector, placement, node), &ok)); err != nil {
		return err
	}
	if !ok {
		return page.NotFound(e.selector)
	}
	return nil
}

// Style tags the matching node with a fresh handle attribute and returns a
// Style addressing that attribute, so a node the page re-renders later is
// never picked up by the returned Style.
func (e *element) Style(ctx context.Context) (page.Style, error) {
	handle := uuid.NewString()
	var ok bool
	if err := e.doc.run(ctx, chromedp.Evaluate(pinScript(e.selector, handle), &ok)); err != nil {
		return nil, err
	}
	if !ok {
		return nil, page.NotFound(e.selector)
	}
	return &style{doc: e.doc, selector: handleSelector(handle)}, nil
}

// style addresses a pinned node through its handle selector.
type style struct {
	doc      *Document
	selector string
}

func (s *style) SetProperty(ctx context.Context, name, value string) error {
	return s.apply(ctx, setPropertyScript(s.selector, name, value))
}

func (s *style) RemoveProperty(ctx context.Context, name string) error {
	return s.apply(ctx, removePropertyScript(s.selector, name))
}

func (s *style) apply(ctx context.Context, script string) error {
	var ok bool
	if err := s.doc.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return page.NotFound(s.selector)
	}
	return nil
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func existsScript(selector string) string {
	return fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
}

func valueScript(selector string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (el === null) return {found: false, value: ""};
	return {found: true, value: String(el.value ?? "")};
})()`, jsString(selector))
}

// insertScript replaces any node already carrying the label id so a
// lifetime never shows two labels.
func insertScript(selector string, placement page.Placement, node page.Node) string {
	return fmt.Sprintf(`(() => {
	const anchor = document.querySelector(%s);
	if (anchor === null) return false;
	const id = %s;
	if (id !== "") {
		const previous = document.getElementById(id);
		if (previous !== null) previous.remove();
	}
	const node = document.createElement(%s);
	if (id !== "") node.id = id;
	node.textContent = %s;
	anchor.insertAdjacentElement(%s, node);
	return true;
})()`, jsString(selector), jsString(node.ID), jsString(node.Tag), jsString(node.Text), jsString(string(placement)))
}

// handleAttribute marks a node pinned by Style.
const handleAttribute = "data-bus-proximity-handle"

func handleSelector(handle string) string {
	return fmt.Sprintf(`[%s=%s]`, handleAttribute, jsString(handle))
}

func pinScript(selector, handle string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (el === null) return false;
	el.setAttribute(%s, %s);
	return true;
})()`, jsString(selector), jsString(handleAttribute), jsString(handle))
}

func setPropertyScript(selector, name, value string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (el === null) return false;
	el.style.setProperty(%s, %s);
	return true;
})()`, jsString(selector), jsString(name), jsString(value))
}

func removePropertyScript(selector, name string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (el === null) return false;
	el.style.removeProperty(%s);
	return true;
})()`, jsString(selector), jsString(name))
}

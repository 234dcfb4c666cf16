package js

import (
	"fmt"

	"tinybrowser/pkg/html"
	"tinybrowser/pkg/net"

	"github.com/dop251/goja"
)

// Engine executes JavaScript against an HTML document's DOM.
type Engine struct {
	vm  *goja.Runtime
	ctx *domContext

	host Host

	client         *net.Client
	pageOrigin     string
	cspAllowOrigin map[string]bool
}

// New creates a new JS engine with a fresh goja runtime.
func New() *Engine {
	vm := goja.New()
	e := &Engine{vm: vm}

	// Register console API
	c := &consoleAPI{}
	c.register(vm)

	return e
}

// SetHost wires host as the target of setTimeout/requestAnimationFrame.
// Optional: without one, those bindings run fn inline instead of scheduling
// it as a task.
func (e *Engine) SetHost(host Host) { e.host = host }

// SetNetwork wires the client and CSP context XMLHttpRequest_send enforces
// its cross-origin check against (§6 "CSP/cross-origin XHR checks"). pageURL
// is the document's own URL; cspHeader is the raw Content-Security-Policy
// response header value from the page's own load, or "" if absent.
func (e *Engine) SetNetwork(client *net.Client, pageURL, cspHeader string) {
	e.client = client
	origin, err := net.Origin(pageURL)
	if err == nil {
		e.pageOrigin = origin
	}
	e.cspAllowOrigin = parseCSPAllowlist(cspHeader)
}

// Execute runs all scripts from the document against the DOM.
// Scripts are executed in order. Any JS errors are returned but
// callers may choose to log and continue rather than fail.
func (e *Engine) Execute(doc *html.Document) error {
	// Register document global pointing at this document's DOM
	e.ctx = registerDocument(e.vm, doc)
	registerHandleBindings(e.vm, e.ctx)
	registerTimers(e.vm, e.host)
	registerXHR(e.vm, e.host, e.client, e.pageOrigin, e.cspAllowOrigin)

	// Execute each script in document order
	for i, script := range doc.Scripts {
		_, err := e.vm.RunString(script)
		if err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}

	return nil
}

// DispatchEvent runs every listener registered on node (and, for bubbling
// event types, its ancestors) for eventType, returning whether any listener
// called event.preventDefault() (§6 "Event dispatch").
func (e *Engine) DispatchEvent(node *html.Node, eventType string) bool {
	if e.ctx == nil {
		return false
	}
	return e.ctx.dispatchEvent(node, eventType)
}

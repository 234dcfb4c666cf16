package js

import (
	"fmt"

	"tinybrowser/pkg/net"

	"github.com/dop251/goja"
)

// registerXHR installs XMLHttpRequest_send(method, url, body, async,
// handle): a cross-origin request is rejected unless its target origin
// equals the page's own origin or is allowlisted by the page's
// Content-Security-Policy header (§6 "CSP/cross-origin XHR checks"). A
// synchronous call returns the response body directly; an asynchronous one
// returns immediately and, on completion, invokes the script-defined
// __xhr_onload__(handle, responseText) hook as one task on host, so it runs
// serialized with every other DOM mutation rather than on the fetch's own
// goroutine.
func registerXHR(vm *goja.Runtime, host Host, client *net.Client, pageOrigin string, allowed map[string]bool) {
	vm.Set("XMLHttpRequest_send", func(call goja.FunctionCall) goja.Value {
		arg := func(i int) string {
			if i < len(call.Arguments) {
				return call.Arguments[i].String()
			}
			return ""
		}
		method := arg(0)
		targetURL := arg(1)
		body := arg(2)
		async := len(call.Arguments) > 3 && call.Arguments[3].ToBoolean()
		handle := arg(4)

		origin, err := net.Origin(targetURL)
		if err != nil {
			panic(vm.NewGoError(fmt.Errorf("XMLHttpRequest: invalid url %q: %w", targetURL, err)))
		}
		if origin != pageOrigin && !allowed[origin] {
			panic(vm.NewGoError(fmt.Errorf("XMLHttpRequest: cross-origin request to %s blocked by CSP", origin)))
		}
		if client == nil {
			panic(vm.NewGoError(fmt.Errorf("XMLHttpRequest: no network client configured")))
		}

		payload := body
		if method == "GET" {
			payload = ""
		}

		if !async {
			_, respBody, err := client.Request(targetURL, pageOrigin, payload)
			if err != nil {
				panic(vm.NewGoError(fmt.Errorf("XMLHttpRequest: %w", err)))
			}
			return vm.ToValue(respBody)
		}

		go func() {
			_, respBody, err := client.Request(targetURL, pageOrigin, payload)
			if err != nil {
				return
			}
			deliver := func() {
				cb := vm.Get("__xhr_onload__")
				if cb == nil || goja.IsUndefined(cb) {
					return
				}
				if fn, ok := goja.AssertFunction(cb); ok {
					fn(goja.Undefined(), vm.ToValue(handle), vm.ToValue(respBody))
				}
			}
			if host != nil {
				host.ScheduleTask(deliver)
			}
		}()
		return goja.Undefined()
	})
}

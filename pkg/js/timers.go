package js

import (
	"time"

	"github.com/dop251/goja"
)

// registerTimers installs setTimeout and requestAnimationFrame. Both take a
// JS callback; on fire they run it as one task on host's task runner rather
// than inline in the timer goroutine, so DOM mutations from a fired timeout
// serialize the same way every other task does (§4.9 "Timeouts").
func registerTimers(vm *goja.Runtime, host Host) {
	vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		fn, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		var ms float64
		if len(call.Arguments) > 1 {
			ms = call.Arguments[1].ToFloat()
		}
		fire := func() {
			if host != nil {
				host.ScheduleTask(func() { fn(goja.Undefined()) })
				return
			}
			fn(goja.Undefined())
		}
		time.AfterFunc(time.Duration(ms)*time.Millisecond, fire)
		// No cancellation handle is exposed; the reference engine's
		// setTimeout doesn't return a usable timer id either.
		return vm.ToValue(0)
	})

	vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		if host != nil {
			host.RequestAnimationFrame()
		}
		if len(call.Arguments) > 0 {
			if fn, ok := goja.AssertFunction(call.Arguments[0]); ok && host != nil {
				host.ScheduleTask(func() { fn(goja.Undefined()) })
			}
		}
		return vm.ToValue(0)
	})

	vm.Set("now", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(float64(time.Now().UnixMilli()))
	})
}

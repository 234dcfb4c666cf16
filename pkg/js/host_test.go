package js

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tinybrowser/pkg/net"
)

// fakeHost collects tasks scheduled by setTimeout/XHR/requestAnimationFrame
// instead of actually running them on a separate thread, and runs them
// synchronously on demand from the test — mirroring how Tab serializes
// everything onto its own task runner.
type fakeHost struct {
	mu          sync.Mutex
	tasks       []func()
	rafRequests int
}

func (h *fakeHost) ScheduleTask(fn func()) {
	h.mu.Lock()
	h.tasks = append(h.tasks, fn)
	h.mu.Unlock()
}

func (h *fakeHost) RequestAnimationFrame() {
	h.mu.Lock()
	h.rafRequests++
	h.mu.Unlock()
}

func (h *fakeHost) drain() {
	h.mu.Lock()
	tasks := h.tasks
	h.tasks = nil
	h.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

func TestSetTimeoutRunsOnHost(t *testing.T) {
	doc := parseHTML(t, `<div></div>`)
	host := &fakeHost{}
	engine := New()
	engine.SetHost(host)
	doc.Scripts = append(doc.Scripts, `
		var fired = false;
		setTimeout(function() { fired = true; }, 1);
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for len(host.tasks) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	host.drain()

	v := engine.vm.Get("fired")
	if v == nil || !v.ToBoolean() {
		t.Error("expected setTimeout's callback to have run")
	}
}

func TestRequestAnimationFrameNotifiesHost(t *testing.T) {
	doc := parseHTML(t, `<div></div>`)
	host := &fakeHost{}
	engine := New()
	engine.SetHost(host)
	doc.Scripts = append(doc.Scripts, `requestAnimationFrame(function() {});`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
	host.drain()

	if host.rafRequests != 1 {
		t.Errorf("rafRequests = %d, want 1", host.rafRequests)
	}
}

func TestXHRSameOriginSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	client, err := net.NewClient()
	if err != nil {
		t.Fatal(err)
	}

	doc := parseHTML(t, `<div></div>`)
	engine := New()
	engine.SetNetwork(client, srv.URL+"/page", "")
	doc.Scripts = append(doc.Scripts, `
		var resp = XMLHttpRequest_send("GET", "`+srv.URL+`/ping", "", false, "h1");
		if (resp !== "pong") throw new Error("unexpected response: " + resp);
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestXHRCrossOriginBlockedWithoutCSP(t *testing.T) {
	client, err := net.NewClient()
	if err != nil {
		t.Fatal(err)
	}

	doc := parseHTML(t, `<div></div>`)
	engine := New()
	engine.SetNetwork(client, "https://example.com/page", "")
	doc.Scripts = append(doc.Scripts, `
		var blocked = false;
		try {
			XMLHttpRequest_send("GET", "https://evil.example/steal", "", false, "h1");
		} catch (e) {
			blocked = true;
		}
		if (!blocked) throw new Error("expected cross-origin request to be blocked");
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestXHRCrossOriginAllowedByCSP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("allowed"))
	}))
	defer srv.Close()

	client, err := net.NewClient()
	if err != nil {
		t.Fatal(err)
	}

	doc := parseHTML(t, `<div></div>`)
	engine := New()
	engine.SetNetwork(client, "https://example.com/page", "default-src "+srv.URL)
	doc.Scripts = append(doc.Scripts, `
		var resp = XMLHttpRequest_send("GET", "`+srv.URL+`/data", "", false, "h1");
		if (resp !== "allowed") throw new Error("unexpected response: " + resp);
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestHandleBasedQuerySelectorAllAndGetAttribute(t *testing.T) {
	doc := parseHTML(t, `<div id="a" data-x="1"></div><div id="b" data-x="2"></div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var handles = querySelectorAll("div");
		if (handles.length !== 2) throw new Error("expected 2 handles, got " + handles.length);
		var first = getAttribute(handles[0], "data-x");
		var second = getAttribute(handles[1], "data-x");
		if (first !== "1" || second !== "2") {
			throw new Error("unexpected attrs: " + first + " " + second);
		}
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestHandleStableAcrossLookups(t *testing.T) {
	doc := parseHTML(t, `<div id="a"></div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var first = querySelectorAll("#a")[0];
		var second = querySelectorAll("#a")[0];
		if (first !== second) throw new Error("handle changed across lookups");
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}
}

func TestAddEventListenerAndDispatchEvent(t *testing.T) {
	doc := parseHTML(t, `<div id="box"></div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var box = document.getElementById("box");
		var clicked = false;
		box.addEventListener("click", function(e) {
			clicked = true;
		});
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "box")
	if node == nil {
		t.Fatal("node not found")
	}
	prevented := engine.DispatchEvent(node, "click")
	if prevented {
		t.Error("no listener called preventDefault, expected false")
	}
	clicked := engine.vm.Get("clicked")
	if clicked == nil || !clicked.ToBoolean() {
		t.Error("expected click listener to have run")
	}
}

func TestDispatchEventPreventDefault(t *testing.T) {
	doc := parseHTML(t, `<a id="link" href="/x"></a>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		document.getElementById("link").addEventListener("click", function(e) {
			e.preventDefault();
		});
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "link")
	if !engine.DispatchEvent(node, "click") {
		t.Error("expected preventDefault to be reported")
	}
}

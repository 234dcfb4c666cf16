package net

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("X-Test", "ok")
		io.WriteString(w, "<html></html>")
	}))
	defer srv.Close()

	c, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}
	headers, body, err := c.Request(srv.URL, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if body != "<html></html>" {
		t.Errorf("body = %q", body)
	}
	if headers["x-test"] != "ok" {
		t.Errorf("headers[x-test] = %q, want ok", headers["x-test"])
	}
}

func TestRequestPOST(t *testing.T) {
	var gotMethod, gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	c, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Request(srv.URL, srv.URL, "name=bob"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotBody != "name=bob" {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content-type = %q", gotContentType)
	}
}

func TestRequestSendsCookiesAcrossRequests(t *testing.T) {
	var sawCookie string
	first := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
			first = false
			return
		}
		if cookie, err := r.Cookie("session"); err == nil {
			sawCookie = cookie.Value
		}
	}))
	defer srv.Close()

	c, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Request(srv.URL, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Request(srv.URL, "", ""); err != nil {
		t.Fatal(err)
	}
	if sawCookie != "abc123" {
		t.Errorf("second request cookie = %q, want abc123", sawCookie)
	}
}

func TestResolveURL(t *testing.T) {
	got, err := ResolveURL("/about", "https://example.com/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://example.com/about"; got != want {
		t.Errorf("ResolveURL = %q, want %q", got, want)
	}
}

func TestResolveURLRelative(t *testing.T) {
	got, err := ResolveURL("style.css", "https://example.com/pages/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://example.com/pages/style.css"; got != want {
		t.Errorf("ResolveURL = %q, want %q", got, want)
	}
}

func TestOrigin(t *testing.T) {
	got, err := Origin("https://example.com:8080/path?query=1")
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://example.com:8080"; got != want {
		t.Errorf("Origin = %q, want %q", got, want)
	}
}

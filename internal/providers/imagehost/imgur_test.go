package imagehost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresClientID(t *testing.T) {
	if _, err := NewClient(Options{}); !errors.Is(err, ErrMissingClientID) {
		t.Fatalf("err = %v, want ErrMissingClientID", err)
	}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/image" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID abc123" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("type"); got != "base64" {
			t.Errorf("type = %q", got)
		}
		if got := r.PostFormValue("image"); got != "aGVsbG8=" {
			t.Errorf("image = %q", got)
		}
		w.Write([]byte(`{"data":{"link":"https://i.imgur.com/xyz.jpg"},"success":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{ClientID: "abc123", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	link, err := c.Upload(context.Background(), "aGVsbG8=", "uploaded image", "generated")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if link != "https://i.imgur.com/xyz.jpg" {
		t.Fatalf("link = %q", link)
	}
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"success":false}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{ClientID: "abc123", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Upload(context.Background(), "aGVsbG8=", "", ""); err == nil {
		t.Fatal("expected error for rejected upload")
	}
}

func TestUploadEmptyPayload(t *testing.T) {
	c, err := NewClient(Options{ClientID: "abc123"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Upload(context.Background(), "  ", "", ""); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

package whatsapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
	"github.com/sagi-ba/photo-to-photo/internal/imaging"
)

var testImage = imaging.EncodeDataURI([]byte{0xff, 0xd8, 0xff, 0xe0, 9, 8, 7}, "jpeg")

func TestNewSenderRequiresCredentials(t *testing.T) {
	if _, err := NewSender(Options{InstanceID: "1"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestSendImage(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.URL.Path != "/waInstance7103/sendFileByUpload/secret-token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("chatId"); got != "972501234567@c.us" {
			t.Errorf("chatId = %q", got)
		}
		if got := r.FormValue("caption"); got != "תמונה חדשה" {
			t.Errorf("caption = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "image.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if len(data) != 7 {
			t.Errorf("file bytes = %d, want 7", len(data))
		}
		w.Write([]byte(`{"idMessage":"x"}`))
	}))
	defer srv.Close()

	s, err := NewSender(Options{InstanceID: "7103", APIToken: "secret-token", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := s.SendImage(context.Background(), "0501234567", testImage, "תמונה חדשה"); err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	if !called {
		t.Fatal("upload endpoint never called")
	}
}

func TestSendImageInvalidPhoneSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid phone")
	}))
	defer srv.Close()

	s, err := NewSender(Options{InstanceID: "1", APIToken: "t", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := s.SendImage(context.Background(), "05x", testImage, ""); !errors.Is(err, domain.ErrInvalidPhone) {
		t.Fatalf("err = %v, want ErrInvalidPhone", err)
	}
}

func TestSendImageUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "instance not authorized", http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewSender(Options{InstanceID: "1", APIToken: "t", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := s.SendImage(context.Background(), "0501234567", testImage, ""); err == nil {
		t.Fatal("expected upload error")
	}
}

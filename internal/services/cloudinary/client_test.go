package cloudinary_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/services"
	"reelforge/internal/services/cloudinary"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func TestSignMatchesCloudinaryScheme(t *testing.T) {
	params := map[string]string{"timestamp": "1700000000", "public_id": "seg_0_1", "folder": "reels/images"}
	sum := sha1.Sum([]byte("folder=reels/images&public_id=seg_0_1&timestamp=1700000000secret"))
	if got := cloudinary.Sign(params, "secret"); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("signature = %s", got)
	}
}

func TestUploadImagePostsSignedForm(t *testing.T) {
	var path string
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/seg_0.png"}`))
	}))
	defer server.Close()

	client, err := cloudinary.New(cloudinary.Config{CloudName: "demo", APIKey: "key", APISecret: "secret", APIBase: server.URL}, cloudinary.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	upload, err := client.UploadImage(context.Background(), "https://site.example/a.jpg", assets.UploadOptions{Folder: "reels/images/job_1", PublicID: "seg_0_1"})
	if err != nil {
		t.Fatalf("UploadImage returned error: %v", err)
	}
	if upload.URL != "https://res.cloudinary.com/demo/image/upload/seg_0.png" {
		t.Fatalf("unexpected url %q", upload.URL)
	}
	if path != "/demo/image/upload" {
		t.Fatalf("unexpected path %q", path)
	}
	want := cloudinary.Sign(map[string]string{"folder": "reels/images/job_1", "public_id": "seg_0_1", "timestamp": "1700000000"}, "secret")
	if form["signature"] != want || form["api_key"] != "key" || form["file"] != "https://site.example/a.jpg" || form["timestamp"] != "1700000000" {
		t.Fatalf("unexpected form %v", form)
	}
}

func TestUploadAudioUsesVideoEndpoint(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"url":"http://res.cloudinary.com/demo/video/upload/v.mp3"}`))
	}))
	defer server.Close()

	client, _ := cloudinary.New(cloudinary.Config{CloudName: "demo", APIKey: "key", APISecret: "secret", APIBase: server.URL})
	upload, err := client.UploadAudio(context.Background(), "data:audio/mp3;base64,AAAA", assets.UploadOptions{Folder: "reels/voiceovers"})
	if err != nil {
		t.Fatalf("UploadAudio returned error: %v", err)
	}
	if path != "/demo/video/upload" || upload.URL == "" {
		t.Fatalf("unexpected path %q or url %q", path, upload.URL)
	}
}

func TestUploadNotFoundExposesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Resource not found"}}`))
	}))
	defer server.Close()

	client, _ := cloudinary.New(cloudinary.Config{CloudName: "demo", APIKey: "key", APISecret: "secret", APIBase: server.URL})
	_, err := client.UploadImage(context.Background(), "https://gone.example/x.jpg", assets.UploadOptions{})
	if services.StatusCode(err) != http.StatusNotFound || !services.IsNotFound(err) {
		t.Fatalf("expected 404 not-found error, got %v", err)
	}
}

func TestNewRequiresCredentialsAndOwns(t *testing.T) {
	if _, err := cloudinary.New(cloudinary.Config{CloudName: "demo", APIKey: "key"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	client, err := cloudinary.New(cloudinary.Config{CloudName: "demo", APIKey: "key", APISecret: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if !client.Owns("https://res.cloudinary.com/demo/image/upload/a.png") || client.Owns("https://site.example/a.png") {
		t.Fatal("Owns misclassified urls")
	}
}

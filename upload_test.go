package pushbullet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// uploadTestHandler wires the three endpoints of a full file push: the slot
// request, the multipart upload, and the final push.
func uploadTestHandler(t *testing.T, pushes *[]map[string]any) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/upload-request", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Access-Token") != "test-token" {
			t.Errorf("upload-request: unexpected Access-Token header: %s", r.Header.Get("Access-Token"))
		}

		var req struct {
			FileName string `json:"file_name"`
			FileType string `json:"file_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("upload-request: failed to decode body: %v", err)
		}
		if req.FileName != "hello.txt" {
			t.Errorf("upload-request: unexpected file_name: %s", req.FileName)
		}
		if req.FileType != "text/plain" {
			t.Errorf("upload-request: unexpected file_type: %s", req.FileType)
		}

		json.NewEncoder(w).Encode(uploadSlot{
			FileName:  "hello.txt",
			FileType:  "text/plain",
			FileURL:   "https://dl.pushbullet.com/abc/hello.txt",
			UploadURL: fmt.Sprintf("http://%s/upload", r.Host),
		})
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Access-Token") != "test-token" {
			t.Errorf("upload: unexpected Access-Token header: %s", r.Header.Get("Access-Token"))
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("upload: unexpected Content-Type: %s", r.Header.Get("Content-Type"))
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("upload: missing file field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename != "hello.txt" {
			t.Errorf("upload: unexpected filename: %s", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("upload: unexpected part Content-Type: %s", ct)
		}

		data, err := io.ReadAll(file)
		if err != nil {
			t.Errorf("upload: failed to read file: %v", err)
		}
		if string(data) != "Hello, world!\n" {
			t.Errorf("upload: unexpected file content: %q", string(data))
		}

		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/pushes", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("pushes: failed to decode body: %v", err)
		}
		if pushes != nil {
			*pushes = append(*pushes, payload)
		}
		w.Write([]byte(`{}`))
	})

	return mux
}

func TestUploadRequest(t *testing.T) {
	client, _ := newTestClient(t, uploadTestHandler(t, nil))

	upload, err := client.UploadRequest(context.Background(), "hello.txt", "text/plain", strings.NewReader("Hello, world!\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if upload.FileName != "hello.txt" {
		t.Errorf("unexpected file name: %s", upload.FileName)
	}
	if upload.FileType != "text/plain" {
		t.Errorf("unexpected file type: %s", upload.FileType)
	}
	if upload.FileURL != "https://dl.pushbullet.com/abc/hello.txt" {
		t.Errorf("unexpected file URL: %s", upload.FileURL)
	}
}

func TestPushFile(t *testing.T) {
	var pushes []map[string]any
	client, _ := newTestClient(t, uploadTestHandler(t, &pushes))

	err := client.PushFile(context.Background(), TargetSelf(), "", "hello.txt", "text/plain", strings.NewReader("Hello, world!\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pushes) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pushes))
	}
	push := pushes[0]
	if push["type"] != "file" {
		t.Errorf("unexpected push type: %v", push["type"])
	}
	if push["file_url"] != "https://dl.pushbullet.com/abc/hello.txt" {
		t.Errorf("unexpected file_url: %v", push["file_url"])
	}
	if push["file_name"] != "hello.txt" {
		t.Errorf("unexpected file_name: %v", push["file_name"])
	}
}

func TestUploadRequestSlotError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"invalid_access_token","message":"Access token is invalid."}}`))
	}))

	_, err := client.UploadRequest(context.Background(), "hello.txt", "text/plain", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestUploadRequestTransferError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload-request", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(uploadSlot{
			FileName:  "hello.txt",
			FileType:  "text/plain",
			FileURL:   "https://dl.pushbullet.com/abc/hello.txt",
			UploadURL: fmt.Sprintf("http://%s/upload", r.Host),
		})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("storage down"))
	})

	client, _ := newTestClient(t, mux)

	_, err := client.UploadRequest(context.Background(), "hello.txt", "text/plain", strings.NewReader("x"))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", statusErr.StatusCode)
	}
}

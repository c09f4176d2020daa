package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"evolvers-admin/internal/models"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token() string {
	return s.token
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, server.URL, &staticTokens{token: token}), server
}

func TestCreateCourseDecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/courses" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var payload models.CoursePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Title != "Blender Fundamentals" {
			t.Fatalf("unexpected title: %q", payload.Title)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": 42, "title": payload.Title},
		})
	}, "")

	course, err := client.CreateCourse(context.Background(), models.CoursePayload{Title: "Blender Fundamentals"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if course.ID != 42 {
		t.Fatalf("unexpected course id: %d", course.ID)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	}, "secret-token")

	if _, err := client.ListCourses(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientOmitsAuthorizationWhenLoggedOut(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("expected no authorization header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	}, "")

	if _, err := client.ListCourses(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientExtractsJSONError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "slug already in use"})
	}, "")

	_, err := client.CreateCourse(context.Background(), models.CoursePayload{Title: "Dup"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Fatalf("unexpected status: %d", apiErr.Status)
	}
	if apiErr.Message != "slug already in use" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestClientExtractsPlainTextError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}, "")

	_, err := client.ListCourses(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestClientEnvelopeFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "validation failed upstream",
		})
	}, "")

	_, err := client.ListCourses(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "validation failed upstream" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestUploadCourseImageResolvesRelativeURL(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses/upload-image" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart form: %v", err)
		}
		files := r.MultipartForm.File["file"]
		if len(files) != 1 || files[0].Filename != "cover.jpg" {
			t.Fatalf("unexpected multipart files: %+v", files)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"url": "/uploads/cover.jpg"},
		})
	}, "")

	url, err := client.UploadCourseImage(context.Background(), &models.FileSource{
		Name: "cover.jpg",
		Data: []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != server.URL+"/uploads/cover.jpg" {
		t.Fatalf("expected relative url to be resolved, got %q", url)
	}
}

func TestUploadCourseCarouselMediaReturnsBothURLs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]string{
				"url":           "https://cdn.example.com/m.mp4",
				"thumbnail_url": "https://cdn.example.com/m.jpg",
			},
		})
	}, "")

	url, thumb, err := client.UploadCourseCarouselMedia(context.Background(), &models.FileSource{
		Name: "m.mp4",
		Data: []byte("mp4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/m.mp4" {
		t.Fatalf("unexpected url: %q", url)
	}
	if thumb != "https://cdn.example.com/m.jpg" {
		t.Fatalf("unexpected thumbnail url: %q", thumb)
	}
}

func TestUploadCourseImageNilFile(t *testing.T) {
	client := NewClient("http://localhost:1", "http://localhost:1", nil)

	if _, err := client.UploadCourseImage(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil file")
	}
}

func TestListCategories(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"id": 1, "name": "Modeling", "slug": "modeling"},
				{"id": 2, "name": "Animation", "slug": "animation"},
			},
		})
	}, "")

	options, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	if options[1].Name != "Animation" {
		t.Fatalf("unexpected option name: %q", options[1].Name)
	}
}

func TestDeleteCourse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/courses/7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}, "")

	if err := client.DeleteCourse(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

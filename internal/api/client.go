package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"evolvers-admin/internal/models"
	"evolvers-admin/pkg/logger"
)

// Error carries the backend's message for a failed request. These are
// recoverable: the local draft survives and the user may retry.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// envelope is the backend's wire response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// TokenProvider supplies the current bearer token, empty when logged out.
type TokenProvider interface {
	Token() string
}

type Client struct {
	http   *resty.Client
	origin string
}

func NewClient(baseURL, origin string, tokens TokenProvider) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetLogger(logger.NewRestyLogger())

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if tokens != nil {
			if token := tokens.Token(); token != "" {
				req.SetHeader("Authorization", "Bearer "+token)
			}
		}
		return nil
	})

	return &Client{http: httpClient, origin: origin}
}

func (c *Client) CreateCourse(ctx context.Context, payload models.CoursePayload) (*models.Course, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Post("/courses")
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	var course models.Course
	if err := c.decode(resp, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id uint, payload models.CoursePayload) (*models.Course, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Put(fmt.Sprintf("/courses/%d", id))
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	var course models.Course
	if err := c.decode(resp, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id uint) error {
	resp, err := c.http.R().SetContext(ctx).Delete(fmt.Sprintf("/courses/%d", id))
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return c.decode(resp, nil)
}

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/courses")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	var courses []models.Course
	if err := c.decode(resp, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	resp, err := c.http.R().SetContext(ctx).Get(fmt.Sprintf("/courses/%d", id))
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	var course models.Course
	if err := c.decode(resp, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// UploadCourseImage uploads a cover image and returns its durable URL.
func (c *Client) UploadCourseImage(ctx context.Context, file *models.FileSource) (string, error) {
	if file == nil {
		return "", fmt.Errorf("upload course image: file is required")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, bytes.NewReader(file.Data)).
		Post("/courses/upload-image")
	if err != nil {
		return "", fmt.Errorf("upload course image: %w", err)
	}
	var result struct {
		URL string `json:"url"`
	}
	if err := c.decode(resp, &result); err != nil {
		return "", err
	}
	return c.resolveURL(result.URL), nil
}

// UploadCourseCarouselMedia uploads one carousel file and returns its durable
// URL plus the backend-generated thumbnail URL.
func (c *Client) UploadCourseCarouselMedia(ctx context.Context, file *models.FileSource) (string, string, error) {
	if file == nil {
		return "", "", fmt.Errorf("upload carousel media: file is required")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, bytes.NewReader(file.Data)).
		Post("/courses/upload-carousel-media")
	if err != nil {
		return "", "", fmt.Errorf("upload carousel media: %w", err)
	}
	var result struct {
		URL          string `json:"url"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := c.decode(resp, &result); err != nil {
		return "", "", err
	}
	return c.resolveURL(result.URL), c.resolveURL(result.ThumbnailURL), nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	var session models.LoginResponse
	if err := c.decode(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// decode unwraps the response envelope, converting non-2xx responses and
// success:false envelopes into *Error values.
func (c *Client) decode(resp *resty.Response, out interface{}) error {
	if resp.IsError() {
		return errorFromResponse(resp)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if !env.Success {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		return &Error{Status: resp.StatusCode(), Message: message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// errorFromResponse extracts the server-provided message from a JSON or
// plain-text body, falling back to a generic status message.
func errorFromResponse(resp *resty.Response) error {
	body := resp.Body()

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return &Error{Status: resp.StatusCode(), Message: payload.Error}
		}
		if payload.Message != "" {
			return &Error{Status: resp.StatusCode(), Message: payload.Message}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return &Error{Status: resp.StatusCode(), Message: text}
	}

	return &Error{Status: resp.StatusCode()}
}

// resolveURL turns backend-relative upload paths into absolute URLs.
func (c *Client) resolveURL(url string) string {
	if url == "" || !strings.HasPrefix(url, "/") {
		return url
	}
	return c.origin + url
}

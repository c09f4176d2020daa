package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"evolvers-admin/pkg/validator"
)

// FileSource is an in-memory handle to user-selected binary data that has not
// been uploaded to the backend yet. It is never serialized: drafts persist
// only durable URLs.
type FileSource struct {
	Name        string
	ContentType string
	Data        []byte
}

// MediaRef is either a durable HTTP(S) URL pointing at persisted backend
// media, or a pending reference to a FileSource awaiting upload. A pending
// ref with a nil file can occur when a draft is resumed from storage: the
// transient marker survived but the bytes did not.
type MediaRef struct {
	url  string
	file *FileSource
}

func DurableRef(url string) MediaRef {
	return MediaRef{url: strings.TrimSpace(url)}
}

func PendingRef(file *FileSource) MediaRef {
	return MediaRef{file: file}
}

func (r MediaRef) IsZero() bool {
	return r.url == "" && r.file == nil
}

// IsDurable reports whether the ref holds a persisted HTTP(S) URL.
func (r MediaRef) IsDurable() bool {
	return validator.IsDurableURL(r.url)
}

func (r MediaRef) URL() string {
	return r.url
}

func (r MediaRef) File() *FileSource {
	return r.file
}

// WithoutFile returns the ref with any attached file handle cleared.
func (r MediaRef) WithoutFile() MediaRef {
	return MediaRef{url: r.url}
}

// MarshalJSON persists only the durable URL. Pending refs serialize to an
// empty string so a stored draft can never carry a live file handle.
func (r MediaRef) MarshalJSON() ([]byte, error) {
	if r.IsDurable() {
		return json.Marshal(r.url)
	}
	return json.Marshal("")
}

func (r *MediaRef) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err != nil {
		return err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		*r = MediaRef{}
		return nil
	}
	if validator.IsDurableURL(url) {
		*r = MediaRef{url: url}
		return nil
	}
	// Legacy transient markers (e.g. blob references) come back as pending
	// refs without bytes; the resolver rejects them with a hard error.
	*r = MediaRef{file: nil, url: url}
	return nil
}

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

func (k MediaKind) IsValid() bool {
	return k == MediaKindImage || k == MediaKindVideo
}

// CarouselItem is one entry in a course's promotional media strip.
type CarouselItem struct {
	ID              uint      `json:"id"`
	Kind            MediaKind `json:"type"`
	Title           string    `json:"title"`
	Ref             MediaRef  `json:"url"`
	ThumbRef        MediaRef  `json:"thumbnail_url"`
	DurationSeconds int       `json:"duration,omitempty"`
	Position        int       `json:"position"`
}

// LessonDraft is one lesson row inside a module being authored.
type LessonDraft struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// ModuleDraft is one module with its ordered lesson list.
type ModuleDraft struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Lessons []LessonDraft `json:"lessons"`
}

// CourseDraft is the in-progress, client-side representation of a course.
// Integer foreign keys use 0 as "unset".
type CourseDraft struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	Duration      float64 `json:"duration"`

	Published    bool `json:"published"`
	Featured     bool `json:"featured"`
	Downloadable bool `json:"downloadable"`

	CategoryID int `json:"category_id"`
	LevelID    int `json:"level_id"`
	SoftwareID int `json:"software_id"`

	BadgeIDs      []int `json:"badge_ids"`
	TagIDs        []int `json:"tag_ids"`
	InstructorIDs []int `json:"instructor_ids"`

	Requirements   []string `json:"requirements"`
	Objectives     []string `json:"objectives"`
	TargetAudience []string `json:"target_audience"`

	Modules  []ModuleDraft  `json:"modules"`
	Carousel []CarouselItem `json:"carousel"`

	// ImageFile is the pending cover image. Memory only.
	ImageFile *FileSource `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewCourseDraft returns an empty draft for a fresh authoring session.
func NewCourseDraft() *CourseDraft {
	return &CourseDraft{
		ID:             uuid.New().String(),
		BadgeIDs:       []int{},
		TagIDs:         []int{},
		InstructorIDs:  []int{},
		Requirements:   []string{},
		Objectives:     []string{},
		TargetAudience: []string{},
		Modules:        []ModuleDraft{},
		Carousel:       []CarouselItem{},
	}
}

// StripFiles clears every transient file handle from the draft. Called before
// any write to durable storage.
func (d *CourseDraft) StripFiles() {
	d.ImageFile = nil
	for i := range d.Carousel {
		d.Carousel[i].Ref = d.Carousel[i].Ref.WithoutFile()
		d.Carousel[i].ThumbRef = d.Carousel[i].ThumbRef.WithoutFile()
	}
}

// Clone returns a deep copy so controller callers can hand drafts out without
// sharing mutable slices.
func (d *CourseDraft) Clone() *CourseDraft {
	if d == nil {
		return nil
	}
	dup := *d
	dup.BadgeIDs = append([]int{}, d.BadgeIDs...)
	dup.TagIDs = append([]int{}, d.TagIDs...)
	dup.InstructorIDs = append([]int{}, d.InstructorIDs...)
	dup.Requirements = append([]string{}, d.Requirements...)
	dup.Objectives = append([]string{}, d.Objectives...)
	dup.TargetAudience = append([]string{}, d.TargetAudience...)
	dup.Modules = make([]ModuleDraft, len(d.Modules))
	for i, module := range d.Modules {
		m := module
		m.Lessons = append([]LessonDraft{}, module.Lessons...)
		dup.Modules[i] = m
	}
	dup.Carousel = append([]CarouselItem{}, d.Carousel...)
	return &dup
}

// FieldErrors maps a field name to a single human-readable message. Absence
// of a key means the field is valid.
type FieldErrors map[string]string

func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Course is the backend's persisted representation.
type Course struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price"`
	Duration      float64  `json:"duration"`
	PurchaseURL   string   `json:"purchase_url"`
	Published     bool     `json:"published"`
	Featured      bool     `json:"featured"`
	Downloadable  bool     `json:"downloadable"`
	CategoryID    int      `json:"category_id"`
	LevelID       int      `json:"level_id"`
	SoftwareID    int      `json:"software_id"`
	BadgeIDs      []int    `json:"badge_ids"`
	TagIDs        []int    `json:"tag_ids"`
	InstructorIDs []int    `json:"instructor_ids"`
	Requirements  []string `json:"requirements"`
	Objectives    []string `json:"objectives"`

	TargetAudience []string        `json:"target_audience"`
	Modules        []ModulePayload `json:"modules"`

	Carousel []CarouselItemPayload `json:"carousel_media"`
}

// CoursePayload is the wire format sent to the backend: strings trimmed,
// empty optionals omitted, empty list entries filtered.
type CoursePayload struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug,omitempty"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`

	Published    bool `json:"published"`
	Featured     bool `json:"featured"`
	Downloadable bool `json:"downloadable"`

	CategoryID int  `json:"category_id"`
	LevelID    int  `json:"level_id"`
	SoftwareID *int `json:"software_id,omitempty"`

	BadgeIDs      []int `json:"badge_ids,omitempty"`
	TagIDs        []int `json:"tag_ids,omitempty"`
	InstructorIDs []int `json:"instructor_ids,omitempty"`

	Requirements   []string `json:"requirements,omitempty"`
	Objectives     []string `json:"objectives,omitempty"`
	TargetAudience []string `json:"target_audience,omitempty"`

	Modules  []ModulePayload       `json:"modules,omitempty"`
	Carousel []CarouselItemPayload `json:"carousel_media,omitempty"`
}

type ModulePayload struct {
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Lessons  []LessonPayload `json:"lessons,omitempty"`
}

type LessonPayload struct {
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
	Position int    `json:"position"`
}

type CarouselItemPayload struct {
	ID           uint   `json:"id,omitempty"`
	Type         string `json:"type"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration,omitempty"`
	Position     int    `json:"position"`
}

// CatalogOption is a selectable reference entity (category, level, software,
// tag, instructor, badge) used to populate course form selects.
type CatalogOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type DashboardStats struct {
	TotalCourses     int     `json:"total_courses"`
	PublishedCourses int     `json:"published_courses"`
	FeaturedCourses  int     `json:"featured_courses"`
	AveragePrice     float64 `json:"average_price"`
	CatalogValue     float64 `json:"catalog_value"`
}

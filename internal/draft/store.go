package draft

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"evolvers-admin/internal/models"
	"evolvers-admin/pkg/validator"
)

// draftKey is the single fixed storage key: one authoring session per client.
const draftKey = "evolvers:course_draft"

// Store persists the in-progress course draft as one JSON blob. A corrupt
// blob is treated as absence, not as a fatal error: the authoring UI starts
// fresh rather than crashing over an autosave cache.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the stored draft, or nil when nothing (usable) is stored.
// Malformed fields are coerced or dropped, never propagated.
func (s *Store) Load(ctx context.Context) (*models.CourseDraft, error) {
	data, ok, err := s.kv.Get(ctx, draftKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil
	}

	return normalizeDraft(raw), nil
}

// Save strips any transient file handle and writes the draft. Persisting a
// file handle is a defect, not a fallback.
func (s *Store) Save(ctx context.Context, d *models.CourseDraft) error {
	clean := d.Clone()
	clean.StripFiles()

	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, draftKey, data)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Remove(ctx, draftKey)
}

func normalizeDraft(raw map[string]interface{}) *models.CourseDraft {
	d := models.NewCourseDraft()

	if id := asString(raw["id"]); id != "" {
		d.ID = id
	}
	d.Title = asString(raw["title"])
	d.Slug = asString(raw["slug"])
	d.Description = asString(raw["description"])
	d.ImageURL = asString(raw["image_url"])
	d.Price = asFloat(raw["price"])
	d.OriginalPrice = asFloat(raw["original_price"])
	d.Duration = asFloat(raw["duration"])

	d.Published = asBool(raw["published"])
	d.Featured = asBool(raw["featured"])
	d.Downloadable = asBool(raw["downloadable"])

	d.CategoryID = asInt(raw["category_id"])
	d.LevelID = asInt(raw["level_id"])
	d.SoftwareID = asInt(raw["software_id"])

	d.BadgeIDs = asIntSlice(raw["badge_ids"])
	d.TagIDs = asIntSlice(raw["tag_ids"])
	d.InstructorIDs = asIntSlice(raw["instructor_ids"])

	d.Requirements = asStringSlice(raw["requirements"])
	d.Objectives = asStringSlice(raw["objectives"])
	d.TargetAudience = asStringSlice(raw["target_audience"])

	d.Modules = normalizeModules(raw["modules"])
	d.Carousel = normalizeCarousel(raw["carousel"])

	if stamp, err := time.Parse(time.RFC3339Nano, asString(raw["updated_at"])); err == nil {
		d.UpdatedAt = stamp
	}

	return d
}

// normalizeModules rebuilds the nested module/lesson collections as fresh
// entities, generating ids where they are missing.
func normalizeModules(value interface{}) []models.ModuleDraft {
	entries, ok := value.([]interface{})
	if !ok {
		return []models.ModuleDraft{}
	}

	modules := make([]models.ModuleDraft, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		module := models.ModuleDraft{
			ID:      asString(fields["id"]),
			Title:   asString(fields["title"]),
			Lessons: []models.LessonDraft{},
		}
		if module.ID == "" {
			module.ID = uuid.New().String()
		}

		if lessonEntries, ok := fields["lessons"].([]interface{}); ok {
			for _, lessonEntry := range lessonEntries {
				lessonFields, ok := lessonEntry.(map[string]interface{})
				if !ok {
					continue
				}
				lesson := models.LessonDraft{
					ID:       asString(lessonFields["id"]),
					Title:    asString(lessonFields["title"]),
					Duration: asString(lessonFields["duration"]),
				}
				if lesson.ID == "" {
					lesson.ID = uuid.New().String()
				}
				module.Lessons = append(module.Lessons, lesson)
			}
		}

		modules = append(modules, module)
	}
	return modules
}

func normalizeCarousel(value interface{}) []models.CarouselItem {
	entries, ok := value.([]interface{})
	if !ok {
		return []models.CarouselItem{}
	}

	items := make([]models.CarouselItem, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		kind := models.MediaKind(asString(fields["type"]))
		if !kind.IsValid() {
			continue
		}

		item := models.CarouselItem{
			ID:              uint(asInt(fields["id"])),
			Kind:            kind,
			Title:           asString(fields["title"]),
			Ref:             refFromString(asString(fields["url"])),
			ThumbRef:        refFromString(asString(fields["thumbnail_url"])),
			DurationSeconds: asInt(fields["duration"]),
			Position:        len(items),
		}
		items = append(items, item)
	}
	return items
}

// refFromString rebuilds a media ref from its persisted string form. A
// non-HTTP leftover becomes a pending ref without bytes; the resolver turns
// that into a hard error instead of silently uploading nothing.
func refFromString(url string) models.MediaRef {
	if url == "" {
		return models.MediaRef{}
	}
	if validator.IsDurableURL(url) {
		return models.DurableRef(url)
	}
	return models.PendingRef(nil)
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func asFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func asInt(value interface{}) int {
	return int(asFloat(value))
}

func asBool(value interface{}) bool {
	b, _ := value.(bool)
	return b
}

func asIntSlice(value interface{}) []int {
	entries, ok := value.([]interface{})
	if !ok {
		return []int{}
	}
	result := make([]int, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				result = append(result, int(v))
			}
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				result = append(result, parsed)
			}
		}
	}
	return result
}

func asStringSlice(value interface{}) []string {
	entries, ok := value.([]interface{})
	if !ok {
		return []string{}
	}
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

package draft

import (
	"context"
	"testing"

	"evolvers-admin/internal/models"
)

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(NewMemoryKV())

	d, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil draft when nothing is stored")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryKV())

	d := models.NewCourseDraft()
	d.Title = "Sculpting Basics"
	d.Description = "An introduction to digital sculpting."
	d.Price = 29.99
	d.CategoryID = 3
	d.TagIDs = []int{1, 5}
	d.Modules = []models.ModuleDraft{{
		ID:    "m1",
		Title: "Getting Started",
		Lessons: []models.LessonDraft{
			{ID: "l1", Title: "Tools overview", Duration: "12:30"},
		},
	}}
	d.Carousel = []models.CarouselItem{{
		Kind:  models.MediaKindVideo,
		Title: "Teaser",
		Ref:   models.DurableRef("https://cdn.example.com/teaser.mp4"),
	}}

	if err := store.Save(context.Background(), d); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected stored draft")
	}

	if loaded.Title != d.Title {
		t.Fatalf("unexpected title: %q", loaded.Title)
	}
	if loaded.Price != d.Price {
		t.Fatalf("unexpected price: %v", loaded.Price)
	}
	if len(loaded.TagIDs) != 2 || loaded.TagIDs[1] != 5 {
		t.Fatalf("unexpected tag ids: %v", loaded.TagIDs)
	}
	if len(loaded.Modules) != 1 || len(loaded.Modules[0].Lessons) != 1 {
		t.Fatalf("unexpected module shape: %+v", loaded.Modules)
	}
	if loaded.Modules[0].Lessons[0].Duration != "12:30" {
		t.Fatalf("unexpected lesson duration: %q", loaded.Modules[0].Lessons[0].Duration)
	}
	if len(loaded.Carousel) != 1 {
		t.Fatalf("unexpected carousel length: %d", len(loaded.Carousel))
	}
	if loaded.Carousel[0].Ref.URL() != "https://cdn.example.com/teaser.mp4" {
		t.Fatalf("unexpected carousel url: %q", loaded.Carousel[0].Ref.URL())
	}
}

func TestStoreSaveStripsFileHandles(t *testing.T) {
	store := NewStore(NewMemoryKV())

	d := models.NewCourseDraft()
	d.Title = "With files"
	d.ImageFile = &models.FileSource{Name: "cover.jpg", Data: []byte("jpeg")}
	d.Carousel = []models.CarouselItem{{
		Kind: models.MediaKindImage,
		Ref:  models.PendingRef(&models.FileSource{Name: "shot.jpg", Data: []byte("jpeg")}),
	}}

	if err := store.Save(context.Background(), d); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	if d.ImageFile == nil {
		t.Fatal("expected the caller's draft to keep its file handle")
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded.ImageFile != nil {
		t.Fatal("expected no file handle after a round trip")
	}
	if len(loaded.Carousel) != 1 {
		t.Fatalf("unexpected carousel length: %d", len(loaded.Carousel))
	}
	if loaded.Carousel[0].Ref.File() != nil {
		t.Fatal("expected no carousel file handle after a round trip")
	}
	if loaded.Carousel[0].Ref.IsDurable() {
		t.Fatal("expected a pending item to stay non-durable after a round trip")
	}
}

func TestStoreLoadCorruptBlob(t *testing.T) {
	kv := NewMemoryKV()
	if err := kv.Set(context.Background(), draftKey, []byte("{not json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewStore(kv)
	d, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected corruption to be treated as absence, got %v", err)
	}
	if d != nil {
		t.Fatal("expected nil draft for a corrupt blob")
	}
}

func TestStoreLoadCoercesMalformedFields(t *testing.T) {
	kv := NewMemoryKV()
	blob := `{
		"title": "  Rigging 101  ",
		"price": "19.50",
		"original_price": "not a number",
		"category_id": "7",
		"tag_ids": [1, "2", "oops", 3],
		"requirements": ["pc", 42, "tablet"],
		"modules": [
			{"title": "Armatures", "lessons": [{"title": "Bones"}]},
			"garbage"
		],
		"carousel": [
			{"type": "image", "url": "https://cdn.example.com/a.jpg"},
			{"type": "gif", "url": "https://cdn.example.com/b.gif"},
			{"type": "video", "url": "blob:leftover"}
		]
	}`
	if err := kv.Set(context.Background(), draftKey, []byte(blob)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewStore(kv)
	d, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil {
		t.Fatal("expected a normalized draft")
	}

	if d.Title != "Rigging 101" {
		t.Fatalf("unexpected title: %q", d.Title)
	}
	if d.Price != 19.50 {
		t.Fatalf("expected numeric string to be coerced, got %v", d.Price)
	}
	if d.OriginalPrice != 0 {
		t.Fatalf("expected unparseable number to fall back to zero, got %v", d.OriginalPrice)
	}
	if d.CategoryID != 7 {
		t.Fatalf("unexpected category id: %d", d.CategoryID)
	}
	if len(d.TagIDs) != 3 {
		t.Fatalf("expected unparseable tag entries to be dropped, got %v", d.TagIDs)
	}
	if len(d.Requirements) != 2 {
		t.Fatalf("expected non-string requirement entries to be dropped, got %v", d.Requirements)
	}

	if len(d.Modules) != 1 {
		t.Fatalf("expected non-object module entries to be dropped, got %d", len(d.Modules))
	}
	if d.Modules[0].ID == "" {
		t.Fatal("expected a generated module id")
	}
	if len(d.Modules[0].Lessons) != 1 || d.Modules[0].Lessons[0].ID == "" {
		t.Fatalf("expected a generated lesson id, got %+v", d.Modules[0].Lessons)
	}

	if len(d.Carousel) != 2 {
		t.Fatalf("expected the invalid media kind to be dropped, got %d items", len(d.Carousel))
	}
	if d.Carousel[0].Position != 0 || d.Carousel[1].Position != 1 {
		t.Fatalf("expected positions to be reindexed, got %d and %d", d.Carousel[0].Position, d.Carousel[1].Position)
	}
	if d.Carousel[1].Ref.IsDurable() {
		t.Fatal("expected a blob leftover to come back as pending")
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore(NewMemoryKV())

	d := models.NewCourseDraft()
	d.Title = "Temporary"
	if err := store.Save(context.Background(), d); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error clearing: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected no draft after clear")
	}
}

package validator

import "testing"

func TestIsDurableURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://cdn.example.com/a.jpg", true},
		{"http://cdn.example.com/a.jpg", true},
		{"HTTPS://cdn.example.com/a.jpg", true},
		{"  https://cdn.example.com/a.jpg  ", true},
		{"blob:abc123", false},
		{"data:image/png;base64,AAAA", false},
		{"/uploads/a.jpg", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsDurableURL(tc.in); got != tc.want {
			t.Fatalf("IsDurableURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://cdn.example.com/a.mp4", true},
		{"http://example.com", true},
		{"https://cdn", false},
		{"blob:abc123", false},
		{"example.com/a.mp4", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidateURL(tc.in); got != tc.want {
			t.Fatalf("ValidateURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("Blender   Fundamentals\t2024"); got != "Blender Fundamentals 2024" {
		t.Fatalf("unexpected normalized string: %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("my photo (1).jpg"); got != "my_photo__1_.jpg" {
		t.Fatalf("unexpected sanitized filename: %q", got)
	}
}

func TestValidateImageExtension(t *testing.T) {
	valid := []string{"a.jpg", "b.JPEG", "c.png", "d.gif", "e.webp"}
	for _, name := range valid {
		if !ValidateImageExtension(name) {
			t.Fatalf("expected %q to be accepted", name)
		}
	}

	invalid := []string{"a.exe", "b.mp4", "c", "d.svg"}
	for _, name := range invalid {
		if ValidateImageExtension(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if !ValidateFileSize(100, 1000) {
		t.Fatal("expected size within limit to be accepted")
	}
	if ValidateFileSize(1001, 1000) {
		t.Fatal("expected oversized file to be rejected")
	}
	if ValidateFileSize(0, 1000) {
		t.Fatal("expected empty file to be rejected")
	}
}

func TestValidateImageContentType(t *testing.T) {
	if !ValidateImageContentType("image/jpeg") {
		t.Fatal("expected image/jpeg to be accepted")
	}
	if !ValidateImageContentType("image/png; charset=binary") {
		t.Fatal("expected parameters to be tolerated")
	}
	if ValidateImageContentType("application/pdf") {
		t.Fatal("expected application/pdf to be rejected")
	}
}

func TestSanitizeHTML(t *testing.T) {
	Init()

	out := SanitizeHTML(`<b>bold</b><script>alert(1)</script>`)
	if out != "<b>bold</b>" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

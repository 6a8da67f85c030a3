package storage

import (
	"context"
	"testing"
)

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]bool{
		"b1/moving/before.JPG":  true,
		"b1/moving/after.png":   true,
		"b1/cleaning/room.heic": true,
		"b1/moving/notes.pdf":   false,
		"b1/moving/README":      false,
	}
	for key, image := range cases {
		if got := IsImageContentType(ContentTypeForKey(key)); got != image {
			t.Errorf("%s: image = %v, want %v", key, got, image)
		}
	}
}

func TestDisabledStoreListsNothing(t *testing.T) {
	photos, err := Disabled{}.ListPhotos(context.Background(), "job-photos", "b1/")
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("photos = %v", photos)
	}
	if _, err := (Disabled{}).GenerateDownloadURL(context.Background(), "job-photos", "k"); err != ErrDisabled {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/erazemk/findmate/internal/model"
)

func TestPutAndGetPhoto(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	data := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := s.PutPhoto(ctx, model.Photo{ID: "p1", MIME: "image/jpeg", Data: data, CreatedAt: testNow}); err != nil {
		t.Fatalf("PutPhoto: %v", err)
	}

	got, err := s.GetPhoto(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPhoto: %v", err)
	}
	if got == nil || got.MIME != "image/jpeg" || !bytes.Equal(got.Data, data) {
		t.Fatalf("unexpected photo: %+v", got)
	}

	missing, err := s.GetPhoto(ctx, "p2")
	if err != nil {
		t.Fatalf("GetPhoto: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing photo")
	}
}

package photo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/findmate/internal/model"
)

type fakeRepo struct {
	photos []model.Photo
	err    error
}

func (f *fakeRepo) PutPhoto(_ context.Context, p model.Photo) error {
	if f.err != nil {
		return f.err
	}
	f.photos = append(f.photos, p)
	return nil
}

func TestDBStorePut(t *testing.T) {
	repo := &fakeRepo{}
	s := NewDBStore(repo)

	url, err := s.Put(context.Background(), "abc.jpg", "image/jpeg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "/photos/abc.jpg", url)
	require.Len(t, repo.photos, 1)
	assert.Equal(t, "abc.jpg", repo.photos[0].ID)
	assert.Equal(t, "image/jpeg", repo.photos[0].MIME)
}

func TestDBStorePutError(t *testing.T) {
	s := NewDBStore(&fakeRepo{err: errors.New("locked")})
	_, err := s.Put(context.Background(), "abc.jpg", "image/jpeg", []byte{1})
	assert.Error(t, err)
}

func TestS3StorePut(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3Store(context.Background(), S3Config{
		Endpoint:       srv.URL,
		Bucket:         "photos",
		AccessKey:      "key",
		SecretKey:      "secret",
		PublicURL:      "https://cdn.example.edu/photos/",
		ForcePathStyle: true,
	})
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "abc.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.edu/photos/abc.jpg", url)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/photos/abc.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Contains(t, string(gotBody), "jpeg-bytes")
}

func TestNewS3StoreRequiresCredentials(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Bucket: "b"})
	assert.Error(t, err)
}

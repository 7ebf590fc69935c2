package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/model"
)

// stubStorage satisfies storage.Storage for handler tests.
type stubStorage struct{}

func (stubStorage) Save(path string, file io.Reader) error { return nil }
func (stubStorage) Delete(path string) error               { return nil }
func (stubStorage) URL(path string) string                 { return "https://storage.test/apps/" + path }

func (stubStorage) PresignedURL(path string) (string, error) {
	return "https://storage.test/presigned/" + path, nil
}

func (stubStorage) PresignedPutURL(path string, expiry time.Duration) (string, error) {
	return "https://storage.test/signed/" + path, nil
}

func signedURLRequestFor(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/signed-urls", strings.NewReader(body))
	user := &model.User{ID: "dev-1", Role: model.RoleDeveloper}
	return req.WithContext(ctxkeys.WithUser(req.Context(), user))
}

func TestSignedURLCreate(t *testing.T) {
	h := NewSignedURLHandler(stubStorage{}, 15*time.Minute)

	rec := httptest.NewRecorder()
	h.Create(rec, signedURLRequestFor(t, `{"apkFileName":"weather.apk","iconFileName":"icon.png"}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		APKSignedURL  string `json:"apkSignedUrl"`
		IconSignedURL string `json:"iconSignedUrl"`
		APKURL        string `json:"apkUrl"`
		IconURL       string `json:"iconUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Paths are scoped to the authenticated principal.
	assert.Contains(t, resp.APKSignedURL, "/signed/apks/dev-1/")
	assert.Contains(t, resp.APKSignedURL, "weather.apk")
	assert.Contains(t, resp.IconSignedURL, "/signed/icons/dev-1/")
	assert.Contains(t, resp.APKURL, "/apps/apks/dev-1/")
	assert.Contains(t, resp.IconURL, "/apps/icons/dev-1/")
}

func TestSignedURLCreateMissingFields(t *testing.T) {
	h := NewSignedURLHandler(stubStorage{}, 15*time.Minute)

	rec := httptest.NewRecorder()
	h.Create(rec, signedURLRequestFor(t, `{"apkFileName":"weather.apk"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Create(rec, signedURLRequestFor(t, `not-json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

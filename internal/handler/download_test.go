package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadProxyRequiresFileURL(t *testing.T) {
	h := NewDownloadHandler("")

	rec := httptest.NewRecorder()
	h.Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/download", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing fileUrl")
}

func TestDownloadProxyRejectsForeignURL(t *testing.T) {
	h := NewDownloadHandler("https://storage.test/apps/")

	rec := httptest.NewRecorder()
	h.Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/download?fileUrl=https://evil.example.com/x.apk", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a storage object")
}

func TestDownloadProxyStreamsObject(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.android.package-archive")
		_, _ = w.Write([]byte("apk-bytes"))
	}))
	defer upstream.Close()

	h := NewDownloadHandler(upstream.URL)

	rec := httptest.NewRecorder()
	h.Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/download?fileUrl="+upstream.URL+"/apks/dev-1/1-a.apk", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.android.package-archive", rec.Header().Get("Content-Type"))
	assert.Equal(t, "apk-bytes", rec.Body.String())
}

func TestDownloadProxyUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	h := NewDownloadHandler(upstream.URL)

	rec := httptest.NewRecorder()
	h.Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/download?fileUrl="+upstream.URL+"/apks/x.apk", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to fetch file")
}

package files

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/testing/teamtest"
)

func TestHandlerUploadAndDownload(t *testing.T) {
	f := teamtest.New(t, nil)
	company := f.Company(t, "alice", "bob")
	r := chi.NewRouter()
	NewHandler(nil, newTestService(f)).MountRoutes(r)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "minutes.txt")
	require.NoError(t, err)
	_, err = io.WriteString(part, "meeting minutes")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	ctx := companies.ContextWithCode(shared.ContextWithUsername(t.Context(), "alice"), company.Code)
	req := httptest.NewRequest(http.MethodPost, "/", &body).WithContext(ctx)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "minutes.txt", created.Name)

	req = httptest.NewRequest(http.MethodGet, "/"+created.ID, nil).WithContext(ctx)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "meeting minutes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename=minutes.txt`)

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("not multipart")).WithContext(ctx)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

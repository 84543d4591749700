package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaddock/motorclub/services"
)

func TestWriteDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeData(rec, req, http.StatusOK, map[string]int{"answer": 42})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 42, env.Data["answer"])
}

func TestErrorResponseEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	errorResponse(rec, req, http.StatusTeapot, "nope")

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "nope", env.Message)
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"ok"}`},
		{name: "empty body", body: "", wantErr: "body must not be empty"},
		{name: "malformed", body: `{"name":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"nope":"x"}`, wantErr: "unknown key"},
		{name: "wrong type", body: `{"name":7}`, wantErr: `incorrect JSON type for field "name"`},
		{name: "trailing garbage", body: `{"name":"ok"}{"name":"again"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := readJSON(rec, req, &dst)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIDFromURL(t *testing.T) {
	newReq := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := idFromURL(newReq("17"), "id")
	require.NoError(t, err)
	assert.Equal(t, 17, id)

	_, err = idFromURL(newReq("abc"), "id")
	assert.Error(t, err)

	_, err = idFromURL(newReq("0"), "id")
	assert.Error(t, err)

	_, err = idFromURL(newReq(""), "id")
	assert.Error(t, err)
}

func multipartRequest(t *testing.T, build func(w *multipart.Writer)) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestParseImageField(t *testing.T) {
	t.Run("file present", func(t *testing.T) {
		req := multipartRequest(t, func(w *multipart.Writer) {
			part, err := w.CreatePart(textproto.MIMEHeader{
				"Content-Disposition": {`form-data; name="image"; filename="pic.jpg"`},
				"Content-Type":        {"image/jpeg"},
			})
			require.NoError(t, err)
			_, err = part.Write([]byte("jpeg bytes"))
			require.NoError(t, err)
		})

		file, upload, remove, err := parseImageField(req, "image", "image_url")
		require.NoError(t, err)
		require.NotNil(t, file)
		defer file.Close()
		require.NotNil(t, upload)
		assert.Equal(t, "image/jpeg", upload.ContentType)
		assert.False(t, remove)
	})

	t.Run("empty url field signals removal", func(t *testing.T) {
		req := multipartRequest(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("image_url", ""))
		})

		file, upload, remove, err := parseImageField(req, "image", "image_url")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Nil(t, upload)
		assert.True(t, remove)
	})

	t.Run("absent field preserves the stored image", func(t *testing.T) {
		req := multipartRequest(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("name", "unrelated"))
		})

		file, upload, remove, err := parseImageField(req, "image", "image_url")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Nil(t, upload)
		assert.False(t, remove)
	})

	t.Run("non-empty url field is not a removal", func(t *testing.T) {
		req := multipartRequest(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("image_url", "https://cdn.test/clubs/x.jpg"))
		})

		_, upload, remove, err := parseImageField(req, "image", "image_url")
		require.NoError(t, err)
		assert.Nil(t, upload)
		assert.False(t, remove)
	})
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrVehicleNotFound, http.StatusNotFound},
		{services.ErrAlreadyClubMember, http.StatusConflict},
		{services.ErrValidationFailed, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

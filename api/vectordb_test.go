package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashtho/shashtho/internal/ingest"
	"github.com/shashtho/shashtho/internal/language"
)

func postBuild(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/build-vectordb", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(t, handler, req)
}

func TestBuildVectorDB_Success(t *testing.T) {
	t.Parallel()

	builder := &fakeIngestor{result: ingest.BuildResult{
		Language: language.English,
		Chunks:   42,
		Path:     "db_menstrual_health/menstrual_health_chunks_english",
	}}
	handler := newTestServer(nil, builder, nil)

	rec := postBuild(t, handler, `{"language":"english"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VectorDBResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.ChunksStored)
	assert.Equal(t, "db_menstrual_health/menstrual_health_chunks_english", resp.Path)
	assert.Equal(t, "Stored 42 chunks into vector index at 'db_menstrual_health/menstrual_health_chunks_english'", resp.Message)

	assert.Equal(t, language.English, builder.lang)
}

func TestBuildVectorDB_LanguageParsing(t *testing.T) {
	t.Parallel()

	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		builder := &fakeIngestor{}
		handler := newTestServer(nil, builder, nil)

		rec := postBuild(t, handler, `{"language":"Bangla"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, language.Bangla, builder.lang)
	})

	t.Run("unsupported language", func(t *testing.T) {
		t.Parallel()
		builder := &fakeIngestor{}
		handler := newTestServer(nil, builder, nil)

		rec := postBuild(t, handler, `{"language":"french"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_language", resp.Error)
		assert.Zero(t, builder.calls)
	})
}

func TestBuildVectorDB_MalformedBody(t *testing.T) {
	t.Parallel()

	builder := &fakeIngestor{}
	handler := newTestServer(nil, builder, nil)

	rec := postBuild(t, handler, `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, builder.calls)
}

func TestBuildVectorDB_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing sources", ingest.ErrSourceNotFound, http.StatusNotFound, "source_not_found"},
		{"no chunks", ingest.ErrNoChunks, http.StatusBadRequest, "no_chunks"},
		{"storage failure", errStorage, http.StatusInternalServerError, "build_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := newTestServer(nil, &fakeIngestor{err: tt.err}, nil)

			rec := postBuild(t, handler, `{"language":"english"}`)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

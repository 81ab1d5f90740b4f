package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/pipeline"
)

func newTestServer(in engine.Intent) *Server {
	parser := pipeline.ParserFunc(func(context.Context, string, []string) (engine.Intent, error) {
		return in, nil
	})
	return New(pipeline.New(parser), config.Default())
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestRoot(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")
}

func TestOperations(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/operations", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var ops []operationInfo
	decode(t, rec, &ops)

	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, op.Name)
	}
	assert.Contains(t, names, "sum")
	assert.Contains(t, names, "describe")
	assert.Contains(t, names, "plot")
}

func TestUploadThenAnalyze(t *testing.T) {
	srv := newTestServer(engine.Intent{Operation: "sum", TargetColumn: "sales"})
	h := srv.Handler()

	body, ctype := multipartBody(t, "sales.csv", "Region,Sales\nNorth,100\nSouth,200\nNorth,50\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var up uploadResponse
	decode(t, rec, &up)
	assert.NotEmpty(t, up.SessionID)
	assert.Equal(t, []string{"Region", "Sales"}, up.Columns)
	assert.Equal(t, [2]int{3, 2}, up.Shape)
	assert.Equal(t, 1, srv.Sessions().Len())

	payload, _ := json.Marshal(analyzeRequest{SessionID: up.SessionID, Command: "total sales"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]any
	decode(t, rec, &res)
	assert.Equal(t, "value", res["result_type"])
	assert.InDelta(t, 350.0, res["data"], 1e-9)
}

func TestUploadCSVAlias(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	body, ctype := multipartBody(t, "a.csv", "x\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/upload_csv", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadUnsupportedFormat(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	body, ctype := multipartBody(t, "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e errorBody
	decode(t, rec, &e)
	assert.Contains(t, e.Detail, ".txt")
}

func TestUploadMissingFile(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeUnknownSession(t *testing.T) {
	h := newTestServer(engine.Intent{Operation: "count"}).Handler()
	payload := `{"session_id":"nope","command":"how many?"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(payload)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session ID not found")
}

func TestAnalyzeErrorResult(t *testing.T) {
	srv := newTestServer(engine.Intent{Operation: "sum", TargetColumn: "Profit"})
	id := srv.Sessions().Put(dataset.Sample())

	payload, _ := json.Marshal(analyzeRequest{SessionID: id, Command: "total profit"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e errorBody
	decode(t, rec, &e)
	assert.Equal(t, engine.KindNotFound, e.ErrorKind)
	assert.Contains(t, e.Detail, "Profit")
}

func TestAnalyzeWithIntent(t *testing.T) {
	srv := newTestServer(engine.Intent{})
	id := srv.Sessions().Put(dataset.Sample())

	payload := `{"session_id":"` + id + `","intent":{"operation":"sum","target_column":"Sales","group_by":["Region"],"sort_order":"desc","limit":1}}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Type string           `json:"result_type"`
		Data []map[string]any `json:"data"`
	}
	decode(t, rec, &res)
	assert.Equal(t, "table", res.Type)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "East", res.Data[0]["Region"])
	assert.InDelta(t, 500.0, res.Data[0]["result"], 1e-9)
}

func TestAnalyzeEmptyRequest(t *testing.T) {
	srv := newTestServer(engine.Intent{})
	id := srv.Sessions().Put(dataset.Sample())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"session_id":"`+id+`"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportNotConfigured(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()

	for _, body := range []string{`{"s3_uri":"s3://bucket/data.csv"}`, `{"query":"select 1"}`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(body)))
		assert.Equal(t, http.StatusNotImplemented, rec.Code, body)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(engine.Intent{}).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionsConcurrent(t *testing.T) {
	s := NewSessions()
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Put(dataset.Sample())
		}()
	}
	wg.Wait()
	close(ids)

	assert.Equal(t, 50, s.Len())
	for id := range ids {
		_, ok := s.Get(id)
		assert.True(t, ok)
		s.Delete(id)
	}
	assert.Equal(t, 0, s.Len())
}

package http

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizsense/internal/answerkey"
	"github.com/mind-engage/quizsense/internal/apply"
	auth "github.com/mind-engage/quizsense/internal/auth/middleware"
	"github.com/mind-engage/quizsense/internal/db"
	"github.com/mind-engage/quizsense/internal/keystore"
	"github.com/mind-engage/quizsense/internal/observe"
	"github.com/mind-engage/quizsense/internal/storage"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func post(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestResolveHandler(t *testing.T) {
	conn := openDB(t)
	repo := observe.NewRepo(conn)
	eng := NewEngine(answerkey.Empty(), nil)
	h := ResolveHandler(eng, apply.New(), repo, nil)

	rec := post(t, h, "/resolve", `{"text": "\"Bonjour\"[0:3]", "form": {"choices": ["Bonjour", "Bon"]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer": "Bon", "source": "str_slice", "plan": {"selected": [1]}}`, rec.Body.String())

	rec = post(t, h, "/resolve", `{"text": "pays de Maroc", "code": "base = {}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer": "base[\"Maroc\"][\"pays\"]", "source": "dict_country"}`, rec.Body.String())

	rec = post(t, h, "/resolve", `{"text": "Question inconnue"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer": null, "source": "none"}`, rec.Body.String())

	list, err := repo.List(context.Background(), observe.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestResolveHandlerBadInput(t *testing.T) {
	h := ResolveHandler(NewEngine(nil, nil), apply.New(), nil, nil)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/resolve", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/resolve", `{"text": "   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/resolve", `{"text": "x", "form": {"inputs": -2}}`).Code)
}

func TestUploadSwapsKey(t *testing.T) {
	conn := openDB(t)
	keys := keystore.NewSQLStore(conn)
	eng := NewEngine(nil, nil)
	resolve := ResolveHandler(eng, nil, nil, nil)
	upload := UploadAnswerKeyHandler(keys, eng, nil)

	before := post(t, resolve, "/resolve", `{"text": "\"Bonjour\"[0:3]"}`)
	assert.JSONEq(t, `{"answer": "Bon", "source": "str_slice"}`, before.Body.String())

	rec := post(t, upload, "/answer-keys?name=nsi&format=yaml", "'\"Bonjour\"[0:3]': [Bon, jour]\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var stored keystore.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, "nsi", stored.Name)
	assert.Equal(t, 1, stored.Entries)

	after := post(t, resolve, "/resolve", `{"text": "\"Bonjour\"[0:3]"}`)
	assert.JSONEq(t, `{"answer": ["Bon", "jour"], "source": "answer_key"}`, after.Body.String())

	bad := post(t, upload, "/answer-keys", `["nope"]`)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	assert.Equal(t, 1, eng.Current().Key().Len())

	listRec := httptest.NewRecorder()
	ListAnswerKeysHandler(keys)(listRec, httptest.NewRequest(http.MethodGet, "/answer-keys", nil))
	require.Equal(t, http.StatusOK, listRec.Code)
	var list []keystore.Record
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestUploadRecordsSubject(t *testing.T) {
	upload := UploadAnswerKeyHandler(keystore.NewSQLStore(openDB(t)), NewEngine(nil, nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/answer-keys?name=v1", strings.NewReader(`{"Q": "R"}`))
	req = req.WithContext(auth.WithSubject(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	upload(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stored keystore.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, "alice", stored.UploadedBy)
}

func TestUploadQTIPackage(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	item := `<assessmentItem identifier="q1">
  <responseDeclaration identifier="RESPONSE" cardinality="single"><correctResponse><value>A</value></correctResponse></responseDeclaration>
  <itemBody><choiceInteraction responseIdentifier="RESPONSE"><prompt>Type de (1, 2) ?</prompt>
    <simpleChoice identifier="A">tuple</simpleChoice><simpleChoice identifier="B">liste</simpleChoice>
  </choiceInteraction></itemBody>
</assessmentItem>`
	files := map[string]string{
		"imsmanifest.xml": `<manifest><resources><resource identifier="q1" href="q1.xml"/></resources></manifest>`,
		"q1.xml":          item,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	eng := NewEngine(nil, nil)
	upload := UploadAnswerKeyHandler(keystore.NewSQLStore(openDB(t)), eng, nil)
	req := httptest.NewRequest(http.MethodPost, "/answer-keys?name=qti", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()
	upload(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := post(t, ResolveHandler(eng, nil, nil, nil), "/resolve", `{"text": "Type de (1, 2) ?"}`)
	assert.JSONEq(t, `{"answer": "tuple", "source": "answer_key"}`, res.Body.String())

	bad := post(t, upload, "/answer-keys?format=qti", "not a zip")
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
}

func TestObservationHandlers(t *testing.T) {
	conn := openDB(t)
	repo := observe.NewRepo(conn)
	eng := NewEngine(nil, nil)
	resolve := ResolveHandler(eng, nil, repo, nil)
	for _, body := range []string{
		`{"text": "\"abc\"[1]"}`,
		`{"text": "rien"}`,
		`{"text": "rien"}`,
	} {
		require.Equal(t, http.StatusOK, post(t, resolve, "/resolve", body).Code)
	}

	rec := httptest.NewRecorder()
	ListObservationsHandler(repo)(rec, httptest.NewRequest(http.MethodGet, "/observations?source=str_index&limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []observe.Observation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, `"abc"[1]`, list[0].Text)

	rec = httptest.NewRecorder()
	UnansweredHandler(repo)(rec, httptest.NewRequest(http.MethodGet, "/observations/unanswered", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["rien"]`, rec.Body.String())

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	rec = post(t, ExportObservationsHandler(repo, blobs), "/observations/export", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var out struct {
		Key   string `json:"key"`
		URL   string `json:"url"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Count)
	assert.True(t, strings.HasPrefix(out.Key, "observations/"))
}

func TestEngineInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	EngineInfoHandler(NewEngine(nil, nil))(rec, httptest.NewRequest(http.MethodGet, "/engine", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info struct {
		Entries     int      `json:"entries"`
		Recognizers []string `json:"recognizers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 0, info.Entries)
	assert.Len(t, info.Recognizers, 16)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, parseIntDefault("", 5))
	assert.Equal(t, 7, parseIntDefault("7", 5))
	assert.Equal(t, 5, parseIntDefault("-1", 5))
	assert.Equal(t, 5, parseIntDefault("x", 5))
}

package session_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/dto"
	"github.com/dinehall/dinehall/internal/messaging"
	sessionrepo "github.com/dinehall/dinehall/internal/repository/session"
	service "github.com/dinehall/dinehall/internal/service/session"
	transport "github.com/dinehall/dinehall/internal/transport/http/session"
)

var testDBSeq atomic.Int64

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:sessionhttp%d?mode=memory&cache=shared", testDBSeq.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	schema := []string{
		`CREATE TABLE tables_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_id INTEGER NOT NULL,
			opened_at TIMESTAMP NOT NULL,
			closed_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX tables_sessions_one_open_per_table
			ON tables_sessions (table_id)
			WHERE closed_at IS NULL`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	svc := service.NewService(service.Params{
		Repository: sessionrepo.NewRepository(&database.Connections{Writer: db, Reader: db}),
		Config:     config.Config{},
		Logger:     zap.NewNop(),
		Publisher:  messaging.NewNoop("pos.events"),
	})

	e := echo.New()
	transport.Register(e, transport.NewHandler(svc))
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type sessionEnvelope struct {
	Success bool                `json:"success"`
	Data    dto.SessionResponse `json:"data"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestOpenSession(t *testing.T) {
	e := newServer(t)

	rec := doJSON(t, e, http.MethodPost, "/sessions", `{"table_id": 4}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NotZero(t, envelope.Data.ID)
	require.EqualValues(t, 4, envelope.Data.TableID)
	require.Nil(t, envelope.Data.ClosedAt)
}

func TestOpenSessionOccupiedTable(t *testing.T) {
	e := newServer(t)

	rec := doJSON(t, e, http.MethodPost, "/sessions", `{"table_id": 4}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/sessions", `{"table_id": 4}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.Equal(t, "conflict", envelope.Error.Kind)
	require.Equal(t, "table already has an open session", envelope.Error.Message)
}

func TestOpenSessionInvalidTableID(t *testing.T) {
	e := newServer(t)

	for _, body := range []string{`{"table_id": 0}`, `{"table_id": -2}`, `{}`} {
		rec := doJSON(t, e, http.MethodPost, "/sessions", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestCloseSession(t *testing.T) {
	e := newServer(t)

	rec := doJSON(t, e, http.MethodPost, "/sessions", `{"table_id": 7}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened sessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))

	path := fmt.Sprintf("/sessions/%d", opened.Data.ID)
	rec = doJSON(t, e, http.MethodPatch, path, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPatch, path, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "session already closed", envelope.Error.Message)
}

func TestCloseSessionMissing(t *testing.T) {
	e := newServer(t)

	rec := doJSON(t, e, http.MethodPatch, "/sessions/321", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodPatch, "/sessions/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessions(t *testing.T) {
	e := newServer(t)

	for _, body := range []string{`{"table_id": 1}`, `{"table_id": 2}`} {
		rec := doJSON(t, e, http.MethodPost, "/sessions", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, e, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool                  `json:"success"`
		Data    []dto.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.Len(t, envelope.Data, 2)
}

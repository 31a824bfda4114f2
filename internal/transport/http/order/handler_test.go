package order_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/cache"
	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/dto"
	"github.com/dinehall/dinehall/internal/messaging"
	orderrepo "github.com/dinehall/dinehall/internal/repository/order"
	productrepo "github.com/dinehall/dinehall/internal/repository/product"
	sessionrepo "github.com/dinehall/dinehall/internal/repository/session"
	ordersvc "github.com/dinehall/dinehall/internal/service/order"
	productsvc "github.com/dinehall/dinehall/internal/service/product"
	sessionsvc "github.com/dinehall/dinehall/internal/service/session"
	transport "github.com/dinehall/dinehall/internal/transport/http/order"
)

var testDBSeq atomic.Int64

type server struct {
	echo     *echo.Echo
	sessions *sessionsvc.Service
	products *productsvc.Service
}

func newServer(t *testing.T) *server {
	t.Helper()

	dsn := fmt.Sprintf("file:orderhttp%d?mode=memory&cache=shared", testDBSeq.Add(1))
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
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			price DECIMAL(10,2) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_session_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	conns := &database.Connections{Writer: db, Reader: db}
	cfg := config.Config{}
	logger := zap.NewNop()
	publisher := messaging.NewNoop("pos.events")

	sessions := sessionsvc.NewService(sessionsvc.Params{
		Repository: sessionrepo.NewRepository(conns),
		Config:     cfg,
		Logger:     logger,
		Publisher:  publisher,
	})
	products := productsvc.NewService(productsvc.Params{
		Repository: productrepo.NewRepository(conns),
		Cache:      cache.NoopStore{},
		Config:     cfg,
		Logger:     logger,
	})
	orders := ordersvc.NewService(ordersvc.Params{
		Repository: orderrepo.NewRepository(conns),
		Sessions:   sessions,
		Products:   products,
		Config:     cfg,
		Logger:     logger,
		Publisher:  publisher,
	})

	e := echo.New()
	transport.Register(e, transport.NewHandler(orders))
	return &server{echo: e, sessions: sessions, products: products}
}

func (s *server) seed(t *testing.T) (sessionID, productID int64) {
	t.Helper()
	session, err := s.sessions.Open(context.Background(), 1)
	require.NoError(t, err)
	product, err := s.products.Create(context.Background(), "Espresso", decimal.RequireFromString("3.50"))
	require.NoError(t, err)
	return session.ID, product.ID
}

func (s *server) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestCreateOrder(t *testing.T) {
	s := newServer(t)
	sessionID, productID := s.seed(t)

	body := fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": 2}`, sessionID, productID)
	rec := s.doJSON(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.doJSON(t, http.MethodGet, fmt.Sprintf("/orders/table-session/%d", sessionID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool                    `json:"success"`
		Data    []dto.OrderItemResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Espresso", envelope.Data[0].Name)
	require.True(t, envelope.Data[0].Price.Equal(decimal.RequireFromString("3.50")))
	require.True(t, envelope.Data[0].Total.Equal(decimal.RequireFromString("7.00")))
}

func TestCreateOrderValidation(t *testing.T) {
	s := newServer(t)
	sessionID, productID := s.seed(t)

	bodies := []string{
		fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": 0}`, sessionID, productID),
		fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": -1}`, sessionID, productID),
		fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": "two"}`, sessionID, productID),
		fmt.Sprintf(`{"product_id": %d, "quantity": 1}`, productID),
		fmt.Sprintf(`{"table_session_id": %d, "quantity": 1}`, sessionID),
	}
	for _, body := range bodies {
		rec := s.doJSON(t, http.MethodPost, "/orders", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestCreateOrderMissingProduct(t *testing.T) {
	s := newServer(t)
	sessionID, _ := s.seed(t)

	body := fmt.Sprintf(`{"table_session_id": %d, "product_id": 999, "quantity": 1}`, sessionID)
	rec := s.doJSON(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "product not found", envelope.Error.Message)
}

func TestCreateOrderMissingSession(t *testing.T) {
	s := newServer(t)
	_, productID := s.seed(t)

	body := fmt.Sprintf(`{"table_session_id": 999, "product_id": %d, "quantity": 1}`, productID)
	rec := s.doJSON(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "session table not found", envelope.Error.Message)
}

func TestCreateOrderClosedSession(t *testing.T) {
	s := newServer(t)
	sessionID, productID := s.seed(t)
	require.NoError(t, s.sessions.Close(context.Background(), sessionID))

	body := fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": 1}`, sessionID, productID)
	rec := s.doJSON(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "this session table is already closed", envelope.Error.Message)
}

func TestSummarize(t *testing.T) {
	s := newServer(t)
	sessionID, productID := s.seed(t)

	pizza, err := s.products.Create(context.Background(), "Margherita", decimal.RequireFromString("10.00"))
	require.NoError(t, err)

	for _, body := range []string{
		fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": 1}`, sessionID, productID),
		fmt.Sprintf(`{"table_session_id": %d, "product_id": %d, "quantity": 2}`, sessionID, pizza.ID),
	} {
		rec := s.doJSON(t, http.MethodPost, "/orders", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.doJSON(t, http.MethodGet, fmt.Sprintf("/orders/table-session/%d/summary", sessionID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool                     `json:"success"`
		Data    dto.OrderSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.True(t, envelope.Data.Total.Equal(decimal.RequireFromString("23.50")),
		"total = %s", envelope.Data.Total)
	require.EqualValues(t, 3, envelope.Data.Quantity)
}

func TestSummarizeEmptySession(t *testing.T) {
	s := newServer(t)
	sessionID, _ := s.seed(t)

	rec := s.doJSON(t, http.MethodGet, fmt.Sprintf("/orders/table-session/%d/summary", sessionID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data dto.OrderSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.Total.IsZero())
	require.Zero(t, envelope.Data.Quantity)
}

func TestListBySessionBadID(t *testing.T) {
	s := newServer(t)

	rec := s.doJSON(t, http.MethodGet, "/orders/table-session/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

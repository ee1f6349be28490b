package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Origin-Inc/e-invoicing-backend/internal/audit"
	"github.com/Origin-Inc/e-invoicing-backend/internal/client/repository"
	clientsvc "github.com/Origin-Inc/e-invoicing-backend/internal/client/service"
	"github.com/Origin-Inc/e-invoicing-backend/internal/clock"
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/Origin-Inc/e-invoicing-backend/internal/dashboard"
	"github.com/Origin-Inc/e-invoicing-backend/internal/events"
	invoicerepo "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/repository"
	invoicesvc "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/service"
	"github.com/Origin-Inc/e-invoicing-backend/internal/ledger"
	"github.com/Origin-Inc/e-invoicing-backend/internal/migration"
	paymentrepo "github.com/Origin-Inc/e-invoicing-backend/internal/payment/repository"
	paymentsvc "github.com/Origin-Inc/e-invoicing-backend/internal/payment/service"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db, zap.NewNop()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fixed := clock.Fixed{At: testNow}
	log := zap.NewNop()
	outbox := events.NewOutbox(events.Params{GenID: node})
	invRepo := invoicerepo.Provide()
	clientRepo := repository.Provide()

	clients := clientsvc.NewService(clientsvc.Params{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: clientRepo,
	})
	books := ledger.NewRecorder(ledger.Params{GenID: node})
	invoices := invoicesvc.NewService(invoicesvc.Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo: invRepo, Clients: clientRepo, Ledger: books, Outbox: outbox,
	})
	payments := paymentsvc.NewService(paymentsvc.Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo:     paymentrepo.Provide(),
		Invoices: invRepo,
		Ledger:   books,
		Audit:    audit.NewRecorder(audit.Params{GenID: node}),
		Outbox:   outbox,
	})
	stats := dashboard.NewService(dashboard.Params{DB: db, Log: log, Clock: fixed})

	srv := NewServer(Params{
		Config:       config.Config{RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute}},
		Log:          log,
		DB:           db,
		ClientSvc:    clients,
		InvoiceSvc:   invoices,
		PaymentSvc:   payments,
		DashboardSvc: stats,
	})
	return srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createClient(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/clients", map[string]any{
		"name":  "Acme Corp",
		"email": fmt.Sprintf("%s@acme.example", t.Name()),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	return data["id"].(string)
}

func createInvoice(t *testing.T, r *gin.Engine, clientID string) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId":   clientID,
		"issue_date": "2025-06-01",
		"due_date":   "2025-07-01",
		"items": []map[string]any{
			{"description": "Design work", "quantity": 2, "rate": 5000, "amount": 10000},
			{"description": "Review", "quantity": 1, "rate": 2500, "amount": 2500},
		},
		"subtotal":    12500,
		"taxRate":     1000,
		"totalAmount": 13750,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeEnvelope(t, w)["data"].(map[string]any)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Services["database"])
	assert.NotContains(t, resp.Services, "redis")
}

func TestClientCRUDOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	id := createClient(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/clients/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env["success"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/clients?search=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	clientID := createClient(t, r)
	inv := createInvoice(t, r, clientID)
	invID := inv["id"].(string)

	assert.Equal(t, "draft", inv["status"])
	assert.Equal(t, float64(13750), inv["totalAmount"])

	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices/"+invID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "sent", data["status"])
}

func TestInvoiceTotalMismatchEnvelope(t *testing.T) {
	r := newTestRouter(t)
	clientID := createClient(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId":   clientID,
		"issue_date": "2025-06-01",
		"due_date":   "2025-07-01",
		"items": []map[string]any{
			{"description": "Work", "quantity": 1, "rate": 12500, "amount": 12500},
		},
		"subtotal":    12500,
		"taxRate":     1000,
		"totalAmount": 14000,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "totalAmount", resp.Details["field"])
	assert.Equal(t, "137.50", resp.Details["expected"])
	assert.Equal(t, "140.00", resp.Details["actual"])
	assert.False(t, resp.Timestamp.IsZero())
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	clientID := createClient(t, r)
	inv := createInvoice(t, r, clientID)
	invID := inv["id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices/"+invID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoiceId":    invID,
		"amount":       13750,
		"payment_date": "2025-06-15",
		"method":       "bank_transfer",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	payment := decodeEnvelope(t, w)["data"].(map[string]any)
	paymentID := payment["id"].(string)
	assert.Equal(t, "pending", payment["status"])

	w = doJSON(t, r, http.MethodPatch, "/api/v1/payments/"+paymentID+"/status", map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/invoices/"+invID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "paid", data["status"])
	assert.Equal(t, float64(13750), data["settledAmount"])
}

func TestPaymentAgainstMissingInvoice(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoiceId":    "424242424242",
		"amount":       100,
		"payment_date": "2025-06-15",
		"method":       "cash",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "payment_invoice_not_found", resp.Message)
}

func TestDashboardStatsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	clientID := createClient(t, r)
	createInvoice(t, r, clientID)

	w := doJSON(t, r, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	invoices := data["invoices"].(map[string]any)
	assert.Equal(t, float64(1), invoices["total_count"])
}

func TestRateLimitExceeded(t *testing.T) {
	r := newTestRouterWithLimit(t, 2)

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodGet, "/api/v1/clients", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, r, http.MethodGet, "/api/v1/clients", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func newTestRouterWithLimit(t *testing.T, limit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db, zap.NewNop()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clients := clientsvc.NewService(clientsvc.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clock.Fixed{At: testNow}, Repo: repository.Provide(),
	})

	srv := NewServer(Params{
		Config:    config.Config{RateLimit: config.RateLimitConfig{Requests: limit, Window: time.Minute}},
		Log:       zap.NewNop(),
		DB:        db,
		ClientSvc: clients,
	})
	return srv.Router()
}

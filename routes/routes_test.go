package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobsbreeze-backend/config"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.BcryptCost = bcrypt.MinCost

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		JWT:            config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
	}
	notifications := services.NewNotificationService(db, nil, nil)
	invoices := services.NewInvoiceService(db, nil)
	estimates := services.NewEstimateService(db, invoices, notifications, nil)

	return &testApp{
		router: SetupRouter(Deps{
			Config:        cfg,
			DB:            db,
			Estimates:     estimates,
			Invoices:      invoices,
			Notifications: notifications,
		}),
		db: db,
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d got %d body=%s", want, rr.Code, rr.Body.String())
	}
}

// register signs up a contractor and returns the bearer token.
func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email":        email,
		"password":     "hammer123",
		"name":         "Sam Builder",
		"businessName": "Builder Co",
	})
	expectStatus(t, rr, http.StatusCreated)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rr, &resp)
	return resp.Token
}

func (a *testApp) createClient(t *testing.T, token, email string) models.Client {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/clients", token, gin.H{"name": "Jane Doe", "email": email, "phone": "+15551234567"})
	expectStatus(t, rr, http.StatusCreated)
	var client models.Client
	decode(t, rr, &client)
	return client
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t)
	expectStatus(t, app.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)

	rr := app.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Errorf("metrics output missing request counter")
	}
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	rr := app.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email": "weak@example.com", "password": "short", "name": "W", "businessName": "W Co",
	})
	expectStatus(t, rr, http.StatusBadRequest)

	token := app.register(t, "sam@example.com")
	expectStatus(t, app.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email": "sam@example.com", "password": "hammer123", "name": "Dup", "businessName": "Dup",
	}), http.StatusConflict)

	rr = app.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "SAM@example.com", "password": "hammer123"})
	expectStatus(t, rr, http.StatusOK)
	expectStatus(t, app.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "sam@example.com", "password": "wrong1234"}), http.StatusUnauthorized)

	rr = app.do(t, http.MethodGet, "/auth/me", token, nil)
	expectStatus(t, rr, http.StatusOK)
	var me struct {
		User models.User `json:"user"`
	}
	decode(t, rr, &me)
	if me.User.Profile.Name != "Builder Co" || me.User.Profile.EstimateValidityDays != 30 {
		t.Errorf("profile = %+v", me.User.Profile)
	}

	expectStatus(t, app.do(t, http.MethodGet, "/api/estimates", "", nil), http.StatusUnauthorized)
	expectStatus(t, app.do(t, http.MethodGet, "/api/estimates", "not-a-token", nil), http.StatusUnauthorized)
}

func TestEstimateToInvoiceFlow(t *testing.T) {
	app := setupApp(t)
	token := app.register(t, "flow@example.com")
	client := app.createClient(t, token, "jane@example.com")

	rr := app.do(t, http.MethodPut, "/api/profile", token, gin.H{"defaultTaxRate": 10})
	expectStatus(t, rr, http.StatusOK)

	rr = app.do(t, http.MethodPost, "/api/items", token, gin.H{"name": "Nails", "category": "materials", "price": 25})
	expectStatus(t, rr, http.StatusCreated)
	var item models.Item
	decode(t, rr, &item)

	rr = app.do(t, http.MethodPost, "/api/estimates", token, gin.H{
		"clientId": client.ID,
		"lineItems": []gin.H{
			{"description": "Framing labor", "quantity": 2, "unitPrice": 50},
			{"itemId": item.ID, "quantity": 1},
		},
	})
	expectStatus(t, rr, http.StatusCreated)
	var est models.Estimate
	decode(t, rr, &est)
	if est.Subtotal != 125 || est.Amount != 137.5 || !est.IsDraft {
		t.Fatalf("created estimate = %+v", est.Totals())
	}

	var framing models.LineItem
	for _, l := range est.LineItems {
		if l.Description == "Framing labor" {
			framing = l
		}
	}
	rr = app.do(t, http.MethodPut, fmt.Sprintf("/api/estimates/%s/line-items/%s", est.ID, framing.ID), token, gin.H{"quantity": 3})
	expectStatus(t, rr, http.StatusOK)
	var edited models.Estimate
	decode(t, rr, &edited)
	if edited.Subtotal != 175 {
		t.Errorf("subtotal after edit = %v, want 175", edited.Subtotal)
	}

	expectStatus(t, app.do(t, http.MethodPut, "/api/estimates/"+est.ID.String()+"/status", token, gin.H{"status": "APPROVED"}), http.StatusConflict)
	expectStatus(t, app.do(t, http.MethodPost, "/api/estimates/"+est.ID.String()+"/finalize", token, nil), http.StatusOK)
	expectStatus(t, app.do(t, http.MethodPost, "/api/estimates/"+est.ID.String()+"/line-items", token, gin.H{
		"description": "Late add", "quantity": 1, "unitPrice": 5,
	}), http.StatusConflict)
	expectStatus(t, app.do(t, http.MethodPost, "/api/estimates/"+est.ID.String()+"/convert", token, nil), http.StatusConflict)
	expectStatus(t, app.do(t, http.MethodPut, "/api/estimates/"+est.ID.String()+"/status", token, gin.H{"status": "APPROVED"}), http.StatusOK)

	rr = app.do(t, http.MethodPost, "/api/estimates/"+est.ID.String()+"/convert", token, nil)
	expectStatus(t, rr, http.StatusCreated)
	var invoice models.Invoice
	decode(t, rr, &invoice)
	if invoice.Total != edited.Amount {
		t.Errorf("invoice total %v, estimate amount %v", invoice.Total, edited.Amount)
	}
	expectStatus(t, app.do(t, http.MethodPost, "/api/estimates/"+est.ID.String()+"/convert", token, nil), http.StatusOK)

	rr = app.do(t, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", token, gin.H{"amount": invoice.Total, "paymentMethod": "card"})
	expectStatus(t, rr, http.StatusOK)
	var paid models.Invoice
	decode(t, rr, &paid)
	if paid.PaymentStatus != "PAID" {
		t.Errorf("payment status = %s", paid.PaymentStatus)
	}

	rr = app.do(t, http.MethodGet, "/api/dashboard", token, nil)
	expectStatus(t, rr, http.StatusOK)
	var dash struct {
		TotalClients   int `json:"totalClients"`
		EstimateCounts struct {
			Approved int `json:"approved"`
		} `json:"estimateCounts"`
		ApprovedValue float64 `json:"approvedValue"`
	}
	decode(t, rr, &dash)
	if dash.TotalClients != 1 || dash.EstimateCounts.Approved != 1 || dash.ApprovedValue != 192.5 {
		t.Errorf("dashboard = %+v", dash)
	}

	rr = app.do(t, http.MethodGet, "/api/reports", token, nil)
	expectStatus(t, rr, http.StatusOK)
	var report struct {
		ApprovalRate float64 `json:"approvalRate"`
		TopClients   []struct {
			Name string `json:"name"`
		} `json:"topClients"`
	}
	decode(t, rr, &report)
	if report.ApprovalRate != 100 || len(report.TopClients) != 1 {
		t.Errorf("report = %+v", report)
	}

	rr = app.do(t, http.MethodGet, "/api/notifications", token, nil)
	expectStatus(t, rr, http.StatusOK)
	var logs []models.NotificationLog
	decode(t, rr, &logs)
	if len(logs) != 1 || logs[0].Status != models.NotificationSkipped {
		t.Errorf("notifications = %+v", logs)
	}
}

func TestEstimateValidationErrors(t *testing.T) {
	app := setupApp(t)
	token := app.register(t, "v@example.com")
	client := app.createClient(t, token, "c@example.com")

	rr := app.do(t, http.MethodPost, "/api/estimates", token, gin.H{
		"clientId":  client.ID,
		"lineItems": []gin.H{{"description": "Paint", "quantity": 0, "unitPrice": 10}},
	})
	expectStatus(t, rr, http.StatusBadRequest)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rr, &resp)
	if resp.Fields["lineItems[0].quantity"] != "Quantity must be greater than 0" {
		t.Errorf("fields = %v", resp.Fields)
	}

	rr = app.do(t, http.MethodPost, "/api/estimates/preview", token, gin.H{
		"taxRate":   8.25,
		"lineItems": []gin.H{{"description": "Tile", "quantity": 4, "unitPrice": 250}},
	})
	expectStatus(t, rr, http.StatusOK)
	var preview struct {
		Total     float64 `json:"total"`
		Formatted struct {
			Total string `json:"total"`
		} `json:"formatted"`
	}
	decode(t, rr, &preview)
	if preview.Total != 1082.5 || preview.Formatted.Total != "1,082.50" {
		t.Errorf("preview = %+v", preview)
	}

	expectStatus(t, app.do(t, http.MethodGet, "/api/estimates/not-a-uuid", token, nil), http.StatusBadRequest)
	expectStatus(t, app.do(t, http.MethodGet, "/api/estimates/"+client.ID.String(), token, nil), http.StatusNotFound)
}

func TestClientsAreScopedAndCascade(t *testing.T) {
	app := setupApp(t)
	owner := app.register(t, "owner@example.com")
	other := app.register(t, "other@example.com")
	client := app.createClient(t, owner, "jane@example.com")

	expectStatus(t, app.do(t, http.MethodPost, "/api/clients", owner, gin.H{"name": "Jane again", "email": "jane@example.com"}), http.StatusConflict)
	app.createClient(t, other, "jane@example.com")
	expectStatus(t, app.do(t, http.MethodGet, "/api/clients/"+client.ID.String(), other, nil), http.StatusNotFound)

	rr := app.do(t, http.MethodPost, "/api/estimates", owner, gin.H{
		"clientId":  client.ID,
		"lineItems": []gin.H{{"description": "Deck", "quantity": 1, "unitPrice": 800}},
	})
	expectStatus(t, rr, http.StatusCreated)

	expectStatus(t, app.do(t, http.MethodDelete, "/api/clients/"+client.ID.String(), owner, nil), http.StatusOK)

	var estimates, lines int64
	app.db.Model(&models.Estimate{}).Where("client_id = ?", client.ID).Count(&estimates)
	app.db.Model(&models.LineItem{}).Count(&lines)
	if estimates != 0 || lines != 0 {
		t.Errorf("cascade left %d estimates and %d line items", estimates, lines)
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"jobsbreeze-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	owner  uuid.UUID
	client models.Client
}

// seedOwner creates a contractor with a 10% default tax rate and one client.
func seedOwner(t *testing.T, db *gorm.DB, clientPhone string) fixture {
	t.Helper()
	user := models.User{Email: "owner-" + uuid.NewString() + "@example.com", Password: "x", Name: "Owner", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := models.BusinessProfile{
		UserID:               user.ID,
		Name:                 "Acme Builders",
		DefaultTaxRate:       10,
		DefaultTerms:         "Net 30",
		EstimateValidityDays: 30,
		SMSNotifications:     true,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	client := models.Client{UserID: user.ID, Name: "Jane Doe", Email: "jane@example.com", Phone: clientPhone}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return fixture{owner: user.ID, client: client}
}

func price(v float64) *float64 { return &v }

func standardLines() []LineItemInput {
	return []LineItemInput{
		{Description: "Framing labor", Quantity: 2, UnitPrice: price(50)},
		{Description: "Nails", Quantity: 1, UnitPrice: price(25)},
	}
}

type fakeSender struct {
	mu   sync.Mutex
	to   []string
	body []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.body = append(f.body, body)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("SM%03d", len(f.to)), nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.to)
}

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) NotifyEstimateSent(_ context.Context, e *models.Estimate, _ *models.Client) error {
	r.sent = append(r.sent, e.EstimateID)
	return nil
}

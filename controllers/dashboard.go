package controllers

import (
	"net/http"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DashboardOverview struct {
	TotalClients     int                `json:"totalClients"`
	EstimateCounts   StageCounts        `json:"estimateCounts"`
	PendingValue     float64            `json:"pendingValue"`
	ApprovedValue    float64            `json:"approvedValue"`
	OutstandingValue float64            `json:"outstandingValue"`
	RecentEstimates  []RecentEstimate   `json:"recentEstimates"`
	ExpiringSoon     []RecentEstimate   `json:"expiringSoon"`
	EstimatesByMonth []MonthlyEstimates `json:"estimatesByMonth"` // last six months, newest first
}

type StageCounts struct {
	Draft    int `json:"draft"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type RecentEstimate struct {
	ID         uuid.UUID `json:"id"`
	EstimateID string    `json:"estimateId"`
	ClientName string    `json:"clientName"`
	Stage      string    `json:"stage"`
	Amount     string    `json:"amount"` // formatted, e.g. "1,234.50"
	Date       string    `json:"date"`   // e.g. "Today", "3 days ago"
}

type DashboardController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	db := dc.DB.WithContext(c.Request.Context())
	now := time.Now()

	var overview DashboardOverview

	var totalClients int64
	if err := db.Model(&models.Client{}).Where("user_id = ?", owner).Count(&totalClients).Error; err != nil {
		respondServiceError(c, dc.Log, err, "")
		return
	}
	overview.TotalClients = int(totalClients)

	var estimates []models.Estimate
	if err := db.Preload("Client").Where("user_id = ?", owner).
		Order("date DESC").Order("created_at DESC").Find(&estimates).Error; err != nil {
		respondServiceError(c, dc.Log, err, "")
		return
	}

	horizon := utils.EndOfDay(now.AddDate(0, 0, 7))
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	var recent []models.Estimate
	for i := range estimates {
		e := &estimates[i]
		switch e.Stage() {
		case models.StageDraft:
			overview.EstimateCounts.Draft++
		case models.StagePending:
			overview.EstimateCounts.Pending++
			overview.PendingValue += e.Amount
			if e.ExpiryDate != nil && !e.ExpiryDate.Before(now) && e.ExpiryDate.Before(horizon) {
				overview.ExpiringSoon = append(overview.ExpiringSoon, summarize(e, now))
			}
		case models.StageApproved:
			overview.EstimateCounts.Approved++
			overview.ApprovedValue += e.Amount
		case models.StageRejected:
			overview.EstimateCounts.Rejected++
		}
		if i < 5 {
			overview.RecentEstimates = append(overview.RecentEstimates, summarize(e, now))
		}
		if !e.Date.Before(since) {
			recent = append(recent, *e)
		}
	}
	overview.EstimatesByMonth, _ = monthlyEstimates(recent)
	overview.PendingValue = calculator.RoundMoney(overview.PendingValue)
	overview.ApprovedValue = calculator.RoundMoney(overview.ApprovedValue)

	var outstanding float64
	if err := db.Model(&models.Invoice{}).
		Where("user_id = ? AND payment_status <> ?", owner, calculator.PaymentPaid).
		Select("COALESCE(SUM(total - paid_amount), 0)").Scan(&outstanding).Error; err != nil {
		respondServiceError(c, dc.Log, err, "")
		return
	}
	overview.OutstandingValue = calculator.RoundMoney(outstanding)

	c.JSON(http.StatusOK, overview)
}

func summarize(e *models.Estimate, now time.Time) RecentEstimate {
	r := RecentEstimate{
		ID:         e.ID,
		EstimateID: e.EstimateID,
		Stage:      string(e.Stage()),
		Amount:     calculator.FormatMoney(e.Amount),
		Date:       relativeDay(now, e.Date),
	}
	if e.Client != nil {
		r.ClientName = e.Client.Name
	}
	return r
}

// relativeDay renders d as "Today", "Yesterday", "Tomorrow" or "N days ago" / "in N days".
func relativeDay(now, d time.Time) string {
	days := utils.DaysBetween(now, d)
	switch {
	case days == 0:
		return "Today"
	case days == -1:
		return "Yesterday"
	case days == 1:
		return "Tomorrow"
	default:
		return utils.DaysLabel(days)
	}
}

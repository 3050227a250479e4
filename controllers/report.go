package controllers

import (
	"net/http"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportController handles all reporting functions
type ReportController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthInvoiced   float64            `json:"currentMonthInvoiced"`
	MonthGrowth            float64            `json:"monthGrowth"`
	CurrentQuarterInvoiced float64            `json:"currentQuarterInvoiced"`
	QuarterGrowth          float64            `json:"quarterGrowth"`
	CurrentYearInvoiced    float64            `json:"currentYearInvoiced"`
	YearGrowth             float64            `json:"yearGrowth"`
	ApprovalRate           float64            `json:"approvalRate"` // approved / (approved + rejected), percent
	TopClients             []ClientSummary    `json:"topClients"`
	TopLineItems           []LineItemSummary  `json:"topLineItems"`
	EstimatesByMonth       []MonthlyEstimates `json:"estimatesByMonth"`
}

type ClientSummary struct {
	Name      string  `json:"name"`
	Invoices  int     `json:"invoices"`
	Invoiced  float64 `json:"invoiced"`
	Collected float64 `json:"collected"`
}

type LineItemSummary struct {
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Revenue     float64 `json:"revenue"`
}

// MonthlyEstimates is one month of estimate activity, without the estimates themselves.
type MonthlyEstimates struct {
	Month    string  `json:"month"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Approved int     `json:"approved"`
}

// GetReportAnalytics returns invoicing growth and estimate conversion figures
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	db := rc.DB.WithContext(c.Request.Context())
	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	loc := now.Location()
	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, loc)
	endOfMonth := firstOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)

	ranges := []struct {
		start, end time.Time
	}{
		{firstOfMonth, endOfMonth},
		{firstOfMonth.AddDate(0, -1, 0), firstOfMonth.Add(-time.Nanosecond)},
		{rc.getQuarterStart(now), rc.getQuarterStart(now).AddDate(0, 3, 0).Add(-time.Nanosecond)},
		{rc.getQuarterStart(now).AddDate(0, -3, 0), rc.getQuarterStart(now).Add(-time.Nanosecond)},
		{time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc), time.Date(currentYear+1, 1, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)},
		{time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, loc), time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)},
	}
	totals := make([]float64, len(ranges))
	for i, r := range ranges {
		v, err := rc.getInvoiced(db, owner, r.start, r.end)
		if err != nil {
			respondServiceError(c, rc.Log, err, "")
			return
		}
		totals[i] = v
	}

	summary := AnalyticsSummary{
		CurrentMonthInvoiced:   totals[0],
		MonthGrowth:            rc.calculateGrowthPercentage(totals[0], totals[1]),
		CurrentQuarterInvoiced: totals[2],
		QuarterGrowth:          rc.calculateGrowthPercentage(totals[2], totals[3]),
		CurrentYearInvoiced:    totals[4],
		YearGrowth:             rc.calculateGrowthPercentage(totals[4], totals[5]),
	}

	var err error
	if summary.TopClients, err = rc.getTopClients(db, owner, 5); err != nil {
		respondServiceError(c, rc.Log, err, "")
		return
	}
	if summary.TopLineItems, err = rc.getTopLineItems(db, owner, 5); err != nil {
		respondServiceError(c, rc.Log, err, "")
		return
	}

	var estimates []models.Estimate
	if err := db.Where("user_id = ? AND date >= ?", owner, firstOfMonth.AddDate(-1, 0, 0)).
		Order("date DESC").Find(&estimates).Error; err != nil {
		respondServiceError(c, rc.Log, err, "")
		return
	}
	summary.EstimatesByMonth, summary.ApprovalRate = monthlyEstimates(estimates)

	c.JSON(http.StatusOK, summary)
}

// monthlyEstimates buckets estimates by month and computes the approval rate over
// decided estimates.
func monthlyEstimates(estimates []models.Estimate) ([]MonthlyEstimates, float64) {
	groups := calculator.GroupByMonth(estimates,
		func(e models.Estimate) time.Time { return e.Date },
		func(e models.Estimate) float64 { return e.Amount })

	var approved, decided int
	months := make([]MonthlyEstimates, 0, len(groups))
	for _, g := range groups {
		m := MonthlyEstimates{Month: g.Month, Label: g.Label, Count: g.Count, Total: calculator.RoundMoney(g.Total)}
		for i := range g.Entries {
			switch g.Entries[i].Stage() {
			case models.StageApproved:
				m.Approved++
				approved++
				decided++
			case models.StageRejected:
				decided++
			}
		}
		months = append(months, m)
	}

	rate := 0.0
	if decided > 0 {
		rate = calculator.RoundMoney(float64(approved) / float64(decided) * 100)
	}
	return months, rate
}

// Helper functions for reports

func (rc *ReportController) getInvoiced(db *gorm.DB, owner uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := db.Model(&models.Invoice{}).
		Where("user_id = ? AND invoice_date BETWEEN ? AND ?", owner, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return calculator.RoundMoney((current - previous) / previous * 100)
}

func (rc *ReportController) getTopClients(db *gorm.DB, owner uuid.UUID, limit int) ([]ClientSummary, error) {
	var clients []ClientSummary
	err := db.Table("invoices").
		Select("clients.name, COUNT(invoices.id) as invoices, SUM(invoices.total) as invoiced, SUM(invoices.paid_amount) as collected").
		Joins("JOIN clients ON clients.id = invoices.client_id").
		Where("invoices.user_id = ?", owner).
		Group("clients.id, clients.name").
		Order("invoiced DESC").
		Limit(limit).
		Scan(&clients).Error
	return clients, err
}

// getTopLineItems ranks line descriptions across approved estimates.
func (rc *ReportController) getTopLineItems(db *gorm.DB, owner uuid.UUID, limit int) ([]LineItemSummary, error) {
	var items []LineItemSummary
	err := db.Table("line_items").
		Select("line_items.description, COUNT(line_items.id) as count, SUM(line_items.amount) as revenue").
		Joins("JOIN estimates ON estimates.id = line_items.estimate_id").
		Where("estimates.user_id = ? AND estimates.is_draft = ? AND estimates.status = ?", owner, false, models.StatusApproved).
		Group("line_items.description").
		Order("revenue DESC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

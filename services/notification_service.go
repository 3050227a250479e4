package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobsbreeze-backend/calculator"
	"jobsbreeze-backend/config"
	"jobsbreeze-backend/models"
	"jobsbreeze-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const channelSMS = "sms"

// MessageSender delivers a text message and returns the provider message id.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.FromNumber,
	}
}

func (t *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// NotificationService texts clients about their estimates and keeps a log of every
// attempt. A nil sender records attempts as skipped.
type NotificationService struct {
	db     *gorm.DB
	sender MessageSender
	log    *zap.Logger
}

func NewNotificationService(db *gorm.DB, sender MessageSender, log *zap.Logger) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{db: db, sender: sender, log: log}
}

// NotifyEstimateSent tells the client a finalized estimate is ready.
func (s *NotificationService) NotifyEstimateSent(ctx context.Context, estimate *models.Estimate, client *models.Client) error {
	profile, err := profileOf(s.db.WithContext(ctx), estimate.UserID)
	if err != nil {
		return err
	}
	from := profile.Name
	if from == "" {
		from = "We"
	}
	msg := fmt.Sprintf("Hi %s, %s sent you estimate %s for $%s.",
		client.Name, from, estimate.EstimateID, calculator.FormatMoney(estimate.Amount))
	if estimate.ExpiryDate != nil {
		msg += " Valid until " + estimate.ExpiryDate.Format("Jan 2, 2006") + "."
	}
	return s.deliver(ctx, profile, models.NotificationEstimateSent, estimate, client, msg)
}

// SendExpiryReminders texts clients whose pending estimates expire within daysAhead
// days of now. Each estimate gets at most one successful reminder.
func (s *NotificationService) SendExpiryReminders(ctx context.Context, now time.Time, daysAhead int) (int, error) {
	db := s.db.WithContext(ctx)
	reminded := db.Model(&models.NotificationLog{}).
		Select("estimate_id").
		Where("type = ? AND status = ?", models.NotificationEstimateExpiry, models.NotificationSent)

	var estimates []models.Estimate
	err := db.Preload("Client").
		Where("is_draft = ? AND status = ?", false, models.StatusPending).
		Where("expiry_date BETWEEN ? AND ?", now, utils.EndOfDay(now.AddDate(0, 0, daysAhead))).
		Where("id NOT IN (?)", reminded).
		Find(&estimates).Error
	if err != nil {
		return 0, fmt.Errorf("find expiring estimates: %w", err)
	}

	sent := 0
	for i := range estimates {
		est := &estimates[i]
		if est.Client == nil {
			continue
		}
		profile, err := profileOf(db, est.UserID)
		if err != nil {
			return sent, err
		}
		days := utils.DaysBetween(now, *est.ExpiryDate)
		when := utils.DaysLabel(days)
		switch days {
		case 0:
			when = "today"
		case 1:
			when = "tomorrow"
		}
		msg := fmt.Sprintf("Hi %s, estimate %s for $%s expires %s (%s).",
			est.Client.Name, est.EstimateID, calculator.FormatMoney(est.Amount), when, est.ExpiryDate.Format("Jan 2, 2006"))

		if err := s.deliver(ctx, profile, models.NotificationEstimateExpiry, est, est.Client, msg); err == nil {
			sent++
		}
	}
	return sent, nil
}

// List returns the owner's most recent notifications.
func (s *NotificationService) List(ctx context.Context, owner uuid.UUID, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).Where("user_id = ?", owner).
		Order("sent_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

var errNotDelivered = errors.New("notification not delivered")

func (s *NotificationService) deliver(ctx context.Context, profile models.BusinessProfile, kind string, estimate *models.Estimate, client *models.Client, message string) error {
	entry := models.NotificationLog{
		UserID:     estimate.UserID,
		ClientID:   client.ID,
		EstimateID: estimate.ID,
		Type:       kind,
		Message:    message,
		Channel:    channelSMS,
		SentAt:     time.Now(),
	}

	phone := utils.NormalizePhone(client.Phone)
	switch {
	case profile.ID != uuid.Nil && !profile.SMSNotifications:
		entry.Status = models.NotificationSkipped
		entry.ErrorMessage = "SMS notifications disabled"
	case phone == "":
		entry.Status = models.NotificationSkipped
		entry.ErrorMessage = "client has no phone number"
	case s.sender == nil:
		entry.Status = models.NotificationSkipped
		entry.ErrorMessage = "SMS provider not configured"
	default:
		sid, err := s.sender.Send(ctx, phone, message)
		if err != nil {
			s.log.Warn("failed to send message",
				zap.String("estimateId", estimate.EstimateID), zap.String("to", phone), zap.Error(err))
			entry.Status = models.NotificationFailed
			entry.ErrorMessage = err.Error()
		} else {
			s.log.Info("message sent",
				zap.String("estimateId", estimate.EstimateID), zap.String("kind", kind), zap.String("sid", sid))
			entry.Status = models.NotificationSent
			entry.ProviderID = sid
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("failed to log notification",
			zap.String("estimateId", estimate.EstimateID), zap.Error(err))
		return err
	}
	if entry.Status != models.NotificationSent {
		return fmt.Errorf("%w: %s", errNotDelivered, entry.ErrorMessage)
	}
	return nil
}

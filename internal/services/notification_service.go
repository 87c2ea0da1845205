package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"finvoiceBack/internal/models"
)

// Negotiation event types.
const (
	EventProposalSent      = "proposal.sent"
	EventProposalApproved  = "proposal.approved"
	EventProposalRejected  = "proposal.rejected"
	EventCounterOffer      = "proposal.counter_offered"
	EventProposalWithdrawn = "proposal.withdrawn"
	EventInvestmentCreated = "investment.created"
)

// EventChannel is the Redis pub/sub channel the websocket hub subscribes to.
const EventChannel = "proposal.events"

// NotificationService fans negotiation events out to the Redis event bus and
// FCM devices. Delivery is best effort: a failed notification never fails the
// business operation that produced it.
type NotificationService struct {
	RDB      *redis.Client
	FCM      *messaging.Client
	DB       *sql.DB
	ErrorLog *log.Logger
}

// Publish sends the event to the Redis channel and pushes to every device of
// the targeted users.
func (s *NotificationService) Publish(ctx context.Context, event models.NotificationEvent) {
	event.CreatedAt = time.Now().UTC()

	if s.RDB != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := s.RDB.Publish(ctx, EventChannel, payload).Err(); err != nil {
				s.logError("notification: redis publish failed: %v", err)
			}
		}
	}

	for _, userID := range event.UserIDs {
		s.push(ctx, userID, event)
	}
}

// PublishToCompany resolves the members of a company and publishes to them.
func (s *NotificationService) PublishToCompany(ctx context.Context, companyID int, event models.NotificationEvent) {
	if s.DB != nil {
		rows, err := s.DB.QueryContext(ctx, `SELECT id FROM users WHERE company_id = ?`, companyID)
		if err != nil {
			s.logError("notification: company members lookup failed: %v", err)
		} else {
			defer rows.Close()
			for rows.Next() {
				var id int
				if err := rows.Scan(&id); err == nil {
					event.UserIDs = append(event.UserIDs, id)
				}
			}
		}
	}
	s.Publish(ctx, event)
}

func (s *NotificationService) push(ctx context.Context, userID int, event models.NotificationEvent) {
	if s.FCM == nil || s.DB == nil {
		return
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT token FROM fcm_tokens WHERE user_id = ?`, userID)
	if err != nil {
		s.logError("notification: token lookup failed for user %d: %v", userID, err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			continue
		}
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: "FinVoice",
				Body:  event.Message,
			},
			Data: map[string]string{
				"type":        event.Type,
				"proposal_id": itoa(event.ProposalID),
				"invoice_id":  itoa(event.InvoiceID),
			},
			Android: &messaging.AndroidConfig{Priority: "high"},
		}
		if _, err := s.FCM.Send(ctx, msg); err != nil {
			s.logError("notification: fcm send failed for user %d: %v", userID, err)
		}
	}
}

func (s *NotificationService) logError(format string, args ...interface{}) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
	}
}

func itoa(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

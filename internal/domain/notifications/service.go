package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service is the notification dispatcher. Delivery is best-effort: a failed
// insert or email is logged and swallowed, it never propagates back into the
// workflow transition that triggered it.
type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Dispatch renders the event's template and delivers it to evt.RecipientID.
func (s *Service) Dispatch(ctx context.Context, evt Event) bool {
	tpl, ok := render(evt)
	if !ok {
		slog.Warn("unknown notification kind", "kind", evt.Kind)
		return false
	}

	notification := Notification{
		UserID:     evt.RecipientID,
		Kind:       evt.Kind,
		Title:      tpl.Title,
		Message:    tpl.Message,
		ActionLink: tpl.ActionLink,
		Priority:   tpl.Priority,
		Data: map[string]any{
			"evaluationId": evt.EvaluationID,
			"periodId":     evt.PeriodID,
			"kind":         evt.Kind,
		},
		ExpiresAt: time.Now().AddDate(0, 0, RetentionDays),
	}

	if _, err := s.store.CreateNotification(ctx, notification); err != nil {
		slog.Warn("notification insert failed", "kind", evt.Kind, "userId", evt.RecipientID, "err", err)
		return false
	}

	s.sendEmail(ctx, evt.RecipientID, tpl)
	return true
}

// DispatchBulk fans one event out to many recipients, used for the
// period-opened broadcast. Individual failures are counted, not propagated.
func (s *Service) DispatchBulk(ctx context.Context, recipientIDs []string, evt Event) int {
	delivered := 0
	for _, userID := range recipientIDs {
		e := evt
		e.RecipientID = userID
		if s.Dispatch(ctx, e) {
			delivered++
		}
	}
	slog.Info("notification broadcast", "kind", evt.Kind, "delivered", delivered, "recipients", len(recipientIDs))
	return delivered
}

func (s *Service) sendEmail(ctx context.Context, userID string, tpl rendered) {
	if s.Mailer == nil {
		return
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil || email == "" {
		if err != nil {
			slog.Warn("notification email lookup failed", "userId", userID, "err", err)
		}
		return
	}
	body := fmt.Sprintf("%s\n\nOpen the portal: %s", tpl.Message, tpl.ActionLink)
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, tpl.Title, body); err != nil {
		slog.Warn("notification email send failed", "userId", userID, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}

package notifications

import (
	"context"
	"encoding/json"
)

func (s *Store) CreateNotification(ctx context.Context, n Notification) (string, error) {
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		dataJSON = []byte("{}")
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO notifications (user_id, kind, title, message, action_link, priority, data, expires_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, n.UserID, n.Kind, n.Title, n.Message, n.ActionLink, n.Priority, dataJSON, n.ExpiresAt).Scan(&id)
	return id, err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, kind, title, message, COALESCE(action_link, ''), priority, data, read_at, expires_at, created_at
    FROM notifications
    WHERE user_id = $1 AND expires_at > now()
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var dataJSON []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.ActionLink,
			&n.Priority, &dataJSON, &n.ReadAt, &n.ExpiresAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(dataJSON) > 0 {
			_ = json.Unmarshal(dataJSON, &n.Data)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE user_id = $1 AND read_at IS NULL AND expires_at > now()
  `, userID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE user_id = $1 AND id = $2 AND read_at IS NULL
  `, userID, notificationID)
	return err
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM notifications WHERE expires_at <= now()")
	return tag.RowsAffected(), err
}

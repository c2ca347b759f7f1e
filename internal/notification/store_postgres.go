package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/tx"
)

// PostgresStore persists notifications in the verification_notifications
// table. Reads and writes honor a transaction placed in the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) execer {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *PostgresStore) Insert(ctx context.Context, n Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal notification metadata: %w", err)
	}

	statement, args, err := psql.
		Insert("verification_notifications").
		Columns("id", "user_id", "verification_id", "type", "title", "message", "read", "created_at", "metadata").
		Values(uuid.UUID(n.ID), uuid.UUID(n.UserID), nullableID(n.VerificationID), string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt, metadata).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert notification: %w", err)
	}

	if _, err := s.execer(ctx).ExecContext(ctx, statement, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, notificationID id.NotificationID) (Notification, error) {
	statement, args, err := psql.
		Select("id", "user_id", "verification_id", "type", "title", "message", "read", "created_at", "metadata").
		From("verification_notifications").
		Where(sq.Eq{"id": uuid.UUID(notificationID)}).
		ToSql()
	if err != nil {
		return Notification{}, fmt.Errorf("build find notification: %w", err)
	}

	n, err := scanNotification(s.execer(ctx).QueryRowContext(ctx, statement, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Notification{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Notification{}, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID) (bool, error) {
	// Only rows flipping false->true are touched, so RowsAffected doubles as
	// the changed flag.
	statement, args, err := psql.
		Update("verification_notifications").
		Set("read", true).
		Where(sq.Eq{"id": uuid.UUID(notificationID), "read": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark notification read: %w", err)
	}

	res, err := s.execer(ctx).ExecContext(ctx, statement, args...)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Nothing changed: either already read or missing.
	if _, err := s.FindByID(ctx, notificationID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.ProfileID, unreadOnly bool) ([]Notification, error) {
	builder := psql.
		Select("id", "user_id", "verification_id", "type", "title", "message", "read", "created_at", "metadata").
		From("verification_notifications").
		Where(sq.Eq{"user_id": uuid.UUID(userID)}).
		OrderBy("created_at DESC, id")
	if unreadOnly {
		builder = builder.Where(sq.Eq{"read": false})
	}
	statement, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list notifications: %w", err)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, userID id.ProfileID) (int64, error) {
	statement, args, err := psql.
		Select("count(*)").
		From("verification_notifications").
		Where(sq.Eq{"user_id": uuid.UUID(userID), "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count unread notifications: %w", err)
	}

	var total int64
	if err := s.execer(ctx).QueryRowContext(ctx, statement, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nullableID maps the nil UUID to NULL so unlinked notifications do not trip
// the verification foreign key.
func nullableID(verificationID id.VerificationID) any {
	u := uuid.UUID(verificationID)
	if u == uuid.Nil {
		return nil
	}
	return u
}

func scanNotification(row rowScanner) (Notification, error) {
	var (
		n        Notification
		nid      uuid.UUID
		userID   uuid.UUID
		verID    uuid.NullUUID
		kind     string
		metadata []byte
	)
	if err := row.Scan(&nid, &userID, &verID, &kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt, &metadata); err != nil {
		return Notification{}, err
	}
	n.ID = id.NotificationID(nid)
	n.UserID = id.ProfileID(userID)
	if verID.Valid {
		n.VerificationID = id.VerificationID(verID.UUID)
	}
	n.Type = Type(kind)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return Notification{}, fmt.Errorf("unmarshal notification metadata: %w", err)
		}
	}
	return n, nil
}

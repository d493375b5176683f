package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
)

const outboxColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, next_retry_at, retry_count,
	last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository on SQLite and PostgreSQL.
// Statements are written with ? placeholders and rebound per driver.
type SQLRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLRepository creates a new outbox repository.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

type outboxRow struct {
	ID               int64          `db:"id"`
	EventID          string         `db:"event_id"`
	AggregateType    string         `db:"aggregate_type"`
	AggregateID      string         `db:"aggregate_id"`
	EventType        string         `db:"event_type"`
	RoutingKey       string         `db:"routing_key"`
	Payload          string         `db:"payload"`
	Metadata         string         `db:"metadata"`
	CreatedAt        string         `db:"created_at"`
	PublishedAt      sql.NullString `db:"published_at"`
	NextRetryAt      sql.NullString `db:"next_retry_at"`
	RetryCount       int            `db:"retry_count"`
	LastError        sql.NullString `db:"last_error"`
	DeadLetteredAt   sql.NullString `db:"dead_lettered_at"`
	DeadLetterReason sql.NullString `db:"dead_letter_reason"`
}

// Append inserts msgs and sets their IDs. It joins the unit of work in ctx
// or else writes all of them in one transaction.
func (r *SQLRepository) Append(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if info, ok := database.TxInfoFromContext(ctx); ok {
		return r.insertAll(ctx, info.Tx, msgs)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.insertAll(ctx, tx, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLRepository) insertAll(ctx context.Context, q database.Querier, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.insert(ctx, q, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) insert(ctx context.Context, q database.Querier, msg *Message) error {
	metadata := string(msg.Metadata)
	if metadata == "" {
		metadata = "{}"
	}

	query := q.Rebind(`INSERT INTO outbox
		(event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := sqlx.GetContext(ctx, q, &id, query,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		database.FormatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	msg.ID = id
	return nil
}

// Pending returns deliverable messages, oldest first.
func (r *SQLRepository) Pending(ctx context.Context, limit int) ([]*Message, error) {
	q := database.QuerierFromContext(ctx, r.db)
	query := q.Rebind(`SELECT ` + outboxColumns + ` FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`)

	var rows []outboxRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, database.FormatTime(r.now()), limit); err != nil {
		return nil, err
	}
	return rowsToMessages(rows), nil
}

// MarkPublished stamps the message and clears any pending retry.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	q := database.QuerierFromContext(ctx, r.db)
	_, err := q.ExecContext(ctx,
		q.Rebind(`UPDATE outbox SET published_at = ?, next_retry_at = NULL WHERE id = ?`),
		database.FormatTime(r.now()), id)
	return err
}

// MarkFailed counts the attempt and stores reason as the last error.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	q := database.QuerierFromContext(ctx, r.db)
	_, err := q.ExecContext(ctx,
		q.Rebind(`UPDATE outbox
			SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
			WHERE id = ?`),
		errMsg, database.FormatTime(nextRetryAt), id)
	return err
}

// MarkDead parks the message for good.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	q := database.QuerierFromContext(ctx, r.db)
	_, err := q.ExecContext(ctx,
		q.Rebind(`UPDATE outbox
			SET dead_lettered_at = ?, dead_letter_reason = ?, last_error = ?
			WHERE id = ?`),
		database.FormatTime(r.now()), reason, reason, id)
	return err
}

// DeleteOld removes published messages past retention. Dead messages are
// kept for inspection.
func (r *SQLRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	q := database.QuerierFromContext(ctx, r.db)
	res, err := q.ExecContext(ctx,
		q.Rebind(`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`),
		database.FormatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func rowsToMessages(rows []outboxRow) []*Message {
	messages := make([]*Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toMessage())
	}
	return messages
}

func (row outboxRow) toMessage() *Message {
	eventID, _ := uuid.Parse(row.EventID)
	aggregateID, _ := uuid.Parse(row.AggregateID)
	createdAt, _ := database.ParseTime(row.CreatedAt)

	msg := &Message{
		ID:             row.ID,
		EventID:        eventID,
		AggregateType:  row.AggregateType,
		AggregateID:    aggregateID,
		EventType:      row.EventType,
		RoutingKey:     row.RoutingKey,
		Payload:        json.RawMessage(row.Payload),
		Metadata:       json.RawMessage(row.Metadata),
		CreatedAt:      createdAt,
		PublishedAt:    database.ParseNullTime(row.PublishedAt),
		NextRetryAt:    database.ParseNullTime(row.NextRetryAt),
		RetryCount:     row.RetryCount,
		DeadLetteredAt: database.ParseNullTime(row.DeadLetteredAt),
	}
	if row.LastError.Valid {
		msg.LastError = &row.LastError.String
	}
	if row.DeadLetterReason.Valid {
		msg.DeadLetterReason = &row.DeadLetterReason.String
	}
	return msg
}

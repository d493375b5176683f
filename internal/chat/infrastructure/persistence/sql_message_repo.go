package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
)

// SQLMessageRepository implements domain.MessageRepository.
type SQLMessageRepository struct {
	db *sqlx.DB
}

// NewSQLMessageRepository creates a message repository.
func NewSQLMessageRepository(db *sqlx.DB) *SQLMessageRepository {
	return &SQLMessageRepository{db: db}
}

type messageRow struct {
	ID                   int64  `db:"id"`
	Body                 string `db:"body"`
	SentAt               string `db:"sent_at"`
	ParticipantID        string `db:"participant_id"`
	ParticipantName      string `db:"participant_name"`
	ParticipantEmail     string `db:"participant_email"`
	ParticipantCreatedAt string `db:"participant_created_at"`
}

func (row messageRow) author() participantRow {
	return participantRow{
		ID:        row.ParticipantID,
		Name:      row.ParticipantName,
		Email:     row.ParticipantEmail,
		CreatedAt: row.ParticipantCreatedAt,
	}
}

// Append stores msg and assigns its id. The author must already be stored.
func (r *SQLMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	q := database.QuerierFromContext(ctx, r.db)
	query := q.Rebind(`INSERT INTO messages (participant_id, body, sent_at)
		VALUES (?, ?, ?)
		RETURNING id`)

	var id int64
	if err := sqlx.GetContext(ctx, q, &id, query,
		msg.Author().ID().String(), msg.Body(), database.FormatTime(msg.SentAt()),
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.AssignID(id)
	return nil
}

// List returns the whole conversation, oldest first.
func (r *SQLMessageRepository) List(ctx context.Context) ([]*domain.Message, error) {
	q := database.QuerierFromContext(ctx, r.db)

	var rows []messageRow
	if err := sqlx.SelectContext(ctx, q, &rows, `SELECT
			m.id, m.body, m.sent_at,
			p.id AS participant_id,
			p.name AS participant_name,
			p.email AS participant_email,
			p.created_at AS participant_created_at
		FROM messages m
		JOIN participants p ON p.id = m.participant_id
		ORDER BY m.id`,
	); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	authors := make(map[string]*domain.Participant)
	messages := make([]*domain.Message, 0, len(rows))
	for _, row := range rows {
		author, ok := authors[row.ParticipantID]
		if !ok {
			var err error
			if author, err = row.author().toDomain(); err != nil {
				return nil, err
			}
			authors[row.ParticipantID] = author
		}
		sentAt, err := database.ParseTime(row.SentAt)
		if err != nil {
			return nil, fmt.Errorf("parse message sent_at: %w", err)
		}
		messages = append(messages, domain.RehydrateMessage(row.ID, author, row.Body, sentAt))
	}
	return messages, nil
}

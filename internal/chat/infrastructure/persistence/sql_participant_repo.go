package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
)

// SQLParticipantRepository implements domain.ParticipantRepository.
type SQLParticipantRepository struct {
	db *sqlx.DB
}

// NewSQLParticipantRepository creates a participant repository.
func NewSQLParticipantRepository(db *sqlx.DB) *SQLParticipantRepository {
	return &SQLParticipantRepository{db: db}
}

type participantRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at"`
}

func (row participantRow) toDomain() (*domain.Participant, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse participant id: %w", err)
	}
	createdAt, err := database.ParseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse participant created_at: %w", err)
	}
	return domain.RehydrateParticipant(id, row.Name, row.Email, createdAt), nil
}

// GetOrCreate inserts p unless its e-mail is taken, then returns the stored row.
func (r *SQLParticipantRepository) GetOrCreate(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	q := database.QuerierFromContext(ctx, r.db)

	insert := q.Rebind(`INSERT INTO participants (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`)
	if _, err := q.ExecContext(ctx, insert,
		p.ID().String(), p.Name(), p.Email(), database.FormatTime(p.CreatedAt()),
	); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	return r.FindByEmail(ctx, p.Email())
}

// FindByEmail returns domain.ErrParticipantNotFound when nobody has email.
func (r *SQLParticipantRepository) FindByEmail(ctx context.Context, email string) (*domain.Participant, error) {
	q := database.QuerierFromContext(ctx, r.db)
	query := q.Rebind(`SELECT id, name, email, created_at FROM participants WHERE email = ?`)

	var row participantRow
	if err := sqlx.GetContext(ctx, q, &row, query, domain.NormalizeEmail(email)); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return row.toDomain()
}

// List returns participants in the order they joined.
func (r *SQLParticipantRepository) List(ctx context.Context) ([]*domain.Participant, error) {
	q := database.QuerierFromContext(ctx, r.db)

	var rows []participantRow
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT id, name, email, created_at FROM participants ORDER BY created_at, email`,
	); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	participants := make([]*domain.Participant, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// Count returns the number of participants.
func (r *SQLParticipantRepository) Count(ctx context.Context) (int, error) {
	q := database.QuerierFromContext(ctx, r.db)

	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM participants`); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

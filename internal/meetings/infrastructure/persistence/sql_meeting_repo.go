package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
)

const meetingColumns = `id, title, meeting_date, meeting_time, starts_at, duration_minutes,
	slot_day, slot_period, support, created_at`

// SQLMeetingRepository implements domain.Repository on SQLite and PostgreSQL.
type SQLMeetingRepository struct {
	db *sqlx.DB
}

// NewSQLMeetingRepository creates a new meeting repository.
func NewSQLMeetingRepository(db *sqlx.DB) *SQLMeetingRepository {
	return &SQLMeetingRepository{db: db}
}

type meetingRow struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	MeetingDate     string `db:"meeting_date"`
	MeetingTime     string `db:"meeting_time"`
	StartsAt        string `db:"starts_at"`
	DurationMinutes int    `db:"duration_minutes"`
	SlotDay         string `db:"slot_day"`
	SlotPeriod      string `db:"slot_period"`
	Support         int    `db:"support"`
	CreatedAt       string `db:"created_at"`
}

type attendeeRow struct {
	MeetingID string `db:"meeting_id"`
	Position  int    `db:"position"`
	Name      string `db:"name"`
	Email     string `db:"email"`
}

// Save inserts a new meeting with its attendees. Meetings are never updated.
func (r *SQLMeetingRepository) Save(ctx context.Context, meeting *domain.Meeting) error {
	if info, ok := database.TxInfoFromContext(ctx); ok {
		return r.insert(ctx, info.Tx, meeting)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.insert(ctx, tx, meeting); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLMeetingRepository) insert(ctx context.Context, q database.Querier, meeting *domain.Meeting) error {
	query := q.Rebind(`INSERT INTO meetings (` + meetingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if _, err := q.ExecContext(ctx, query,
		meeting.ID().String(),
		meeting.Title(),
		meeting.Date(),
		meeting.Time(),
		database.FormatTime(meeting.StartsAt()),
		int(meeting.Duration().Minutes()),
		meeting.Slot().Day.String(),
		meeting.Slot().Period.String(),
		meeting.Support(),
		database.FormatTime(meeting.CreatedAt()),
	); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrMeetingExists
		}
		return fmt.Errorf("insert meeting: %w", err)
	}

	attendeeQuery := q.Rebind(`INSERT INTO meeting_participants (meeting_id, position, name, email)
		VALUES (?, ?, ?, ?)`)
	for i, a := range meeting.Attendees() {
		if _, err := q.ExecContext(ctx, attendeeQuery, meeting.ID().String(), i, a.Name, a.Email); err != nil {
			return fmt.Errorf("insert meeting participant: %w", err)
		}
	}
	return nil
}

// FindByID returns domain.ErrMeetingNotFound for an unknown id.
func (r *SQLMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	q := database.QuerierFromContext(ctx, r.db)
	query := q.Rebind(`SELECT ` + meetingColumns + ` FROM meetings WHERE id = ?`)

	var row meetingRow
	if err := sqlx.GetContext(ctx, q, &row, query, id.String()); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting: %w", err)
	}

	meetings, err := r.hydrate(ctx, q, []meetingRow{row})
	if err != nil {
		return nil, err
	}
	return meetings[0], nil
}

// List returns every meeting ordered by start time.
func (r *SQLMeetingRepository) List(ctx context.Context) ([]*domain.Meeting, error) {
	q := database.QuerierFromContext(ctx, r.db)

	var rows []meetingRow
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT `+meetingColumns+` FROM meetings ORDER BY starts_at, created_at`,
	); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return r.hydrate(ctx, q, rows)
}

// ListFrom returns meetings starting at or after from.
func (r *SQLMeetingRepository) ListFrom(ctx context.Context, from time.Time) ([]*domain.Meeting, error) {
	q := database.QuerierFromContext(ctx, r.db)
	query := q.Rebind(`SELECT ` + meetingColumns + ` FROM meetings
		WHERE starts_at >= ?
		ORDER BY starts_at, created_at`)

	var rows []meetingRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, database.FormatTime(from)); err != nil {
		return nil, fmt.Errorf("list upcoming meetings: %w", err)
	}
	return r.hydrate(ctx, q, rows)
}

func (r *SQLMeetingRepository) hydrate(ctx context.Context, q database.Querier, rows []meetingRow) ([]*domain.Meeting, error) {
	if len(rows) == 0 {
		return []*domain.Meeting{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	query, args, err := sqlx.In(`SELECT meeting_id, position, name, email FROM meeting_participants
		WHERE meeting_id IN (?)
		ORDER BY meeting_id, position`, ids)
	if err != nil {
		return nil, err
	}

	var attendeeRows []attendeeRow
	if err := sqlx.SelectContext(ctx, q, &attendeeRows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load meeting participants: %w", err)
	}
	attendees := make(map[string][]domain.Attendee, len(rows))
	for _, a := range attendeeRows {
		attendees[a.MeetingID] = append(attendees[a.MeetingID], domain.Attendee{Name: a.Name, Email: a.Email})
	}

	meetings := make([]*domain.Meeting, 0, len(rows))
	for _, row := range rows {
		m, err := row.toDomain(attendees[row.ID])
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func (row meetingRow) toDomain(attendees []domain.Attendee) (*domain.Meeting, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("parse meeting id: %w", err)
	}
	day, err := availability.ParseWeekday(row.SlotDay)
	if err != nil {
		return nil, err
	}
	period, err := availability.ParsePeriod(row.SlotPeriod)
	if err != nil {
		return nil, err
	}
	startsAt, err := database.ParseTime(row.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("parse meeting starts_at: %w", err)
	}
	createdAt, err := database.ParseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse meeting created_at: %w", err)
	}

	return domain.RehydrateMeeting(
		id,
		row.Title,
		domain.Schedule{
			Slot:     availability.Slot{Day: day, Period: period},
			Date:     row.MeetingDate,
			Time:     row.MeetingTime,
			StartsAt: startsAt,
		},
		time.Duration(row.DurationMinutes)*time.Minute,
		attendees,
		row.Support,
		createdAt,
	), nil
}

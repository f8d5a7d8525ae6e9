package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"eventease/model"
	"eventease/search"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_date TEXT NOT NULL,
		event_time TEXT NOT NULL,
		location TEXT NOT NULL,
		venue TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		capacity INTEGER NOT NULL,
		attendees INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL,
		organizer_name TEXT NOT NULL,
		organizer_email TEXT NOT NULL,
		organizer_avatar TEXT NOT NULL,
		organizer_id TEXT NOT NULL,
		rating DOUBLE PRECISION NOT NULL,
		reviews INTEGER NOT NULL,
		image TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		CHECK (attendees >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		attendee_name TEXT NOT NULL,
		attendee_email TEXT NOT NULL,
		attendee_phone TEXT NOT NULL,
		number_of_tickets INTEGER NOT NULL,
		total_price DOUBLE PRECISION NOT NULL,
		ticket_type TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_reference TEXT NOT NULL,
		payment_signature TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		UNIQUE (event_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_user_idx ON registrations (user_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		kind TEXT NOT NULL,
		sender TEXT NOT NULL,
		is_read BOOLEAN NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL,
		pref_event_updates BOOLEAN NOT NULL,
		pref_new_events BOOLEAN NOT NULL,
		pref_promotions BOOLEAN NOT NULL,
		subscribed_at BIGINT NOT NULL
	)`,
}

// SQLStore implements Store on database/sql, for SQLite (modernc) or
// PostgreSQL (pgx). Queries are written with ? placeholders and rebound
// for PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func NewSQLStore(ctx context.Context, dialect, dsn string) (*SQLStore, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// one writer at a time, and keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialect}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return s, nil
}

func (s *SQLStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, db execer, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func expectOne(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Users ----------

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row scanner) (model.UserData, error) {
	var u model.UserData
	var created int64
	err := row.Scan(&u.Id, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	return u, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user *model.UserData) error {
	user.Id = NewId()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now()

	_, err := s.exec(ctx, s.db,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.Id, user.Name, user.Email, user.HashedPassword, user.Role, millis(user.CreatedAt))
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (model.UserData, error) {
	return scanUser(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (model.UserData, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(email)))
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]model.UserData, error) {
	return queryAll(ctx, s, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`, scanUser)
}

func (s *SQLStore) UpdateUserRole(ctx context.Context, id, role string) (model.UserData, error) {
	if err := expectOne(s.exec(ctx, s.db, `UPDATE users SET role = ? WHERE id = ?`, role, id)); err != nil {
		return model.UserData{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	return expectOne(s.exec(ctx, s.db, `DELETE FROM users WHERE id = ?`, id))
}

func queryAll[T any](ctx context.Context, s *SQLStore, query string, scan func(scanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ---------- Events ----------

const eventColumns = `id, title, description, category, event_type, event_date, event_time,
	location, venue, price, capacity, attendees, tags, organizer_name, organizer_email,
	organizer_avatar, organizer_id, rating, reviews, image, created_at, updated_at`

func scanEvent(row scanner) (model.Event, error) {
	var e model.Event
	var tags string
	var created, updated int64
	err := row.Scan(&e.Id, &e.Title, &e.Description, &e.Category, &e.Type, &e.Date, &e.Time,
		&e.Location, &e.Venue, &e.Price, &e.Capacity, &e.Attendees, &tags,
		&e.Organizer.Name, &e.Organizer.Email, &e.Organizer.Avatar, &e.OrganizerId,
		&e.Rating, &e.Reviews, &e.Image, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("scan event: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return e, fmt.Errorf("decode tags of event %s: %w", e.Id, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	return string(raw), err
}

func (s *SQLStore) CreateEvent(ctx context.Context, event *model.Event) error {
	event.Id = NewId()
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt
	if event.Tags == nil {
		event.Tags = []string{}
	}
	tags, err := encodeTags(event.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.exec(ctx, s.db,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Id, event.Title, event.Description, event.Category, event.Type, event.Date, event.Time,
		event.Location, event.Venue, event.Price, event.Capacity, event.Attendees, tags,
		event.Organizer.Name, event.Organizer.Email, event.Organizer.Avatar, event.OrganizerId,
		event.Rating, event.Reviews, event.Image, millis(event.CreatedAt), millis(event.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLStore) GetEvent(ctx context.Context, id string) (model.Event, error) {
	return scanEvent(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id))
}

// ListEvents filters category and type in SQL and applies the free-text
// search with search.Filter, so results match the Mongo regex semantics.
func (s *SQLStore) ListEvents(ctx context.Context, query model.EventQuery) ([]model.Event, int, error) {
	var where []string
	var args []any
	if query.Category != "" {
		where = append(where, `LOWER(category) = LOWER(?)`)
		args = append(args, query.Category)
	}
	if query.Type != "" {
		where = append(where, `LOWER(event_type) = LOWER(?)`)
		args = append(args, query.Type)
	}

	stmt := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, ` AND `)
	}
	stmt += ` ORDER BY created_at DESC, id DESC`

	events, err := queryAll(ctx, s, stmt, scanEvent, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	events = search.Filter(events, query.Search)
	return paginate(events, query.Page, query.Limit), len(events), nil
}

func (s *SQLStore) UpdateEvent(ctx context.Context, event model.Event) error {
	tags, err := encodeTags(event.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	err = expectOne(s.exec(ctx, s.db,
		`UPDATE events SET title = ?, description = ?, category = ?, event_type = ?, event_date = ?,
		 event_time = ?, location = ?, venue = ?, price = ?, capacity = ?, tags = ?,
		 organizer_name = ?, organizer_email = ?, organizer_avatar = ?, rating = ?, reviews = ?,
		 image = ?, updated_at = ?
		 WHERE id = ? AND attendees <= ?`,
		event.Title, event.Description, event.Category, event.Type, event.Date,
		event.Time, event.Location, event.Venue, event.Price, event.Capacity, tags,
		event.Organizer.Name, event.Organizer.Email, event.Organizer.Avatar, event.Rating, event.Reviews,
		event.Image, millis(now()), event.Id, event.Capacity))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := s.GetEvent(ctx, event.Id); getErr == nil {
			return ErrCapacityTooLow
		}
	}
	return err
}

func (s *SQLStore) DeleteEvent(ctx context.Context, id string) error {
	return expectOne(s.exec(ctx, s.db, `DELETE FROM events WHERE id = ?`, id))
}

// ---------- Registrations ----------

const registrationColumns = `id, event_id, user_id, attendee_name, attendee_email, attendee_phone,
	number_of_tickets, total_price, ticket_type, payment_method, payment_reference, payment_signature,
	status, created_at`

func scanRegistration(row scanner) (model.Registration, error) {
	var r model.Registration
	var created int64
	err := row.Scan(&r.Id, &r.EventId, &r.UserId, &r.Attendee.Name, &r.Attendee.Email, &r.Attendee.Phone,
		&r.NumberOfTickets, &r.TotalPrice, &r.TicketType, &r.PaymentMethod, &r.PaymentReference,
		&r.PaymentSignature, &r.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("scan registration: %w", err)
	}
	r.CreatedAt = fromMillis(created)
	return r, nil
}

// CreateRegistration runs in one transaction: lock the event row, insert the
// registration under the UNIQUE (event_id, user_id) constraint, then reserve
// capacity. A duplicate is reported before a sold-out event.
func (s *SQLStore) CreateRegistration(ctx context.Context, reg *model.Registration) (err error) {
	reg.Id = NewId()
	reg.CreatedAt = now()
	if reg.Status == "" {
		reg.Status = model.RegistrationConfirmed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lock := ""
	if s.dialect == DialectPostgres {
		lock = ` FOR UPDATE`
	}
	var capacity, attendees int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT capacity, attendees FROM events WHERE id = ?`+lock), reg.EventId).
		Scan(&capacity, &attendees)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row: %w", err)
	}

	_, err = s.exec(ctx, tx,
		`INSERT INTO registrations (`+registrationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.Id, reg.EventId, reg.UserId, reg.Attendee.Name, reg.Attendee.Email, reg.Attendee.Phone,
		reg.NumberOfTickets, reg.TotalPrice, reg.TicketType, reg.PaymentMethod, reg.PaymentReference,
		reg.PaymentSignature, reg.Status, millis(reg.CreatedAt))
	if isUniqueViolation(err) {
		return ErrAlreadyRegistered
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	if attendees+reg.NumberOfTickets > capacity {
		return ErrSoldOut
	}
	_, err = s.exec(ctx, tx, `UPDATE events SET attendees = attendees + ? WHERE id = ?`, reg.NumberOfTickets, reg.EventId)
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	return scanRegistration(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`), id))
}

func (s *SQLStore) FindRegistration(ctx context.Context, userId, eventId string) (model.Registration, error) {
	return scanRegistration(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+registrationColumns+` FROM registrations WHERE user_id = ? AND event_id = ?`),
		userId, eventId))
}

func (s *SQLStore) ListRegistrationsByUser(ctx context.Context, userId string) ([]model.Registration, error) {
	return queryAll(ctx, s,
		`SELECT `+registrationColumns+` FROM registrations WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		scanRegistration, userId)
}

func (s *SQLStore) ListRegistrationsByEvent(ctx context.Context, eventId string) ([]model.Registration, error) {
	return queryAll(ctx, s,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = ? ORDER BY created_at ASC, id ASC`,
		scanRegistration, eventId)
}

func (s *SQLStore) DeleteRegistration(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	reg, err := scanRegistration(tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`), id))
	if err != nil {
		return err
	}
	if _, err = s.exec(ctx, tx, `DELETE FROM registrations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	// the event may already be gone; nothing to release then
	if _, err = s.exec(ctx, tx, `UPDATE events SET attendees = attendees - ? WHERE id = ?`,
		reg.NumberOfTickets, reg.EventId); err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ---------- Notifications ----------

const notificationColumns = `id, user_id, subject, message, kind, sender, is_read, created_at`

func scanNotification(row scanner) (model.Notification, error) {
	var n model.Notification
	var created int64
	err := row.Scan(&n.Id, &n.UserId, &n.Subject, &n.Message, &n.Type, &n.Sender, &n.Read, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotFound
	}
	if err != nil {
		return n, fmt.Errorf("scan notification: %w", err)
	}
	n.CreatedAt = fromMillis(created)
	return n, nil
}

func (s *SQLStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.Id = NewId()
	n.CreatedAt = now()
	_, err := s.exec(ctx, s.db,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Id, n.UserId, n.Subject, n.Message, n.Type, n.Sender, n.Read, millis(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *SQLStore) ListNotifications(ctx context.Context, userId string) ([]model.Notification, error) {
	return queryAll(ctx, s,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		scanNotification, userId)
}

func (s *SQLStore) MarkNotificationRead(ctx context.Context, userId, id string) error {
	return expectOne(s.exec(ctx, s.db,
		`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userId))
}

func (s *SQLStore) MarkAllNotificationsRead(ctx context.Context, userId string) (int64, error) {
	return s.exec(ctx, s.db,
		`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`, true, userId, false)
}

func (s *SQLStore) DeleteNotification(ctx context.Context, userId, id string) error {
	return expectOne(s.exec(ctx, s.db, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userId))
}

// ---------- Subscribers ----------

const subscriberColumns = `id, email, is_active, pref_event_updates, pref_new_events, pref_promotions, subscribed_at`

func scanSubscriber(row scanner) (model.Subscriber, error) {
	var sub model.Subscriber
	var subscribed int64
	err := row.Scan(&sub.Id, &sub.Email, &sub.IsActive,
		&sub.Preferences.EventUpdates, &sub.Preferences.NewEvents, &sub.Preferences.Promotions, &subscribed)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, ErrNotFound
	}
	if err != nil {
		return sub, fmt.Errorf("scan subscriber: %w", err)
	}
	sub.SubscribedAt = fromMillis(subscribed)
	return sub, nil
}

func (s *SQLStore) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	sub.Id = NewId()
	sub.Email = strings.ToLower(sub.Email)
	sub.SubscribedAt = now()
	_, err := s.exec(ctx, s.db,
		`INSERT INTO subscribers (`+subscriberColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.Id, sub.Email, sub.IsActive, sub.Preferences.EventUpdates, sub.Preferences.NewEvents,
		sub.Preferences.Promotions, millis(sub.SubscribedAt))
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (s *SQLStore) GetSubscriber(ctx context.Context, id string) (model.Subscriber, error) {
	return scanSubscriber(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`), id))
}

func (s *SQLStore) GetSubscriberByEmail(ctx context.Context, email string) (model.Subscriber, error) {
	return scanSubscriber(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+subscriberColumns+` FROM subscribers WHERE email = ?`), strings.ToLower(email)))
}

func (s *SQLStore) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	return queryAll(ctx, s,
		`SELECT `+subscriberColumns+` FROM subscribers ORDER BY subscribed_at DESC, id DESC`, scanSubscriber)
}

func (s *SQLStore) UpdateSubscriber(ctx context.Context, sub model.Subscriber) error {
	return expectOne(s.exec(ctx, s.db,
		`UPDATE subscribers SET is_active = ?, pref_event_updates = ?, pref_new_events = ?, pref_promotions = ?
		 WHERE id = ?`,
		sub.IsActive, sub.Preferences.EventUpdates, sub.Preferences.NewEvents, sub.Preferences.Promotions, sub.Id))
}

func (s *SQLStore) DeleteSubscriber(ctx context.Context, id string) error {
	return expectOne(s.exec(ctx, s.db, `DELETE FROM subscribers WHERE id = ?`, id))
}

// ---------- Stats ----------

func (s *SQLStore) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM registrations),
		(SELECT COUNT(*) FROM subscribers),
		(SELECT COALESCE(SUM(number_of_tickets), 0) FROM registrations),
		(SELECT COALESCE(SUM(total_price), 0) FROM registrations)`).
		Scan(&stats.Users, &stats.Events, &stats.Registrations, &stats.Subscribers, &stats.TicketsSold, &stats.Revenue)
	if err != nil {
		return stats, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}

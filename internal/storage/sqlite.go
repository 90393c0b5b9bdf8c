// Package storage persists crawl results to SQLite.
// It stores one row per fetched page, the in-scope links of every page and
// crawl level key/value metadata.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masahif/sitescribe/internal/crawler"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no page is stored for a URL
var ErrNotFound = errors.New("page not found")

// Link is a stored link relationship
type Link struct {
	SourceURL    string
	TargetURL    string
	AnchorText   string
	RelAttribute string
	Position     int
}

// SQLiteStorage implements crawler.ResultSink using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ crawler.ResultSink = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool - single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{db: db}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema creates the database schema
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000", // 30 second timeout for locks
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SavePageResult stores result and replaces the links recorded for its URL.
// Saving the same URL again overwrites the previous row.
func (s *SQLiteStorage) SavePageResult(result *crawler.PageResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO pages (
			url, status, depth, title, description, main_heading, content,
			status_code, content_type, final_url, ttfb_ms, download_time_ms,
			dns_lookup_ms, tcp_connect_ms, tls_handshake_ms,
			error_message, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			status = excluded.status,
			depth = excluded.depth,
			title = excluded.title,
			description = excluded.description,
			main_heading = excluded.main_heading,
			content = excluded.content,
			status_code = excluded.status_code,
			content_type = excluded.content_type,
			final_url = excluded.final_url,
			ttfb_ms = excluded.ttfb_ms,
			download_time_ms = excluded.download_time_ms,
			dns_lookup_ms = excluded.dns_lookup_ms,
			tcp_connect_ms = excluded.tcp_connect_ms,
			tls_handshake_ms = excluded.tls_handshake_ms,
			error_message = excluded.error_message,
			scraped_at = excluded.scraped_at,
			saved_at = CURRENT_TIMESTAMP
	`,
		result.URL,
		string(result.Status),
		result.Depth,
		result.Metadata.Title,
		result.Metadata.Description,
		result.Metadata.MainHeading,
		result.Content,
		result.StatusCode,
		result.ContentType,
		result.FinalURL,
		result.TTFB.Milliseconds(),
		result.DownloadTime.Milliseconds(),
		result.DNSLookup.Milliseconds(),
		result.TCPConnect.Milliseconds(),
		result.TLSHandshake.Milliseconds(),
		result.Error,
		result.Metadata.ScrapedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save page result %s: %w", result.URL, err)
	}

	if _, err := tx.Exec("DELETE FROM links WHERE source_url = ?", result.URL); err != nil {
		return fmt.Errorf("failed to clear links for %s: %w", result.URL, err)
	}

	if len(result.Links) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO links (source_url, target_url, anchor_text, rel_attribute, position)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, target := range result.Links {
			anchor, rel := "", ""
			if i < len(result.AnchorTexts) {
				anchor = result.AnchorTexts[i]
			}
			if i < len(result.LinkRels) {
				rel = result.LinkRels[i]
			}
			if _, err := stmt.Exec(result.URL, target, anchor, rel, i); err != nil {
				return fmt.Errorf("failed to insert link %s -> %s: %w", result.URL, target, err)
			}
		}
	}

	return tx.Commit()
}

const pageColumns = `
	url, status, depth, title, description, main_heading, content,
	status_code, content_type, final_url, ttfb_ms, download_time_ms,
	dns_lookup_ms, tcp_connect_ms, tls_handshake_ms,
	error_message, scraped_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*crawler.PageResult, error) {
	var (
		result              crawler.PageResult
		status              string
		ttfbMs, dlMs        int64
		dnsMs, tcpMs, tlsMs int64
		scrapedAt           string
	)

	err := row.Scan(
		&result.URL,
		&status,
		&result.Depth,
		&result.Metadata.Title,
		&result.Metadata.Description,
		&result.Metadata.MainHeading,
		&result.Content,
		&result.StatusCode,
		&result.ContentType,
		&result.FinalURL,
		&ttfbMs,
		&dlMs,
		&dnsMs,
		&tcpMs,
		&tlsMs,
		&result.Error,
		&scrapedAt,
	)
	if err != nil {
		return nil, err
	}

	result.Status = crawler.Status(status)
	result.Metadata.URL = result.URL
	result.TTFB = time.Duration(ttfbMs) * time.Millisecond
	result.DownloadTime = time.Duration(dlMs) * time.Millisecond
	result.DNSLookup = time.Duration(dnsMs) * time.Millisecond
	result.TCPConnect = time.Duration(tcpMs) * time.Millisecond
	result.TLSHandshake = time.Duration(tlsMs) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, scrapedAt); err == nil {
		result.Metadata.ScrapedAt = t
	}

	return &result, nil
}

// GetPageResult loads the stored result for url, links included
func (s *SQLiteStorage) GetPageResult(url string) (*crawler.PageResult, error) {
	row := s.db.QueryRow("SELECT "+pageColumns+" FROM pages WHERE url = ?", url)
	result, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", url, err)
	}

	if err := s.attachLinks(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListPageResults returns every stored result in the order it was first saved
func (s *SQLiteStorage) ListPageResults() ([]*crawler.PageResult, error) {
	rows, err := s.db.Query("SELECT " + pageColumns + " FROM pages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*crawler.PageResult
	for rows.Next() {
		result, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}

	// Links are loaded after the cursor is closed; the pool has one connection
	_ = rows.Close()
	for _, result := range results {
		if err := s.attachLinks(result); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (s *SQLiteStorage) attachLinks(result *crawler.PageResult) error {
	links, err := s.GetLinks(result.URL)
	if err != nil {
		return err
	}

	result.Links = make([]string, 0, len(links))
	result.AnchorTexts = make([]string, 0, len(links))
	result.LinkRels = make([]string, 0, len(links))
	for _, link := range links {
		result.Links = append(result.Links, link.TargetURL)
		result.AnchorTexts = append(result.AnchorTexts, link.AnchorText)
		result.LinkRels = append(result.LinkRels, link.RelAttribute)
	}
	return nil
}

// GetLinks returns the links recorded for sourceURL in document order
func (s *SQLiteStorage) GetLinks(sourceURL string) ([]Link, error) {
	rows, err := s.db.Query(`
		SELECT source_url, target_url, anchor_text, rel_attribute, position
		FROM links
		WHERE source_url = ?
		ORDER BY position
	`, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	links := []Link{}
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.SourceURL, &link.TargetURL, &link.AnchorText, &link.RelAttribute, &link.Position); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate links: %w", err)
	}

	return links, nil
}

// GetStatusCounts returns the number of success and error pages
func (s *SQLiteStorage) GetStatusCounts() (success int, failed int, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0)
		FROM pages
	`

	err = s.db.QueryRow(query).Scan(&success, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get status counts: %w", err)
	}

	return success, failed, nil
}

// GetMeta retrieves a metadata value
func (s *SQLiteStorage) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM crawl_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

// SetMeta stores a metadata value
func (s *SQLiteStorage) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO crawl_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

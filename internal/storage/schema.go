package storage

const schemaSQL = `
-- One row per fetched URL, success or error
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('success', 'error')),
    depth INTEGER NOT NULL DEFAULT 0,

    -- Page metadata
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    main_heading TEXT NOT NULL DEFAULT '',

    -- Markdown document, or the error document
    content TEXT NOT NULL DEFAULT '',

    -- Fetch details
    status_code INTEGER NOT NULL DEFAULT 0,
    content_type TEXT NOT NULL DEFAULT '',
    final_url TEXT NOT NULL DEFAULT '',
    ttfb_ms INTEGER NOT NULL DEFAULT 0,
    download_time_ms INTEGER NOT NULL DEFAULT 0,
    dns_lookup_ms INTEGER NOT NULL DEFAULT 0,
    tcp_connect_ms INTEGER NOT NULL DEFAULT 0,
    tls_handshake_ms INTEGER NOT NULL DEFAULT 0,

    error_message TEXT NOT NULL DEFAULT '',
    scraped_at TEXT NOT NULL,
    saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status);
CREATE INDEX IF NOT EXISTS idx_pages_depth ON pages(depth);

-- View for reporting per status
CREATE VIEW IF NOT EXISTS status_summary AS
SELECT
    status,
    COUNT(*) as count,
    MAX(depth) as max_depth
FROM pages
GROUP BY status;

-- In-scope links discovered on each page, in document order
CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_url TEXT NOT NULL,
    target_url TEXT NOT NULL,
    anchor_text TEXT NOT NULL DEFAULT '',
    rel_attribute TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    UNIQUE(source_url, target_url)
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_url);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_url);

-- Crawl meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`

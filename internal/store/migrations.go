package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS summary_records (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    title      TEXT NOT NULL,
    seeders    INTEGER NOT NULL DEFAULT 0,
    leechers   INTEGER NOT NULL DEFAULT 0,
    peers      INTEGER NOT NULL DEFAULT 0,
    category   TEXT NOT NULL,
    date       TEXT NOT NULL,
    timestamp  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summary_category_date ON summary_records(category, date);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS summary_records (
    id         BIGSERIAL PRIMARY KEY,
    title      TEXT NOT NULL,
    seeders    BIGINT NOT NULL DEFAULT 0,
    leechers   BIGINT NOT NULL DEFAULT 0,
    peers      BIGINT NOT NULL DEFAULT 0,
    category   TEXT NOT NULL,
    date       TEXT NOT NULL,
    timestamp  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summary_category_date ON summary_records(category, date);
`

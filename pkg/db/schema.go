// Package db provides the SQLite-backed brokerage ledger.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Agents table
-- Holds each agent's profile and salary-cap ledger
CREATE TABLE IF NOT EXISTS agents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK (status IN ('ACTIVE', 'INACTIVE')),
    year_to_date_commission REAL NOT NULL DEFAULT 0 CHECK (year_to_date_commission >= 0),
    commission_year INTEGER NOT NULL,   -- calendar year the YTD figure belongs to
    salary_cap REAL NOT NULL CHECK (salary_cap > 0),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agents_status
    ON agents(status);

-- Transactions table
-- One row per recorded sale or rental with its settled commission breakdown
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL CHECK (kind IN ('SALE', 'RENT')),
    amount REAL NOT NULL CHECK (amount > 0),
    date TEXT NOT NULL,                 -- YYYY-MM-DD
    agent_id INTEGER NOT NULL REFERENCES agents(id),
    listing_agent_id INTEGER REFERENCES agents(id),
    client_ref TEXT NOT NULL DEFAULT '',
    property_ref TEXT NOT NULL DEFAULT '',
    variant TEXT NOT NULL,
    total_commission REAL NOT NULL,
    company_commission REAL NOT NULL,
    selling_agent_commission REAL NOT NULL,
    listing_agent_commission REAL NOT NULL DEFAULT 0,
    selling_agent_at_cap BOOLEAN NOT NULL DEFAULT 0,
    listing_agent_at_cap BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_agent
    ON transactions(agent_id);

CREATE INDEX IF NOT EXISTS idx_transactions_listing_agent
    ON transactions(listing_agent_id);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON transactions(date);

-- Ledger metadata table
-- Stores key-value metadata such as the last recording time
CREATE TABLE IF NOT EXISTS ledger_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}

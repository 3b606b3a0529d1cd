package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
    username             TEXT PRIMARY KEY,
    current_age          INTEGER NOT NULL,
    target_age           INTEGER NOT NULL,
    work_end_age         INTEGER NOT NULL,
    ss_start_age         INTEGER NOT NULL,
    life_expectancy      INTEGER NOT NULL,
    start_year           INTEGER NOT NULL,
    work_income          TEXT NOT NULL,
    ss_monthly_benefit   TEXT NOT NULL,
    inflation_rate       TEXT NOT NULL,
    cola_rate            TEXT NOT NULL,
    max_flex_reduction   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    username             TEXT NOT NULL,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    account_type         TEXT NOT NULL,
    balance              TEXT NOT NULL,
    annual_return        TEXT NOT NULL,
    withdrawal_priority  INTEGER NOT NULL,
    planned_contribution TEXT NOT NULL,
    contribute_after_work INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (username, name)
);

CREATE TABLE IF NOT EXISTS expenses (
    username             TEXT NOT NULL,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    annual_amount        TEXT NOT NULL,
    class                TEXT NOT NULL,
    PRIMARY KEY (username, name)
);

CREATE TABLE IF NOT EXISTS events (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    username             TEXT NOT NULL,
    year                 INTEGER NOT NULL,
    label                TEXT NOT NULL,
    amount               TEXT NOT NULL,
    account              TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    username             TEXT NOT NULL,
    account              TEXT NOT NULL,
    snapshot_date        TEXT NOT NULL,
    amount_contributed   TEXT NOT NULL,
    total_value          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user ON events(username, year);
CREATE INDEX IF NOT EXISTS idx_snapshots_user ON snapshots(username, snapshot_date);
`

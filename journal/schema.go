package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	start_balance REAL NOT NULL,
	gross_balance REAL NOT NULL,
	net_balance REAL NOT NULL,
	trades INTEGER NOT NULL,
	max_drawdown REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id INTEGER NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	volume INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	entry_date DATETIME NOT NULL,
	exit_date DATETIME NOT NULL,
	commission REAL NOT NULL,
	realized_pl REAL NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS days (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	balance REAL NOT NULL,
	drawdown REAL NOT NULL,
	open_longs INTEGER NOT NULL,
	open_shorts INTEGER NOT NULL,
	PRIMARY KEY (run_id, date)
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_date ON trades(exit_date);
`

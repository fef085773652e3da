package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, quantity, entry_price, exit_price, pnl, pnl_percent, exit_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.PnL, t.PnLPercent, t.ExitTime,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, stocks_value, total_value)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Cash, e.StocksValue, e.TotalValue,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

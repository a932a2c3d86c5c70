package tradelog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// DuckDBWriter persists trade records through an in-memory DuckDB table and
// exports the table to a parquet file after every write.
type DuckDBWriter struct {
	db         *sql.DB
	outputPath string
	sq         squirrel.StatementBuilderType
	mu         sync.Mutex
}

// NewDuckDBWriter creates and initializes a writer for the given parquet
// path. Existing data at the path is loaded so restarts keep the full log.
func NewDuckDBWriter(outputPath string) (*DuckDBWriter, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to create trade log directory", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to open duckdb", err)
	}

	w := &DuckDBWriter{
		db:         db,
		outputPath: outputPath,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		mu:         sync.Mutex{},
	}

	if err := w.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return w, nil
}

func (w *DuckDBWriter) initialize() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT,
			mode TEXT,
			side TEXT,
			pair TEXT,
			volume DOUBLE,
			price DOUBLE,
			executed_at TIMESTAMP,
			rationale TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to create trades table", err)
	}

	// Load the existing log if the parquet file is already there.
	if _, err := os.Stat(w.outputPath); err == nil {
		if _, err := w.db.Exec(fmt.Sprintf(`INSERT INTO trades SELECT * FROM read_parquet('%s')`, w.outputPath)); err != nil {
			// Unreadable previous log: start fresh rather than refuse to trade.
			_ = err
		}
	}

	return nil
}

// Write implements Writer.
func (w *DuckDBWriter) Write(record types.TradeRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeTradeLogWriteFailed, "writer is closed")
	}

	insert := w.sq.
		Insert("trades").
		Columns("id", "mode", "side", "pair", "volume", "price", "executed_at", "rationale").
		Values(record.ID, string(record.Mode), string(record.Side), record.Pair,
			record.Volume, record.Price, record.Timestamp, record.Rationale).
		RunWith(w.db)

	if _, err := insert.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to insert trade", err)
	}

	return w.exportToParquet()
}

// Count returns the number of persisted trades.
func (w *DuckDBWriter) Count() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, errors.New(errors.ErrCodeTradeLogWriteFailed, "writer is closed")
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// Close implements Writer.
func (w *DuckDBWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to close duckdb", err)
	}

	return nil
}

func (w *DuckDBWriter) exportToParquet() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM trades ORDER BY executed_at ASC)
		TO '%s' (FORMAT PARQUET)
	`, w.outputPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeTradeLogWriteFailed, "failed to export trades to parquet", err)
	}

	return nil
}

package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/flipfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTradesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		item_id INTEGER,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		buy_price INTEGER NOT NULL,
		sell_price INTEGER,
		buy_time INTEGER NOT NULL,
		sell_time INTEGER,
		strategy TEXT DEFAULT '',
		is_members BOOLEAN DEFAULT FALSE,
		deleted BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		icon TEXT,
		quantity INTEGER NOT NULL,
		avg_buy_price INTEGER NOT NULL,
		category_id INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, item_id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, deleted);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTradesTable adds columns introduced after the first release to
// pre-existing trades tables. Strategy tagging and the members flag
// shipped later; older databases lack both columns.
func migrateTradesTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='trades'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'trades' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'trades' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'trades' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'trades' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(trades)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'trades': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'trades'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'trades': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'trades': %v", err)
		}
		return
	}

	if _, ok := columnExists["strategy"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN strategy TEXT DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'strategy' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'strategy' column to 'trades' table")
		}
	}
	if _, ok := columnExists["is_members"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN is_members BOOLEAN DEFAULT FALSE")
		if err != nil {
			logger.L.Error("Error adding 'is_members' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'is_members' column to 'trades' table")
		}
	}
	if _, ok := columnExists["deleted"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN deleted BOOLEAN DEFAULT FALSE")
		if err != nil {
			logger.L.Error("Error adding 'deleted' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'deleted' column to 'trades' table")
		}
	}
}

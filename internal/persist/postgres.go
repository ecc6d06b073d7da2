package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"risk-engine-go/risk"
)

// 单行表，固定 id=1。
const stateRowID = 1

// PostgresStore 将状态保存在 risk_state 表中。
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres 打开连接并确认可用。
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema 建表（幂等）。
func (p *PostgresStore) EnsureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS risk_state (
			id               INTEGER PRIMARY KEY,
			total_exposure   DOUBLE PRECISION NOT NULL DEFAULT 0,
			active_positions INTEGER NOT NULL DEFAULT 0,
			var              DOUBLE PRECISION NOT NULL DEFAULT 0,
			cvar             DOUBLE PRECISION NOT NULL DEFAULT 0,
			drawdown         DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_update      TEXT NOT NULL DEFAULT '',
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := p.db.Exec(query); err != nil {
		return fmt.Errorf("create risk_state table: %w", err)
	}
	return nil
}

// Load 读取唯一一行状态；无记录时返回 ErrNotFound。
func (p *PostgresStore) Load() (risk.State, error) {
	query := `
		SELECT total_exposure, active_positions, var, cvar, drawdown, last_update
		FROM risk_state
		WHERE id = $1`

	var st risk.State
	err := p.db.QueryRow(query, stateRowID).Scan(
		&st.TotalExposure,
		&st.ActivePositions,
		&st.VaR,
		&st.CVaR,
		&st.Drawdown,
		&st.LastUpdate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return risk.State{}, ErrNotFound
		}
		return risk.State{}, fmt.Errorf("query risk_state: %w", err)
	}
	return st, nil
}

// Save upsert 唯一一行状态。
func (p *PostgresStore) Save(st risk.State) error {
	query := `
		INSERT INTO risk_state (id, total_exposure, active_positions, var, cvar, drawdown, last_update, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			total_exposure = EXCLUDED.total_exposure,
			active_positions = EXCLUDED.active_positions,
			var = EXCLUDED.var,
			cvar = EXCLUDED.cvar,
			drawdown = EXCLUDED.drawdown,
			last_update = EXCLUDED.last_update,
			updated_at = EXCLUDED.updated_at`

	_, err := p.db.Exec(query,
		stateRowID,
		st.TotalExposure,
		st.ActivePositions,
		st.VaR,
		st.CVaR,
		st.Drawdown,
		st.LastUpdate,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert risk_state: %w", err)
	}
	return nil
}

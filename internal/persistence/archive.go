// Package persistence is the durable-storage collaborator: it accepts full
// snapshots and returns them unchanged on load. The simulation core never
// assumes synchronous durability.
package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Archive stores one JSON-encoded snapshot per (simulation, round) in DuckDB.
type Archive struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewArchive opens (or creates) the archive database. Use ":memory:" for an
// ephemeral archive.
func NewArchive(path string, log *logger.Logger) (*Archive, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchiveFailed, "failed to open archive database", err)
	}

	return &Archive{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the snapshots table.
func (a *Archive) Initialize() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			simulation_id TEXT,
			round_id TEXT,
			day INTEGER,
			intraday_hour DOUBLE,
			payload TEXT,
			saved_at TIMESTAMP,
			PRIMARY KEY (simulation_id, round_id)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to create snapshots table", err)
	}

	return nil
}

// Save upserts the snapshot for its round. Saving the same round twice
// replaces the stored payload.
func (a *Archive) Save(simulationID string, snap *types.SimulationSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotEncode, "failed to encode snapshot", err)
	}

	query, args, err := a.sq.
		Insert("snapshots").
		Options("OR REPLACE").
		Columns("simulation_id", "round_id", "day", "intraday_hour", "payload", "saved_at").
		Values(simulationID, snap.Round().Key(), snap.Day, snap.IntradayHour, string(payload), time.Now()).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to build insert query", err)
	}

	if _, err := a.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to save snapshot", err)
	}

	a.logger.Debug("snapshot archived",
		zap.String("simulation", simulationID),
		zap.String("round", snap.Round().Key()),
	)

	return nil
}

// Load returns the latest stored snapshot for a simulation, unchanged from
// what was saved.
func (a *Archive) Load(simulationID string) (*types.SimulationSnapshot, error) {
	query, args, err := a.sq.
		Select("payload").
		From("snapshots").
		Where(squirrel.Eq{"simulation_id": simulationID}).
		OrderBy("day DESC", "intraday_hour DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchiveFailed, "failed to build select query", err)
	}

	var payload string
	if err := a.db.QueryRow(query, args...).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeSnapshotNotFound, "no archived snapshot for simulation %s", simulationID)
		}

		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to load snapshot", err)
	}

	var snap types.SimulationSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotEncode, "failed to decode archived snapshot", err)
	}

	return &snap, nil
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

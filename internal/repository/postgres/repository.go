package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/fleet-monitor/internal/models"
	"github.com/Sh00ty/fleet-monitor/internal/pgerror"
	"github.com/Sh00ty/fleet-monitor/pkg/monitor"
)

const (
	fleetsTable      = "fleets"
	assignmentsTable = "assignments"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepo(ctx context.Context, user, password, addr string, port uint16) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(
		fmt.Sprintf(
			"user=%s password=%s host=%s port=%d dbname=postgres sslmode=disable pool_max_conns=15",
			user, password, addr, port,
		),
	)
	if cfg == nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	err = pool.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return &Repository{
		db: pool,
	}, nil
}

// GetUnmonitoredFleets returns fleets that have no assignment yet, in
// registration order so placement stays deterministic across runs.
func (r *Repository) GetUnmonitoredFleets(ctx context.Context) ([]monitor.FleetSpec, error) {
	sql, args, err := squirrel.Select(
		"id",
		"capacity",
		"target_ref",
		"scope_ref",
		"update_grant",
		"probe_port",
		"probe_interval_ms",
		"healthy_threshold",
		"unhealthy_threshold",
	).
		From(fleetsTable).
		Where(squirrel.Eq{"monitored": false}).
		OrderBy("registered_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unmonitored fleets query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select unmonitored fleets: %w", err)
	}
	defer rows.Close()

	specs := make([]monitor.FleetSpec, 0, 64)
	for rows.Next() {
		var (
			spec       monitor.FleetSpec
			id         string
			intervalMs int64
		)
		err = rows.Scan(
			&id,
			&spec.Fleet.Capacity,
			&spec.Fleet.TargetRef,
			&spec.Fleet.ScopeRef,
			&spec.Fleet.UpdateGrant,
			&spec.HealthCheck.Port,
			&intervalMs,
			&spec.HealthCheck.HealthyThreshold,
			&spec.HealthCheck.UnhealthyThreshold,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fleet row: %w", err)
		}
		spec.Fleet.ID = monitor.FleetID(id)
		spec.HealthCheck.Interval = time.Duration(intervalMs) * time.Millisecond
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fleet rows: %w", err)
	}
	return specs, nil
}

// SaveAssignments persists the placement paths and marks the placed
// fleets monitored in one transaction. A fleet that already has an
// assignment is skipped with a warning, the rest of the batch goes
// through.
func (r *Repository) SaveAssignments(ctx context.Context, assignments []models.Assignment) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.RepeatableRead,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to start assignments transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, assignment := range assignments {
		batch.Queue(
			`insert into assignments (fleet, balancer, listener, target_group)
			values ($1, $2, $3, $4)
			on conflict (fleet) do nothing;`,
			assignment.Fleet,
			assignment.Balancer,
			assignment.Listener,
			assignment.TargetGroup,
		)
		batch.Queue(
			`update fleets set monitored = true where id = $1;`,
			assignment.Fleet,
		)
	}

	bResult := tx.SendBatch(ctx, batch)
	defer bResult.Close()

	saved := 0
	for _, assignment := range assignments {
		tag, err := bResult.Exec()
		if err != nil {
			if constraint, ok := pgerror.GetConstraintName(err); ok {
				return 0, fmt.Errorf(
					"failed to save assignment for fleet %s: constraint %s violated: %w",
					assignment.Fleet, constraint, err,
				)
			}
			return 0, fmt.Errorf("failed to save assignment for fleet %s: %w", assignment.Fleet, err)
		}
		if tag.RowsAffected() == 0 {
			log.Warn().Msgf("fleet %s already has an assignment", assignment.Fleet)
		} else {
			saved++
		}
		_, err = bResult.Exec()
		if err != nil {
			return 0, fmt.Errorf("failed to mark fleet %s monitored: %w", assignment.Fleet, err)
		}
	}

	if err := bResult.Close(); err != nil {
		return 0, fmt.Errorf("failed to close tx batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit assignments tx: %w", err)
	}
	return saved, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

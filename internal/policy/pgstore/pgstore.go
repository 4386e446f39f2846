// Package pgstore provides a PostgreSQL implementation of policy.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/warden/internal/policy"
)

var tracer = otel.Tracer("github.com/linnemanlabs/warden/internal/policy/pgstore")

//go:embed schema.sql
var schema string

// policyKey is the single row the triage policy lives under. The table is
// keyed so per-user policies can be added without a migration.
const policyKey = "triage"

// Store persists the triage policy in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Load retrieves the saved policy. ok=false means no row yet.
func (s *Store) Load(ctx context.Context) (policy.Policy, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Load", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM triage_policy WHERE key = $1`, policyKey,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Policy{}, false, fmt.Errorf("select policy: %w", err)
	}

	var p policy.Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return policy.Policy{}, false, fmt.Errorf("unmarshal policy: %w", err)
	}
	return p, true, nil
}

// Save upserts the policy row.
func (s *Store) Save(ctx context.Context, p policy.Policy) error {
	ctx, span := tracer.Start(ctx, "pgstore.Save", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO triage_policy (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		policyKey, raw,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}

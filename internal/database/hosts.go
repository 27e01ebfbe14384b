// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/metrics"
	"github.com/tomtom215/callscope/internal/models"
)

// Host store errors.
var (
	ErrHostNotFound = errors.New("host not found")
	ErrHostConflict = errors.New("host with this name already exists")
)

// CreateHost inserts a new host mapping. The name is the primary key;
// creating an existing name returns ErrHostConflict.
func (db *DB) CreateHost(ctx context.Context, host *models.Host) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now()
	if host.CreatedAt.IsZero() {
		host.CreatedAt = now
	}
	host.UpdatedAt = host.CreatedAt

	addresses, networks, err := marshalHostLists(host)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO hosts (name, addresses, networks, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		host.Name, addresses, networks, host.CreatedAt, host.UpdatedAt,
	)
	metrics.RecordDBQuery("insert", "hosts", time.Since(start), err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrHostConflict
		}
		return fmt.Errorf("failed to create host: %w", err)
	}
	return nil
}

// GetHost retrieves a host by name.
func (db *DB) GetHost(ctx context.Context, name string) (*models.Host, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT name, addresses, networks, created_at, updated_at FROM hosts WHERE name = ?`, name)

	host, err := scanHostRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHostNotFound
		}
		return nil, err
	}
	return host, nil
}

// ListHosts returns all host mappings ordered by name.
func (db *DB) ListHosts(ctx context.Context) ([]models.Host, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, addresses, networks, created_at, updated_at FROM hosts ORDER BY name ASC`)
	metrics.RecordDBQuery("select", "hosts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	hosts := make([]models.Host, 0)
	for rows.Next() {
		host, err := scanHostRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, *host)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hosts: %w", err)
	}
	return hosts, nil
}

// UpdateHost replaces the address lists of an existing host.
func (db *DB) UpdateHost(ctx context.Context, host *models.Host) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	host.UpdatedAt = time.Now()

	addresses, networks, err := marshalHostLists(host)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE hosts SET addresses = ?, networks = ?, updated_at = ? WHERE name = ?`,
		addresses, networks, host.UpdatedAt, host.Name,
	)
	metrics.RecordDBQuery("update", "hosts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update host: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrHostNotFound
	}
	return nil
}

// DeleteHost removes a host mapping by name.
func (db *DB) DeleteHost(ctx context.Context, name string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM hosts WHERE name = ?`, name)
	metrics.RecordDBQuery("delete", "hosts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete host: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrHostNotFound
	}
	return nil
}

// UpsertHostsBatch inserts or replaces a batch of host mappings inside one
// transaction. Bulk import uses this so a re-imported file converges on the
// file's contents regardless of what the table held before.
// Returns counts of created and updated rows.
func (db *DB) UpsertHostsBatch(ctx context.Context, hosts []models.Host) (created, updated int, err error) {
	if len(hosts) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("upsert_batch", "hosts", time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()
	for i := range hosts {
		host := &hosts[i]

		addresses, networks, mErr := marshalHostLists(host)
		if mErr != nil {
			err = mErr
			return 0, 0, err
		}

		var exists int
		if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM hosts WHERE name = ?`, host.Name).Scan(&exists); err != nil {
			err = fmt.Errorf("failed to check host %s: %w", host.Name, err)
			return 0, 0, err
		}

		if exists > 0 {
			if _, err = tx.ExecContext(ctx,
				`UPDATE hosts SET addresses = ?, networks = ?, updated_at = ? WHERE name = ?`,
				addresses, networks, now, host.Name); err != nil {
				err = fmt.Errorf("failed to update host %s: %w", host.Name, err)
				return 0, 0, err
			}
			updated++
		} else {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO hosts (name, addresses, networks, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				host.Name, addresses, networks, now, now); err != nil {
				err = fmt.Errorf("failed to insert host %s: %w", host.Name, err)
				return 0, 0, err
			}
			created++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit host batch: %w", err)
	}
	return created, updated, nil
}

// marshalHostLists serializes the address and network lists to JSON text.
func marshalHostLists(host *models.Host) (addresses, networks string, err error) {
	addrBytes, err := json.Marshal(host.Addresses)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal addresses for %s: %w", host.Name, err)
	}
	netBytes, err := json.Marshal(host.Networks)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal networks for %s: %w", host.Name, err)
	}
	return string(addrBytes), string(netBytes), nil
}

// scanHostRow scans one host row via the provided Scan function, decoding
// the JSON address lists.
func scanHostRow(scan func(dest ...any) error) (*models.Host, error) {
	var host models.Host
	var addresses, networks any

	if err := scan(&host.Name, &addresses, &networks, &host.CreatedAt, &host.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan host: %w", err)
	}

	if err := json.Unmarshal(jsonBytes(addresses), &host.Addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses for %s: %w", host.Name, err)
	}
	if networks != nil {
		if err := json.Unmarshal(jsonBytes(networks), &host.Networks); err != nil {
			return nil, fmt.Errorf("failed to decode networks for %s: %w", host.Name, err)
		}
	}
	return &host, nil
}

// jsonBytes normalizes a scanned JSON column value to bytes. DuckDB may
// hand back string or []byte depending on driver version.
func jsonBytes(v any) []byte {
	switch val := v.(type) {
	case string:
		return []byte(val)
	case []byte:
		return val
	default:
		return []byte("null")
	}
}

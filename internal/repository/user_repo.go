package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trafficdash/internal/model"
)

// TrafficRepository reads panel clients together with their traffic counters.
type TrafficRepository interface {
	// GetByUUID returns nil, nil when no client has the UUID.
	GetByUUID(ctx context.Context, uuid string) (*model.ClientTraffic, error)
	// GetByUsername returns nil, nil when no client has the username.
	GetByUsername(ctx context.Context, username string) (*model.ClientTraffic, error)
}

type trafficRepo struct {
	db *sql.DB
}

func NewTrafficRepo(db *sql.DB) TrafficRepository {
	return &trafficRepo{db: db}
}

const clientTrafficSelect = `
	SELECT u.id, u.uuid, u.email, u.enable,
	       COALESCE(i.remark, ''),
	       COALESCE(c.up, 0), COALESCE(c.down, 0),
	       u.expiry_time
	FROM users u
	JOIN inbounds i ON u.inbound_id = i.id
	JOIN client_traffics c ON u.id = c.user_id
`

func (r *trafficRepo) GetByUUID(ctx context.Context, uuid string) (*model.ClientTraffic, error) {
	t, err := r.getOne(ctx, clientTrafficSelect+` WHERE u.uuid = $1 LIMIT 1`, uuid)
	if err != nil {
		return nil, fmt.Errorf("fetching client by uuid %s: %w", uuid, err)
	}
	return t, nil
}

func (r *trafficRepo) GetByUsername(ctx context.Context, username string) (*model.ClientTraffic, error) {
	t, err := r.getOne(ctx, clientTrafficSelect+` WHERE u.email = $1 LIMIT 1`, username)
	if err != nil {
		return nil, fmt.Errorf("fetching client by username %s: %w", username, err)
	}
	return t, nil
}

func (r *trafficRepo) getOne(ctx context.Context, query string, arg string) (*model.ClientTraffic, error) {
	var (
		t      model.ClientTraffic
		expiry sql.NullInt64
	)
	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&t.ID, &t.UUID, &t.Username, &t.Enabled, &t.Inbound, &t.Upload, &t.Download, &expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	// Expiry is stored in epoch milliseconds; zero means the client never expires.
	if expiry.Valid && expiry.Int64 > 0 {
		ts := time.UnixMilli(expiry.Int64)
		t.ExpiryTime = &ts
	}
	return &t, nil
}

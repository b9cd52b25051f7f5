package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/silverlake-dw/silverlake/internal/cleanse"
)

const lastRunKey = "silverlake:pipeline:last_run"

// ErrNoReport indicates no pipeline run has been recorded yet.
var ErrNoReport = errors.New("status: no run report recorded")

// Store persists the most recent pipeline run report so operators can
// inspect pipeline state without a database connection.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore instantiates the store. A zero ttl keeps reports forever.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Save overwrites the last run report.
func (s *Store) Save(ctx context.Context, report cleanse.RunReport) error {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("status: marshal report: %w", err)
	}
	if err := s.client.Set(ctx, lastRunKey, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("status: save report: %w", err)
	}
	return nil
}

// Load returns the last recorded run report.
func (s *Store) Load(ctx context.Context) (cleanse.RunReport, error) {
	if s == nil || s.client == nil {
		return cleanse.RunReport{}, ErrNoReport
	}
	raw, err := s.client.Get(ctx, lastRunKey).Bytes()
	if err == redis.Nil {
		return cleanse.RunReport{}, ErrNoReport
	}
	if err != nil {
		return cleanse.RunReport{}, fmt.Errorf("status: load report: %w", err)
	}
	var report cleanse.RunReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return cleanse.RunReport{}, fmt.Errorf("status: decode report: %w", err)
	}
	return report, nil
}

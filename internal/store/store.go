// Package store persists run history and the search/fetch response cache.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// CacheKind separates cached search responses from cached page fetches.
type CacheKind string

const (
	CacheSearch CacheKind = "search"
	CacheFetch  CacheKind = "fetch"
)

// ErrNotFound is wrapped by lookups and updates that match no row.
var ErrNotFound = eris.New("not found")

// defaultListLimit caps ListRuns when no limit is given.
const defaultListLimit = 100

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Company string          `json:"company,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for account-mapping runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, company model.Company) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.AccountMap) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error
	ListPhases(ctx context.Context, runID string) ([]model.RunPhase, error)

	// Response cache. A miss returns nil data and no error.
	GetCached(ctx context.Context, kind CacheKind, key string) ([]byte, error)
	SetCached(ctx context.Context, kind CacheKind, key string, data []byte, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// CacheKey hashes a query or URL into the fixed-width cache key.
func CacheKey(kind CacheKind, raw string) string {
	sum := sha256.Sum256([]byte(string(kind) + "\x00" + raw))
	return hex.EncodeToString(sum[:])
}

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

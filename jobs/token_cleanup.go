package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type expiredTokenPuller interface {
	PullExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanup drops expired refresh-token fingerprints from user documents.
type TokenCleanup struct {
	users   expiredTokenPuller
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

func NewTokenCleanup(users expiredTokenPuller, logger *zap.Logger) *TokenCleanup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenCleanup{
		users:   users,
		timeout: time.Minute,
		now:     time.Now,
		logger:  logger,
	}
}

func (j *TokenCleanup) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	n, err := j.users.PullExpiredRefreshTokens(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("pull expired refresh tokens: %w", err)
	}
	if n > 0 {
		j.logger.Info("token cleanup completed", zap.Int64("users", n))
	}
	return nil
}

// Schedule registers the job on c under spec, a standard cron expression or descriptor
// such as "@hourly".
func (j *TokenCleanup) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if err := j.Run(context.Background()); err != nil {
			j.logger.Error("token cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule token cleanup %q: %w", spec, err)
	}
	return id, nil
}

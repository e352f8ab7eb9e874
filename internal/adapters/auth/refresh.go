package auth

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"labbooking/internal/domain"
)

type sharedRefreshSource struct {
	src    domain.TokenSource
	group  singleflight.Group
	logger *slog.Logger
}

// NewSharedRefresh wraps src so that concurrent Refresh calls share a single
// underlying refresh. Requests that hit 401 together trigger one token exchange.
func NewSharedRefresh(src domain.TokenSource, logger *slog.Logger) domain.TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &sharedRefreshSource{src: src, logger: logger}
}

func (s *sharedRefreshSource) Token(ctx context.Context) (string, error) {
	return s.src.Token(ctx)
}

func (s *sharedRefreshSource) Refresh(ctx context.Context) (string, error) {
	v, err, shared := s.group.Do("refresh", func() (any, error) {
		return s.src.Refresh(ctx)
	})
	if err != nil {
		s.logger.Warn("token refresh failed", "error", err)
		return "", err
	}
	if shared {
		s.logger.Debug("token refresh shared with concurrent caller")
	}
	return v.(string), nil
}

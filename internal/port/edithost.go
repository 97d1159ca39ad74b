package port

import (
	"context"

	"github.com/evertl/reelpilot/internal/domain"
)

// EditHost receives an assembled timeline. Push operates on live user state
// and is attempted exactly once per build; failures are reported, never
// retried.
type EditHost interface {
	PushTimeline(ctx context.Context, tl *domain.Timeline) (detail string, err error)
}

package interfaces

import (
	"context"

	"github.com/dogamak/wasmpub/pkg/domain/model"
)

// Notifier reports the outcome of a publish run to an external channel.
// Notification failures must never change the publish outcome.
type Notifier interface {
	NotifyResult(ctx context.Context, result *model.PublishResult, runErr error) error
}

package publisher

import (
	"context"
	"errors"

	"github.com/birka/schema/internal/store"
)

// Publisher is notified after every successful annotation toggle
type Publisher interface {
	PublishAnnotationChange(ctx context.Context, change store.Change) error
}

// Multi fans a change out to several publishers
type Multi []Publisher

// PublishAnnotationChange calls every publisher and joins their errors
func (m Multi) PublishAnnotationChange(ctx context.Context, change store.Change) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishAnnotationChange(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards changes
type Nop struct{}

func (Nop) PublishAnnotationChange(context.Context, store.Change) error { return nil }

package repository

import (
	"context"

	"internship-portal/backend/internal/session/domain"
)

// Repository stores session records and carries auth change notifications.
type Repository interface {
	Create(ctx context.Context, r *domain.Record) error
	Get(ctx context.Context, id string) (*domain.Record, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, e domain.ChangeEvent) error
	// Subscribe delivers change events to fn until the returned stop func is called or ctx ends.
	Subscribe(ctx context.Context, fn func(domain.ChangeEvent)) (stop func() error, err error)
}

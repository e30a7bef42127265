package domain

import "context"

type TransferRepository interface {
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, id string) (*Transfer, error)
	Update(ctx context.Context, transfer *Transfer) error
	Delete(ctx context.Context, id string) error
	FindByStatus(ctx context.Context, status TransferStatus, limit, offset int) ([]*Transfer, error)
	List(ctx context.Context, limit, offset int) ([]*Transfer, error)
	UpdateStatus(ctx context.Context, id string, status TransferStatus) error
}

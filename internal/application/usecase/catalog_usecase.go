// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"io"

	common "storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

var (
	ErrCatalogRepoMissing = errors.New("catalog: product repository is not configured")
)

// ImageStore is the outbound port for catalog image uploads.
type ImageStore interface {
	Upload(ctx context.Context, fileName, contentType string, body io.Reader) (string, error)
}

// CatalogUsecase fronts the Remote Catalog Channel: live subscription
// plus fire-and-forget durable writes, with manager-form validation on
// the write path. No optimistic local mutation — the UI learns of a
// successful write from the next snapshot delivery.
type CatalogUsecase struct {
	repo   productdom.Repository
	images ImageStore // optional
}

func NewCatalogUsecase(repo productdom.Repository, images ImageStore) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, images: images}
}

// Subscribe opens the live catalog feed.
func (uc *CatalogUsecase) Subscribe(
	ctx context.Context,
	onChange func([]productdom.Product),
	onError func(error),
) (common.Detach, error) {
	if uc == nil || uc.repo == nil {
		return nil, ErrCatalogRepoMissing
	}
	return uc.repo.Subscribe(ctx, onChange, onError)
}

// CreateProduct validates the form input and issues one durable write.
func (uc *CatalogUsecase) CreateProduct(ctx context.Context, in productdom.Input) (string, error) {
	if uc == nil || uc.repo == nil {
		return "", ErrCatalogRepoMissing
	}
	if err := in.Validate(); err != nil {
		return "", common.NewValidationError("%v", err)
	}
	return uc.repo.Create(ctx, in)
}

func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, id string, in productdom.Input) error {
	if uc == nil || uc.repo == nil {
		return ErrCatalogRepoMissing
	}
	if err := in.Validate(); err != nil {
		return common.NewValidationError("%v", err)
	}
	return uc.repo.Update(ctx, id, in)
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	if uc == nil || uc.repo == nil {
		return ErrCatalogRepoMissing
	}
	return uc.repo.Delete(ctx, id)
}

// UploadImage stores a catalog image and returns its public URL for the
// product form. Optional capability: without an image store configured
// the manager form falls back to pasting external URLs.
func (uc *CatalogUsecase) UploadImage(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	if uc == nil || uc.repo == nil {
		return "", ErrCatalogRepoMissing
	}
	if uc.images == nil {
		return "", common.NewValidationError("image uploads are not configured")
	}
	return uc.images.Upload(ctx, fileName, contentType, body)
}

// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	common "storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: store-assigned ✅ (docId is the source of truth for Product.ID)
// - fields: title, price, description, category, image,
//   rating{rate,count}, createdAt, updatedAt
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

// Subscribe delivers the full normalized catalog snapshot on every
// collection change, store-default order.
func (r *ProductRepositoryFS) Subscribe(
	ctx context.Context,
	onChange func([]productdom.Product),
	onError func(error),
) (common.Detach, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	if onChange == nil {
		return nil, errors.New("product_repository_fs: onChange is nil")
	}

	subCtx, cancel := context.WithCancel(ctx)

	go watchQuery(subCtx, "products.subscribe", r.col().Query,
		func(snap *firestore.QuerySnapshot) {
			docs, err := snap.Documents.GetAll()
			if err != nil {
				if onError != nil {
					onError(common.NewTransportError("products.subscribe", err))
				}
				return
			}
			products := make([]productdom.Product, 0, len(docs))
			for _, doc := range docs {
				products = append(products, productFromDoc(doc.Ref.ID, doc.Data()))
			}
			onChange(products)
		},
		onError,
	)

	return detachFor(cancel), nil
}

// Create normalizes the input and issues one durable write.
// UI 側は楽観更新しない（成功は次の snapshot 配信で知る）。
func (r *ProductRepositoryFS) Create(ctx context.Context, in productdom.Input) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("product_repository_fs: firestore client is nil")
	}

	doc := r.col().NewDoc()
	_, err := doc.Set(ctx, map[string]any{
		"title":       in.Title,
		"price":       in.Price,
		"description": in.Description,
		"category":    in.Category,
		"image":       in.Image,
		"rating":      ratingDoc(in.NormalizedRating()),
		"createdAt":   firestore.ServerTimestamp,
		"updatedAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return "", common.NewTransportError("products.create", err)
	}
	return doc.ID, nil
}

func (r *ProductRepositoryFS) Update(ctx context.Context, id string, in productdom.Input) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(id)
	if pid == "" {
		return errors.New("product_repository_fs: id is empty")
	}

	_, err := r.col().Doc(pid).Update(ctx, []firestore.Update{
		{Path: "title", Value: in.Title},
		{Path: "price", Value: in.Price},
		{Path: "description", Value: in.Description},
		{Path: "category", Value: in.Category},
		{Path: "image", Value: in.Image},
		{Path: "rating", Value: ratingDoc(in.NormalizedRating())},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return common.NewTransportError("products.update", err)
	}
	return nil
}

// Delete removes the document. Missing id is not an error (Firestore
// treats the delete as a no-op).
func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(id)
	if pid == "" {
		return errors.New("product_repository_fs: id is empty")
	}

	if _, err := r.col().Doc(pid).Delete(ctx); err != nil {
		return common.NewTransportError("products.delete", err)
	}
	return nil
}

// -----------------------------------------
// Firestore decode
// -----------------------------------------

func ratingDoc(r productdom.Rating) map[string]any {
	return map[string]any{"rate": r.Rate, "count": r.Count}
}

// productFromDoc decodes one document with the read-path coercions:
// missing price -> 0, missing strings -> "", rating -> {0,0}.
func productFromDoc(docID string, raw map[string]any) productdom.Product {
	p := productdom.Product{
		ID:          docID,
		Title:       asString(raw["title"]),
		Price:       asFloat(raw["price"]),
		Description: asString(raw["description"]),
		Category:    asString(raw["category"]),
		Image:       asString(raw["image"]),
		Rating:      ratingFromDoc(raw["rating"]),
	}
	return productdom.Normalize(p)
}

func ratingFromDoc(v any) productdom.Rating {
	m := asMap(v)
	if m == nil {
		return productdom.Rating{}
	}
	return productdom.Rating{
		Rate:  asFloat(m["rate"]),
		Count: asInt(m["count"]),
	}
}

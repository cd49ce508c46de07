// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	common "storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// Collection design:
// - collection: orders
// - docId: store-assigned
// - fields: userId, userEmail?, userName?, shippingAddress?, items,
//   total, createdAt
//
// userEmail/userName/shippingAddress は空なら「書かない」。
// "" を保存するのは契約違反（absent fields are omitted）。
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// Create writes one order document atomically: either the whole
// document exists afterwards or none of it does.
func (r *OrderRepositoryFS) Create(ctx context.Context, d orderdom.Draft) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("order_repository_fs: firestore client is nil")
	}
	if err := d.Validate(); err != nil {
		return "", err
	}

	items := make([]map[string]any, 0, len(d.Items))
	for _, it := range d.Items {
		it = orderdom.NormalizeItem(it)
		items = append(items, map[string]any{
			"id":          it.ID,
			"title":       it.Title,
			"price":       it.Price,
			"description": it.Description,
			"category":    it.Category,
			"image":       it.Image,
			"rating":      map[string]any{"rate": it.Rating.Rate, "count": it.Rating.Count},
			"quantity":    it.Quantity,
		})
	}

	payload := map[string]any{
		"userId":    d.UserID,
		"items":     items,
		"total":     d.Total,
		"createdAt": firestore.ServerTimestamp,
	}
	if v := strings.TrimSpace(d.UserEmail); v != "" {
		payload["userEmail"] = v
	}
	if v := strings.TrimSpace(d.UserName); v != "" {
		payload["userName"] = v
	}
	if v := strings.TrimSpace(d.ShippingAddress); v != "" {
		payload["shippingAddress"] = v
	}

	doc := r.col().NewDoc()
	if _, err := doc.Set(ctx, payload); err != nil {
		return "", common.NewTransportError("orders.create", err)
	}
	return doc.ID, nil
}

// SubscribeByUser opens a live feed restricted server-side to
// userId == userID, ordered createdAt DESC (the ordering contract).
func (r *OrderRepositoryFS) SubscribeByUser(
	ctx context.Context,
	userID string,
	onChange func([]orderdom.Order),
	onError func(error),
) (common.Detach, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("order_repository_fs: userID is empty")
	}
	if onChange == nil {
		return nil, errors.New("order_repository_fs: onChange is nil")
	}

	q := r.col().
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc)

	subCtx, cancel := context.WithCancel(ctx)

	go watchQuery(subCtx, "orders.subscribe", q,
		func(snap *firestore.QuerySnapshot) {
			docs, err := snap.Documents.GetAll()
			if err != nil {
				if onError != nil {
					onError(common.NewTransportError("orders.subscribe", err))
				}
				return
			}
			orders := make([]orderdom.Order, 0, len(docs))
			for _, doc := range docs {
				orders = append(orders, orderFromDoc(doc.Ref.ID, uid, doc.Data()))
			}
			onChange(orders)
		},
		onError,
	)

	return detachFor(cancel), nil
}

// GetByID returns (nil, nil) when the id does not exist.
// アクセス制御はしない（返した order の userId 確認は呼び出し側の責務）。
func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(id)
	if oid == "" {
		return nil, errors.New("order_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(oid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, common.NewTransportError("orders.get", err)
	}

	o := orderFromDoc(snap.Ref.ID, "", snap.Data())
	return &o, nil
}

// DeleteByUser removes every order owned by the principal, batched
// per 400 writes. Best-effort: a failure partway leaves earlier
// batches deleted (no rollback) and surfaces the error.
func (r *OrderRepositoryFS) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("order_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return 0, errors.New("order_repository_fs: userID is empty")
	}

	it := r.col().Where("userId", "==", uid).Documents(ctx)
	defer it.Stop()

	batch := r.Client.Batch()
	count := 0
	pending := 0
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return count, common.NewTransportError("orders.deleteByUser", err)
		}

		batch.Delete(doc.Ref)
		pending++
		if pending%400 == 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return count, common.NewTransportError("orders.deleteByUser", err)
			}
			count += pending
			pending = 0
			batch = r.Client.Batch()
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return count, common.NewTransportError("orders.deleteByUser", err)
		}
		count += pending
	}
	return count, nil
}

// -----------------------------------------
// Firestore decode
// -----------------------------------------

// orderFromDoc decodes one order document. fallbackUserID fills a
// missing userId field (subscription context already knows the owner).
func orderFromDoc(docID, fallbackUserID string, raw map[string]any) orderdom.Order {
	o := orderdom.Order{
		ID:              docID,
		UserID:          strings.TrimSpace(asString(raw["userId"])),
		UserEmail:       strings.TrimSpace(asString(raw["userEmail"])),
		UserName:        strings.TrimSpace(asString(raw["userName"])),
		ShippingAddress: strings.TrimSpace(asString(raw["shippingAddress"])),
		Total:           asFloat(raw["total"]),
		CreatedAt:       asTimePtr(raw["createdAt"]),
	}
	if o.UserID == "" {
		o.UserID = fallbackUserID
	}

	items := asSlice(raw["items"])
	o.Items = make([]orderdom.ItemSnapshot, 0, len(items))
	for _, v := range items {
		m := asMap(v)
		if m == nil {
			continue
		}
		it := orderdom.ItemSnapshot{
			ID:          strings.TrimSpace(asString(m["id"])),
			Title:       asString(m["title"]),
			Price:       asFloat(m["price"]),
			Description: asString(m["description"]),
			Category:    asString(m["category"]),
			Image:       asString(m["image"]),
			Quantity:    asInt(m["quantity"]),
		}
		if rm := asMap(m["rating"]); rm != nil {
			it.Rating.Rate = asFloat(rm["rate"])
			it.Rating.Count = asInt(rm["count"])
		}
		o.Items = append(o.Items, orderdom.NormalizeItem(it))
	}
	return o
}

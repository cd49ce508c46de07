// internal/adapters/out/firestore/subscribe_fs.go
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	common "storefront/internal/domain/common"
)

// resubscribeDelay is the wait before a failed listener is reopened.
const resubscribeDelay = 3 * time.Second

// watchQuery runs a collection snapshot listener until ctx is canceled.
//
// Firestore の snapshot iterator は致命的エラーで終了してしまうため、
// onError へ通知した上で少し待って張り直す。購読契約としては
// 「エラー後も open のまま」を維持する。
func watchQuery(
	ctx context.Context,
	op string,
	q firestore.Query,
	deliver func(*firestore.QuerySnapshot),
	onError func(error),
) {
	for {
		it := q.Snapshots(ctx)
		for {
			snap, err := it.Next()
			if err != nil {
				it.Stop()
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				if onError != nil {
					onError(common.NewTransportError(op, err))
				}
				break
			}
			if ctx.Err() != nil {
				it.Stop()
				return
			}
			deliver(snap)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

// watchDoc is watchQuery for a single document reference.
func watchDoc(
	ctx context.Context,
	op string,
	ref *firestore.DocumentRef,
	deliver func(*firestore.DocumentSnapshot),
	onError func(error),
) {
	for {
		it := ref.Snapshots(ctx)
		for {
			snap, err := it.Next()
			if err != nil {
				it.Stop()
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				if onError != nil {
					onError(common.NewTransportError(op, err))
				}
				break
			}
			if ctx.Err() != nil {
				it.Stop()
				return
			}
			deliver(snap)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

// detachFor wraps a cancel func as the idempotent Detach handle.
func detachFor(cancel context.CancelFunc) common.Detach {
	return func() { cancel() }
}

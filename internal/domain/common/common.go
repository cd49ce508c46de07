// internal/domain/common/common.go
package common

// Detach はライブ購読の解除ハンドルです。
// 何度呼んでも安全（冪等）であること。解除後はコールバックが一切呼ばれない。
type Detach func()

// NopDetach は「購読していない」状態のための no-op ハンドル
func NopDetach() Detach {
	return func() {}
}

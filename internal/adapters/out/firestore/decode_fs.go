// internal/adapters/out/firestore/decode_fs.go
package firestore

import (
	"fmt"
	"strings"
	"time"
)

// Loose decode helpers.
//
// snap.Data() を map のまま受けて自前で型を寄せる。
// DataTo(&struct{...}) は過去データの型揺れ（price が int64/float64、
// id が数値、rating 欠落など）で失敗し得るため使わない。

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) float64 {
	if v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		tt := strings.TrimSpace(t)
		if tt == "" {
			return 0
		}
		var f float64
		_, _ = fmt.Sscanf(tt, "%g", &f)
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	if v == nil {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case string:
		tt := strings.TrimSpace(t)
		if tt == "" {
			return 0
		}
		var n int
		_, _ = fmt.Sscanf(tt, "%d", &n)
		return n
	default:
		return 0
	}
}

// asTimePtr returns nil for missing/pending values. A serverTimestamp
// still being assigned arrives as nil in the first snapshot delivery.
func asTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		tt := t.UTC()
		return &tt
	case *time.Time:
		if t == nil {
			return nil
		}
		tt := t.UTC()
		return &tt
	default:
		return nil
	}
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() Draft {
	return Draft{
		UserID: "uid-1",
		Items: []ItemSnapshot{
			{ID: "a", Title: "A", Price: 10, Quantity: 2},
		},
		Total: 20,
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{"valid", func(d *Draft) {}, nil},
		{"empty userId", func(d *Draft) { d.UserID = "  " }, ErrInvalidUserID},
		{"no items", func(d *Draft) { d.Items = nil }, ErrInvalidItems},
		{"item without id", func(d *Draft) { d.Items[0].ID = "" }, ErrInvalidItems},
		{"item qty zero", func(d *Draft) { d.Items[0].Quantity = 0 }, ErrInvalidItems},
		{"negative total", func(d *Draft) { d.Total = -1 }, ErrInvalidTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeItem(t *testing.T) {
	it := NormalizeItem(ItemSnapshot{ID: " a ", Quantity: 0})
	assert.Equal(t, "a", it.ID)
	assert.Equal(t, 1, it.Quantity)
}

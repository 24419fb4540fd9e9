package queryengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bizql/internal/entity"
)

func TestConvertStoreValue(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name  string
		field entity.Field
		in    interface{}
		want  interface{}
	}{
		{"nil passes through", entity.Field{Type: entity.TypeString}, nil, nil},
		{"bytes to string", entity.Field{Type: entity.TypeString}, []byte("hello"), "hello"},
		{"int id to string", entity.Field{Type: entity.TypeID}, int64(42), "42"},
		{"decimal bytes to float", entity.Field{Type: entity.TypeFloat}, []byte("1234.50"), 1234.5},
		{"int to float", entity.Field{Type: entity.TypeFloat}, int64(3), 3.0},
		{"textual int", entity.Field{Type: entity.TypeInt}, []byte(" 17 "), int64(17)},
		{"tinyint bool", entity.Field{Type: entity.TypeBool}, int64(1), true},
		{"native time", entity.Field{Type: entity.TypeTime}, ts, ts},
		{"textual time", entity.Field{Type: entity.TypeTime}, []byte("2025-03-04 05:06:07"), ts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertStoreValue(tt.field, tt.in))
		})
	}
}

func TestCoerceInput_Errors(t *testing.T) {
	e := taskEntity(t)
	f, _ := e.Field("updatedAt")

	_, err := coerceInput(e, f, "not-a-time")
	var ferr *InvalidFieldError
	assert.ErrorAs(t, err, &ferr)
}

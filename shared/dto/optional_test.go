package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"taskboard/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	DueAt dto.Optional[time.Time] `json:"dueAt"`
	Note  dto.Optional[string]    `json:"note"`
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantNull  bool
		wantValue *time.Time
	}{
		{
			name:    "omitted key",
			body:    `{}`,
			wantSet: false,
		},
		{
			name:     "explicit null",
			body:     `{"dueAt": null}`,
			wantSet:  true,
			wantNull: true,
		},
		{
			name:      "value",
			body:      `{"dueAt": "2024-05-01T10:00:00Z"}`,
			wantSet:   true,
			wantValue: ptr(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body patchBody

			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))

			assert.Equal(t, tt.wantSet, body.DueAt.Set)
			assert.Equal(t, tt.wantNull, body.DueAt.IsNull())

			if tt.wantValue != nil {
				require.NotNil(t, body.DueAt.Value)
				assert.True(t, tt.wantValue.Equal(*body.DueAt.Value))
			}

			assert.False(t, body.Note.Set)
		})
	}
}

func TestOptional_UnmarshalJSON_InvalidValue(t *testing.T) {
	var body patchBody

	err := json.Unmarshal([]byte(`{"dueAt": "tomorrow"}`), &body)

	assert.Error(t, err)
}

func TestOptional_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(patchBody{Note: dto.Some("hello"), DueAt: dto.Null[time.Time]()})

	require.NoError(t, err)
	assert.JSONEq(t, `{"dueAt": null, "note": "hello"}`, string(out))
}

func ptr[T any](v T) *T {
	return &v
}

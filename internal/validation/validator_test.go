package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
)

type sample struct {
	Format string   `json:"format" validate:"required,oneof=csv xlsx"`
	Limit  int      `query:"limit" validate:"min=1,max=500"`
	Items  []string `json:"items" validate:"max=3"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      sample
		wantFields []string
		wantInMsg  string
	}{
		{name: "valid", input: sample{Format: "csv", Limit: 10}},
		{name: "missing format", input: sample{Limit: 10}, wantFields: []string{"format"}, wantInMsg: "format is required"},
		{name: "bad format", input: sample{Format: "pdf", Limit: 10}, wantFields: []string{"format"}, wantInMsg: "format must be one of: csv, xlsx"},
		{name: "query tag name", input: sample{Format: "csv", Limit: 0}, wantFields: []string{"limit"}, wantInMsg: "limit must be at least 1"},
		{name: "too many items", input: sample{Format: "csv", Limit: 1, Items: []string{"a", "b", "c", "d"}}, wantFields: []string{"items"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			if tt.wantInMsg != "" {
				assert.Contains(t, err.Error(), tt.wantInMsg)
			}

			fields := FieldErrors(Validator().Struct(tt.input))
			got := make([]string, len(fields))
			for i, f := range fields {
				got[i] = f.Field
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}

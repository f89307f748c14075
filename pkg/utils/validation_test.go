package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Text  *string `json:"text" validate:"required"`
	Count int     `json:"count" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	empty := ""

	tests := []struct {
		name    string
		input   sampleRequest
		wantErr string
	}{
		{name: "present text", input: sampleRequest{Text: &empty}},
		{name: "missing text", input: sampleRequest{}, wantErr: "text is required"},
		{name: "other tag", input: sampleRequest{Text: &empty, Count: -1}, wantErr: "count is invalid"},
		{name: "errors joined", input: sampleRequest{Count: -1}, wantErr: "text is required; count is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "hi", TruncateRunes("hi", 10))
	assert.Equal(t, "", TruncateRunes("hi", 0))
}

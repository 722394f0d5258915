package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Verdict
		wantErr bool
	}{
		{name: "pass literal", input: "pass", want: VerdictPass},
		{name: "fail literal", input: "fail", want: VerdictFail},
		{name: "empty string rejected", input: "", wantErr: true},
		{name: "uppercase rejected", input: "PASS", wantErr: true},
		{name: "arbitrary text rejected", input: "maybe", wantErr: true},
		{name: "whitespace padded rejected", input: " pass", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerdictIsValid(t *testing.T) {
	assert.True(t, VerdictPass.IsValid())
	assert.True(t, VerdictFail.IsValid())
	assert.False(t, Verdict("").IsValid())
	assert.False(t, Verdict("unknown").IsValid())
}

package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Sentimento string `json:"sentimento,omitempty"`
	Score      *int   `json:"score,omitempty"`
}

func TestJSONBScanAndValue(t *testing.T) {
	score := 45
	original := NewJSONB(payload{Sentimento: "Negativo", Score: &score})

	value, err := original.Value()
	require.NoError(t, err)

	var scanned JSONB[payload]
	require.NoError(t, scanned.Scan(value))

	assert.Equal(t, "Negativo", scanned.GetValue().Sentimento)
	require.NotNil(t, scanned.GetValue().Score)
	assert.Equal(t, 45, *scanned.GetValue().Score)
}

func TestJSONBScanRejectsNonBytes(t *testing.T) {
	var j JSONB[payload]
	assert.Error(t, j.Scan(42))
}

func TestJSONBMarshalsAsInnerValue(t *testing.T) {
	j := NewJSONB(payload{Sentimento: "Neutro"})

	b, err := json.Marshal(j)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sentimento": "Neutro"}`, string(b))

	var parsed JSONB[payload]
	require.NoError(t, json.Unmarshal([]byte(`{"sentimento": "Positivo"}`), &parsed))
	assert.Equal(t, "Positivo", parsed.GetValue().Sentimento)
}

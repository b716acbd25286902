package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefinder/sentinela/pkg/models"
)

func TestParseAnalysis(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{"conversation_id": 42, "tenant_id": "tenant-1", "customer_name": "Maria", "sentiment": "Negativo", "score": 45, "message_text": "Quero cancelar"}`),
	}

	require.NoError(t, msg.ParseAnalysis())
	require.NotNil(t, msg.Analysis)
	assert.Equal(t, int64(42), msg.Analysis.ConversationID)
	assert.Equal(t, "tenant-1", msg.Analysis.TenantID)
	assert.Equal(t, models.SentimentNegative, msg.Analysis.Sentiment)
	assert.Equal(t, 45, msg.Analysis.Score)
}

func TestParseAnalysisInvalidJSON(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`not json`)}
	assert.Error(t, msg.ParseAnalysis())
	assert.Nil(t, msg.Analysis)
}

func TestGetTenantIDPrefersPayload(t *testing.T) {
	msg := &IncomingMessage{
		Headers: map[string]string{"tenant_id": "header-tenant"},
		Value:   []byte(`{"conversation_id": 1, "tenant_id": "payload-tenant", "sentiment": "Neutro"}`),
	}

	// Header is the fallback before parsing
	assert.Equal(t, "header-tenant", msg.GetTenantID())

	require.NoError(t, msg.ParseAnalysis())
	assert.Equal(t, "payload-tenant", msg.GetTenantID())
}

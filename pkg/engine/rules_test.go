package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitefinder/sentinela/pkg/models"
)

func record(sentiment string, score int, text string) models.AnalysisRecord {
	return models.AnalysisRecord{
		ConversationID: 42,
		TenantID:       "tenant-1",
		CustomerName:   "Maria Silva",
		Sentiment:      sentiment,
		Score:          score,
		MessageText:    text,
	}
}

func TestEvaluateRulesNegativeLowScoreWithKeyword(t *testing.T) {
	rec := record(models.SentimentNegative, 45, "Quero cancelar meu pedido")

	drafts := EvaluateRules(rec)
	require.Len(t, drafts, 3)

	// Negative sentiment -> urgent
	assert.Equal(t, models.AlertTypeUrgent, drafts[0].Type)
	assert.Equal(t, models.AlertCategorySentiment, drafts[0].Category)
	assert.Equal(t, "Cliente Maria Silva: sentimento Negativo", drafts[0].Message)
	assert.Equal(t, models.SentimentNegative, drafts[0].Data.Sentimento)

	// Score 45 -> urgent low score
	assert.Equal(t, models.AlertTypeUrgent, drafts[1].Type)
	assert.Equal(t, models.AlertCategoryScore, drafts[1].Category)
	assert.Equal(t, "Atendimento #42 com score 45", drafts[1].Message)
	require.NotNil(t, drafts[1].Data.Score)
	assert.Equal(t, 45, *drafts[1].Data.Score)

	// "cancelar" -> attention keyword
	assert.Equal(t, models.AlertTypeAttention, drafts[2].Type)
	assert.Equal(t, models.AlertCategoryKeywords, drafts[2].Category)
	assert.Equal(t, `Palavra de risco detectada: "cancelar"`, drafts[2].Message)
	assert.Equal(t, "cancelar", drafts[2].Data.Keyword)
}

func TestEvaluateRulesVeryNegativeIsCritical(t *testing.T) {
	rec := record(models.SentimentVeryNegative, 70, "")

	drafts := EvaluateRules(rec)
	require.Len(t, drafts, 1)
	assert.Equal(t, models.AlertTypeCritical, drafts[0].Type)
	assert.Equal(t, models.AlertCategorySentiment, drafts[0].Category)
	assert.Equal(t, "Cliente Maria Silva: sentimento Muito Negativo", drafts[0].Message)
}

func TestEvaluateRulesExcellence(t *testing.T) {
	rec := record(models.SentimentPositive, 95, "")

	drafts := EvaluateRules(rec)
	require.Len(t, drafts, 1)
	assert.Equal(t, models.AlertTypePositive, drafts[0].Type)
	assert.Equal(t, models.AlertCategoryScore, drafts[0].Category)
	assert.Equal(t, "Excelente atendimento! Score 95", drafts[0].Message)
	require.NotNil(t, drafts[0].Data.Score)
	assert.Equal(t, 95, *drafts[0].Data.Score)
}

func TestEvaluateRulesScoreBoundaries(t *testing.T) {
	// [50, 90) produces no score alert in either direction
	assert.Empty(t, EvaluateRules(record(models.SentimentNeutral, 50, "")))
	assert.Empty(t, EvaluateRules(record(models.SentimentNeutral, 89, "")))

	// 49 is low, 90 is excellent
	drafts := EvaluateRules(record(models.SentimentNeutral, 49, ""))
	require.Len(t, drafts, 1)
	assert.Equal(t, models.AlertTypeUrgent, drafts[0].Type)

	drafts = EvaluateRules(record(models.SentimentNeutral, 90, ""))
	require.Len(t, drafts, 1)
	assert.Equal(t, models.AlertTypePositive, drafts[0].Type)
}

func TestEvaluateRulesNeutralProducesNoSentimentAlert(t *testing.T) {
	assert.Empty(t, EvaluateRules(record(models.SentimentNeutral, 75, "tudo certo")))
	assert.Empty(t, EvaluateRules(record(models.SentimentPositive, 75, "obrigado")))
}

func TestRiskKeywordMatchingIsCaseInsensitive(t *testing.T) {
	drafts := EvaluateRules(record(models.SentimentNeutral, 75, "Vou chamar meu ADVOGADO"))
	require.Len(t, drafts, 1)
	assert.Equal(t, models.AlertCategoryKeywords, drafts[0].Category)
	// The match is reported with the original casing
	assert.Equal(t, "ADVOGADO", drafts[0].Data.Keyword)
	assert.Equal(t, `Palavra de risco detectada: "ADVOGADO"`, drafts[0].Message)
}

func TestRiskKeywordReportsFirstMatchOnly(t *testing.T) {
	drafts := EvaluateRules(record(models.SentimentNeutral, 75, "vou reclamar no procon e chamar advogado"))
	require.Len(t, drafts, 1)
	assert.Equal(t, "reclamar", drafts[0].Data.Keyword)
}

func TestRiskKeywordEmptyTextSkipsScan(t *testing.T) {
	assert.Empty(t, EvaluateRules(record(models.SentimentNeutral, 75, "")))
}

func TestEvaluateRulesDraftsCarryRecordIdentity(t *testing.T) {
	rec := record(models.SentimentVeryNegative, 30, "quero denunciar")
	rec.ConversationID = 7
	rec.TenantID = "tenant-9"

	drafts := EvaluateRules(rec)
	require.Len(t, drafts, 3)
	for _, draft := range drafts {
		assert.Equal(t, int64(7), draft.ConversationID)
		assert.Equal(t, "tenant-9", draft.TenantID)
	}
}

// Package engine evaluates finalized conversation analyses against the
// alerting rules and persists whatever they produce.
package engine

import (
	"fmt"
	"regexp"

	"github.com/elitefinder/sentinela/pkg/models"
)

// riskKeywords are the literal terms that flag a conversation for follow-up.
// Only the first match is reported, exactly as the pattern scan finds it.
var riskKeywords = regexp.MustCompile(`(?i)cancelar|reclamar|advogado|procon|processo|denunciar`)

// Rule inspects one analysis record and produces at most one alert draft.
// Rules are pure and independent of each other.
type Rule func(rec models.AnalysisRecord) *models.AlertDraft

// Rules returns the fixed rule set in evaluation order.
func Rules() []Rule {
	return []Rule{
		sentimentRule,
		lowScoreRule,
		riskKeywordRule,
		excellenceRule,
	}
}

// EvaluateRules runs every rule against the record. It never short-circuits:
// a single record can produce up to one draft per rule.
func EvaluateRules(rec models.AnalysisRecord) []models.AlertDraft {
	var drafts []models.AlertDraft
	for _, rule := range Rules() {
		if draft := rule(rec); draft != nil {
			drafts = append(drafts, *draft)
		}
	}
	return drafts
}

func sentimentRule(rec models.AnalysisRecord) *models.AlertDraft {
	if rec.Sentiment != models.SentimentVeryNegative && rec.Sentiment != models.SentimentNegative {
		return nil
	}

	alertType := models.AlertTypeUrgent
	if rec.Sentiment == models.SentimentVeryNegative {
		alertType = models.AlertTypeCritical
	}

	return &models.AlertDraft{
		ConversationID: rec.ConversationID,
		TenantID:       rec.TenantID,
		Type:           alertType,
		Category:       models.AlertCategorySentiment,
		Message:        fmt.Sprintf("Cliente %s: sentimento %s", rec.CustomerName, rec.Sentiment),
		Data:           models.AlertData{Sentimento: rec.Sentiment},
	}
}

func lowScoreRule(rec models.AnalysisRecord) *models.AlertDraft {
	if rec.Score >= 50 {
		return nil
	}

	score := rec.Score
	return &models.AlertDraft{
		ConversationID: rec.ConversationID,
		TenantID:       rec.TenantID,
		Type:           models.AlertTypeUrgent,
		Category:       models.AlertCategoryScore,
		Message:        fmt.Sprintf("Atendimento #%d com score %d", rec.ConversationID, rec.Score),
		Data:           models.AlertData{Score: &score},
	}
}

func riskKeywordRule(rec models.AnalysisRecord) *models.AlertDraft {
	if rec.MessageText == "" {
		return nil
	}

	match := riskKeywords.FindString(rec.MessageText)
	if match == "" {
		return nil
	}

	return &models.AlertDraft{
		ConversationID: rec.ConversationID,
		TenantID:       rec.TenantID,
		Type:           models.AlertTypeAttention,
		Category:       models.AlertCategoryKeywords,
		Message:        fmt.Sprintf("Palavra de risco detectada: %q", match),
		Data:           models.AlertData{Keyword: match},
	}
}

func excellenceRule(rec models.AnalysisRecord) *models.AlertDraft {
	if rec.Score < 90 {
		return nil
	}

	score := rec.Score
	return &models.AlertDraft{
		ConversationID: rec.ConversationID,
		TenantID:       rec.TenantID,
		Type:           models.AlertTypePositive,
		Category:       models.AlertCategoryScore,
		Message:        fmt.Sprintf("Excelente atendimento! Score %d", rec.Score),
		Data:           models.AlertData{Score: &score},
	}
}

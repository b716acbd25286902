package models

// Sentiment labels produced by the analysis service. The labels are part of
// the product contract and arrive in Portuguese.
const (
	SentimentVeryNegative = "Muito Negativo"
	SentimentNegative     = "Negativo"
	SentimentNeutral      = "Neutro"
	SentimentPositive     = "Positivo"
)

// AnalysisRecord is the finalized AI quality assessment of one conversation.
// Produced by the external analysis service; this service only reads it.
type AnalysisRecord struct {
	ConversationID int64  `json:"conversation_id"`
	TenantID       string `json:"tenant_id"`
	CustomerName   string `json:"customer_name"`
	Sentiment      string `json:"sentiment"`
	Score          int    `json:"score"`
	MessageText    string `json:"message_text,omitempty"`
}

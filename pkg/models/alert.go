package models

import (
	"time"

	"github.com/elitefinder/sentinela/pkg/database"
)

// AlertType is the severity of an alert. Types are ordered: critical alerts
// sort before urgent, urgent before attention, attention before positive.
type AlertType string

const (
	AlertTypeCritical  AlertType = "critical"
	AlertTypeUrgent    AlertType = "urgent"
	AlertTypeAttention AlertType = "attention"
	AlertTypePositive  AlertType = "positive"
)

// SeverityRank returns the sort position of the type, lowest first.
func (t AlertType) SeverityRank() int {
	switch t {
	case AlertTypeCritical:
		return 1
	case AlertTypeUrgent:
		return 2
	case AlertTypeAttention:
		return 3
	default:
		return 4
	}
}

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeCritical, AlertTypeUrgent, AlertTypeAttention, AlertTypePositive:
		return true
	}
	return false
}

// AlertCategory names the rule family that produced an alert. It is
// orthogonal to severity.
type AlertCategory string

const (
	AlertCategorySentiment  AlertCategory = "sentiment"
	AlertCategoryScore      AlertCategory = "score"
	AlertCategoryKeywords   AlertCategory = "keywords"
	AlertCategoryTime       AlertCategory = "time"
	AlertCategoryResolution AlertCategory = "resolution"
)

func (c AlertCategory) Valid() bool {
	switch c {
	case AlertCategorySentiment, AlertCategoryScore, AlertCategoryKeywords, AlertCategoryTime, AlertCategoryResolution:
		return true
	}
	return false
}

// AlertData is the triggering evidence attached to an alert. Which field is
// populated depends on the category: sentiment alerts carry Sentimento,
// score alerts carry Score, keyword alerts carry Keyword.
type AlertData struct {
	Sentimento string `json:"sentimento,omitempty"`
	Score      *int   `json:"score,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
}

// Alert is a notification produced by the rule engine (or manual entry) for
// one conversation. read_at and resolved_at are write-once; a resolved alert
// is always read.
type Alert struct {
	ID             int64                     `json:"id" db:"id"`
	ConversationID int64                     `json:"conversation_id" db:"conversation_id"`
	TenantID       string                    `json:"tenant_id" db:"tenant_id"`
	Type           AlertType                 `json:"type" db:"type"`
	Category       AlertCategory             `json:"category" db:"category"`
	Message        string                    `json:"message" db:"message"`
	Data           database.JSONB[AlertData] `json:"data" db:"data"`
	CreatedAt      time.Time                 `json:"created_at" db:"created_at"`
	ReadAt         *time.Time                `json:"read_at,omitempty" db:"read_at"`
	ResolvedAt     *time.Time                `json:"resolved_at,omitempty" db:"resolved_at"`
}

// AlertDraft is an alert before the store has assigned id and timestamps.
type AlertDraft struct {
	ConversationID int64
	TenantID       string
	Type           AlertType
	Category       AlertCategory
	Message        string
	Data           AlertData
}

// AlertFilter narrows a list query.
type AlertFilter struct {
	Type            *AlertType
	IncludeResolved bool
	Limit           int
}

// AlertSummary holds the live dashboard badge counts. All counts except
// Unread are over active (unresolved) alerts; Unread is active and unread.
type AlertSummary struct {
	TotalActive int `json:"total_active" db:"total_active"`
	Critical    int `json:"critical" db:"critical"`
	Urgent      int `json:"urgent" db:"urgent"`
	Attention   int `json:"attention" db:"attention"`
	Positive    int `json:"positive" db:"positive"`
	Unread      int `json:"unread" db:"unread"`
}

// EvaluationResult reports what one evaluate call produced. RulesMatched can
// exceed AlertsCreated when individual inserts fail; each failure is listed.
type EvaluationResult struct {
	Evaluated     bool     `json:"evaluated"`
	RulesMatched  int      `json:"rules_matched"`
	AlertsCreated int      `json:"alerts_created"`
	Alerts        []Alert  `json:"alerts"`
	Failures      []string `json:"failures,omitempty"`
}

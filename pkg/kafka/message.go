package kafka

import (
	"encoding/json"
	"time"

	"github.com/elitefinder/sentinela/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Analysis *models.AnalysisRecord
}

// ParseAnalysis parses the message value as a finalized analysis record.
func (m *IncomingMessage) ParseAnalysis() error {
	var rec models.AnalysisRecord
	if err := json.Unmarshal(m.Value, &rec); err != nil {
		return err
	}
	m.Analysis = &rec
	return nil
}

// GetTenantID returns the tenant the message belongs to. The payload wins;
// the header is a fallback for producers that only stamp headers.
func (m *IncomingMessage) GetTenantID() string {
	if m.Analysis != nil && m.Analysis.TenantID != "" {
		return m.Analysis.TenantID
	}
	return m.Headers["tenant_id"]
}

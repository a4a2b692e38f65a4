package analytics

// QuestionCount is one pre-ranked question with its occurrence count,
// as stored in warm-tier and cold-tier daily records.
type QuestionCount struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// DailyAggregate is the warm-tier record: one per tenant per calendar day.
// Only averages survive aggregation; per-event samples are gone. Readers
// reconstruct approximate sample sets by replaying each average
// ConversationCount times (see Accumulator.AddDaily).
type DailyAggregate struct {
	TenantID            string          `json:"tenant_id"`
	Date                string          `json:"date"` // yyyy-mm-dd
	ConversationCount   int             `json:"conversation_count"`
	TotalMessages       int             `json:"total_messages"`
	AvgResponseTimeMs   float64         `json:"avg_response_time_ms"`
	AvgFirstTokenMs     float64         `json:"avg_first_token_ms"`
	AvgTotalTimeMs      float64         `json:"avg_total_time_ms"`
	TopQuestions        []QuestionCount `json:"top_questions,omitempty"`
	HourlyDistribution  [24]int         `json:"hourly_distribution"`
	WeekdayDistribution [7]int          `json:"weekday_distribution"`
	AfterHoursCount     int             `json:"after_hours_count"`
	StreamingCount      int             `json:"streaming_count"`
}

// ArchiveRecord is the cold-tier object: a DailyAggregate plus a capped
// number of raw conversation samples from that day.
type ArchiveRecord struct {
	DailyAggregate
	Conversations []QAEvent `json:"conversations,omitempty"`
}

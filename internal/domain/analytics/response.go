package analytics

// =============================================================================
// Dashboard API Response Types
// =============================================================================

// ScalarMetrics is the metrics block of the conversation analytics document.
type ScalarMetrics struct {
	ConversationCount          int     `json:"conversation_count"`
	TotalMessages              int     `json:"total_messages"`
	AvgResponseTimeMs          float64 `json:"avg_response_time_ms"`
	AvgFirstTokenMs            float64 `json:"avg_first_token_ms"`
	AvgTotalTimeMs             float64 `json:"avg_total_time_ms"`
	AfterHoursPercentage       float64 `json:"after_hours_percentage"`
	StreamingEnabledPercentage float64 `json:"streaming_enabled_percentage"`
}

// TopQuestion is one ranked question annotated with its share of all
// messages in the window.
type TopQuestion struct {
	Question   string  `json:"question"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HeatMapData is the 8x7 activity grid: 3-hour buckets by local weekday
// (Monday=0). Peaks are arg-max of the 1-D distributions, lowest index wins
// ties.
type HeatMapData struct {
	Grid        [HeatmapRows][7]int `json:"grid"`
	HourBuckets [HeatmapRows]int    `json:"hour_buckets"`
	PeakHour    int                 `json:"peak_hour"`
	PeakDay     int                 `json:"peak_day"`
}

// Report is the public analytics document consumed by the dashboard.
type Report struct {
	TenantID   string `json:"tenant_id"`
	TenantHash string `json:"tenant_hash"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PeriodDays int    `json:"period_days"`

	Metrics      ScalarMetrics `json:"metrics"`
	TopQuestions []TopQuestion `json:"top_questions"`

	HeatMapData       *HeatMapData `json:"heat_map_data,omitempty"`
	FullConversations []QAEvent    `json:"full_conversations,omitempty"`

	// Timezone is the IANA zone applied to bucketing; "UTC" with
	// TimezoneConfigured=false means the tenant never configured one.
	Timezone           string `json:"timezone"`
	TimezoneConfigured bool   `json:"timezone_configured"`
	// Approximate flags windows whose warm/cold expansion smoothed
	// per-event variance into repeated averages.
	Approximate bool `json:"approximate"`
}

package domain

// Note is a human-authored message left for the operator. ReadAt is stamped
// once, on the first read-mark.
type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	Read      bool   `json:"read"`
	ReadAt    string `json:"readAt,omitempty"`
}

// ScheduledItem is a recurring deliverable (daily report, weekly digest).
type ScheduledItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Schedule  string  `json:"schedule"`
	Icon      string  `json:"icon"`
	Enabled   bool    `json:"enabled"`
	LastRun   *string `json:"lastRun"`
	CreatedAt string  `json:"createdAt"`
}

// TokenUsage tracks remaining quota for the active provider. Fields are
// pointers so an unknown quota serializes as null, not zero.
type TokenUsage struct {
	PremiumRemaining *float64 `json:"premium_remaining"`
	ChatRemaining    *float64 `json:"chat_remaining"`
	LastUpdated      *string  `json:"last_updated"`
}

// Metrics is the singleton provider/usage record. Updates are field-level
// merges; the document is never replaced wholesale.
type Metrics struct {
	Provider   string     `json:"provider,omitempty"`
	Model      string     `json:"model,omitempty"`
	TokenUsage TokenUsage `json:"token_usage"`
}

// MetricsPatch is a field-merge update for the metrics singleton. The
// quota fields are accepted both at the top level and nested under
// token_usage, mirroring the wire format clients already send.
type MetricsPatch struct {
	Provider         *string           `json:"provider,omitempty"`
	Model            *string           `json:"model,omitempty"`
	PremiumRemaining *float64          `json:"premium_remaining,omitempty"`
	ChatRemaining    *float64          `json:"chat_remaining,omitempty"`
	TokenUsage       *TokenUsagePatch  `json:"token_usage,omitempty"`
}

// TokenUsagePatch merges into the nested token_usage object.
type TokenUsagePatch struct {
	PremiumRemaining *float64 `json:"premium_remaining,omitempty"`
	ChatRemaining    *float64 `json:"chat_remaining,omitempty"`
	LastUpdated      *string  `json:"last_updated,omitempty"`
}

// Mood is the singleton operator-mood record, fully replaced on update.
type Mood struct {
	Mood        *string `json:"mood"`
	LastUpdated *string `json:"lastUpdated"`
}

// ActivityEntry is one line of the durable activity log. Entries are
// immutable once written; the log keeps the newest 500.
type ActivityEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// StatusUpdate is an ephemeral status notification. It is broadcast to
// subscribers and never persisted.
type StatusUpdate struct {
	Type      string `json:"type"`
	Agent     string `json:"agent"`
	Status    string `json:"status"`
	Detail    string `json:"detail"`
	Timestamp string `json:"timestamp"`
}

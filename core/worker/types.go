package worker

import "encoding/json"

// Record is one transport delivery. The body is expected to hold a serialized
// command envelope; attributes are delivery metadata passed through unexamined.
type Record struct {
	ID         string            `json:"id"`
	Body       string            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Batch is an ordered set of records delivered together for one invocation.
type Batch struct {
	ID      string   `json:"batchId"`
	Records []Record `json:"records"`
}

// Outcome names the record identifiers that must be redelivered. Records not
// listed are implicitly acknowledged as fully processed.
type Outcome struct {
	FailedIDs []string `json:"failedIds"`
}

// ParseBatch decodes a serialized batch.
func ParseBatch(data []byte) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// Config holds worker settings.
type Config struct {
	// SourceTopic is where batches arrive.
	SourceTopic string `json:"source_topic"`
	// OutcomeTopic is where failed-identifier sets are reported.
	OutcomeTopic string `json:"outcome_topic"`
	// NotifyTopic receives handler callback payloads.
	NotifyTopic string `json:"notify_topic"`
	// HandlerTimeoutSeconds bounds a single handler invocation. Zero disables
	// the per-handler deadline.
	HandlerTimeoutSeconds int `json:"handler_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SourceTopic == "" {
		c.SourceTopic = "cmdworker/batches"
	}
	if c.OutcomeTopic == "" {
		c.OutcomeTopic = "cmdworker/outcomes"
	}
	if c.NotifyTopic == "" {
		c.NotifyTopic = "cmdworker/notify"
	}
}

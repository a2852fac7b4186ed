package types

// FeedbackVerdict values stored per error fingerprint.
const (
	VerdictHelpful    = "helpful"
	VerdictNotHelpful = "not_helpful"
)

// FeedbackReason categories accepted on a not_helpful verdict.
var FeedbackReasonCategories = []string{"incorrect", "unclear", "context", "style", "other"}

// FeedbackReason is the structured reason attached to a not_helpful verdict.
type FeedbackReason struct {
	Category string `json:"category"`
	Comment  string `json:"comment,omitempty"`
}

// ErrorSnapshot is the minimal error projection stored with a feedback record
// so a verdict can be reconstructed without the original analysis.
type ErrorSnapshot struct {
	Kind        string `json:"kind,omitempty"`
	Message     string `json:"message,omitempty"`
	TextSegment string `json:"text_segment,omitempty"`
}

// FeedbackRecord is one stored user verdict, keyed by the error fingerprint.
// Timestamp is epoch milliseconds.
type FeedbackRecord struct {
	Verdict            string          `json:"verdict"`
	Reason             *FeedbackReason `json:"reason,omitempty"`
	Timestamp          int64           `json:"timestamp"`
	KindAtRecord       string          `json:"kind_at_record"`
	ConfidenceAtRecord float64         `json:"confidence_at_record"`
	OriginalError      *ErrorSnapshot  `json:"original_error,omitempty"`
}

// FeedbackStats summarises a session's stored verdicts.
type FeedbackStats struct {
	Total      int            `json:"total"`
	Helpful    int            `json:"helpful"`
	NotHelpful int            `json:"not_helpful"`
	ByKind     map[string]int `json:"by_kind"`
}

// FeedbackSubmission is the JSON body posted to the analysis backend for each
// confirmed verdict. FeedbackType is "correct" or "incorrect", mapped from the
// stored helpful / not_helpful verdict.
type FeedbackSubmission struct {
	SessionID       string  `json:"session_id"`
	ErrorID         string  `json:"error_id"`
	ErrorType       string  `json:"error_type"`
	ErrorMessage    string  `json:"error_message"`
	FeedbackType    string  `json:"feedback_type"`
	ConfidenceScore float64 `json:"confidence_score"`
	UserReason      *string `json:"user_reason"`
}

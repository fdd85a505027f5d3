package storage

import (
	"context"
	"errors"
)

// ErrFlagTargetInvalid - Returned when a flag doesn't reference exactly one of a content record or
// a conversation. This is a caller-contract error: it is rejected before any write is attempted.
var ErrFlagTargetInvalid = errors.New("exactly one of content id or conversation id must be set")

// SnippetMaxLength - Flags never store more than this much of the original text, to cap storage
// and limit sensitive-data retention.
const SnippetMaxLength = 500

type FlagOrigin string

const FlagOriginSystem FlagOrigin = "system"
const FlagOriginUser FlagOrigin = "user"
const FlagOriginModerator FlagOrigin = "moderator"

type FlagReason string

const FlagReasonHarmfulContent FlagReason = "harmful_content"
const FlagReasonMedicalMisinformation FlagReason = "medical_misinformation"
const FlagReasonInappropriateLanguage FlagReason = "inappropriate_language"
const FlagReasonSpam FlagReason = "spam"
const FlagReasonHarassment FlagReason = "harassment"
const FlagReasonPrivacyViolation FlagReason = "privacy_violation"
const FlagReasonEmergencyDetected FlagReason = "emergency_detected"
const FlagReasonOther FlagReason = "other"

type ReviewAction string

const ReviewActionPending ReviewAction = "pending"
const ReviewActionReviewed ReviewAction = "reviewed"
const ReviewActionRemoved ReviewAction = "removed"
const ReviewActionDismissed ReviewAction = "dismissed"
const ReviewActionEscalated ReviewAction = "escalated"

type DetectionMethod string

const DetectionMethodKeyword DetectionMethod = "keyword"
const DetectionMethodMLModel DetectionMethod = "ml_model"
const DetectionMethodUserReport DetectionMethod = "user_report"
const DetectionMethodManual DetectionMethod = "manual"

// StoredFlag - An append-only record of a moderation event. Immutable after creation except the
// review fields, which are set exactly once by MarkFlagReviewed. Never deleted by this core.
type StoredFlag struct {
	Id              string          `json:"id"`
	ContentId       string          `json:"content_id,omitempty"`
	ConversationId  string          `json:"conversation_id,omitempty"`
	FlaggedBy       FlagOrigin      `json:"flagged_by"`
	Reason          FlagReason      `json:"reason"`
	Severity        int             `json:"severity"` // 0-10
	TextSnippet     string          `json:"text_snippet"`
	Action          ReviewAction    `json:"action"`
	DetectionMethod DetectionMethod `json:"detection_method"`
	DetectionScore  *float64        `json:"detection_score,omitempty"` // 0-1
	CreatedAtMillis int64           `json:"created_at"`

	ReviewedBy       string `json:"reviewed_by,omitempty"`
	ReviewedAtMillis int64  `json:"reviewed_at,omitempty"`
	ReviewNotes      string `json:"review_notes,omitempty"`
}

// Validate - Enforces the target XOR invariant. Storage implementations call this before writing.
func (f *StoredFlag) Validate() error {
	hasContent := len(f.ContentId) > 0
	hasConversation := len(f.ConversationId) > 0
	if hasContent == hasConversation {
		return ErrFlagTargetInvalid
	}
	return nil
}

// TruncateSnippet - Bounds text to SnippetMaxLength. Cuts on a byte boundary that doesn't split a
// UTF-8 sequence.
func TruncateSnippet(text string) string {
	if len(text) <= SnippetMaxLength {
		return text
	}
	cut := SnippetMaxLength
	for cut > 0 && (text[cut]&0xC0) == 0x80 {
		cut--
	}
	return text[:cut]
}

// StoredContent - The content metadata the ranking engine scores over. Approved content only; the
// moderation verdict for it was computed elsewhere.
type StoredContent struct {
	ContentId       string   `json:"content_id"`
	Type            string   `json:"type"`
	Tags            []string `json:"tags"`
	Language        string   `json:"language"`
	Views           int64    `json:"views"`
	Likes           int64    `json:"likes"`
	Verified        bool     `json:"verified"`
	CreatedAtMillis int64    `json:"created_at"`
}

// StoredKeywordList - An operator-managed keyword list (see moderation.CustomList).
type StoredKeywordList struct {
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

type PersistentStorage interface {
	Close() error

	// CreateFlag - Appends a flag to the ledger and returns its generated ID. The flag's Validate()
	// error, if any, is returned without writing.
	CreateFlag(ctx context.Context, flag *StoredFlag) (string, error)
	GetFlag(ctx context.Context, id string) (*StoredFlag, error)
	// MarkFlagReviewed - Sets the review fields on a flag. The flag itself is never deleted.
	MarkFlagReviewed(ctx context.Context, id string, reviewerId string, action ReviewAction, notes string) error
	ListPendingFlags(ctx context.Context, limit int) ([]*StoredFlag, error)
	CountPendingFlags(ctx context.Context) (int64, error)

	// GetApprovedContent - Returns up to limit approved content records, newest first. The ranking
	// engine fetches a superset through this before scoring in memory.
	GetApprovedContent(ctx context.Context, limit int) ([]*StoredContent, error)

	GetKeywordList(ctx context.Context, name string) (*StoredKeywordList, error)
	UpsertKeywordList(ctx context.Context, list *StoredKeywordList) error
}

package moderation

import (
	"context"
	"log"

	"github.com/careloop/guardrail/audit"
	"github.com/careloop/guardrail/metrics"
	"github.com/careloop/guardrail/pubsub"
	"github.com/careloop/guardrail/storage"
	"github.com/jonboulle/clockwork"
)

// ModerateOptions - Per-call inputs for Moderate. Exactly one of TargetContentId or
// TargetConversationId should be set when the caller wants flags attributed to a target.
type ModerateOptions struct {
	ActorId              string
	TargetContentId      string
	TargetConversationId string

	// UseRemoteClassifier - the caller's request to involve the remote classifier. The classifier
	// also has to be configured on the Orchestrator for this to take effect.
	UseRemoteClassifier bool
}

// Orchestrator - Sequences the moderation stages over a piece of text and persists flags for
// verdicts at or above the flag threshold. Construct once and share: all mutable state is behind
// the injected collaborators.
type Orchestrator struct {
	storage    storage.PersistentStorage
	pubsub     pubsub.Client // may be nil
	auditQueue *audit.Queue  // may be nil
	classifier Classifier    // may be nil when remote classification is disabled
	customList *CustomList   // may be nil
	clock      clockwork.Clock
}

func NewOrchestrator(db storage.PersistentStorage, ps pubsub.Client, auditQueue *audit.Queue, classifier Classifier, customList *CustomList, clock clockwork.Clock) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		storage:    db,
		pubsub:     ps,
		auditQueue: auditQueue,
		classifier: classifier,
		customList: customList,
		clock:      clock,
	}
}

// Moderate - Runs the full pipeline over text and returns exactly one verdict. This never returns
// an error to the caller: an unexpected internal failure yields ALLOW with a logged diagnostic,
// because DENY has user-facing consequences that should only follow an explicit positive
// detection.
func (o *Orchestrator) Moderate(ctx context.Context, text string, opts *ModerateOptions) (verdict *Verdict) {
	if opts == nil {
		opts = &ModerateOptions{}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[moderate | %s] Internal failure mid-pipeline, defaulting to ALLOW: %v", opts.ActorId, r)
			verdict = AllowVerdict()
		}
		if verdict != nil {
			metrics.RecordVerdict(string(verdict.Action), string(verdict.Method))
		}
	}()

	// Stage 1: static lexicon. The only stage allowed to short-circuit with DENY.
	lex := ScanLexicon(text)
	if lex.Blocked {
		v := &Verdict{
			Action:   ActionDeny,
			Severity: lex.Severity,
			Reasons:  lex.Reasons,
			Method:   MethodKeyword,
		}
		o.persistSystemFlag(ctx, text, opts, lexiconFlagReason(lex.Severity), lex.Severity, storage.DetectionMethodKeyword, nil)
		return v
	}

	// Stage 2: misinformation regexes. Matches here intentionally take priority over the generic
	// remote classifier, even when both are enabled.
	mis := ScanMisinformation(text)
	if mis.Flagged {
		v := &Verdict{
			Action:   ActionFlag,
			Severity: MisinformationSeverity,
			Reasons:  mis.Reasons,
			Method:   MethodMisinformation,
		}
		o.persistSystemFlag(ctx, text, opts, storage.FlagReasonMedicalMisinformation, MisinformationSeverity, storage.DetectionMethodKeyword, nil)
		return v
	}

	// Stage 2b: operator-managed custom keyword list, when configured.
	if o.customList != nil {
		if matched := o.customList.Match(text); len(matched) > 0 {
			v := &Verdict{
				Action:   ActionFlag,
				Severity: FlagSeverityThreshold,
				Reasons:  []string{o.customList.Reason()},
				Method:   MethodKeyword,
			}
			o.persistSystemFlag(ctx, text, opts, storage.FlagReasonOther, FlagSeverityThreshold, storage.DetectionMethodKeyword, nil)
			return v
		}
	}

	// Stage 3: remote classifier, when enabled by both caller and config. The adapter fails soft,
	// so an error here is a defect we simply fall through on.
	if opts.UseRemoteClassifier && o.classifier != nil {
		cv, err := o.classifier.CheckText(ctx, text)
		if err != nil {
			log.Printf("[moderate | %s] Classifier error, falling through: %s", opts.ActorId, err)
		} else if cv != nil && cv.Action != ActionAllow {
			score := float64(cv.Severity) / 10.0
			o.persistSystemFlag(ctx, text, opts, storage.FlagReasonHarmfulContent, cv.Severity, storage.DetectionMethodMLModel, &score)
			return cv
		}
	}

	// Stage 4: a spam-tier lexicon hit that wasn't block-worthy still flags.
	if lex.Flagged {
		v := &Verdict{
			Action:   ActionFlag,
			Severity: lex.Severity,
			Reasons:  lex.Reasons,
			Method:   MethodKeyword,
		}
		o.persistSystemFlag(ctx, text, opts, storage.FlagReasonSpam, lex.Severity, storage.DetectionMethodKeyword, nil)
		return v
	}

	return AllowVerdict()
}

// Report - Records a user-submitted report against a target as a flag awaiting review.
func (o *Orchestrator) Report(ctx context.Context, reporterId string, contentId string, conversationId string, reason storage.FlagReason, description string) (string, error) {
	flag := &storage.StoredFlag{
		ContentId:       contentId,
		ConversationId:  conversationId,
		FlaggedBy:       storage.FlagOriginUser,
		Reason:          reason,
		Severity:        FlagSeverityThreshold,
		TextSnippet:     storage.TruncateSnippet(description),
		Action:          storage.ReviewActionPending,
		DetectionMethod: storage.DetectionMethodUserReport,
		CreatedAtMillis: o.clock.Now().UnixMilli(),
	}
	id, err := o.storage.CreateFlag(ctx, flag)
	if err != nil {
		metrics.RecordFlagWrite(metrics.FlagWriteOutcomeRejected)
		return "", err
	}
	metrics.RecordFlagWrite(metrics.FlagWriteOutcomeOk)
	o.notifyFlag(ctx, id, string(reason), flag.Severity)
	return id, nil
}

func lexiconFlagReason(severity int) storage.FlagReason {
	switch {
	case severity >= SevereTierSeverity:
		return storage.FlagReasonHarmfulContent
	case severity >= ModerateTierSeverity:
		return storage.FlagReasonMedicalMisinformation
	default:
		return storage.FlagReasonSpam
	}
}

// persistSystemFlag - Appends a flag for a system detection. Persistence failures are logged and
// counted but never alter the verdict already computed. The write uses a detached context so a
// caller cancellation can't abort a write that has already started.
func (o *Orchestrator) persistSystemFlag(ctx context.Context, text string, opts *ModerateOptions, reason storage.FlagReason, severity int, method storage.DetectionMethod, score *float64) {
	if len(opts.TargetContentId) == 0 && len(opts.TargetConversationId) == 0 {
		log.Printf("[moderate | %s] No flag target supplied, not persisting flag (%s, severity %d)", opts.ActorId, reason, severity)
		return
	}

	flag := &storage.StoredFlag{
		ContentId:       opts.TargetContentId,
		ConversationId:  opts.TargetConversationId,
		FlaggedBy:       storage.FlagOriginSystem,
		Reason:          reason,
		Severity:        severity,
		TextSnippet:     storage.TruncateSnippet(text),
		Action:          storage.ReviewActionPending,
		DetectionMethod: method,
		DetectionScore:  score,
		CreatedAtMillis: o.clock.Now().UnixMilli(),
	}

	writeCtx := context.WithoutCancel(ctx)
	id, err := o.storage.CreateFlag(writeCtx, flag)
	if err != nil {
		log.Printf("[moderate | %s] Non-fatal error persisting flag (%s, severity %d): %s", opts.ActorId, reason, severity, err)
		metrics.RecordFlagWrite(metrics.FlagWriteOutcomeError)
		return
	}
	metrics.RecordFlagWrite(metrics.FlagWriteOutcomeOk)
	o.notifyFlag(writeCtx, id, string(reason), severity)
}

func (o *Orchestrator) notifyFlag(ctx context.Context, flagId string, reason string, severity int) {
	if o.pubsub != nil {
		if err := o.pubsub.Publish(ctx, pubsub.FlagsTopic, flagId); err != nil {
			log.Printf("[%s] Non-fatal error publishing flag notification: %s", flagId, err)
		}
	}
	if o.auditQueue != nil {
		if err := o.auditQueue.Submit(flagId, reason, severity); err != nil {
			log.Printf("[%s] Non-fatal error submitting audit webhook: %s", flagId, err)
		}
	}
}

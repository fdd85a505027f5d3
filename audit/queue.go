package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/ryanuber/go-glob"
)

// Queue - Asynchronously notifies a moderator webhook about newly created flags. Failures are
// logged and never propagated; flag persistence does not depend on this queue.
type Queue struct {
	pool           *ants.Pool
	webhookUrl     string
	allowedDomains []string
}

type flagNotification struct {
	Text     string `json:"text"`
	FlagId   string `json:"flag_id"`
	Reason   string `json:"reason"`
	Severity int    `json:"severity"`
}

func NewQueue(size int, webhookUrl string, allowedDomains []string) (*Queue, error) {
	pool, err := ants.NewPool(size, ants.WithOptions(ants.Options{
		ExpiryDuration:   1 * time.Minute,
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on submissions
		Nonblocking:      false,
		// If we don't supply a panic handler then ants will print a stack trace for us
		Logger:       log.Default(),
		DisablePurge: false,
	}))
	if err != nil {
		return nil, err
	}
	return &Queue{
		pool:           pool,
		webhookUrl:     webhookUrl,
		allowedDomains: allowedDomains,
	}, nil
}

// Submit - Queues a webhook notification for the given flag. Returns a submission error only; the
// delivery itself is fire-and-forget.
func (q *Queue) Submit(flagId string, reason string, severity int) error {
	if len(q.webhookUrl) == 0 {
		return nil // not configured
	}
	if !q.isAllowedDomain(q.webhookUrl) {
		log.Printf("[%s] Not sending audit webhook: domain not in allow-list", flagId)
		return nil
	}

	workFn := func() {
		body := &flagNotification{
			Text:     fmt.Sprintf("Flag %s created (%s, severity %d) and is awaiting review.", flagId, reason, severity),
			FlagId:   flagId,
			Reason:   reason,
			Severity: severity,
		}

		buf := bytes.NewBuffer(nil)
		encoder := json.NewEncoder(buf)
		err := encoder.Encode(body)
		if err != nil {
			log.Printf("[%s] Failed to encode JSON: %s", flagId, err)
			return
		}

		req, err := http.NewRequest("POST", q.webhookUrl, buf)
		if err != nil {
			log.Printf("[%s] Failed to create request: %s", flagId, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "guardrail")

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Printf("[%s] Failed to send request: %s", flagId, err)
			return
		}
		defer res.Body.Close()
		log.Printf("[%s] Audit webhook response: %s", flagId, res.Status)
	}
	return q.pool.Submit(workFn)
}

func (q *Queue) isAllowedDomain(webhookUrl string) bool {
	parsed, err := url.Parse(webhookUrl)
	if err != nil {
		return false
	}
	for _, allowed := range q.allowedDomains {
		if glob.Glob(allowed, parsed.Host) {
			return true
		}
	}
	return false
}

func (q *Queue) Close() {
	q.pool.Release()
}

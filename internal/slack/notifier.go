package slack

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

// Notifier posts farm automation notifications (lifecycle transitions, pump
// and sprayer events) to a Slack channel. A nil Notifier is disabled.
type Notifier struct {
	api       *slack.Client
	channelID string

	mu               sync.Mutex
	rateLimitBackoff time.Duration
}

// NewNotifier creates a notifier. Returns nil when not configured so callers
// can hold it unconditionally.
func NewNotifier(token, channelID string) *Notifier {
	if token == "" || channelID == "" {
		log.Println("Slack token or channel ID is not configured. Slack notifications will be disabled.")
		return nil
	}
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
	}
}

// Notify sends a plain text message, wrapped in a context block.
func (n *Notifier) Notify(message string) {
	if n == nil || n.api == nil {
		return
	}
	if n.IsRateLimited() {
		log.Println("Skipping Slack message due to rate limit backoff")
		return
	}

	blocks := slack.MsgOptionBlocks(
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Smart Farm Notification", false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message, false, false), nil, nil),
	)
	_, _, err := n.api.PostMessage(n.channelID, blocks)
	if err != nil {
		if n.isRateLimitError(err) {
			n.handleRateLimit(err)
		} else {
			log.Printf("Failed to send Slack message: %v", err)
		}
	}
}

// isRateLimitError checks if the error is related to rate limiting.
func (n *Notifier) isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate_limited") ||
		strings.Contains(errStr, "message_limit_exceeded") ||
		strings.Contains(errStr, "too_many_requests")
}

// handleRateLimit suppresses further messages for a backoff period.
func (n *Notifier) handleRateLimit(err error) {
	backoffDuration := 1 * time.Minute
	if strings.Contains(strings.ToLower(err.Error()), "message_limit_exceeded") {
		backoffDuration = 5 * time.Minute
	}

	n.mu.Lock()
	n.rateLimitBackoff = backoffDuration
	n.mu.Unlock()
	log.Printf("Slack rate limit detected (%v). Messages will be suppressed for %v", err, backoffDuration)

	go func() {
		time.Sleep(backoffDuration)
		n.mu.Lock()
		n.rateLimitBackoff = 0
		n.mu.Unlock()
		log.Println("Slack rate limit backoff period ended. Messages will resume.")
	}()
}

// IsRateLimited returns true while messages are being suppressed.
func (n *Notifier) IsRateLimited() bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rateLimitBackoff > 0
}

package services

import (
	"context"
	"sync"
	"time"

	"court_filing_app_go/logger"

	"github.com/sirupsen/logrus"
)

// Notifier is the best-effort email port used by handlers. Dispatch never blocks the
// request and never reports failure to the caller; failed messages go to the retry queue.
type Notifier struct {
	sender MailSender
	queue  RetryQueue

	// Synchronous delivers on the caller's goroutine. Used by tests and one-shot commands.
	Synchronous bool

	wg sync.WaitGroup
}

// Notify is the global notifier instance
var Notify *Notifier

// NewNotifier creates a notifier. queue may be nil, in which case failures are only logged.
func NewNotifier(sender MailSender, queue RetryQueue) *Notifier {
	return &Notifier{sender: sender, queue: queue}
}

// Dispatch sends an email in the background
func (n *Notifier) Dispatch(email *Email) {
	if n == nil || email == nil {
		return
	}
	if len(email.To) == 0 {
		logger.Log.WithField("template", email.Template).Debug("Email skipped, no recipients")
		return
	}

	// Copy the email to avoid races with the caller
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
		Template: email.Template,
	}

	if n.Synchronous {
		n.deliver(emailCopy)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(emailCopy)
	}()
}

// Wait blocks until in-flight deliveries finish
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *Notifier) deliver(email *Email) {
	err := n.sender.Send(email)
	if err == nil {
		return
	}

	fields := logrus.Fields{"to": email.To, "template": email.Template}
	logger.Log.WithFields(fields).WithError(err).Warn("Email delivery failed")

	if n.queue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if qerr := n.queue.Enqueue(ctx, email, err); qerr != nil {
		logger.Log.WithFields(fields).WithError(qerr).Error("Failed to queue email for retry")
	}
}

// RetryPending runs one pass of the retry queue through this notifier's sender
func (n *Notifier) RetryPending(ctx context.Context) (RetryStats, error) {
	if n == nil || n.queue == nil {
		return RetryStats{}, nil
	}
	return n.queue.Process(ctx, n.sender.Send)
}

package sink

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"gatekeeper/contract"
	"gatekeeper/domain/event"
)

var _ contract.NoticeSink = (*MailSink)(nil)

// SendFunc delivers an assembled mail. Injected so tests never touch
// an MTA.
type SendFunc func(from string, to []string, subject, body string) error

// MailSink mails notices to operators through the local MTA, with a
// minimum gap between mails so an incident does not flood the inbox.
// Notices arriving inside the gap are buffered (bounded, oldest
// dropped) and go out batched in the next mail.
type MailSink struct {
	mu       sync.Mutex
	from     string
	to       []string
	tag      string
	minGap   time.Duration
	maxNum   int
	send     SendFunc
	log      *slog.Logger
	buffered []event.Notice
	lastSent time.Time
}

func NewMailSink(from string, to []string, tag string, minGap time.Duration, log *slog.Logger) *MailSink {
	return &MailSink{
		from:   from,
		to:     to,
		tag:    tag,
		minGap: minGap,
		maxNum: 10,
		send:   localSMTP,
		log:    log,
	}
}

// WithSender overrides mail delivery, for tests.
func (s *MailSink) WithSender(send SendFunc) *MailSink {
	s.send = send
	return s
}

func (s *MailSink) Consume(n event.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffered = append(s.buffered, n)
	if len(s.buffered) > s.maxNum {
		s.buffered = s.buffered[len(s.buffered)-s.maxNum:]
	}

	now := time.Now()
	if now.Before(s.lastSent.Add(s.minGap)) {
		return
	}

	subject, body := s.assemble(s.buffered)
	if err := s.send(s.from, s.to, subject, body); err != nil {
		// Keep the buffer; the next notice retries the batch.
		s.log.Error("Operator mail delivery failed", "error", err)
		return
	}
	s.buffered = nil
	s.lastSent = now
}

func (s *MailSink) assemble(notices []event.Notice) (string, string) {
	var subject string
	if len(notices) == 1 {
		subject = fmt.Sprintf("[%s] %s", s.tag, notices[0].Summary())
	} else {
		subject = fmt.Sprintf("[%s] %d notices", s.tag, len(notices))
	}
	lines := lo.Map(notices, func(n event.Notice, _ int) string {
		return n.Summary()
	})
	return subject, strings.Join(lines, "\n") + "\n"
}

// localSMTP hands the mail to the MTA on localhost; relaying further
// is the MTA's job.
func localSMTP(from string, to []string, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, strings.Join(to, ", "), subject, body)
	return smtp.SendMail("localhost:25", nil, from, to, []byte(msg))
}

package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"sunrisestay/internal/logger"
	"sunrisestay/internal/metrics"
)

const (
	queueKey   = "contact:messages"
	failedKey  = "contact:messages:failed"
	maxTries   = 3
	popTimeout = 2 * time.Second
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	ReplyTo string    `json:"reply_to,omitempty"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	Inbox    string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// Service queues outgoing mail in Redis and delivers it over SMTP from a
// single worker loop.
type Service struct {
	redis      *redis.Client
	cfg        Config
	retryDelay time.Duration
	deliver    func(EmailJob) error
}

func New(rdb *redis.Client, cfg Config) *Service {
	s := &Service{
		redis:      rdb,
		cfg:        cfg,
		retryDelay: 5 * time.Second,
	}
	s.deliver = s.sendNow
	return s
}

func (s *Service) Send(ctx context.Context, job EmailJob) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		metrics.RecordEmail("contact", "queue_failed")
		return err
	}

	metrics.RecordEmail("contact", "queued")
	logger.Infof("Email queued: %s to %s", job.Subject, job.To)
	return nil
}

// SendContactMessage queues a guest's contact form message for the hotel inbox.
func (s *Service) SendContactMessage(ctx context.Context, name, email, message string) error {
	body := fmt.Sprintf(`New message from the contact form.

Name: %s
Email: %s

%s

- SunriseStay website`, name, email, message)

	return s.Send(ctx, EmailJob{
		To:      s.cfg.Inbox,
		Name:    "SunriseStay",
		ReplyTo: email,
		Subject: "Contact form: " + name,
		Body:    body,
	})
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
			s.QueueLength(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("email queue unavailable", "error", err)
			s.pause(ctx)
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.deliver(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			s.retry(ctx, job)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordEmail("contact", "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail("contact", "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}
}

func (s *Service) retry(ctx context.Context, job EmailJob) {
	s.pause(ctx)
	data, _ := json.Marshal(job)
	s.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data))
	logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", headerValue(s.cfg.FromName), s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", headerValue(job.To))
	if job.ReplyTo != "" {
		message += fmt.Sprintf("Reply-To: %s\r\n", headerValue(job.ReplyTo))
	}
	message += fmt.Sprintf("Subject: %s\r\n", headerValue(job.Subject))
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, string(data))
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

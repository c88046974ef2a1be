package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type MailOptions struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

// SMTPNotifier sends plain text mail through an SMTP relay
type SMTPNotifier struct {
	o MailOptions
	d *gomail.Dialer
}

func NewSMTPNotifier(o MailOptions) *SMTPNotifier {
	return &SMTPNotifier{
		o: o,
		d: gomail.NewDialer(o.Host, o.Port, o.Sender, o.Password),
	}
}

func (n *SMTPNotifier) Send(_ context.Context, to, subject, body string) error {
	if to == n.o.Sender {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()

	m.SetHeader("From", n.o.Sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return n.d.DialAndSend(m)
}

// LogNotifier only logs messages. Used when mail is disabled.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to, subject, body string) error {
	zap.L().Info("Mail delivery disabled, logging message instead",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)

	return nil
}

const TypeSendMail = "mail:send"

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// QueueNotifier hands messages to a redis backed asynq queue. Send only
// reports enqueue failures, delivery happens in MailWorker.
type QueueNotifier struct {
	c *asynq.Client
}

func NewQueueNotifier(redisAddr string) *QueueNotifier {
	return &QueueNotifier{
		c: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

func (n *QueueNotifier) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(mailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	info, err := n.c.EnqueueContext(ctx, asynq.NewTask(TypeSendMail, payload), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("failed to enqueue mail, %w", err)
	}

	zap.L().Debug("Mail queued", zap.String("taskID", info.ID))
	return nil
}

func (n *QueueNotifier) Close() error {
	return n.c.Close()
}

// MailHandler delivers queued mail through next
func MailHandler(next Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p mailPayload

		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("bad mail payload, %w: %w", err, asynq.SkipRetry)
		}

		if err := next.Send(ctx, p.To, p.Subject, p.Body); err != nil {
			zap.L().Error("Failed to deliver queued mail", zap.String("to", p.To), zap.Error(err))
			return err
		}

		return nil
	}
}

// MailWorker runs the asynq server that drains the mail queue
type MailWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewMailWorker(redisAddr string, deliver Notifier) *MailWorker {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 2,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendMail, MailHandler(deliver))

	return &MailWorker{srv: srv, mux: mux}
}

func (w *MailWorker) Start() error {
	return w.srv.Start(w.mux)
}

func (w *MailWorker) Shutdown() {
	w.srv.Shutdown()
}

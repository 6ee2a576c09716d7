package email

import (
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/pkg/logger"
)

type messageKind int

const (
	kindWelcome messageKind = iota
	kindCancellation
)

type message struct {
	kind messageKind
	to   string
	name string
}

// Outbox decouples request handling from mail delivery. Handlers enqueue,
// a single worker goroutine drains the queue and sends; failures are logged
// and dropped, never surfaced to the request that caused them.
type Outbox struct {
	mailer Mailer
	queue  chan message
}

func NewOutbox(mailer Mailer) *Outbox {
	return &Outbox{
		mailer: mailer,
		queue:  make(chan message, 64),
	}
}

// Run drains the queue until Stop is called. Run it on its own goroutine.
func (o *Outbox) Run() {
	for msg := range o.queue {
		var err error
		switch msg.kind {
		case kindWelcome:
			err = o.mailer.SendWelcome(msg.to, msg.name)
		case kindCancellation:
			err = o.mailer.SendCancellation(msg.to, msg.name)
		}
		if err != nil {
			logger.ErrorLogger.Error("Error sending email",
				zap.String("to", msg.to),
				zap.Error(err),
			)
		}
	}
}

func (o *Outbox) Stop() {
	close(o.queue)
}

func (o *Outbox) enqueue(msg message) {
	// Drop instead of blocking the request when the queue is full
	select {
	case o.queue <- msg:
	default:
		logger.ErrorLogger.Error("Email queue full, dropping message",
			zap.String("to", msg.to))
	}
}

func (o *Outbox) EnqueueWelcome(to, name string) {
	o.enqueue(message{kind: kindWelcome, to: to, name: name})
}

func (o *Outbox) EnqueueCancellation(to, name string) {
	o.enqueue(message{kind: kindCancellation, to: to, name: name})
}

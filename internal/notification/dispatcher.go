// Package notification доставляет push-уведомления пользователям
// асинхронно, после фиксации изменений в базе.
package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender доставляет уведомление на устройства.
type Sender interface {
	Send(ctx context.Context, playerIds []string, title, body string) error
}

// DeviceLookup находит устройства пользователей.
type DeviceLookup interface {
	GetPlayerIds(ctx context.Context, userIds []string) ([]string, error)
}

// Message - уведомление для группы пользователей.
type Message struct {
	Recipients []string
	Title      string
	Body       string
}

// Dispatcher складывает уведомления в буферизованную очередь,
// которую разбирает пул воркеров.
type Dispatcher struct {
	devices DeviceLookup
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

// NewDispatcher создает новый экземпляр Dispatcher.
func NewDispatcher(devices DeviceLookup, sender Sender, logger *zap.Logger, queueSize int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		devices: devices,
		sender:  sender,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan Message, queueSize),
	}
}

// Start запускает воркеры.
func (d *Dispatcher) Start(workers int) {
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
	d.logger.Info("notification workers started", zap.Int("workers", workers))
}

// Notify ставит уведомление в очередь и не блокируется;
// при переполненной очереди уведомление отбрасывается.
func (d *Dispatcher) Notify(recipients []string, title, body string) {
	recipients = distinct(recipients)
	if len(recipients) == 0 {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", zap.String("title", title))
		return
	}

	select {
	case d.queue <- Message{Recipients: recipients, Title: title, Body: body}:
	default:
		d.logger.Warn("notification queue full, message dropped",
			zap.String("title", title),
			zap.Strings("recipients", recipients))
	}
}

// Close закрывает очередь и ждет, пока воркеры доставят оставшиеся уведомления.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) workerLoop(id int) {
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		d.deliver(ctx, id, msg)
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, msg Message) {
	playerIds, err := d.devices.GetPlayerIds(ctx, msg.Recipients)
	if err != nil {
		d.logger.Error("failed to resolve devices",
			zap.Int("worker", id),
			zap.Strings("recipients", msg.Recipients),
			zap.Error(err))
		return
	}
	if len(playerIds) == 0 {
		d.logger.Debug("no devices registered", zap.Strings("recipients", msg.Recipients))
		return
	}

	if err = d.sender.Send(ctx, playerIds, msg.Title, msg.Body); err != nil {
		d.logger.Error("failed to send notification",
			zap.Int("worker", id),
			zap.String("title", msg.Title),
			zap.Error(err))
		return
	}
	d.logger.Debug("notification sent", zap.Int("worker", id), zap.String("title", msg.Title), zap.Int("devices", len(playerIds)))
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

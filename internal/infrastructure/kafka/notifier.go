package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

// Errores del notificador
var (
	ErrNotifierClosed  = errors.New("notificador cerrado")
	ErrSerializeFailed = errors.New("no se pudo serializar la notificación")
)

var _ alerting.Notifier = (*Notifier)(nil)

// messageWriter subconjunto de *kafka.Writer usado por el notificador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Options parámetros de publicación.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

// DefaultOptions valores por defecto de publicación.
func DefaultOptions() Options {
	return Options{MaxRetries: 2, RetryBackoff: 100 * time.Millisecond, WriteTimeout: 5 * time.Second}
}

// CriticalAlertEvent mensaje publicado por cada alerta CRITICAL nueva.
type CriticalAlertEvent struct {
	CompanyID string           `json:"companyId"`
	Alert     entity.AutoAlert `json:"alert"`
	EmittedAt time.Time        `json:"emittedAt"`
}

// Notifier publica las alertas críticas en un topic de Kafka, particionando por producto.
type Notifier struct {
	w      messageWriter
	opts   Options
	log    *logger.Logger
	closed atomic.Bool
}

// NewNotifier crea el notificador con un writer síncrono.
func NewNotifier(brokers []string, topic string, opts Options, log *logger.Logger) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("se requiere al menos un broker")
	}
	if topic == "" {
		return nil, errors.New("se requiere el topic")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: opts.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  1,
		Async:        false,
	}
	return newNotifier(w, opts, log), nil
}

func newNotifier(w messageWriter, opts Options, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{w: w, opts: opts, log: log.Component("kafka_notifier")}
}

// NotifyCritical serializa la alerta y la publica con reintentos y backoff exponencial.
func (n *Notifier) NotifyCritical(ctx context.Context, companyID string, alert entity.AutoAlert) error {
	if n.closed.Load() {
		return ErrNotifierClosed
	}
	data, err := json.Marshal(CriticalAlertEvent{CompanyID: companyID, Alert: alert, EmittedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.ProductID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "company_id", Value: []byte(companyID)},
			{Key: "alert_id", Value: []byte(alert.ID)},
			{Key: "severity", Value: []byte(alert.Severity)},
		},
		Time: alert.Timestamp,
	}
	return n.publishWithRetry(ctx, alert.ID, msg)
}

func (n *Notifier) publishWithRetry(ctx context.Context, alertID string, msg kafka.Message) error {
	var lastErr error
	backoff := n.opts.RetryBackoff
	for attempt := 0; attempt <= n.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := n.w.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err
		n.log.Warn().Err(err).Int("attempt", attempt+1).Str("alert_id", alertID).Msg("publicación en kafka fallida")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return fmt.Errorf("kafka: falló tras %d intentos: %w", n.opts.MaxRetries+1, lastErr)
}

// Close cierra el writer. Llamadas repetidas no hacen nada.
func (n *Notifier) Close() error {
	if n.closed.Swap(true) {
		return nil
	}
	return n.w.Close()
}

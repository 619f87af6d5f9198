package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

// DefaultQueue は予約確定通知のキュー名
const DefaultQueue = "booking.confirmed"

// channel は Publisher が使う AMQP チャネルの操作
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は予約確定イベントを RabbitMQ に送信する
//
// 通知は予約確定の後に行う付随処理であり、送信に失敗しても確定は取り消さない。
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

// NewPublisher はブローカーに接続し、永続キューを宣言する
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("RabbitMQチャネル作成に失敗しました: %w", err)
	}

	p, err := newPublisher(ch, queue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("キュー宣言に失敗しました: %w", err)
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

// NotifyBookingConfirmed は予約確定イベントを永続メッセージとして送信する
func (p *Publisher) NotifyBookingConfirmed(ctx context.Context, event booking.ConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗しました: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("予約確定通知の送信に失敗しました: %w", err)
	}

	logger.Debug("予約確定通知を送信",
		zap.String("queue", p.queue),
		zap.String("holder", event.Holder),
		zap.String("theater_id", event.TheaterID),
		zap.Int("seats", len(event.SeatIDs)),
	)
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

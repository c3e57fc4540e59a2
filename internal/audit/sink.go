package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 業務処理から投げる監査イベント。
type Event struct {
	ActorID      int64
	ActorName    string
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   int64
	Details      map[string]interface{}
}

// 監査イベントの送り先の約束。
// Publishは絶対にブロックせず、失敗しても業務処理には伝播しない。
type Publisher interface {
	Publish(e Event)
}

// テスト用の何もしないPublisher。
type NopPublisher struct{}

func (NopPublisher) Publish(_ Event) {}

// Sinkは有界キュー＋1ワーカーの非同期監査ロガー。
// 配送はat-most-once：キューが満杯なら捨てて警告ログだけ残す。
type Sink struct {
	repo repo.AuditLogRepository
	log  *zap.Logger

	ch   chan model.AuditLog
	wg   sync.WaitGroup
	once sync.Once
}

func NewSink(r repo.AuditLogRepository, log *zap.Logger, queueSize int) *Sink {
	if queueSize <= 0 {
		queueSize = 256
	}
	s := &Sink{
		repo: r,
		log:  log,
		ch:   make(chan model.AuditLog, queueSize),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Publishはイベントをキューに積む。満杯なら捨てる（業務は止めない）。
func (s *Sink) Publish(e Event) {
	details := "{}"
	if e.Details != nil {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		}
	}

	row := model.AuditLog{
		EventID:         uuid.NewString(),
		ActorEmployeeID: e.ActorID,
		ActorName:       e.ActorName,
		Action:          e.Action,
		ResourceType:    e.ResourceType,
		ResourceID:      e.ResourceID,
		DetailsJSON:     details,
		CreatedAt:       time.Now(),
	}

	select {
	case s.ch <- row:
	default:
		s.log.Warn("audit queue full, event dropped",
			zap.String("action", string(e.Action)),
			zap.Int64("resource_id", e.ResourceID))
	}
}

// 書き込み失敗はここで握りつぶしてログだけ残す。
func (s *Sink) worker() {
	defer s.wg.Done()
	for row := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, row); err != nil {
			s.log.Warn("audit write failed",
				zap.String("event_id", row.EventID),
				zap.String("action", string(row.Action)),
				zap.Error(err))
		}
		cancel()
	}
}

// Closeはキューを閉じて残りを書き切るまで待つ。
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.ch)
	})
	s.wg.Wait()
}

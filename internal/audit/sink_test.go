package audit_test

import (
	"context"
	"sync"
	"testing"

	"pos/internal/audit"
	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// スレッドセーフに書き込みを記録するAuditLogRepository
type captureRepo struct {
	mu   sync.Mutex
	rows []model.AuditLog
	err  error
}

func (r *captureRepo) Create(_ context.Context, log model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, log)
	return nil
}

func (r *captureRepo) List(_ context.Context, _ repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used")
}

func (r *captureRepo) snapshot() []model.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AuditLog, len(r.rows))
	copy(out, r.rows)
	return out
}

func TestSink_PublishAndDrain(t *testing.T) {
	store := &captureRepo{}
	sink := audit.NewSink(store, zap.NewNop(), 16)

	sink.Publish(audit.Event{
		ActorID:      7,
		ActorName:    "Cashier A",
		Action:       model.AuditActionCreateSale,
		ResourceType: model.AuditResourceSale,
		ResourceID:   40,
		Details:      map[string]interface{}{"total_cents": 700},
	})
	sink.Publish(audit.Event{
		ActorID:      1,
		ActorName:    "Manager",
		Action:       model.AuditActionApproveAdjustment,
		ResourceType: model.AuditResourceAdjustment,
		ResourceID:   9,
	})

	//Closeは残りを書き切るまで待つ
	sink.Close()

	rows := store.snapshot()
	assert.Equal(t, 2, len(rows))
	assert.Equal(t, model.AuditActionCreateSale, rows[0].Action)
	assert.Contains(t, rows[0].DetailsJSON, "total_cents")
	assert.NotEmpty(t, rows[0].EventID)
	assert.NotEmpty(t, rows[1].EventID)
	assert.NotEqual(t, rows[0].EventID, rows[1].EventID)
}

func TestSink_DetailsNilBecomesEmptyObject(t *testing.T) {
	store := &captureRepo{}
	sink := audit.NewSink(store, zap.NewNop(), 16)

	sink.Publish(audit.Event{
		ActorID:      1,
		Action:       model.AuditActionLogin,
		ResourceType: model.AuditResourceEmployee,
		ResourceID:   1,
	})
	sink.Close()

	rows := store.snapshot()
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, "{}", rows[0].DetailsJSON)
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	store := &captureRepo{}
	sink := audit.NewSink(store, zap.NewNop(), 16)

	sink.Close()
	//2回目のCloseでpanicしない
	sink.Close()
}

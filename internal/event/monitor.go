package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/logger"
	"github.com/blues/fis/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Monitor 平台审计事件监控器
//
// handler 层在关键动作后发布事件，监控器通过协程池异步落库。
// 事件是尽力而为的审计流水：落库失败只记日志，不影响请求本身。
type Monitor struct {
	db     *gorm.DB
	pool   *ants.Pool // 协程池
	queue  chan *model.PlatformEventModel
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMonitor 创建事件监控器
func NewMonitor(db *gorm.DB, cfg config.EventConfig) (*Monitor, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		db:     db,
		pool:   pool,
		queue:  make(chan *model.PlatformEventModel, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start 启动监控循环
func (m *Monitor) Start() {
	logger.Info("Starting platform event monitor with %d workers", m.pool.Cap())
	go m.dispatchLoop()
}

// Stop 停止监控
func (m *Monitor) Stop() {
	m.cancel()
	m.pool.Release()
	logger.Info("Platform event monitor stopped")
}

// Publish 发布审计事件（非阻塞，队列满时丢弃并告警）
func (m *Monitor) Publish(eventType model.EventType, projectId, actorId int64, txHash string, data interface{}) {
	payload := ""
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			logger.Warn("Failed to marshal event data: %v", err)
		} else {
			payload = string(raw)
		}
	}

	event := &model.PlatformEventModel{
		EventType: eventType,
		ProjectId: projectId,
		ActorId:   actorId,
		TxHash:    txHash,
		Data:      payload,
	}

	select {
	case m.queue <- event:
	default:
		logger.Warn("Event queue full, dropping event %s for project %d", eventType, projectId)
	}
}

// dispatchLoop 把队列中的事件分发到协程池
func (m *Monitor) dispatchLoop() {
	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Event dispatch loop stopped")
			return
		case event := <-m.queue:
			e := event
			if err := m.pool.Submit(func() {
				m.persist(e)
			}); err != nil {
				logger.Error("Failed to submit event to pool: %v", err)
			}
		}
	}
}

// persist 事件落库
func (m *Monitor) persist(event *model.PlatformEventModel) {
	if err := m.db.Create(event).Error; err != nil {
		logger.Error("Failed to persist event %s for project %d: %v", event.EventType, event.ProjectId, err)
		return
	}
	logger.Debug("Persisted event %s for project %d", event.EventType, event.ProjectId)
}

package event

import (
	"fmt"
	"testing"
	"time"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/database"
	"github.com/blues/fis/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// waitForEvents 等待异步落库完成
func waitForEvents(t *testing.T, db *gorm.DB, want int64) []model.PlatformEventModel {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for {
		var count int64
		if err := db.Model(&model.PlatformEventModel{}).Count(&count).Error; err != nil {
			t.Fatalf("Failed to count events: %v", err)
		}
		if count >= want {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %d events, got %d", want, count)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var events []model.PlatformEventModel
	if err := db.Order("id ASC").Find(&events).Error; err != nil {
		t.Fatalf("Failed to load events: %v", err)
	}
	return events
}

func TestMonitorPublish(t *testing.T) {
	db := newTestDB(t)

	monitor, err := NewMonitor(db, config.EventConfig{Workers: 2, QueueSize: 16})
	if err != nil {
		t.Fatalf("Failed to create monitor: %v", err)
	}
	monitor.Start()
	defer monitor.Stop()

	monitor.Publish(model.EventInvestmentRecorded, 7, 42, "0xabc", map[string]interface{}{
		"amount": 1000,
	})
	monitor.Publish(model.EventProofSubmitted, 7, 42, "", nil)

	events := waitForEvents(t, db, 2)
	byType := make(map[model.EventType]model.PlatformEventModel)
	for _, e := range events {
		byType[e.EventType] = e
	}

	invested, ok := byType[model.EventInvestmentRecorded]
	if !ok {
		t.Fatal("Expected investment event to be persisted")
	}
	if invested.ProjectId != 7 || invested.ActorId != 42 || invested.TxHash != "0xabc" {
		t.Errorf("Unexpected event fields: %+v", invested)
	}
	if invested.Data == "" {
		t.Error("Expected serialized event data")
	}

	proof, ok := byType[model.EventProofSubmitted]
	if !ok {
		t.Fatal("Expected proof event to be persisted")
	}
	// 无附加数据时payload为空
	if proof.Data != "" {
		t.Errorf("Expected empty data, got %q", proof.Data)
	}
}

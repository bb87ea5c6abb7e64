package outbox

import (
	"encoding/json"
	"time"

	"qbuy_backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Insert queues an event inside the caller's transaction so the event is
// recorded if and only if the surrounding state change commits.
func Insert(tx *gorm.DB, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := models.OutboxEvent{
		EventID: uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: string(data),
	}
	return tx.Create(&event).Error
}

// FetchPending returns unsent events in insertion order.
func FetchPending(db *gorm.DB, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := db.Where("sent_at IS NULL").Order("id").Limit(limit).Find(&events).Error
	return events, err
}

func MarkSent(db *gorm.DB, id uint) error {
	now := time.Now().UTC()
	return db.Model(&models.OutboxEvent{}).Where("id = ?", id).Update("sent_at", now).Error
}

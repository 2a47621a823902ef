package event

import (
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = EventPersistCreate
)

func EventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

package models

import "time"

// ClientStoreEntry is one persisted client store slot. Deletes leave a
// tombstone so pollers in other processes observe them as a version bump.
type ClientStoreEntry struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	SlotKey   string    `gorm:"column:slot_key;primaryKey"`
	Value     string    `gorm:"column:value;not null;default:''"`
	Version   int64     `gorm:"column:version;not null;default:0"`
	Deleted   bool      `gorm:"column:deleted;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (ClientStoreEntry) TableName() string { return "client_store_entries" }

package models

import "time"

// Ward represents a hospital ward (general, ICU, CCU, etc.)
type Ward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	WardType  string    `gorm:"size:30;not null" json:"ward_type"`
	Floor     string    `gorm:"size:30" json:"floor,omitempty"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for Ward model
func (Ward) TableName() string {
	return "wards"
}

// Bed represents a single bed within a ward. Beds are deactivated, never
// deleted; their allocation history lives in bed_allocations.
type Bed struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WardID         uint      `gorm:"not null;index;uniqueIndex:uniq_ward_bed_number" json:"ward_id"`
	RoomLabel      string    `gorm:"size:50" json:"room_label,omitempty"`
	BedNumber      string    `gorm:"size:50;not null;uniqueIndex:uniq_ward_bed_number" json:"bed_number"`
	Status         BedStatus `gorm:"size:20;not null;default:'AVAILABLE'" json:"status"`
	IsIsolation    bool      `gorm:"default:false" json:"is_isolation"`
	EquipmentReady bool      `gorm:"default:true" json:"equipment_ready"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Ward Ward `gorm:"foreignKey:WardID" json:"ward,omitempty"`
}

// TableName specifies the table name for Bed model
func (Bed) TableName() string {
	return "beds"
}

// Allocatable reports whether the bed can receive a new admission or
// reservation right now.
func (b *Bed) Allocatable() bool {
	return b.IsActive && b.Status == BedAvailable
}

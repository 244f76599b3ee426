package entity

import "time"

// Theater represents a physical operating theater whose time is allocated
// through theater bookings.
type Theater struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Location  string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Bookings []TheaterBooking `gorm:"foreignKey:TheaterID" json:"bookings,omitempty"`
}

func (Theater) TableName() string {
	return "theaters"
}

package holiday

import (
	"time"

	"github.com/google/uuid"
)

// Holiday mirrors one row of the holiday sheet.
type Holiday struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date time.Time `gorm:"type:date;not null;uniqueIndex"`
	Name string    `gorm:"type:varchar(120)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

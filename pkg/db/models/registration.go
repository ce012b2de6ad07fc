package models

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// Registration is a party waiting for a table of a given type.
type Registration struct {
	ID          int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	TableTypeID int64                    `gorm:"column:table_type_id;not null;index"`
	MemberID    int64                    `gorm:"column:member_id;not null;index"`
	PartySize   int                      `gorm:"column:party_size;not null"`
	QueueNumber int                      `gorm:"column:queue_number;not null"`
	Status      enums.RegistrationStatus `gorm:"column:status;not null;default:'waiting';index"`
	Member      *Member                  `gorm:"foreignKey:MemberID"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

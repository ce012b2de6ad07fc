package queue

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

type RegistrationDTO struct {
	ID          int64                    `json:"id"`
	TableTypeID int64                    `json:"table_type_id"`
	MemberID    int64                    `json:"member_id"`
	WPOpenID    string                   `json:"wp_openid,omitempty"`
	PartySize   int                      `json:"party_size"`
	QueueNumber int                      `json:"queue_number"`
	Status      enums.RegistrationStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
}

// RegistrationStatusDTO is a registration together with how many waiting
// parties are ahead of it.
type RegistrationStatusDTO struct {
	RegistrationDTO
	Ahead int `json:"ahead"`
}

// RegisterInput is the body of POST /registration.
type RegisterInput struct {
	TableTypeID int64  `json:"table_type_id" validate:"required,gt=0"`
	WPOpenID    string `json:"wp_openid" validate:"required"`
	PartySize   int    `json:"party_size" validate:"required,gte=1,lte=100"`
}

// UpdateStatusInput is the body of PUT /registration/{id}/status.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=called seated cancelled"`
}

func FromModel(r *models.Registration) RegistrationDTO {
	dto := RegistrationDTO{
		ID:          r.ID,
		TableTypeID: r.TableTypeID,
		MemberID:    r.MemberID,
		PartySize:   r.PartySize,
		QueueNumber: r.QueueNumber,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
	if r.Member != nil {
		dto.WPOpenID = r.Member.WPOpenID
	}
	return dto
}

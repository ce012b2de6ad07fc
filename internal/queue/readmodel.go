package queue

import (
	"context"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

// Status tags a QueueResult so a failed lookup is never mistaken for an empty queue.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// QueueResult is the waiting-list projection embedded in table type responses.
type QueueResult struct {
	Status              Status            `json:"status"`
	FrontLeft           *int              `json:"front_left,omitempty"`
	CurrentRegistration *RegistrationDTO  `json:"current_registration"`
	QueueRegistrations  []RegistrationDTO `json:"queue_registrations,omitempty"`
	Error               string            `json:"error,omitempty"`
}

// FrontLeft is the number of waiting parties behind the one currently at the
// front. An empty queue yields -1.
func FrontLeft(waitingCount int) int {
	return waitingCount - 1
}

// CurrentRegistration is the lowest-id waiting registration, or nil.
func CurrentRegistration(waiting []models.Registration) *models.Registration {
	if len(waiting) == 0 {
		return nil
	}
	return &waiting[0]
}

// QueueRegistrations drops the current registration from a waiting list
// already sorted by id.
func QueueRegistrations(waiting []models.Registration) []models.Registration {
	if len(waiting) <= 1 {
		return []models.Registration{}
	}
	return waiting[1:]
}

type waitingLister interface {
	ListWaiting(ctx context.Context, tableTypeID int64) ([]models.Registration, error)
	CountWaiting(ctx context.Context, tableTypeIDs []int64) (map[int64]int, error)
}

// Reader builds QueueResults from point-in-time snapshots of the waiting list.
type Reader struct {
	repo waitingLister
	logg *logger.Logger
}

func NewReader(repo waitingLister, logg *logger.Logger) *Reader {
	return &Reader{repo: repo, logg: logg}
}

// Summaries returns a front_left result per table type id with one query.
func (r *Reader) Summaries(ctx context.Context, tableTypeIDs []int64) map[int64]QueueResult {
	out := make(map[int64]QueueResult, len(tableTypeIDs))
	counts, err := r.repo.CountWaiting(ctx, tableTypeIDs)
	if err != nil {
		r.logFailure(ctx, "queue.summaries_failed", err)
		for _, id := range tableTypeIDs {
			out[id] = unavailable(err)
		}
		return out
	}
	for _, id := range tableTypeIDs {
		left := FrontLeft(counts[id])
		out[id] = QueueResult{Status: StatusOK, FrontLeft: &left}
	}
	return out
}

// Projection returns the detail view: current registration, the rest of the
// queue and front_left.
func (r *Reader) Projection(ctx context.Context, tableTypeID int64) QueueResult {
	waiting, err := r.repo.ListWaiting(ctx, tableTypeID)
	if err != nil {
		r.logFailure(r.withTableType(ctx, tableTypeID), "queue.projection_failed", err)
		return unavailable(err)
	}
	left := FrontLeft(len(waiting))
	result := QueueResult{Status: StatusOK, FrontLeft: &left, QueueRegistrations: []RegistrationDTO{}}
	if current := CurrentRegistration(waiting); current != nil {
		dto := FromModel(current)
		result.CurrentRegistration = &dto
	}
	for _, reg := range QueueRegistrations(waiting) {
		result.QueueRegistrations = append(result.QueueRegistrations, FromModel(&reg))
	}
	return result
}

func (r *Reader) withTableType(ctx context.Context, id int64) context.Context {
	if r.logg == nil {
		return ctx
	}
	return r.logg.WithField(ctx, "table_type_id", id)
}

func (r *Reader) logFailure(ctx context.Context, msg string, err error) {
	if r.logg != nil {
		r.logg.Error(ctx, msg, err)
	}
}

func unavailable(err error) QueueResult {
	return QueueResult{Status: StatusUnavailable, Error: err.Error()}
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/pkg/db"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
	"github.com/angelmondragon/tableside-backend/pkg/outbox"
	"github.com/angelmondragon/tableside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ownershipChecker interface {
	Authorize(ctx context.Context, ownerID, restaurantID int64) error
}

type eventCounter interface {
	RegistrationEvent(action string)
}

// Service manages waiting list registrations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*RegistrationDTO, error)
	Get(ctx context.Context, id int64) (*RegistrationStatusDTO, error)
	CancelOwn(ctx context.Context, id int64, wpOpenID string) (*RegistrationDTO, error)
	CallNext(ctx context.Context, ownerID, tableTypeID int64) (*RegistrationDTO, error)
	UpdateStatus(ctx context.Context, ownerID, id int64, status enums.RegistrationStatus) (*RegistrationDTO, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ServiceParams bundles the registration service dependencies.
type ServiceParams struct {
	Repo    *Repository
	Tx      txRunner
	Members members.Finder
	Owners  ownershipChecker
	Outbox  outboxEmitter
	Metrics eventCounter
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	tx      txRunner
	members members.Finder
	owners  ownershipChecker
	outbox  outboxEmitter
	metrics eventCounter
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("registration repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Members == nil:
		return nil, fmt.Errorf("member finder required")
	case params.Owners == nil:
		return nil, fmt.Errorf("ownership checker required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		members: params.Members,
		owners:  params.Owners,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*RegistrationDTO, error) {
	member, err := members.Resolve(ctx, s.members, input.WPOpenID)
	if err != nil {
		return nil, err
	}

	var created models.Registration
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		tableType, err := repo.LockTableType(ctx, input.TableTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInvalidReference, "param error: no table type found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock table type")
		}
		if !tableType.Fits(input.PartySize) {
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"party_size": fmt.Sprintf("must be between %d and %d", tableType.MinSeats, tableType.MaxSeats)})
		}
		waiting, err := repo.HasWaiting(ctx, tableType.ID, member.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check registrations")
		}
		if waiting {
			return pkgerrors.New(pkgerrors.CodeConflict, "member already waiting for this table type")
		}
		number, err := repo.NextQueueNumber(ctx, tableType.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next queue number")
		}

		created = models.Registration{
			TableTypeID: tableType.ID,
			MemberID:    member.ID,
			PartySize:   input.PartySize,
			QueueNumber: number,
			Status:      enums.RegistrationStatusWaiting,
		}
		if err := repo.Create(ctx, &created); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "member already waiting for this table type")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registration")
		}
		return s.emit(ctx, tx, enums.EventRegistrationCreated, &created)
	})
	if err != nil {
		return nil, err
	}

	s.count("created")
	created.Member = member
	dto := FromModel(&created)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id int64) (*RegistrationStatusDTO, error) {
	reg, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	out := &RegistrationStatusDTO{RegistrationDTO: FromModel(reg)}
	if reg.Status == enums.RegistrationStatusWaiting {
		ahead, err := s.repo.CountAhead(ctx, reg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ahead")
		}
		out.Ahead = ahead
	}
	return out, nil
}

func (s *service) CancelOwn(ctx context.Context, id int64, wpOpenID string) (*RegistrationDTO, error) {
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, enums.RegistrationStatusCancelled, func(reg *models.Registration) error {
		if reg.MemberID != member.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "registration belongs to another member")
		}
		return nil
	})
}

func (s *service) CallNext(ctx context.Context, ownerID, tableTypeID int64) (*RegistrationDTO, error) {
	tableType, err := s.loadTableType(ctx, tableTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, tableType.RestaurantID); err != nil {
		return nil, err
	}

	var called *models.Registration
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockTableType(ctx, tableType.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock table type")
		}
		waiting, err := repo.ListWaiting(ctx, tableType.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list waiting")
		}
		current := CurrentRegistration(waiting)
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no party is waiting")
		}
		if err := repo.UpdateStatus(ctx, current.ID, enums.RegistrationStatusCalled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update registration")
		}
		current.Status = enums.RegistrationStatusCalled
		called = current
		return s.emit(ctx, tx, enums.EventRegistrationUpdated, current)
	})
	if err != nil {
		return nil, err
	}
	s.count("called")
	dto := FromModel(called)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, ownerID, id int64, status enums.RegistrationStatus) (*RegistrationDTO, error) {
	return s.transition(ctx, id, status, func(reg *models.Registration) error {
		tableType, err := s.loadTableType(ctx, reg.TableTypeID)
		if err != nil {
			return err
		}
		return s.owners.Authorize(ctx, ownerID, tableType.RestaurantID)
	})
}

// ExpireBefore is used by the maintenance worker to close out stale entries.
func (s *service) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.ExpireWaitingBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire registrations")
	}
	return n, nil
}

// transition runs authorize outside the transaction, then re-reads the row
// under lock and applies the status change.
func (s *service) transition(ctx context.Context, id int64, next enums.RegistrationStatus, authorize func(*models.Registration) error) (*RegistrationDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": "unknown status"})
	}
	reg, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(reg); err != nil {
		return nil, err
	}

	var updated *models.Registration
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock registration")
		}
		if !locked.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move registration from %s to %s", locked.Status, next))
		}
		if err := repo.UpdateStatus(ctx, id, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update registration")
		}
		locked.Status = next
		locked.Member = reg.Member
		updated = locked
		return s.emit(ctx, tx, enums.EventRegistrationUpdated, locked)
	})
	if err != nil {
		return nil, err
	}
	s.count(string(next))
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id int64) (*models.Registration, error) {
	reg, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registration")
	}
	return reg, nil
}

func (s *service) loadTableType(ctx context.Context, id int64) (*models.TableType, error) {
	tableType, err := s.repo.FindTableType(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table type")
	}
	return tableType, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, reg *models.Registration) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateRegistration,
		AggregateID:   reg.ID,
		Data: payloads.RegistrationEvent{
			RegistrationID: reg.ID,
			TableTypeID:    reg.TableTypeID,
			MemberID:       reg.MemberID,
			QueueNumber:    reg.QueueNumber,
			PartySize:      reg.PartySize,
			Status:         reg.Status,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit registration event")
	}
	return nil
}

func (s *service) count(action string) {
	if s.metrics != nil {
		s.metrics.RegistrationEvent(action)
	}
}

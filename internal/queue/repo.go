package queue

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/repo"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// ListWaiting returns the waiting registrations of a table type by id ascending.
func (r *Repository) ListWaiting(ctx context.Context, tableTypeID int64) ([]models.Registration, error) {
	var rows []models.Registration
	err := r.DB(ctx).
		Preload("Member").
		Where("table_type_id = ? AND status = ?", tableTypeID, enums.RegistrationStatusWaiting).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// CountWaiting returns waiting counts keyed by table type. Types with no
// waiting parties are absent from the map.
func (r *Repository) CountWaiting(ctx context.Context, tableTypeIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(tableTypeIDs))
	if len(tableTypeIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		TableTypeID int64
		Total       int
	}
	err := r.DB(ctx).
		Model(&models.Registration{}).
		Select("table_type_id, COUNT(*) AS total").
		Where("table_type_id IN ? AND status = ?", tableTypeIDs, enums.RegistrationStatusWaiting).
		Group("table_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TableTypeID] = row.Total
	}
	return out, nil
}

// CountAhead counts waiting registrations of the same type with a lower id.
func (r *Repository) CountAhead(ctx context.Context, reg *models.Registration) (int, error) {
	var total int64
	err := r.DB(ctx).
		Model(&models.Registration{}).
		Where("table_type_id = ? AND status = ? AND id < ?", reg.TableTypeID, enums.RegistrationStatusWaiting, reg.ID).
		Count(&total).Error
	return int(total), err
}

// LockTableType takes a row lock on the table type so queue numbers are
// assigned one at a time.
func (r *Repository) LockTableType(ctx context.Context, id int64) (*models.TableType, error) {
	var tt models.TableType
	if err := r.ForUpdate(ctx).First(&tt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *Repository) FindTableType(ctx context.Context, id int64) (*models.TableType, error) {
	var tt models.TableType
	if err := r.DB(ctx).First(&tt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *Repository) NextQueueNumber(ctx context.Context, tableTypeID int64) (int, error) {
	var max int
	err := r.DB(ctx).
		Model(&models.Registration{}).
		Select("COALESCE(MAX(queue_number), 0)").
		Where("table_type_id = ?", tableTypeID).
		Row().Scan(&max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *Repository) HasWaiting(ctx context.Context, tableTypeID, memberID int64) (bool, error) {
	var total int64
	err := r.DB(ctx).
		Model(&models.Registration{}).
		Where("table_type_id = ? AND member_id = ? AND status = ?", tableTypeID, memberID, enums.RegistrationStatusWaiting).
		Count(&total).Error
	return total > 0, err
}

func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	return r.DB(ctx).Create(reg).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Registration, error) {
	var reg models.Registration
	if err := r.DB(ctx).Preload("Member").First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByIDForUpdate locks the registration row for a status change.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Registration, error) {
	var reg models.Registration
	if err := r.ForUpdate(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.RegistrationStatus) error {
	return r.DB(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ExpireWaitingBefore moves every waiting or called registration created
// before cutoff to expired.
func (r *Repository) ExpireWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Registration{}).
		Where("status IN ? AND created_at < ?", []enums.RegistrationStatus{enums.RegistrationStatusWaiting, enums.RegistrationStatusCalled}, cutoff).
		Update("status", enums.RegistrationStatusExpired)
	return res.RowsAffected, res.Error
}

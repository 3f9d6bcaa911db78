// db/repo.go
package db

import (
	"checkout_kiosk/models"
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
	// ErrItemChanged means the conditional update matched no row: the item
	// moved on between the read and the write.
	ErrItemChanged = errors.New("item changed concurrently")
	// ErrHolderBusy means the holder already has another item checked out.
	ErrHolderBusy = errors.New("holder already has an item checked out")
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Items

func (r *Repo) ListItems(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := r.DB.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

func (r *Repo) FindItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *Repo) FindItemByHolder(ctx context.Context, holder string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).Where(map[string]any{"checkedOutBy": holder}).First(&it).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

// SetAvailable returns the item only if it is still held by holder.
func (r *Repo) SetAvailable(ctx context.Context, id int64, holder string) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where(map[string]any{"id": id, "checkedOutBy": holder}).
		Updates(map[string]any{
			"status":           models.StatusAvailable,
			"checkedOutBy":     nil,
			"checkedOutByName": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemChanged
	}
	return nil
}

// SetCheckedOut takes the item only if it is still Available.
func (r *Repo) SetCheckedOut(ctx context.Context, id int64, holder, holderName string) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where(map[string]any{"id": id, "status": models.StatusAvailable}).
		Updates(map[string]any{
			"status":           models.StatusCheckedOut,
			"checkedOutBy":     holder,
			"checkedOutByName": holderName,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrHolderBusy
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemChanged
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

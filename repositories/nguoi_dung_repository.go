package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vnkhanh/room-server/models"
)

// NguoiDungRepository tra cứu user cho việc phân giải danh tính
// (id ổn định hoặc mã kết nối realtime).
type NguoiDungRepository interface {
	FindByID(ctx context.Context, id uint) (*models.NguoiDung, error)
	FindByMaKetNoi(ctx context.Context, maKetNoi string) (*models.NguoiDung, error)
	// SetMaKetNoi gắn (hoặc xóa, khi nil) mã kết nối hiện tại của user.
	SetMaKetNoi(ctx context.Context, id uint, maKetNoi *string) error
}

type gormNguoiDungRepository struct {
	db *gorm.DB
}

func NewGormNguoiDungRepository(db *gorm.DB) NguoiDungRepository {
	if db == nil {
		panic("gorm.DB cannot be nil for NguoiDungRepository")
	}
	return &gormNguoiDungRepository{db: db}
}

func (r *gormNguoiDungRepository) FindByID(ctx context.Context, id uint) (*models.NguoiDung, error) {
	var u models.NguoiDung
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormNguoiDungRepository) FindByMaKetNoi(ctx context.Context, maKetNoi string) (*models.NguoiDung, error) {
	var u models.NguoiDung
	err := r.db.WithContext(ctx).
		Where("ma_ket_noi = ?", maKetNoi).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormNguoiDungRepository) SetMaKetNoi(ctx context.Context, id uint, maKetNoi *string) error {
	res := r.db.WithContext(ctx).Model(&models.NguoiDung{}).
		Where("id = ?", id).
		Update("ma_ket_noi", maKetNoi)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

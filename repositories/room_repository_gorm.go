package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/room-server/models"
)

// gormRoomRepository là hiện thực RoomRepository trên GORM/PostgreSQL.
type gormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) RoomRepository {
	if db == nil {
		panic("gorm.DB cannot be nil for RoomRepository")
	}
	return &gormRoomRepository{db: db}
}

func isDuplicateEntry(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// dự phòng khi driver không dịch lỗi (unique_violation 23505)
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

func (r *gormRoomRepository) CreateWithQuota(ctx context.Context, room *models.Room, thanhVien *models.RoomThanhVien, gioiHan int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Khóa dòng owner để hai request tạo room đồng thời không cùng
		// thấy "còn slot" rồi cùng insert vượt quota.
		var owner models.NguoiDung
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&owner, room.NguoiTaoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var soRoom int64
		if err := tx.Model(&models.Room{}).
			Where("nguoi_tao_id = ?", room.NguoiTaoID).
			Count(&soRoom).Error; err != nil {
			return err
		}
		if soRoom >= int64(gioiHan) {
			return ErrQuotaExceeded
		}

		if err := tx.Create(room).Error; err != nil {
			if isDuplicateEntry(err) {
				return ErrDuplicateEntry
			}
			return err
		}

		thanhVien.RoomID = room.ID
		if err := tx.Create(thanhVien).Error; err != nil {
			if isDuplicateEntry(err) {
				return ErrDuplicateEntry
			}
			return err
		}
		return nil
	})
}

func (r *gormRoomRepository) FindByMaRoom(ctx context.Context, maRoom string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("ThanhViens").
		Where("ma_room = ?", maRoom).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) FindByShareURL(ctx context.Context, shareURL string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("ThanhViens").
		Where("share_url = ?", shareURL).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) FindByOwner(ctx context.Context, nguoiTaoID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("ThanhViens").
		Where("nguoi_tao_id = ?", nguoiTaoID).
		Order("ngay_tao desc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *gormRoomRepository) ExistsByMaRoom(ctx context.Context, maRoom string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("ma_room = ?", maRoom).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRoomRepository) Delete(ctx context.Context, roomID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).
			Delete(&models.RoomThanhVien{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Room{}, roomID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRoomRepository) BumpHoatDong(ctx context.Context, roomID uint, luc time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("hoat_dong_cuoi", luc).Error
}

func (r *gormRoomRepository) ThemThanhVien(ctx context.Context, tv *models.RoomThanhVien) error {
	if err := r.db.WithContext(ctx).Create(tv).Error; err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateEntry
		}
		return err
	}
	return nil
}

func (r *gormRoomRepository) FindThanhVien(ctx context.Context, roomID, nguoiDungID uint) (*models.RoomThanhVien, error) {
	var tv models.RoomThanhVien
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND nguoi_dung_id = ?", roomID, nguoiDungID).
		First(&tv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tv, nil
}

func (r *gormRoomRepository) FindThanhViens(ctx context.Context, roomID uint) ([]models.RoomThanhVien, error) {
	var tvs []models.RoomThanhVien
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("ngay_vao").
		Find(&tvs).Error
	if err != nil {
		return nil, err
	}
	return tvs, nil
}

func (r *gormRoomRepository) CapNhatTrangThai(ctx context.Context, roomID, nguoiDungID uint, tuTrangThai []string, sangTrangThai string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RoomThanhVien{}).
		Where("room_id = ? AND nguoi_dung_id = ? AND trang_thai IN ?", roomID, nguoiDungID, tuTrangThai).
		Update("trang_thai", sangTrangThai)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRoomRepository) FindExpiring(ctx context.Context, hardLimit, threshold time.Time) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("ThanhViens").
		Where("hoat_dong_cuoi < ? AND hoat_dong_cuoi >= ?", threshold, hardLimit).
		Order("hoat_dong_cuoi").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *gormRoomRepository) ReapInactive(ctx context.Context, hardLimit time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id IN (?)",
			tx.Model(&models.Room{}).Select("id").Where("hoat_dong_cuoi < ?", hardLimit),
		).Delete(&models.RoomThanhVien{}).Error; err != nil {
			return err
		}
		res := tx.Where("hoat_dong_cuoi < ?", hardLimit).Delete(&models.Room{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *gormRoomRepository) ThongKe(ctx context.Context, hoatDongTu, khongHoatDongTruoc time.Time) (*ThongKeRoom, error) {
	db := r.db.WithContext(ctx).Model(&models.Room{})
	var tk ThongKeRoom
	if err := db.Session(&gorm.Session{}).Count(&tk.TongSo).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("hoat_dong_cuoi >= ?", hoatDongTu).
		Count(&tk.DangHoatDong).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("hoat_dong_cuoi < ?", khongHoatDongTruoc).
		Count(&tk.KhongHoatDong).Error; err != nil {
		return nil, err
	}
	return &tk, nil
}

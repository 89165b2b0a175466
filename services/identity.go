package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/repositories"
)

// IdentityService phân giải danh tính cho các thao tác kiểm duyệt.
//
// Tham số đích có thể là id dạng số hoặc mã kết nối realtime; mã kết nối đổi
// mỗi lần reconnect nên chỉ phân giải tại biên, state machine bên trong luôn
// làm việc với id ổn định.
type IdentityService struct {
	nguoiDungs repositories.NguoiDungRepository
}

func NewIdentityService(nguoiDungs repositories.NguoiDungRepository) *IdentityService {
	if nguoiDungs == nil {
		panic("NguoiDungRepository cannot be nil for IdentityService")
	}
	return &IdentityService{nguoiDungs: nguoiDungs}
}

// ResolveTarget trả về user ổn định cho tham số đích, hoặc ErrTargetNotFound.
func (s *IdentityService) ResolveTarget(ctx context.Context, target string) (*models.NguoiDung, error) {
	if target == "" {
		return nil, ErrTargetNotFound
	}

	var u *models.NguoiDung
	err := thuLai(ctx, func() error {
		var e error
		u, e = s.timTheoIDHoacMaKetNoi(ctx, target)
		return e
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *IdentityService) timTheoIDHoacMaKetNoi(ctx context.Context, target string) (*models.NguoiDung, error) {
	if id, err := strconv.ParseUint(target, 10, 64); err == nil {
		u, err := s.nguoiDungs.FindByID(ctx, uint(id))
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		// rơi xuống tra theo mã kết nối: handle có thể toàn chữ số
	}
	return s.nguoiDungs.FindByMaKetNoi(ctx, target)
}

// FindByID tra user theo id ổn định; ErrTargetNotFound nếu không có.
func (s *IdentityService) FindByID(ctx context.Context, id uint) (*models.NguoiDung, error) {
	var u *models.NguoiDung
	err := thuLai(ctx, func() error {
		var e error
		u, e = s.nguoiDungs.FindByID(ctx, id)
		return e
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return u, nil
}

// SetMaKetNoi gắn (hoặc xóa khi nil) mã kết nối hiện tại của user; tầng
// transport gọi qua endpoint riêng mỗi lần client kết nối lại.
func (s *IdentityService) SetMaKetNoi(ctx context.Context, userID uint, maKetNoi *string) error {
	err := thuLai(ctx, func() error {
		return s.nguoiDungs.SetMaKetNoi(ctx, userID, maKetNoi)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTargetNotFound
	}
	return err
}

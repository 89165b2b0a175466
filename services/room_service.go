package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/repositories"
)

// GioiHanRoomMoiOwner: mỗi owner chỉ được giữ tối đa 2 room đang sống.
const GioiHanRoomMoiOwner = 2

const thoiGianThuLai = 100 * time.Millisecond

// Lý do trả về từ CheckAccess
const (
	LyDoDuocVao    = "allowed"
	LyDoChoDuyet   = "pending_approval"
	LyDoBiCam      = "banned"
	LyDoKhongQuyen = "unauthorized"
)

// KetQuaTruyCap là kết quả kiểm tra quyền vào room (chỉ đọc, dùng cho tầng
// transport gác cổng phiên realtime).
type KetQuaTruyCap struct {
	CanJoin bool   `json:"can_join"`
	IsAdmin bool   `json:"is_admin"`
	LyDo    string `json:"ly_do"`
}

// YeuCauChoDuyet là một yêu cầu tham gia đang chờ, kèm thông tin user.
type YeuCauChoDuyet struct {
	NguoiDungID uint      `json:"nguoi_dung_id"`
	Ten         string    `json:"ten"`
	Email       string    `json:"email"`
	NgayVao     time.Time `json:"ngay_vao"`
}

// RoomService gom state machine thành viên, quota tạo room và các thao tác
// vòng đời thành một façade cho controller.
type RoomService struct {
	rooms    repositories.RoomRepository
	identity *IdentityService
	notifier Notifier
}

func NewRoomService(rooms repositories.RoomRepository, identity *IdentityService, notifier Notifier) *RoomService {
	if rooms == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if identity == nil {
		panic("IdentityService cannot be nil for RoomService")
	}
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &RoomService{rooms: rooms, identity: identity, notifier: notifier}
}

// thuLai gọi fn, thử lại đúng một lần sau backoff ngắn khi gặp lỗi hạ tầng;
// lỗi còn lại sau retry quy về ErrStoreUnavailable.
func thuLai(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || laLoiRepoCoDinh(err) {
		return err
	}
	select {
	case <-ctx.Done():
		return ErrStoreUnavailable
	case <-time.After(thoiGianThuLai):
	}
	if err = fn(); err == nil || laLoiRepoCoDinh(err) {
		return err
	}
	logrus.WithError(err).Error("Store still failing after retry")
	return ErrStoreUnavailable
}

// laLoiRepoCoDinh: lỗi repository có tính quyết định, thử lại cũng vậy.
func laLoiRepoCoDinh(err error) bool {
	return errors.Is(err, repositories.ErrNotFound) ||
		errors.Is(err, repositories.ErrDuplicateEntry) ||
		errors.Is(err, repositories.ErrQuotaExceeded)
}

func (s *RoomService) layRoom(ctx context.Context, maRoom string) (*models.Room, error) {
	var room *models.Room
	err := thuLai(ctx, func() error {
		var e error
		room, e = s.rooms.FindByMaRoom(ctx, maRoom)
		return e
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func timThanhVien(room *models.Room, nguoiDungID uint) *models.RoomThanhVien {
	for i := range room.ThanhViens {
		if room.ThanhViens[i].NguoiDungID == nguoiDungID {
			return &room.ThanhViens[i]
		}
	}
	return nil
}

func laChuRoom(room *models.Room, nguoiDungID uint) bool {
	return room.NguoiTaoID == nguoiDungID
}

// laQuanTriRoom: owner, hoặc thành viên mang trạng thái admin.
func laQuanTriRoom(room *models.Room, nguoiDungID uint) bool {
	if laChuRoom(room, nguoiDungID) {
		return true
	}
	tv := timThanhVien(room, nguoiDungID)
	return tv != nil && tv.TrangThai == models.TrangThaiAdmin
}

// bumpVaThongBao cập nhật hoạt động cuối và báo tầng realtime sau một thao
// tác thành viên thành công. Bump lỗi chỉ ghi log: trạng thái đã đổi xong.
func (s *RoomService) bumpVaThongBao(ctx context.Context, room *models.Room) {
	if err := s.rooms.BumpHoatDong(ctx, room.ID, time.Now()); err != nil {
		logrus.WithError(err).WithField("ma_room", room.MaRoom).Warn("Failed to bump room activity")
	}
	s.notifier.MembershipChanged(room.MaRoom)
}

// CreateRoom tạo room mới cho owner, tối đa GioiHanRoomMoiOwner room một
// người; owner được chèn sẵn làm thành viên allowed.
func (s *RoomService) CreateRoom(ctx context.Context, nguoiTaoID uint) (*models.Room, error) {
	logCtx := logrus.WithField("nguoi_tao_id", nguoiTaoID)

	// mã room có thể đụng độ với một room vừa tạo sau bước kiểm tra tồn tại,
	// unique index sẽ bắt; sinh mã mới và thử lại
	for lanThu := 0; lanThu < 2; lanThu++ {
		ma, err := taoMaRoomDuyNhat(ctx, s.rooms)
		if err != nil {
			if errors.Is(err, ErrCapacityExhausted) {
				return nil, ErrCapacityExhausted
			}
			logCtx.WithError(err).Error("Failed to generate room code")
			return nil, ErrStoreUnavailable
		}

		room := &models.Room{
			MaRoom:       ma,
			NguoiTaoID:   nguoiTaoID,
			ShareURL:     uuid.NewString(),
			HoatDongCuoi: time.Now(),
		}
		tv := &models.RoomThanhVien{
			NguoiDungID: nguoiTaoID,
			TrangThai:   models.TrangThaiAllowed,
		}

		err = thuLai(ctx, func() error {
			return s.rooms.CreateWithQuota(ctx, room, tv, GioiHanRoomMoiOwner)
		})
		switch {
		case err == nil:
			room.ThanhViens = []models.RoomThanhVien{*tv}
			logCtx.WithField("ma_room", ma).Info("Room created")
			return room, nil
		case errors.Is(err, repositories.ErrQuotaExceeded):
			return nil, ErrQuotaExceeded
		case errors.Is(err, repositories.ErrNotFound):
			// owner không còn trong bảng user
			return nil, ErrForbidden
		case errors.Is(err, repositories.ErrDuplicateEntry):
			logCtx.WithField("ma_room", ma).Warn("Room code collided on insert, regenerating")
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrCapacityExhausted
}

// CheckAccess phân loại quyền vào room của một user, chỉ đọc.
func (s *RoomService) CheckAccess(ctx context.Context, maRoom string, nguoiDungID uint) (*KetQuaTruyCap, *models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, nil, err
	}

	if laChuRoom(room, nguoiDungID) {
		return &KetQuaTruyCap{CanJoin: true, IsAdmin: true, LyDo: LyDoDuocVao}, room, nil
	}

	tv := timThanhVien(room, nguoiDungID)
	if tv == nil {
		return &KetQuaTruyCap{LyDo: LyDoKhongQuyen}, room, nil
	}
	switch tv.TrangThai {
	case models.TrangThaiAdmin:
		return &KetQuaTruyCap{CanJoin: true, IsAdmin: true, LyDo: LyDoDuocVao}, room, nil
	case models.TrangThaiAllowed:
		return &KetQuaTruyCap{CanJoin: true, LyDo: LyDoDuocVao}, room, nil
	case models.TrangThaiPending:
		return &KetQuaTruyCap{LyDo: LyDoChoDuyet}, room, nil
	case models.TrangThaiBanned:
		return &KetQuaTruyCap{LyDo: LyDoBiCam}, room, nil
	}
	return &KetQuaTruyCap{LyDo: LyDoKhongQuyen}, room, nil
}

// RequestJoin ghi nhận yêu cầu tham gia: chèn bản ghi pending nếu user chưa
// có mặt trong room.
func (s *RoomService) RequestJoin(ctx context.Context, maRoom string, nguoiDungID uint) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}

	if laChuRoom(room, nguoiDungID) {
		return nil, ErrAlreadyMember
	}
	if tv := timThanhVien(room, nguoiDungID); tv != nil {
		switch tv.TrangThai {
		case models.TrangThaiAllowed, models.TrangThaiAdmin:
			return nil, ErrAlreadyMember
		case models.TrangThaiPending:
			return nil, ErrRequestAlreadyPending
		case models.TrangThaiBanned:
			return nil, ErrForbidden
		}
	}

	err = thuLai(ctx, func() error {
		return s.rooms.ThemThanhVien(ctx, &models.RoomThanhVien{
			RoomID:      room.ID,
			NguoiDungID: nguoiDungID,
			TrangThai:   models.TrangThaiPending,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			// thua race với một request khác của chính user này
			return nil, s.phanLoaiTrangThaiHienTai(ctx, room.ID, nguoiDungID)
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "nguoi_dung_id": nguoiDungID}).
		Info("Join request recorded")
	s.bumpVaThongBao(ctx, room)
	return s.layRoom(ctx, maRoom)
}

// phanLoaiTrangThaiHienTai đọc lại bản ghi thành viên sau một lần chèn đụng
// độ và đổi về lỗi nghiệp vụ tương ứng.
func (s *RoomService) phanLoaiTrangThaiHienTai(ctx context.Context, roomID, nguoiDungID uint) error {
	tv, err := s.rooms.FindThanhVien(ctx, roomID, nguoiDungID)
	if err != nil {
		return ErrRequestAlreadyPending
	}
	switch tv.TrangThai {
	case models.TrangThaiPending:
		return ErrRequestAlreadyPending
	case models.TrangThaiBanned:
		return ErrForbidden
	default:
		return ErrAlreadyMember
	}
}

// Approve duyệt một yêu cầu đang chờ: pending -> allowed.
// Kiểm tra quyền người gọi trước mọi điều kiện trạng thái để bên ngoài không
// suy ra được target đang pending hay banned.
func (s *RoomService) Approve(ctx context.Context, maRoom string, actorID uint, target string) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laQuanTriRoom(room, actorID) {
		return nil, ErrForbidden
	}

	doi, err := s.identity.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	ok, err := s.capNhatTrangThaiThuLai(ctx, room.ID, doi.ID,
		[]string{models.TrangThaiPending}, models.TrangThaiAllowed)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, e := s.rooms.FindThanhVien(ctx, room.ID, doi.ID); e != nil {
			if errors.Is(e, repositories.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, ErrStoreUnavailable
		}
		return nil, ErrNotPending
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "actor_id": actorID, "target_id": doi.ID}).
		Info("Join request approved")
	s.bumpVaThongBao(ctx, room)
	return s.layRoom(ctx, maRoom)
}

// Ban cấm một thành viên (hoặc từ chối yêu cầu đang chờ). Cấm lại người đã
// bị cấm là no-op thành công.
func (s *RoomService) Ban(ctx context.Context, maRoom string, actorID uint, target string) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laQuanTriRoom(room, actorID) {
		return nil, ErrForbidden
	}

	doi, err := s.identity.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if laChuRoom(room, doi.ID) {
		return nil, ErrCannotModerateOwner
	}

	ok, err := s.capNhatTrangThaiThuLai(ctx, room.ID, doi.ID,
		[]string{models.TrangThaiPending, models.TrangThaiAllowed, models.TrangThaiAdmin},
		models.TrangThaiBanned)
	if err != nil {
		return nil, err
	}
	if !ok {
		tv, e := s.rooms.FindThanhVien(ctx, room.ID, doi.ID)
		if e != nil {
			if errors.Is(e, repositories.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, ErrStoreUnavailable
		}
		if tv.TrangThai == models.TrangThaiBanned {
			// đã bị cấm từ trước — không đổi gì, không bump hoạt động
			return room, nil
		}
		return nil, ErrConflict
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "actor_id": actorID, "target_id": doi.ID}).
		Info("Participant banned")
	s.bumpVaThongBao(ctx, room)
	return s.layRoom(ctx, maRoom)
}

// SetPending đẩy một thành viên về trạng thái chờ duyệt: thu hồi quyền vào
// mà không để lại dấu cấm, đồng thời là đường mở lại duy nhất cho người đã
// bị cấm. Đã pending sẵn là no-op thành công.
func (s *RoomService) SetPending(ctx context.Context, maRoom string, actorID uint, target string) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laQuanTriRoom(room, actorID) {
		return nil, ErrForbidden
	}

	doi, err := s.identity.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if laChuRoom(room, doi.ID) {
		return nil, ErrCannotModerateOwner
	}

	ok, err := s.capNhatTrangThaiThuLai(ctx, room.ID, doi.ID,
		[]string{models.TrangThaiAllowed, models.TrangThaiBanned, models.TrangThaiAdmin},
		models.TrangThaiPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		tv, e := s.rooms.FindThanhVien(ctx, room.ID, doi.ID)
		if e != nil {
			if errors.Is(e, repositories.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, ErrStoreUnavailable
		}
		if tv.TrangThai == models.TrangThaiPending {
			return room, nil
		}
		return nil, ErrConflict
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "actor_id": actorID, "target_id": doi.ID}).
		Info("Participant set back to pending")
	s.bumpVaThongBao(ctx, room)
	return s.layRoom(ctx, maRoom)
}

// MakeAdmin thăng một thành viên đã duyệt lên admin. Chỉ owner được thăng;
// nhiều admin cùng tồn tại, không có đường giáng cấp trong bộ thao tác này.
func (s *RoomService) MakeAdmin(ctx context.Context, maRoom string, actorID uint, target string) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laChuRoom(room, actorID) {
		return nil, ErrForbidden
	}

	doi, err := s.identity.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if laChuRoom(room, doi.ID) {
		return nil, ErrCannotModerateOwner
	}

	ok, err := s.capNhatTrangThaiThuLai(ctx, room.ID, doi.ID,
		[]string{models.TrangThaiAllowed}, models.TrangThaiAdmin)
	if err != nil {
		return nil, err
	}
	if !ok {
		tv, e := s.rooms.FindThanhVien(ctx, room.ID, doi.ID)
		if e != nil {
			if errors.Is(e, repositories.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, ErrStoreUnavailable
		}
		if tv.TrangThai == models.TrangThaiAdmin {
			return room, nil
		}
		// pending hoặc banned: phải duyệt trước đã
		return nil, ErrConflict
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "actor_id": actorID, "target_id": doi.ID}).
		Info("Participant promoted to admin")
	s.bumpVaThongBao(ctx, room)
	return s.layRoom(ctx, maRoom)
}

func (s *RoomService) capNhatTrangThaiThuLai(ctx context.Context, roomID, nguoiDungID uint, tu []string, sang string) (bool, error) {
	var ok bool
	err := thuLai(ctx, func() error {
		var e error
		ok, e = s.rooms.CapNhatTrangThai(ctx, roomID, nguoiDungID, tu, sang)
		return e
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// GetRoomDetails trả về snapshot đầy đủ cho thành viên hoặc owner.
func (s *RoomService) GetRoomDetails(ctx context.Context, maRoom string, nguoiDungID uint) (*models.Room, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laChuRoom(room, nguoiDungID) && timThanhVien(room, nguoiDungID) == nil {
		return nil, ErrForbidden
	}
	return room, nil
}

// GetRoomByShareURL tra room theo link chia sẻ (không cần là thành viên).
func (s *RoomService) GetRoomByShareURL(ctx context.Context, shareURL string) (*models.Room, error) {
	var room *models.Room
	err := thuLai(ctx, func() error {
		var e error
		room, e = s.rooms.FindByShareURL(ctx, shareURL)
		return e
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// ListRoomsForUser liệt kê các room user đang làm owner.
func (s *RoomService) ListRoomsForUser(ctx context.Context, nguoiDungID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := thuLai(ctx, func() error {
		var e error
		rooms, e = s.rooms.FindByOwner(ctx, nguoiDungID)
		return e
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetPendingRequests liệt kê yêu cầu chờ duyệt, chỉ cho owner/admin.
func (s *RoomService) GetPendingRequests(ctx context.Context, maRoom string, actorID uint) ([]YeuCauChoDuyet, error) {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return nil, err
	}
	if !laQuanTriRoom(room, actorID) {
		return nil, ErrForbidden
	}

	// đọc lại danh sách thành viên thay vì dùng snapshot đã preload: giữa
	// hai bước có thể đã có duyệt/cấm khác chen vào
	var tvs []models.RoomThanhVien
	err = thuLai(ctx, func() error {
		var e error
		tvs, e = s.rooms.FindThanhViens(ctx, room.ID)
		return e
	})
	if err != nil {
		return nil, err
	}

	yeuCaus := make([]YeuCauChoDuyet, 0)
	for i := range tvs {
		tv := &tvs[i]
		if tv.TrangThai != models.TrangThaiPending {
			continue
		}
		yc := YeuCauChoDuyet{NguoiDungID: tv.NguoiDungID, NgayVao: tv.NgayVao}
		if u, e := s.identity.FindByID(ctx, tv.NguoiDungID); e == nil {
			yc.Ten = u.Ten
			yc.Email = u.Email
		}
		yeuCaus = append(yeuCaus, yc)
	}
	return yeuCaus, nil
}

// TouchActivity làm mới hoạt động cuối; mọi thành viên chưa bị cấm (và
// owner) đều được gọi.
func (s *RoomService) TouchActivity(ctx context.Context, maRoom string, nguoiDungID uint) error {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return err
	}

	if !laChuRoom(room, nguoiDungID) {
		tv := timThanhVien(room, nguoiDungID)
		if tv == nil || tv.TrangThai == models.TrangThaiBanned {
			return ErrForbidden
		}
	}

	err = thuLai(ctx, func() error {
		return s.rooms.BumpHoatDong(ctx, room.ID, time.Now())
	})
	if err != nil {
		return err
	}
	return nil
}

// DeleteRoom xóa room vĩnh viễn; owner hoặc thành viên admin.
func (s *RoomService) DeleteRoom(ctx context.Context, maRoom string, actorID uint) error {
	room, err := s.layRoom(ctx, maRoom)
	if err != nil {
		return err
	}
	if !laQuanTriRoom(room, actorID) {
		return ErrForbidden
	}

	err = thuLai(ctx, func() error {
		return s.rooms.Delete(ctx, room.ID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// đã bị xóa đồng thời (job dọn dẹp hoặc admin khác) — coi như xong
			return nil
		}
		return err
	}

	logrus.WithFields(logrus.Fields{"ma_room": maRoom, "actor_id": actorID}).Info("Room deleted")
	s.notifier.RoomDeleted(room.MaRoom)
	return nil
}

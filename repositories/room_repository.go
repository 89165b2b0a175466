package repositories

import (
	"context"
	"time"

	"github.com/vnkhanh/room-server/models"
)

// ThongKeRoom là số liệu tổng hợp cho endpoint thống kê của operator.
type ThongKeRoom struct {
	TongSo        int64 `json:"tong_so"`
	DangHoatDong  int64 `json:"dang_hoat_dong"`
	KhongHoatDong int64 `json:"khong_hoat_dong"`
}

// RoomRepository là cổng truy cập dữ liệu room.
//
// Mọi thao tác đổi trạng thái thành viên đi qua CapNhatTrangThai (UPDATE có
// điều kiện trên trạng thái hiện tại) thay vì load-sửa-save cả document, để
// hai admin thao tác đồng thời không ghi đè lẫn nhau.
type RoomRepository interface {
	// CreateWithQuota tạo room mới kèm thành viên ban đầu trong một
	// transaction, sau khi khóa dòng owner và đếm số room hiện có.
	// Trả ErrQuotaExceeded nếu owner đã có >= gioiHan room,
	// ErrDuplicateEntry nếu mã room đụng độ.
	CreateWithQuota(ctx context.Context, room *models.Room, thanhVien *models.RoomThanhVien, gioiHan int) error

	FindByMaRoom(ctx context.Context, maRoom string) (*models.Room, error)
	FindByShareURL(ctx context.Context, shareURL string) (*models.Room, error)
	FindByOwner(ctx context.Context, nguoiTaoID uint) ([]models.Room, error)
	ExistsByMaRoom(ctx context.Context, maRoom string) (bool, error)
	Delete(ctx context.Context, roomID uint) error

	// BumpHoatDong cập nhật mốc hoạt động cuối của room.
	BumpHoatDong(ctx context.Context, roomID uint, luc time.Time) error

	// ThemThanhVien chèn một thành viên mới; ErrDuplicateEntry nếu user đã
	// có bản ghi trong room (unique (room_id, nguoi_dung_id)).
	ThemThanhVien(ctx context.Context, tv *models.RoomThanhVien) error

	FindThanhVien(ctx context.Context, roomID, nguoiDungID uint) (*models.RoomThanhVien, error)
	FindThanhViens(ctx context.Context, roomID uint) ([]models.RoomThanhVien, error)

	// CapNhatTrangThai đổi trạng thái thành viên chỉ khi trạng thái hiện tại
	// nằm trong tuTrangThai. Trả về true nếu có đúng một dòng được cập nhật.
	CapNhatTrangThai(ctx context.Context, roomID, nguoiDungID uint, tuTrangThai []string, sangTrangThai string) (bool, error)

	// FindExpiring trả về các room có hoạt động cuối trong (hardLimit, threshold] —
	// sắp bị dọn nhưng chưa quá hạn cứng.
	FindExpiring(ctx context.Context, hardLimit, threshold time.Time) ([]models.Room, error)

	// ReapInactive xóa mọi room có hoạt động cuối trước hardLimit, trả về số room đã xóa.
	ReapInactive(ctx context.Context, hardLimit time.Time) (int64, error)

	ThongKe(ctx context.Context, hoatDongTu, khongHoatDongTruoc time.Time) (*ThongKeRoom, error)
}

package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/repositories"
)

// Ngưỡng dọn dẹp room không hoạt động.
const (
	// NguongCanhBao: room im lặng quá 6 ngày thì lọt vào danh sách cảnh báo.
	NguongCanhBao = 6 * 24 * time.Hour
	// NguongXoa: quá 7 ngày thì bị xóa hẳn.
	NguongXoa = 7 * 24 * time.Hour
	// NguongDangHoatDong: có hoạt động trong 24h gần nhất, dùng cho thống kê.
	NguongDangHoatDong = 24 * time.Hour
)

// CleanupService lo phần hết hạn theo không-hoạt-động: tìm room sắp bị xóa,
// xóa room quá hạn, và thống kê cho operator. Trigger theo lịch và trigger
// tay đều đi qua cùng ReapInactive.
type CleanupService struct {
	rooms repositories.RoomRepository
}

func NewCleanupService(rooms repositories.RoomRepository) *CleanupService {
	if rooms == nil {
		panic("RoomRepository cannot be nil for CleanupService")
	}
	return &CleanupService{rooms: rooms}
}

// ReapInactive xóa mọi room có hoạt động cuối quá NguongXoa, trả về số room
// đã xóa. Idempotent: chạy lại ngay sau đó trả 0, chạy chồng nhau cũng an
// toàn vì điều kiện xóa là một câu DELETE theo khoảng thời gian.
func (s *CleanupService) ReapInactive(ctx context.Context) (int64, error) {
	hanCung := time.Now().Add(-NguongXoa)

	var soDaXoa int64
	err := thuLai(ctx, func() error {
		var e error
		soDaXoa, e = s.rooms.ReapInactive(ctx, hanCung)
		return e
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to reap inactive rooms")
		return 0, err
	}

	logrus.WithField("so_da_xoa", soDaXoa).Info("Cleaned up inactive rooms")
	return soDaXoa, nil
}

// FindExpiring trả về các room im lặng quá NguongCanhBao nhưng chưa chạm
// NguongXoa — ứng viên cho thông báo "room sắp bị xóa" (việc gửi là của
// collaborator bên ngoài).
func (s *CleanupService) FindExpiring(ctx context.Context) ([]models.Room, error) {
	bayGio := time.Now()
	var rooms []models.Room
	err := thuLai(ctx, func() error {
		var e error
		rooms, e = s.rooms.FindExpiring(ctx, bayGio.Add(-NguongXoa), bayGio.Add(-NguongCanhBao))
		return e
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// ThongKe đếm tổng số room, số đang hoạt động (24h) và số quá hạn.
func (s *CleanupService) ThongKe(ctx context.Context) (*repositories.ThongKeRoom, error) {
	bayGio := time.Now()
	var tk *repositories.ThongKeRoom
	err := thuLai(ctx, func() error {
		var e error
		tk, e = s.rooms.ThongKe(ctx, bayGio.Add(-NguongDangHoatDong), bayGio.Add(-NguongXoa))
		return e
	})
	if err != nil {
		return nil, err
	}
	return tk, nil
}

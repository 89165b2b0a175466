package models

import "time"

// Trạng thái thành viên trong room: pending | allowed | banned | admin
const (
	TrangThaiPending = "pending"
	TrangThaiAllowed = "allowed"
	TrangThaiBanned  = "banned"
	TrangThaiAdmin   = "admin"
)

type RoomThanhVien struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RoomID      uint      `gorm:"column:room_id;not null;uniqueIndex:idx_room_nguoi_dung" json:"room_id"`
	NguoiDungID uint      `gorm:"column:nguoi_dung_id;not null;uniqueIndex:idx_room_nguoi_dung" json:"nguoi_dung_id"`
	TrangThai   string    `gorm:"column:trang_thai;size:20;not null" json:"trang_thai"`
	NgayVao     time.Time `gorm:"column:ngay_vao;autoCreateTime" json:"ngay_vao"`
	NgayCapNhat time.Time `gorm:"column:ngay_cap_nhat;autoUpdateTime" json:"ngay_cap_nhat"`
}

func (RoomThanhVien) TableName() string {
	return "room_thanh_vien"
}

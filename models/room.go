package models

import "time"

type Room struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MaRoom     string `gorm:"column:ma_room;size:6;uniqueIndex;not null" json:"ma_room"` // mã room 6 ký tự, bất biến
	NguoiTaoID uint   `gorm:"column:nguoi_tao_id;not null;index" json:"nguoi_tao_id"`    // owner, không đổi suốt đời room
	ShareURL   string `gorm:"column:share_url;size:255" json:"share_url"`

	NgayTao      time.Time `gorm:"column:ngay_tao;autoCreateTime" json:"ngay_tao"`
	HoatDongCuoi time.Time `gorm:"column:hoat_dong_cuoi;index" json:"hoat_dong_cuoi"` // dùng cho job dọn room không hoạt động

	ThanhViens []RoomThanhVien `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"thanh_viens"`
}

func (Room) TableName() string {
	return "room"
}

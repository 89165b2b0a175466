package models

import "time"

type NguoiDung struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Ten     string    `gorm:"size:100;not null" json:"ten"`
	Email   string    `gorm:"size:100;unique;not null" json:"email"`
	MatKhau string    `gorm:"size:255;not null" json:"-"` // ẩn khi trả JSON
	VaiTro  bool      `gorm:"not null;default:false" json:"vai_tro"`
	NgayTao time.Time `gorm:"autoCreateTime" json:"ngay_tao"`

	// MaKetNoi là mã kết nối realtime hiện tại (socket id), do tầng transport
	// cấp phát; đổi mỗi lần reconnect nên chỉ dùng để tra ra user ổn định.
	MaKetNoi *string `gorm:"column:ma_ket_noi;size:64;index" json:"-"`

	Rooms []Room `gorm:"foreignKey:NguoiTaoID" json:"-"`
}

func (NguoiDung) TableName() string {
	return "nguoi_dung"
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ManualCleanup chạy ngay một lượt dọn room không hoạt động (cùng logic với
// job định kỳ). Chỉ operator hệ thống.
func ManualCleanup(c *gin.Context) {
	soDaXoa, err := cleanupService.ReapInactive(c.Request.Context())
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Đã dọn dẹp room không hoạt động",
		"so_da_xoa": soDaXoa,
	})
}

// GetExpiringRooms liệt kê room sắp bị dọn (không hoạt động 6-7 ngày).
func GetExpiringRooms(c *gin.Context) {
	rooms, err := cleanupService.FindExpiring(c.Request.Context())
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms, "total": len(rooms)})
}

// GetRoomStats thống kê room theo hoạt động 24h gần nhất.
func GetRoomStats(c *gin.Context) {
	tk, err := cleanupService.ThongKe(c.Request.Context())
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"tong_so":         tk.TongSo,
			"dang_hoat_dong":  tk.DangHoatDong,
			"khong_hoat_dong": tk.KhongHoatDong,
		},
	})
}

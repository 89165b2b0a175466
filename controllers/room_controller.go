package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/room-server/middleware"
	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/services"
)

// traLoi map lỗi nghiệp vụ của service sang mã HTTP + message tiếng Việt.
func traLoi(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Room không tồn tại"})
	case errors.Is(err, services.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Không tìm thấy thành viên"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Không có quyền thực hiện thao tác này"})
	case errors.Is(err, services.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"message": "Thành viên không ở trạng thái chờ duyệt"})
	case errors.Is(err, services.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"message": "Bạn đã là thành viên của room"})
	case errors.Is(err, services.ErrRequestAlreadyPending):
		c.JSON(http.StatusConflict, gin.H{"message": "Yêu cầu tham gia đang chờ duyệt"})
	case errors.Is(err, services.ErrCannotModerateOwner):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Không thể thao tác lên chủ room"})
	case errors.Is(err, services.ErrQuotaExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bạn đã đạt số room tối đa"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Trạng thái hiện tại không cho phép thao tác này"})
	case errors.Is(err, services.ErrCapacityExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Không cấp được mã room, vui lòng thử lại"})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Hệ thống đang bận, vui lòng thử lại"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi hệ thống"})
	}
}

type thaoTacThanhVienReq struct {
	// TargetID: id user dạng số hoặc mã kết nối realtime
	TargetID string `json:"target_id" binding:"required"`
}

// CreateRoom tạo room mới cho user hiện tại.
func CreateRoom(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	room, err := roomService.CreateRoom(c.Request.Context(), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo room thành công",
		"data":    room,
	})
}

// GetUserRooms trả về danh sách room user đang làm chủ.
func GetUserRooms(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	rooms, err := roomService.ListRoomsForUser(c.Request.Context(), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms, "total": len(rooms)})
}

// GetRoomDetail trả chi tiết room (kèm thành viên); chỉ thành viên hoặc chủ room.
func GetRoomDetail(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	room, err := roomService.GetRoomDetails(c.Request.Context(), c.Param("roomId"), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

// CheckRoomPermission kiểm tra quyền vào room, chỉ đọc.
func CheckRoomPermission(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	kq, room, err := roomService.CheckAccess(c.Request.Context(), c.Param("roomId"), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"ma_room":  room.MaRoom,
			"can_join": kq.CanJoin,
			"is_admin": kq.IsAdmin,
			"ly_do":    kq.LyDo,
		},
	})
}

// JoinRoomRequest ghi nhận yêu cầu tham gia, chờ chủ/quản trị room duyệt.
func JoinRoomRequest(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	room, err := roomService.RequestJoin(c.Request.Context(), c.Param("roomId"), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã ghi nhận yêu cầu tham gia",
		"data":    room,
	})
}

// GetPendingRequests liệt kê yêu cầu tham gia chờ duyệt; chỉ chủ/quản trị room.
func GetPendingRequests(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	yeuCaus, err := roomService.GetPendingRequests(c.Request.Context(), c.Param("roomId"), u.ID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": yeuCaus, "total": len(yeuCaus)})
}

// ApproveJoinRequest duyệt một yêu cầu đang chờ.
func ApproveJoinRequest(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req thaoTacThanhVienReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ"})
		return
	}

	room, err := roomService.Approve(c.Request.Context(), c.Param("roomId"), u.ID, req.TargetID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã duyệt thành viên", "data": room})
}

// RejectJoinRequest từ chối yêu cầu / cấm thành viên khỏi room.
func RejectJoinRequest(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req thaoTacThanhVienReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ"})
		return
	}

	room, err := roomService.Ban(c.Request.Context(), c.Param("roomId"), u.ID, req.TargetID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã cấm thành viên", "data": room})
}

// SetParticipantPending đưa thành viên về trạng thái chờ duyệt (thu hồi quyền
// vào hoặc gỡ cấm).
func SetParticipantPending(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req thaoTacThanhVienReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ"})
		return
	}

	room, err := roomService.SetPending(c.Request.Context(), c.Param("roomId"), u.ID, req.TargetID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã đưa thành viên về chờ duyệt", "data": room})
}

// PromoteToAdmin thăng thành viên đã duyệt lên quản trị room; chỉ chủ room.
func PromoteToAdmin(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req thaoTacThanhVienReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ"})
		return
	}

	room, err := roomService.MakeAdmin(c.Request.Context(), c.Param("roomId"), u.ID, req.TargetID)
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã thăng quản trị room", "data": room})
}

// UpdateRoomActivity làm mới mốc hoạt động cuối của room.
func UpdateRoomActivity(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	if err := roomService.TouchActivity(c.Request.Context(), c.Param("roomId"), u.ID); err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã cập nhật hoạt động"})
}

// DeleteRoom xóa room vĩnh viễn; chủ room hoặc quản trị room.
func DeleteRoom(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	if err := roomService.DeleteRoom(c.Request.Context(), c.Param("roomId"), u.ID); err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa room"})
}

// GetRoomByShareURL tra room theo link chia sẻ, không cần đăng nhập.
func GetRoomByShareURL(c *gin.Context) {
	room, err := roomService.GetRoomByShareURL(c.Request.Context(), c.Param("shareURL"))
	if err != nil {
		traLoi(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":        room.ID,
			"ma_room":   room.MaRoom,
			"share_url": room.ShareURL,
			"ngay_tao":  room.NgayTao,
		},
	})
}

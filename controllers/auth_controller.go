package controllers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/room-server/config"
	"github.com/vnkhanh/room-server/middleware"
	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/utils"
)

type DangKyReq struct {
	Ten     string `json:"ten" binding:"required,min=1"`
	Email   string `json:"email" binding:"required,email"`
	MatKhau string `json:"mat_khau" binding:"required,min=6"`
}

func Register(c *gin.Context) {
	var req DangKyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.NguoiDung{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email đã tồn tại"})
		return
	}

	hash, err := utils.HashPassword(req.MatKhau)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể mã hóa mật khẩu"})
		return
	}

	nd := models.NguoiDung{
		Ten:     req.Ten,
		Email:   req.Email,
		MatKhau: hash,
		VaiTro:  false,
	}

	if err := config.DB.Create(&nd).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":       nd.ID,
			"ten":      nd.Ten,
			"email":    nd.Email,
			"vai_tro":  nd.VaiTro,
			"ngay_tao": nd.NgayTao,
		},
	})
}

type DangNhapReq struct {
	Email   string `json:"email" binding:"required,email"`
	MatKhau string `json:"mat_khau" binding:"required"`
}

func Login(c *gin.Context) {
	var req DangNhapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var nd models.NguoiDung
	if err := config.DB.Where("email = ?", req.Email).First(&nd).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email hoặc mật khẩu không đúng"})
		return
	}
	if !utils.CheckPassword(nd.MatKhau, req.MatKhau) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email hoặc mật khẩu không đúng"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(nd.ID), 10), vaiTroClaim(nd.VaiTro))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       nd.ID,
			"ten":      nd.Ten,
			"email":    nd.Email,
			"vai_tro":  nd.VaiTro,
			"ngay_tao": nd.NgayTao,
		},
	})
}

// GoogleLoginHandler xác minh id_token của Google, tạo tài khoản nếu chưa có.
func GoogleLoginHandler(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token không hợp lệ"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token thiếu email"})
		return
	}
	ten, _ := payload.Claims["name"].(string)
	if ten == "" {
		ten = email
	}

	var nd models.NguoiDung
	if err := config.DB.Where("email = ?", email).First(&nd).Error; err != nil {
		// lần đầu đăng nhập bằng Google: tạo tài khoản không có mật khẩu cục bộ
		hash, herr := utils.HashPassword(payload.Subject)
		if herr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
			return
		}
		nd = models.NguoiDung{Ten: ten, Email: email, MatKhau: hash, VaiTro: false}
		if err := config.DB.Create(&nd).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
			return
		}
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(nd.ID), 10), vaiTroClaim(nd.VaiTro))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       nd.ID,
			"ten":      nd.Ten,
			"email":    nd.Email,
			"vai_tro":  nd.VaiTro,
			"ngay_tao": nd.NgayTao,
		},
	})
}

func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.CtxUserPublic)})
}

// UpdateConnection ghi lại mã kết nối realtime hiện tại của user; tầng
// transport gọi khi socket mở (body có ma_ket_noi) và khi đóng (null).
func UpdateConnection(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.NguoiDung)

	var req struct {
		MaKetNoi *string `json:"ma_ket_noi"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ"})
		return
	}

	if err := identityService.SetMaKetNoi(c.Request.Context(), u.ID, req.MaKetNoi); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không cập nhật được kết nối"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã cập nhật kết nối"})
}

func vaiTroClaim(vaiTro bool) string {
	if vaiTro {
		return "admin"
	}
	return "user"
}

package repositories

import "errors"

// Lỗi chung của tầng repository
var (
	// ErrNotFound: không tìm thấy bản ghi
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry: vi phạm ràng buộc unique (mã room, cặp room/thành viên)
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrQuotaExceeded: owner đã đạt số room tối đa (kiểm tra trong transaction tạo room)
	ErrQuotaExceeded = errors.New("repository: room quota exceeded")
)

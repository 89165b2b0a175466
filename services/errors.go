package services

import "errors"

// Lỗi nghiệp vụ trả về cho controller; mỗi lỗi ứng với một mã HTTP cố định.
var (
	// ErrRoomNotFound: không có room với mã này
	ErrRoomNotFound = errors.New("service: room not found")
	// ErrTargetNotFound: không phân giải được thành viên đích (id hoặc mã kết nối)
	ErrTargetNotFound = errors.New("service: target participant not found")
	// ErrForbidden: người gọi không đủ quyền cho thao tác này
	ErrForbidden = errors.New("service: forbidden")
	// ErrNotPending: thành viên đích không ở trạng thái chờ duyệt
	ErrNotPending = errors.New("service: participant is not pending")
	// ErrAlreadyMember: người gọi đã là thành viên được duyệt
	ErrAlreadyMember = errors.New("service: already a member")
	// ErrRequestAlreadyPending: người gọi đã có yêu cầu tham gia đang chờ
	ErrRequestAlreadyPending = errors.New("service: join request already pending")
	// ErrCannotModerateOwner: không được thao tác lên owner của room
	ErrCannotModerateOwner = errors.New("service: cannot moderate the room owner")
	// ErrQuotaExceeded: owner đã đạt số room tối đa
	ErrQuotaExceeded = errors.New("service: room quota exceeded")
	// ErrConflict: trạng thái hiện tại không cho phép chuyển đổi này
	ErrConflict = errors.New("service: status conflict")
	// ErrCapacityExhausted: hết không gian mã room sau số lần thử tối đa
	ErrCapacityExhausted = errors.New("service: room code space exhausted")
	// ErrStoreUnavailable: store lỗi tạm thời, đã thử lại một lần; client có thể retry
	ErrStoreUnavailable = errors.New("service: store unavailable")
)

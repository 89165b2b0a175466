package services

import "github.com/sirupsen/logrus"

// Notifier là điểm móc cho tầng realtime: core chỉ báo "membership của room
// này vừa đổi", việc đẩy xuống client là việc của collaborator bên ngoài.
type Notifier interface {
	MembershipChanged(maRoom string)
	RoomDeleted(maRoom string)
}

type logNotifier struct{}

// NewLogNotifier trả về Notifier mặc định chỉ ghi log, dùng khi chưa gắn
// tầng realtime.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) MembershipChanged(maRoom string) {
	logrus.WithField("ma_room", maRoom).Debug("Membership changed")
}

func (logNotifier) RoomDeleted(maRoom string) {
	logrus.WithField("ma_room", maRoom).Debug("Room deleted")
}

package services

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/room-server/repositories"
)

const (
	kyTuMaRoom     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	doDaiMaRoom    = 6
	soLanThuMaRoom = 10
)

// taoMaRoomDuyNhat sinh mã room 6 ký tự [A-Z0-9] và kiểm tra tồn tại trong
// store; đụng độ thì sinh lại, quá soLanThuMaRoom lần thì coi như không gian
// mã đã cạn và trả ErrCapacityExhausted.
func taoMaRoomDuyNhat(ctx context.Context, repo repositories.RoomRepository) (string, error) {
	b := make([]byte, doDaiMaRoom)
	for lanThu := 1; lanThu <= soLanThuMaRoom; lanThu++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = kyTuMaRoom[int(b[i])%len(kyTuMaRoom)]
		}
		ma := string(b)

		tonTai, err := repo.ExistsByMaRoom(ctx, ma)
		if err != nil {
			return "", fmt.Errorf("database error checking room code: %w", err)
		}
		if !tonTai {
			return ma, nil
		}
		logrus.WithField("ma_room", ma).Warnf("Generated room code already exists, retrying (attempt %d)...", lanThu)
	}
	logrus.Errorf("Failed to generate a unique room code after %d attempts", soLanThuMaRoom)
	return "", ErrCapacityExhausted
}

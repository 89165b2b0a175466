package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaoMaRoomDuyNhat(t *testing.T) {
	t.Run("mã 6 ký tự trong bảng chữ", func(t *testing.T) {
		repo := newFakeRoomRepo()

		ma, err := taoMaRoomDuyNhat(context.Background(), repo)
		require.NoError(t, err)
		require.Len(t, ma, 6)
		for _, c := range ma {
			assert.True(t, strings.ContainsRune(kyTuMaRoom, c), "ký tự %q ngoài bảng chữ", c)
		}
	})

	t.Run("đụng độ thì sinh lại", func(t *testing.T) {
		repo := newFakeRoomRepo()
		repo.soMaTonTai = 3

		ma, err := taoMaRoomDuyNhat(context.Background(), repo)
		require.NoError(t, err)
		assert.Len(t, ma, 6)
	})

	t.Run("đụng độ mãi thì báo cạn không gian mã", func(t *testing.T) {
		repo := newFakeRoomRepo()
		repo.soMaTonTai = soLanThuMaRoom

		_, err := taoMaRoomDuyNhat(context.Background(), repo)
		assert.ErrorIs(t, err, ErrCapacityExhausted)
	})
}

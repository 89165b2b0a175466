package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const khoangDonDepMacDinh = 24 * time.Hour

// Scheduler chạy nền job dọn room không hoạt động: một lần ngay khi khởi
// động rồi theo chu kỳ cố định; không backoff, không jitter. Hai lượt chạy
// chồng nhau vẫn an toàn nhờ tính idempotent của ReapInactive.
type Scheduler struct {
	cleanup *CleanupService
	khoang  time.Duration
	log     *logrus.Entry
}

func NewScheduler(cleanup *CleanupService, khoang time.Duration) *Scheduler {
	if cleanup == nil {
		panic("CleanupService cannot be nil for Scheduler")
	}
	if khoang <= 0 {
		khoang = khoangDonDepMacDinh
	}
	return &Scheduler{
		cleanup: cleanup,
		khoang:  khoang,
		log:     logrus.WithField("component", "cleanup_scheduler"),
	}
}

// Start chạy vòng lặp dọn dẹp trong goroutine riêng; hủy ctx để dừng.
func (s *Scheduler) Start(ctx context.Context) {
	go s.chay(ctx)
}

func (s *Scheduler) chay(ctx context.Context) {
	s.log.WithField("khoang", s.khoang).Info("Room cleanup scheduled")

	// chạy ngay một lượt lúc khởi động
	s.motLuot(ctx)

	ticker := time.NewTicker(s.khoang)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Room cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.motLuot(ctx)
		}
	}
}

func (s *Scheduler) motLuot(ctx context.Context) {
	luotCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	soDaXoa, err := s.cleanup.ReapInactive(luotCtx)
	if err != nil {
		s.log.WithError(err).Error("Room cleanup run failed")
		return
	}
	s.log.WithField("so_da_xoa", soDaXoa).Info("Room cleanup run completed")
}

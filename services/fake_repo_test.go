package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vnkhanh/room-server/models"
	"github.com/vnkhanh/room-server/repositories"
)

var errHaTang = errors.New("connection reset by peer")

// fakeRoomRepo là RoomRepository trong bộ nhớ cho test service.
type fakeRoomRepo struct {
	mu         sync.Mutex
	nextID     uint
	rooms      map[uint]*models.Room
	thanhViens map[uint][]*models.RoomThanhVien

	// soLoiTamThoi: số lần gọi tiếp theo trả lỗi hạ tầng trước khi chạy thật
	soLoiTamThoi int
	// loiTao: hàng đợi lỗi ép cho CreateWithQuota, mỗi lần gọi pop một phần tử
	loiTao []error
	// soMaTonTai: bấy nhiêu lần ExistsByMaRoom đầu tiên trả true
	soMaTonTai int
	// loiTimTV: lỗi ép cho đúng một lần FindThanhVien kế tiếp
	loiTimTV error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:      make(map[uint]*models.Room),
		thanhViens: make(map[uint][]*models.RoomThanhVien),
	}
}

func (f *fakeRoomRepo) loi() error {
	if f.soLoiTamThoi > 0 {
		f.soLoiTamThoi--
		return errHaTang
	}
	return nil
}

func (f *fakeRoomRepo) CreateWithQuota(_ context.Context, room *models.Room, tv *models.RoomThanhVien, gioiHan int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return err
	}
	if len(f.loiTao) > 0 {
		err := f.loiTao[0]
		f.loiTao = f.loiTao[1:]
		if err != nil {
			return err
		}
	}

	var soRoom int
	for _, r := range f.rooms {
		if r.NguoiTaoID == room.NguoiTaoID {
			soRoom++
		}
	}
	if soRoom >= gioiHan {
		return repositories.ErrQuotaExceeded
	}
	for _, r := range f.rooms {
		if r.MaRoom == room.MaRoom {
			return repositories.ErrDuplicateEntry
		}
	}

	f.nextID++
	room.ID = f.nextID
	room.NgayTao = time.Now()
	luu := *room
	f.rooms[room.ID] = &luu

	tv.RoomID = room.ID
	tv.NgayVao = time.Now()
	tvLuu := *tv
	f.thanhViens[room.ID] = []*models.RoomThanhVien{&tvLuu}
	return nil
}

func (f *fakeRoomRepo) banSaoRoom(r *models.Room) *models.Room {
	ban := *r
	ban.ThanhViens = nil
	for _, tv := range f.thanhViens[r.ID] {
		ban.ThanhViens = append(ban.ThanhViens, *tv)
	}
	return &ban
}

func (f *fakeRoomRepo) FindByMaRoom(_ context.Context, maRoom string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	for _, r := range f.rooms {
		if r.MaRoom == maRoom {
			return f.banSaoRoom(r), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRoomRepo) FindByShareURL(_ context.Context, shareURL string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	for _, r := range f.rooms {
		if r.ShareURL == shareURL {
			return f.banSaoRoom(r), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRoomRepo) FindByOwner(_ context.Context, nguoiTaoID uint) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0)
	for _, r := range f.rooms {
		if r.NguoiTaoID == nguoiTaoID {
			rooms = append(rooms, *f.banSaoRoom(r))
		}
	}
	return rooms, nil
}

func (f *fakeRoomRepo) ExistsByMaRoom(_ context.Context, maRoom string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return false, err
	}
	if f.soMaTonTai > 0 {
		f.soMaTonTai--
		return true, nil
	}
	for _, r := range f.rooms {
		if r.MaRoom == maRoom {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, roomID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return err
	}
	if _, ok := f.rooms[roomID]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rooms, roomID)
	delete(f.thanhViens, roomID)
	return nil
}

func (f *fakeRoomRepo) BumpHoatDong(_ context.Context, roomID uint, luc time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return err
	}
	r, ok := f.rooms[roomID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.HoatDongCuoi = luc
	return nil
}

func (f *fakeRoomRepo) ThemThanhVien(_ context.Context, tv *models.RoomThanhVien) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return err
	}
	for _, cu := range f.thanhViens[tv.RoomID] {
		if cu.NguoiDungID == tv.NguoiDungID {
			return repositories.ErrDuplicateEntry
		}
	}
	tv.NgayVao = time.Now()
	luu := *tv
	f.thanhViens[tv.RoomID] = append(f.thanhViens[tv.RoomID], &luu)
	return nil
}

func (f *fakeRoomRepo) FindThanhVien(_ context.Context, roomID, nguoiDungID uint) (*models.RoomThanhVien, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	if f.loiTimTV != nil {
		err := f.loiTimTV
		f.loiTimTV = nil
		return nil, err
	}
	for _, tv := range f.thanhViens[roomID] {
		if tv.NguoiDungID == nguoiDungID {
			ban := *tv
			return &ban, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRoomRepo) FindThanhViens(_ context.Context, roomID uint) ([]models.RoomThanhVien, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	ds := make([]models.RoomThanhVien, 0, len(f.thanhViens[roomID]))
	for _, tv := range f.thanhViens[roomID] {
		ds = append(ds, *tv)
	}
	return ds, nil
}

func (f *fakeRoomRepo) CapNhatTrangThai(_ context.Context, roomID, nguoiDungID uint, tu []string, sang string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return false, err
	}
	for _, tv := range f.thanhViens[roomID] {
		if tv.NguoiDungID != nguoiDungID {
			continue
		}
		for _, t := range tu {
			if tv.TrangThai == t {
				tv.TrangThai = sang
				tv.NgayCapNhat = time.Now()
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (f *fakeRoomRepo) FindExpiring(_ context.Context, hardLimit, threshold time.Time) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0)
	for _, r := range f.rooms {
		if r.HoatDongCuoi.After(hardLimit) && !r.HoatDongCuoi.After(threshold) {
			rooms = append(rooms, *f.banSaoRoom(r))
		}
	}
	return rooms, nil
}

func (f *fakeRoomRepo) ReapInactive(_ context.Context, hardLimit time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return 0, err
	}
	var soDaXoa int64
	for id, r := range f.rooms {
		if r.HoatDongCuoi.Before(hardLimit) {
			delete(f.rooms, id)
			delete(f.thanhViens, id)
			soDaXoa++
		}
	}
	return soDaXoa, nil
}

func (f *fakeRoomRepo) ThongKe(_ context.Context, hoatDongTu, khongHoatDongTruoc time.Time) (*repositories.ThongKeRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loi(); err != nil {
		return nil, err
	}
	tk := &repositories.ThongKeRoom{}
	for _, r := range f.rooms {
		tk.TongSo++
		if r.HoatDongCuoi.After(hoatDongTu) {
			tk.DangHoatDong++
		}
		if r.HoatDongCuoi.Before(khongHoatDongTruoc) {
			tk.KhongHoatDong++
		}
	}
	return tk, nil
}

// fakeNguoiDungRepo là NguoiDungRepository trong bộ nhớ.
type fakeNguoiDungRepo struct {
	mu    sync.Mutex
	users map[uint]*models.NguoiDung
}

func newFakeNguoiDungRepo(users ...*models.NguoiDung) *fakeNguoiDungRepo {
	f := &fakeNguoiDungRepo{users: make(map[uint]*models.NguoiDung)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeNguoiDungRepo) FindByID(_ context.Context, id uint) (*models.NguoiDung, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	ban := *u
	return &ban, nil
}

func (f *fakeNguoiDungRepo) FindByMaKetNoi(_ context.Context, maKetNoi string) (*models.NguoiDung, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.MaKetNoi != nil && *u.MaKetNoi == maKetNoi {
			ban := *u
			return &ban, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNguoiDungRepo) SetMaKetNoi(_ context.Context, id uint, maKetNoi *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.MaKetNoi = maKetNoi
	return nil
}

// ghiNhanThongBao đếm các lần service gọi sang tầng realtime.
type ghiNhanThongBao struct {
	mu      sync.Mutex
	thayDoi []string
	daXoa   []string
}

func (g *ghiNhanThongBao) MembershipChanged(maRoom string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thayDoi = append(g.thayDoi, maRoom)
}

func (g *ghiNhanThongBao) RoomDeleted(maRoom string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.daXoa = append(g.daXoa, maRoom)
}

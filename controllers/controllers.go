package controllers

import "github.com/vnkhanh/room-server/services"

// Các service dùng chung cho handler, nạp một lần lúc khởi động.
var (
	roomService     *services.RoomService
	cleanupService  *services.CleanupService
	identityService *services.IdentityService
)

func Init(rooms *services.RoomService, cleanup *services.CleanupService, identity *services.IdentityService) {
	roomService = rooms
	cleanupService = cleanup
	identityService = identity
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/room-server/config"
	"github.com/vnkhanh/room-server/controllers"
	"github.com/vnkhanh/room-server/repositories"
	"github.com/vnkhanh/room-server/routes"
	"github.com/vnkhanh/room-server/services"
)

func main() {
	// .env chỉ có ở môi trường dev, thiếu cũng không sao
	_ = godotenv.Load()

	// Kết nối DB + AutoMigrate
	config.ConnectDB()

	// Repositories + services
	roomRepo := repositories.NewGormRoomRepository(config.DB)
	nguoiDungRepo := repositories.NewGormNguoiDungRepository(config.DB)

	identitySvc := services.NewIdentityService(nguoiDungRepo)
	roomSvc := services.NewRoomService(roomRepo, identitySvc, services.NewLogNotifier())
	cleanupSvc := services.NewCleanupService(roomRepo)
	controllers.Init(roomSvc, cleanupSvc, identitySvc)

	// Job dọn room không hoạt động, dừng theo tín hiệu hệ thống
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	khoang := khoangDonDep()
	services.NewScheduler(cleanupSvc, khoang).Start(ctx)

	// Tạo instance router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origin == "http://localhost:5173" || origin == "https://nguyendautoan.github.io"
		},
		AllowMethods:           []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:           []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:          []string{"Content-Length"},
		AllowCredentials:       true,
		MaxAge:                 12 * time.Hour,
		AllowWildcard:          true,
		AllowBrowserExtensions: true,
	}))

	// Route test server
	r.GET("/", func(c *gin.Context) {
		c.String(200, "Room server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	// Setup routes khác
	routes.SetupRoutes(r)

	// Lấy PORT từ biến môi trường
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Printf("Server listening on port %s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// đợi SIGINT/SIGTERM rồi đóng server, cho request đang chạy 10s để xong
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// khoangDonDep đọc CLEANUP_INTERVAL (vd "1h", "24h"); mặc định 24h.
func khoangDonDep() time.Duration {
	raw := os.Getenv("CLEANUP_INTERVAL")
	if raw == "" {
		return 0 // scheduler tự dùng mặc định
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("CLEANUP_INTERVAL %q không hợp lệ, dùng mặc định", raw)
		return 0
	}
	return d
}

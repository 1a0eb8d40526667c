package main

import (
	"log"
	"time"

	"authapp/internal/cleanup"
	"authapp/internal/config"
	"authapp/internal/domain/model"
	"authapp/internal/handler"
	"authapp/internal/infra/db"
	infraRepo "authapp/internal/infra/repository"
	"authapp/internal/middleware"
	"authapp/internal/server"
	"authapp/internal/token"
	"authapp/internal/usecase"
	auth "authapp/internal/usecase/auth_usecase"
	"authapp/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.AuthEvent{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	sessionRepo := infraRepo.NewSessionRepository(gormDB)
	eventRepo := infraRepo.NewAuthEventRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//トークン発行・検証
	tokenService := token.NewService(cfg.JWTSecret, clock)

	//Cookie属性（Secureは本番のみ）
	cookies := usecase.NewCookiePolicy(cfg.GoEnv)

	//Usecase生成
	authValidator := validator.NewAuthValidator()
	sessionUC := usecase.NewSessionUsecase(sessionRepo, userRepo, eventRepo, txManager, tokenService, clock)
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, sessionUC, verifier, authValidator, clock)
	forceLogoutUC := auth.NewForceLogoutUsecase(userRepo, sessionUC)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, sessionUC, cookies, authValidator)
	sessionH := handler.NewSessionHandler(sessionUC)
	adminH := handler.NewAdminUserHandler(forceLogoutUC, sessionUC)

	//期限切れセッション掃除
	reaper := cleanup.NewReaper(sessionRepo, time.Duration(cfg.CleanupIntervalMinutes)*time.Minute)
	reaper.Start()
	defer reaper.Stop()

	//Server起動
	e := server.New(server.Handlers{
		Auth:         authH,
		Sessions:     sessionH,
		AdminUser:    adminH,
		RequireAuth:  middleware.RequireAuth(sessionUC, cookies),
		RequireAdmin: middleware.RequireRole(sessionUC, model.RoleAdmin),
	})

	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

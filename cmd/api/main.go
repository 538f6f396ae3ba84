package main

import (
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	"app/internal/infra/ids"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/token"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "main").Logger()

	//.envはローカル用。無くてもよい。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Employee{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//商品キャッシュ（REDIS_URL未設定なら無効）
	var productCache usecase.ProductCacheStore
	if cfg.RedisURL != "" {
		pc, err := cache.NewProductCache(cfg.RedisURL, 5*time.Minute)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		productCache = pc
		logger.Info().Msg("product cache enabled")
	}

	//usecaseに渡す部品
	clock := ids.NewSystemClock()
	idGen := ids.NewUUIDGenerator()
	orderNums := ids.NewOrderNumberGenerator(clock)
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTTL)
	pricing := usecase.NewFlatRatePricing(cfg.TaxRatePercent, cfg.ShippingFlat)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(txManager, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, cfg.RefreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, cfg.RefreshTTL)
	changePwUC := auth.NewChangePasswordUsecase(userRepo, rtRepo, hasher, verifier, clock)

	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, txManager, productCache)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(txManager)
	orderUC := usecase.NewOrderUsecase(txManager, customerRepo, pricing, orderNums)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)
	adminUserUC := usecase.NewAdminUserUsecase(txManager)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, refreshUC, changePwUC, cfg.RefreshTTL),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC, customerRepo),
		Order:        handler.NewOrderHandler(orderUC, customerRepo),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC, registerUC),
	}

	e := server.New(cfg, handlers, userRepo)

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

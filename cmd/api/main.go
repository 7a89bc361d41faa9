package main

import (
	"time"

	"github.com/BekzhanK1/fms-server/internal/chat"
	"github.com/BekzhanK1/fms-server/internal/config"
	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/handler"
	"github.com/BekzhanK1/fms-server/internal/infra/db"
	infraRepo "github.com/BekzhanK1/fms-server/internal/infra/repository"
	"github.com/BekzhanK1/fms-server/internal/logger"
	"github.com/BekzhanK1/fms-server/internal/server"
	"github.com/BekzhanK1/fms-server/internal/usecase"
	auth "github.com/BekzhanK1/fms-server/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無ければ環境変数だけで動かす
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.GoEnv)
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.L().Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Farm{},
		&model.Category{},
		&model.Product{},
		&model.Basket{},
		&model.BasketItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Room{},
		&model.Message{},
	); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	farmRepo := infraRepo.NewFarmGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	basketRepo := infraRepo.NewBasketGormRepository(gormDB)
	basketItemRepo := infraRepo.NewBasketItemGormRepository(gormDB)
	roomRepo := infraRepo.NewRoomGormRepository(gormDB)
	messageRepo := infraRepo.NewMessageGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)
	companion := auth.NewCompanionRecords(basketRepo)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, companion, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	switchUC := auth.NewSwitchRoleUsecase(userRepo, companion)

	productUC := usecase.NewProductUsecase(productRepo, farmRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	farmUC := usecase.NewFarmUsecase(farmRepo)
	basketUC := usecase.NewBasketUsecase(basketRepo, basketItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager)
	orderUC := usecase.NewOrderUsecase(txManager)
	farmerOrderUC := usecase.NewFarmerOrderUsecase(txManager)
	chatUC := usecase.NewChatUsecase(roomRepo, messageRepo, userRepo)

	//チャットのブロードキャストハブ
	hub := chat.NewHub()

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, switchUC)
	productH := handler.NewProductHandler(productUC)
	categoryH := handler.NewCategoryHandler(categoryUC)
	farmH := handler.NewFarmHandler(farmUC)
	basketH := handler.NewBasketHandler(basketUC)
	orderH := handler.NewOrderHandler(checkoutUC, orderUC)
	farmerOrderH := handler.NewFarmerOrderHandler(farmerOrderUC)
	chatH := handler.NewChatHandler(chatUC, hub, roomRepo, messageRepo, userRepo, cfg)

	//Server起動
	logger.L().Info("starting server", zap.String("port", cfg.Port))
	if err := server.Start(cfg,
		authH, productH, categoryH, farmH,
		basketH, orderH, farmerOrderH, chatH,
	); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"os"
	"time"

	"pos/internal/audit"
	"pos/internal/cache"
	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/handler"
	"pos/internal/infra/db"
	infraRepo "pos/internal/infra/repository"
	"pos/internal/server"
	"pos/internal/usecase"

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
		accessTTL: 12 * time.Hour,
	}
}

func (i *jwtIssuer) Issue(employeeID int64, name string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  employeeID,
		"name": name,
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

func newLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	//.envはあれば読む（本番は環境変数だけで動く）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Return{},
		&model.ReturnItem{},
		&model.StockAdjustment{},
		&model.InventoryCount{},
		&model.InventoryCountItem{},
		&model.AuditLog{},
		&model.Settings{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//進行中の棚卸はシステム全体で1つだけ。同時Startの片方をINSERTで弾く
	if err := gormDB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS uidx_inventory_counts_in_progress " +
			"ON inventory_counts (status) WHERE status = 'IN_PROGRESS'",
	).Error; err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	employeeRepo := infraRepo.NewEmployeeGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	settingsRepo := infraRepo.NewSettingsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := usecase.NewBcryptPINHasher(12)
	verifier := usecase.NewBcryptPINVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)

	//設定行がなければここでデフォルトが作られる
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := settingsRepo.Get(ctx); err != nil {
		cancel()
		log.Fatal("settings bootstrap failed", zap.Error(err))
	}

	//スタッフが1人もいなければ初期店長を作る
	if pin := os.Getenv("BOOTSTRAP_MANAGER_PIN"); pin != "" {
		emps, err := employeeRepo.List(ctx)
		if err != nil {
			cancel()
			log.Fatal("employee bootstrap failed", zap.Error(err))
		}
		if len(emps) == 0 {
			hash, err := hasher.Hash(pin)
			if err != nil {
				cancel()
				log.Fatal("employee bootstrap failed", zap.Error(err))
			}
			mgr, err := employeeRepo.Create(ctx, model.Employee{
				Name:     "Store Manager",
				Role:     model.RoleManager,
				PINHash:  hash,
				IsActive: true,
			})
			if err != nil {
				cancel()
				log.Fatal("employee bootstrap failed", zap.Error(err))
			}
			log.Info("bootstrap manager created", zap.Int64("employee_id", mgr.ID))
		}
	}
	cancel()

	//監査ログの非同期Sink
	sink := audit.NewSink(auditRepo, log, 256)
	defer sink.Close()

	//low-stockレポートのキャッシュ（Redisがなければno-op）
	var lowStockCache cache.LowStockCache = cache.NoopLowStockCache{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisLowStockCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, low-stock cache disabled", zap.Error(err))
		} else {
			lowStockCache = rc
			defer rc.Close()
		}
		pingCancel()
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(employeeRepo, verifier, issuer, clock, sink)
	productUC := usecase.NewProductUsecase(productRepo, lowStockCache)
	saleUC := usecase.NewSaleUsecase(txManager, clock, sink)
	returnUC := usecase.NewReturnUsecase(txManager, settingsRepo, verifier, clock, sink)
	adjustmentUC := usecase.NewStockAdjustmentUsecase(txManager, clock, sink)
	countUC := usecase.NewInventoryCountUsecase(txManager, clock, sink)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, sink)
	employeeUC := usecase.NewEmployeeUsecase(employeeRepo, hasher)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Product:    handler.NewProductHandler(productUC),
		Sale:       handler.NewSaleHandler(saleUC),
		Return:     handler.NewReturnHandler(returnUC),
		Adjustment: handler.NewAdjustmentHandler(adjustmentUC),
		Count:      handler.NewCountHandler(countUC),
		Settings:   handler.NewSettingsHandler(settingsUC),
		Employee:   handler.NewEmployeeHandler(employeeUC),
		Audit:      handler.NewAuditHandler(auditUC),
	}

	//Server起動
	srv := server.New(cfg, log, employeeRepo, handlers)
	if err := srv.Start(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

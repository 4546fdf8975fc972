package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"icommerce/internal/db"
	"icommerce/internal/domain/products"
	"icommerce/internal/ratelimiter"
	"icommerce/internal/store"

	"icommerce/internal/auth"
)

var version = "1.0.0"

// NewLogger builds the console zap logger used across the service.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	return zap.New(core).Sugar(), nil
}

func loadRateLimiterConfig() ratelimiter.Config {
	cfg := ratelimiter.Config{
		RequestsPerTimeFrame: 20,
		TimeFrame:            time.Minute,
		Enabled:              true,
	}
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.RequestsPerTimeFrame = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", cfg.RequestsPerTimeFrame)
		}
	}
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = parsed
		}
	}
	return cfg
}

//	@title			iCommerce Admin API
//	@description	Back-office API for the iCommerce platform: attribute catalog, reference data, and the multi-variant product editing workflow.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	maxConns, err := strconv.Atoi(os.Getenv("DB_MAX_CONNS"))
	if err != nil {
		log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
	}

	cfg := config{
		addr:         os.Getenv("ADDR"),
		env:          os.Getenv("ENV"),
		apiURL:       os.Getenv("EXTERNAL_URL"),
		frontendURL:  os.Getenv("FRONTEND_URL"),
		imageBaseURL: os.Getenv("IMAGE_BASE_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(maxConns),
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  time.Hour * 24,
				refreshTokenExp: time.Hour * 24 * 7,
				iss:             "icommerce",
			},
		},
		skuSalt:     os.Getenv("SKU_SALT"),
		rateLimiter: loadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	minter, err := products.NewSKUMinter(cfg.skuSalt)
	if err != nil {
		logger.Fatal(err)
	}

	storage := store.NewStorage(pool, minter)

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		logger.Fatal(err)
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		cld:           cld,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

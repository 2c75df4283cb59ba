package main

import (
	"expvar"
	"fmt"
	"os"
	"runtime"

	"bulkwala/internal/auth"
	"bulkwala/internal/config"
	"bulkwala/internal/db"
	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/offers"
	"bulkwala/internal/domain/storage"
	"bulkwala/internal/imagehost"
	"bulkwala/internal/mailer"
	"bulkwala/internal/payments"
	"bulkwala/internal/ratelimiter"
	"bulkwala/internal/slug"
	"bulkwala/internal/sms"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	// Configure the encoder to be a console encoder with color
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder // This adds color to log levels (INFO, WARN, ERROR)

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	// Use zapcore.NewCore to write logs to standard output (stdout) with color
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

//	@title			Bulkwala API
//	@description	API for Bulkwala, a wholesale e-commerce store.

//	@contact.name	API Support
//	@contact.email	support@bulkwala.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	caps := cfg.Capabilities()
	exec := degrade.New(caps, logger)
	for capability, ok := range caps {
		if !ok {
			logger.Warnw("capability not configured, fallbacks will be served", "capability", capability)
		}
	}

	// Database
	pool := openDatabase(cfg, logger)
	if pool != nil {
		defer pool.Close()
	}

	//storage
	store := storage.NewContainer(pool)

	//cloudinary
	var uploader imagehost.Uploader
	if cfg.Cloudinary.URL != "" {
		cld, err := imagehost.NewCloudinary(cfg.Cloudinary.URL)
		if err != nil {
			logger.Fatal(err)
		}
		uploader = cld
	}

	// client to send verification and reset emails
	smtp := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromEmail)

	twilio := sms.NewTwilioVerify(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.ServiceSID)

	paymentManager := payments.NewPaymentManager()
	paymentManager.RegisterGateway(payments.MethodRazorpay, payments.NewRazorpayAdapter(cfg.Razorpay.KeyID, cfg.Razorpay.Secret))
	paymentManager.RegisterGateway(payments.MethodCOD, payments.CODAdapter{})

	slugs, err := slug.NewGenerator(cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal(err)
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.RateLimiter.RequestsPerTimeFrame,
		cfg.RateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.Auth.Secret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTokenExp,
		cfg.Auth.RefreshTokenExp,
	)

	app := &application{
		config:        cfg,
		store:         store,
		exec:          exec,
		logger:        logger,
		images:        imagehost.NewService(uploader, exec, cfg.Cloudinary.Folder),
		mail:          mailer.NewService(smtp, exec, logger, cfg.PrimaryFrontendURL()),
		sms:           sms.NewService(twilio, exec, cfg.SMS.CountryCode),
		payments:      payments.NewService(paymentManager, exec),
		offers:        offers.NewService(store.Offers, exec),
		slugs:         slugs,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/api/v1/debug/vars
	expvar.NewString("version").Set(cfg.Version)
	expvar.Publish("database", expvar.Func(func() any {
		if pool == nil {
			return nil
		}
		stat := pool.Stat()
		return map[string]any{
			"total_conns":    stat.TotalConns(),
			"idle_conns":     stat.IdleConns(),
			"acquired_conns": stat.AcquiredConns(),
			"max_conns":      stat.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

// openDatabase returns nil when DB_ADDR is unset. An unreachable server is
// only logged: the pool reconnects lazily and reads fall back meanwhile.
func openDatabase(cfg *config.Config, logger *zap.SugaredLogger) *pgxpool.Pool {
	if cfg.DB.Addr == "" {
		return nil
	}

	pool, err := db.New(cfg.DB.Addr, cfg.DB.MaxConns, cfg.DB.MaxIdleTime)
	if pool == nil {
		logger.Fatal(err)
	}
	if err != nil {
		logger.Warnw("database unreachable, serving fallback data until it recovers", "error", err)
		return pool
	}
	logger.Info("database connection pool established")

	if cfg.DB.AutoMigrate {
		version, err := db.Migrate(cfg.DB.Addr)
		if err != nil {
			logger.Errorw("database migration failed", "error", err)
			return pool
		}
		logger.Infow("database schema up to date", "version", version)
	}
	return pool
}

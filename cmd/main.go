package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/nickle23/DistriMundoEscolar/api/handler"
	apiMiddleware "github.com/nickle23/DistriMundoEscolar/api/middleware"
	"github.com/nickle23/DistriMundoEscolar/api/routes"
	"github.com/nickle23/DistriMundoEscolar/config"
	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/repository"
	"github.com/nickle23/DistriMundoEscolar/internal/service"
	"github.com/nickle23/DistriMundoEscolar/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	db := config.ConnectionDb()
	validate := validator.New()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := db.AutoMigrate(&entity.Vendor{}, &entity.Session{}, &entity.AccessEvent{}); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	tokenSecret := []byte(os.Getenv("JWT_SECRET"))
	issuer := os.Getenv("JWT_ISSUER")
	if len(tokenSecret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}

	adminCode := config.AdminCode()
	if adminCode == "" {
		adminCode = service.DefaultBuiltinAdminCode
	}

	tokenManager := utils.SessionTokenManager{
		Secret: tokenSecret,
		Issuer: issuer,
		TTL:    12 * time.Hour,
	}

	vendorRepo := repository.NewVendorRepository(db, adminCode)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewAccessEventRepository(db)
	unitOfWork := repository.NewUnitOfWork(db, adminCode)

	authority := service.NewSessionAuthority(
		vendorRepo,
		sessionRepo,
		eventRepo,
		tokenManager,
		service.RealClock{},
		logger,
	)

	directory := service.NewDirectoryService(
		unitOfWork,
		vendorRepo,
		eventRepo,
		service.RealClock{},
		logger,
		adminCode,
	)

	if err := directory.EnsureBuiltinAdmin(context.Background()); err != nil {
		logger.WithError(err).Fatal("builtin admin bootstrap failed")
	}

	authHandler := handler.NewAuthHandler(authority, validate)
	vendorHandler := handler.NewVendorHandler(directory, authority, sessionRepo, eventRepo, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Tokens: &tokenManager, Authority: authority}
	router := routes.NewRouter(app, authHandler, vendorHandler, authMiddleware)
	router.RegisterRoutes()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wedabay-ops/duty-attendance/backend/internal/config"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/export"
	"github.com/wedabay-ops/duty-attendance/backend/internal/report"
)

// Publisher 是 *amqp.Channel 中发布消息的那部分
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// UserRepository 是 handler 用到的用户存储，*repository.Repository 实现了它
type UserRepository interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetAllUsers() ([]*domain.User, error)
	CreateUser(user *domain.User) error
	UpdateUser(user *domain.User) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  UserRepository
	translator  ut.Translator
	mailChannel Publisher
	reports     *report.Service
	exporter    *export.Exporter
	loc         *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo UserRepository, mailCh Publisher, reports *report.Service, exporter *export.Exporter) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		reports:     reports,
		exporter:    exporter,
		loc:         cfg.Location(),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))
	h.Mux.Use(chiMiddleware.Heartbeat("/healthz"))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		// 每次请求都重新读取账号，停用后持有的 token 立即失效
		r.Use(h.myInfo)

		r.Get("/roster", h.GetRoster)

		r.Route("/reports", func(r chi.Router) {
			r.Route("/daily", func(r chi.Router) {
				r.Get("/", h.GetDailyReport)
				r.Get("/export", h.ExportDailyReport)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/email", h.EmailDailyReport)
			})
			r.Get("/range/export", h.ExportRangeReport)
			r.Get("/anomalies", h.GetAnomalies)
			r.Get("/divisions", h.GetDivisionStats)
			r.Get("/trends", h.GetWeeklyTrends)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllUserInfo)
			r.Post("/", h.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
			})
		})
	})
}

package courseplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/course-platform/internal/avatarstore"
	"github.com/magabrotheeeer/course-platform/internal/config"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/deleteaccount"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/editprofile"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/google"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/updatepassword"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/uploadavatar"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/create"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/list"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/listmy"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/rate"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/read"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/createorder"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/history"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/key"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/listall"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/subscribe"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/unsubscribe"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/verifyorder"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/payment/verifysubscription"
	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/models"
	authservice "github.com/magabrotheeeer/course-platform/internal/services/auth"
	billingservice "github.com/magabrotheeeer/course-platform/internal/services/billing"
	courseservice "github.com/magabrotheeeer/course-platform/internal/services/course"
)

// Services — собранные сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth    *authservice.AuthService
	Billing *billingservice.BillingService
	Course  *courseservice.CourseService
	Avatars *avatarstore.Store
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	maker jwt.Maker, users middlewarectx.UserProvider, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	// Сессионная cookie приходит с другого origin, поэтому
	// credentials обязательны.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth, cfg.TokenTTL).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth, cfg.TokenTTL).ServeHTTP)
		r.Post("/auth/google", google.New(logger, svc.Auth, cfg.TokenTTL).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, svc.Auth).ServeHTTP)

		r.Get("/courses", list.New(logger, svc.Course).ServeHTTP)
		r.Get("/courses/{id}", read.New(logger, svc.Course).ServeHTTP)
		r.Get("/payments/key", key.New(logger, cfg.KeyID).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с аутентификацией по cookie сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Auth(logger, maker, users))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/profile", profile.New(logger).ServeHTTP)
			r.Put("/auth/profile", editprofile.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/avatar", uploadavatar.New(logger, svc.Avatars).ServeHTTP)
			r.Put("/auth/password", updatepassword.New(logger, svc.Auth).ServeHTTP)
			r.Delete("/auth/account", deleteaccount.New(logger, svc.Auth).ServeHTTP)

			// Покупки доступны только обычным пользователям
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleUser))
				r.Post("/payments/order", createorder.New(logger, svc.Billing).ServeHTTP)
				r.Post("/payments/order/verify", verifyorder.New(logger, svc.Billing).ServeHTTP)
				r.Post("/payments/subscription", subscribe.New(logger, svc.Billing).ServeHTTP)
				r.Post("/payments/subscription/verify", verifysubscription.New(logger, svc.Billing).ServeHTTP)
				r.Post("/payments/unsubscribe", unsubscribe.New(logger, svc.Billing).ServeHTTP)
				r.Get("/payments/history", history.New(logger, svc.Billing).ServeHTTP)
				r.Post("/courses/{id}/rate", rate.New(logger, svc.Course).ServeHTTP)
			})

			// Создание курсов доступно авторам и администраторам
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleInstructor, models.RoleAdmin))
				r.Post("/courses", create.New(logger, svc.Course).ServeHTTP)
				r.Get("/courses/my", listmy.New(logger, svc.Course).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleAdmin))
				r.Get("/payments/all", listall.New(logger, svc.Billing).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

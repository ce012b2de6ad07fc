package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/tableside-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/tableside-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/tableside-backend/api/controllers/orders"
	"github.com/angelmondragon/tableside-backend/api/middleware"
	"github.com/angelmondragon/tableside-backend/internal/auth"
	"github.com/angelmondragon/tableside-backend/internal/cart"
	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/orders"
	"github.com/angelmondragon/tableside-backend/internal/posts"
	"github.com/angelmondragon/tableside-backend/internal/products"
	"github.com/angelmondragon/tableside-backend/internal/queue"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/internal/tables"
	"github.com/angelmondragon/tableside-backend/pkg/config"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
	"github.com/angelmondragon/tableside-backend/pkg/metrics"
	"github.com/angelmondragon/tableside-backend/pkg/redis"
)

// Services groups the domain services mounted on the router. Nil services
// answer with an internal error.
type Services struct {
	Auth        auth.Service
	Members     members.Service
	Restaurants restaurants.Service
	Products    products.Service
	Tables      tables.Service
	Queue       queue.Service
	Cart        cart.Service
	Orders      orders.Service
	Posts       posts.Service
}

// Infra carries the shared clients used by middleware and health checks.
type Infra struct {
	DB      controllers.Pinger
	Redis   *redis.Client
	Metrics *metrics.HTTPMetrics
	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)
	if infra.Metrics != nil {
		r.Use(infra.Metrics.Middleware)
	}
	r.Use(middleware.Auth(cfg.JWT, logg))

	// A nil *redis.Client must not become a non-nil interface.
	var (
		idemStore  middleware.IdempotencyStore
		limitStore middleware.RateLimitStore
		redisPing  controllers.Pinger
	)
	if infra.Redis != nil {
		idemStore = infra.Redis
		limitStore = infra.Redis
		redisPing = infra.Redis
	}

	public := middleware.Require(middleware.PolicyPublic, logg)
	staff := middleware.Require(middleware.PolicyStaff, logg)
	idempotent := middleware.Idempotency(idemStore, cfg.Idempotency.OrderTTL, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.With(public).Get("/live", controllers.HealthLive(cfg))
		r.With(public).Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    infra.DB,
			"redis": redisPing,
		}))
	})
	r.With(public).Method(http.MethodGet, "/metrics", metrics.Handler(infra.Gatherer))

	r.Route("/auth", func(r chi.Router) {
		r.With(public, middleware.AuthRateLimit(loginPolicy, limitStore, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(public, middleware.AuthRateLimit(registerPolicy, limitStore, logg)).Post("/register", controllers.AuthRegister(svc.Auth, logg))
	})

	r.Route("/member", func(r chi.Router) {
		r.With(public).Post("/", controllers.MemberUpsert(svc.Members, logg))
		r.With(public).Get("/{wp_openid}", controllers.MemberGet(svc.Members, logg))
	})

	r.Route("/restaurant", func(r chi.Router) {
		r.With(staff).Get("/", controllers.RestaurantListOwned(svc.Restaurants, logg))
		r.With(staff).Post("/", controllers.RestaurantCreate(svc.Restaurants, logg))
		r.With(public).Get("/{openid}", controllers.RestaurantGet(svc.Restaurants, logg))
		r.With(staff).Put("/{openid}", controllers.RestaurantUpdate(svc.Restaurants, logg))
	})

	r.Route("/product", func(r chi.Router) {
		r.With(public).Get("/", controllers.ProductList(svc.Products, logg))
		r.With(staff).Post("/", controllers.ProductCreate(svc.Products, logg))
		r.With(public).Get("/{id}", controllers.ProductGet(svc.Products, logg))
		r.With(staff).Put("/{id}", controllers.ProductUpdate(svc.Products, logg))
		r.With(staff).Delete("/{id}", controllers.ProductDelete(svc.Products, logg))
	})

	r.Route("/table-type", func(r chi.Router) {
		r.With(public).Get("/", controllers.TableTypeList(svc.Tables, logg))
		r.With(staff).Post("/", controllers.TableTypeCreate(svc.Tables, logg))
		r.With(public).Get("/{id}", controllers.TableTypeGet(svc.Tables, logg))
		r.With(staff).Put("/{id}", controllers.TableTypeUpdate(svc.Tables, logg))
		r.With(staff).Delete("/{id}", controllers.TableTypeDelete(svc.Tables, logg))
		r.With(staff).Post("/{id}/call-next", controllers.RegistrationCallNext(svc.Queue, logg))
	})

	r.Route("/table", func(r chi.Router) {
		r.With(public).Get("/", controllers.TableList(svc.Tables, logg))
		r.With(staff).Post("/", controllers.TableCreate(svc.Tables, logg))
		r.With(public).Get("/{id}", controllers.TableGet(svc.Tables, logg))
		r.With(staff).Put("/{id}", controllers.TableUpdate(svc.Tables, logg))
		r.With(staff).Delete("/{id}", controllers.TableDelete(svc.Tables, logg))
		r.With(staff).Post("/{id}/order", controllers.TableAssignOrder(svc.Tables, logg))
		r.With(staff).Delete("/{id}/order", controllers.TableReleaseOrder(svc.Tables, logg))
		r.With(public).Get("/{id}/qrcode", controllers.TableQRCode(svc.Tables, logg))
	})

	r.Route("/registration", func(r chi.Router) {
		r.With(public, idempotent).Post("/", controllers.RegistrationCreate(svc.Queue, logg))
		r.With(public).Get("/{id}", controllers.RegistrationGet(svc.Queue, logg))
		r.With(public).Post("/{id}/cancel", controllers.RegistrationCancel(svc.Queue, logg))
		r.With(staff).Put("/{id}/status", controllers.RegistrationUpdateStatus(svc.Queue, logg))
	})

	r.Route("/cart", func(r chi.Router) {
		r.With(public).Get("/", cartcontrollers.CartFetch(svc.Cart, logg))
		r.With(public, idempotent).Post("/item", cartcontrollers.CartAddItem(svc.Cart, logg))
		r.With(public).Post("/item/remove", cartcontrollers.CartRemoveItem(svc.Cart, logg))
		r.With(public).Post("/item/recount", cartcontrollers.CartRecountItem(svc.Cart, logg))
		r.With(public, idempotent).Get("/{cart_id}/order", ordercontrollers.CreateFromCart(svc.Orders, logg))
	})

	r.Route("/order", func(r chi.Router) {
		r.With(public).Get("/", ordercontrollers.List(svc.Orders, logg))
		r.With(public).Get("/{order_pk}", ordercontrollers.Detail(svc.Orders, logg))
		r.With(public).Get("/{order_pk}/cancel", ordercontrollers.Cancel(svc.Orders, logg))
		r.With(staff).Put("/{order_pk}/status", ordercontrollers.UpdateStatus(svc.Orders, logg))
	})

	r.Route("/post", func(r chi.Router) {
		r.With(public).Get("/", controllers.PostList(svc.Posts, logg))
		r.With(public, idempotent).Post("/", controllers.PostCreate(svc.Posts, logg))
		r.With(public).Get("/{id}", controllers.PostGet(svc.Posts, logg))
		r.With(public).Put("/{id}", controllers.PostUpdate(svc.Posts, logg))
		r.With(public).Post("/{id}/like", controllers.PostLike(svc.Posts, logg))
		r.With(public).Delete("/{id}/like", controllers.PostUnlike(svc.Posts, logg))
	})

	r.Route("/tag", func(r chi.Router) {
		r.With(public).Post("/", controllers.TagCreate(svc.Posts, logg))
		r.With(public).Get("/restaurant/{openid}", controllers.TagListByRestaurant(svc.Posts, logg))
		r.With(public).Get("/{id}", controllers.TagGet(svc.Posts, logg))
		r.With(public).Put("/{id}", controllers.TagUpdate(svc.Posts, logg))
	})

	return r
}

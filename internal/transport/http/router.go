package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *auth.Auth
	AuthH   *handlers.AuthHTTP
	Catalog *handlers.CatalogHTTP
	Cart    *handlers.CartHTTP
	Orders  *handlers.OrderHTTP
	Users   *handlers.UserHTTP
	Admin   *handlers.AdminHTTP
	// CSRF enables double-submit protection for cookie-authenticated
	// requests. Requests carrying a bearer token skip it.
	CSRF bool
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = handlers.NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return ready(c, d.DB) })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := e.Group("/api/v1")
	if d.CSRF {
		cfg := csrf.DefaultConfig()
		cfg.Secure = d.Auth.Secure
		cfg.Skipper = bearerAuthenticated
		v1.Use(csrf.Middleware(cfg))
	}

	v1.POST("/auth/register", d.AuthH.Register)
	v1.POST("/auth/login", d.AuthH.Login)
	v1.POST("/auth/logout", d.AuthH.Logout)
	v1.POST("/admin/auth/login", d.AuthH.AdminLogin)
	v1.POST("/admin/auth/register", d.AuthH.AdminRegister)

	v1.GET("/products", d.Catalog.GetProducts)
	v1.GET("/products/:id", d.Catalog.GetProduct)
	v1.GET("/search", d.Catalog.Search)
	v1.POST("/newsletter", d.Catalog.Subscribe)

	cart := v1.Group("/cart", d.Auth.RequireUser)
	cart.GET("", d.Cart.GetCart)
	cart.DELETE("", d.Cart.Clear)
	cart.GET("/count", d.Cart.Count)
	cart.POST("/items", d.Cart.AddToCart)
	cart.PATCH("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)

	v1.POST("/checkout", d.Orders.Checkout, d.Auth.RequireUser)

	orders := v1.Group("/orders", d.Auth.RequireUser)
	orders.GET("", d.Orders.List)
	orders.GET("/:id", d.Orders.Get)
	orders.GET("/number/:number", d.Orders.GetByNumber)

	profile := v1.Group("/profile", d.Auth.RequireUser)
	profile.GET("", d.Users.Profile)
	profile.PATCH("", d.Users.UpdateProfile)
	profile.POST("/password", d.Users.ChangePassword)
	profile.GET("/addresses", d.Users.ListAddresses)
	profile.POST("/addresses", d.Users.AddAddress)
	profile.PATCH("/addresses/:id", d.Users.UpdateAddress)
	profile.POST("/addresses/:id/default", d.Users.SetDefaultAddress)
	profile.DELETE("/addresses/:id", d.Users.DeleteAddress)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)
	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/users/:id", d.Admin.GetUser)
	admin.POST("/users/:id/activate", d.Admin.ActivateUser)
	admin.POST("/users/:id/deactivate", d.Admin.DeactivateUser)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.GET("/orders/:id", d.Admin.GetOrder)
	admin.PATCH("/orders/:id/status", d.Admin.UpdateOrderStatus)

	admin.GET("/admins", d.Admin.ListAdmins, d.Auth.RequireSuperAdmin)
	admin.POST("/invitations", d.AuthH.InviteAdmin, d.Auth.RequireSuperAdmin)
}

func bearerAuthenticated(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
}

func ready(c echo.Context, db *gorm.DB) error {
	if db == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}

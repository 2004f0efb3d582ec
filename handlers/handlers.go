package handlers

import (
	"net/http"
	"os"

	"shop-service/internal/auth"
	"shop-service/internal/orders"
	"shop-service/internal/products"
	"shop-service/internal/reports"
	"shop-service/internal/stores/kafka"
	"shop-service/internal/users"
	"shop-service/middleware"
	"shop-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	p        products.Conf
	u        users.Conf
	o        *orders.Conf
	r        reports.Conf
	k        *kafka.Conf // nil when kafka is not configured
	keys     *auth.Keys
	validate *validator.Validate
}

func NewHandler(p products.Conf, u users.Conf, o *orders.Conf, r reports.Conf,
	k *kafka.Conf, keys *auth.Keys) *Handler {
	return &Handler{
		p:        p,
		u:        u,
		o:        o,
		r:        r,
		k:        k,
		keys:     keys,
		validate: validator.New(),
	}
}

func API(p products.Conf, u users.Conf, o *orders.Conf, r reports.Conf,
	k *kafka.Conf, keys *auth.Keys, sm *metrics.ServerMetrics) *gin.Engine {

	engine := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(p, u, o, r, k, keys)
	engine.Use(middleware.Logger(), gin.Recovery())
	if sm != nil {
		engine.Use(middleware.Metrics(sm))
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	engine.GET("/ping", healthCheck)

	api := engine.Group("/api")
	{
		api.POST("/auth/register", h.Signup)
		api.POST("/auth/login", h.Login)

		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		api.Use(m.Authentication())

		api.POST("/products", m.Authorize(h.CreateProduct, auth.RoleShopkeeper))
		api.PUT("/products/:id", m.Authorize(h.UpdateProduct, auth.RoleShopkeeper))
		api.DELETE("/products/:id", m.Authorize(h.DeleteProduct, auth.RoleShopkeeper))

		api.POST("/orders", m.Authorize(h.Checkout, auth.RoleCustomer))
		api.GET("/customer/orders", m.Authorize(h.CustomerOrders, auth.RoleCustomer))
		api.GET("/customer/profile", m.Authorize(h.CustomerProfile, auth.RoleCustomer))

		api.GET("/shopkeeper/orders", m.Authorize(h.ShopkeeperOrders, auth.RoleShopkeeper))
		api.GET("/shopkeeper/customers", m.Authorize(h.ShopkeeperCustomers, auth.RoleShopkeeper))
		api.GET("/shopkeeper/stats", m.Authorize(h.ShopkeeperStats, auth.RoleShopkeeper))
		api.GET("/shopkeeper/analytics", m.Authorize(h.ShopkeeperAnalytics, auth.RoleShopkeeper))
	}

	return engine
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package api

import (
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health   *HealthHandler
	Invoices *InvoiceHandler
}

// NewRouter serves health and metrics at the root and the invoicing
// triggers under /v1.
func NewRouter(handlers Handlers, gatherer prometheus.Gatherer, logger *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1Group := router.Group("/v1")
	v1Group.Use(TenantMiddleware(), ErrorHandler())
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("/assemble", handlers.Invoices.AssembleInvoices)
		invoices.POST("/:id/assemble", handlers.Invoices.AssembleInvoice)
	}

	addOns := router.Group("/applied_add_ons")
	{
		addOns.POST("/:id/invoice", handlers.Invoices.InvoiceAddOn)
	}
}

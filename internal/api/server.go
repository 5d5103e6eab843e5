package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/docs"
	v1 "github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/config"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/pkg/keylock"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/service"
)

type Server struct {
	Config     *config.AppConfig
	Router     *gin.Engine
	Classifier *service.ClassifierService
}

func NewServer(conf *config.AppConfig, storage Storage) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	products := repository.NewProductRepository(storage.Products)
	stock := repository.NewStockRepository(storage.Stock)
	sales := repository.NewSaleRepository(storage.Sales)
	locker := keylock.New[uint](conf.Inventory.LockTimeout)

	classifier, err := service.NewClassifierService(products, stock, service.Thresholds{
		LowStockThreshold:  conf.Inventory.LowStockThreshold,
		ExpiringWindowDays: conf.Inventory.ExpiringWindowDays,
	})
	if err != nil {
		return nil, err
	}
	s.Classifier = classifier

	productHandler := v1.NewProductHandler(service.NewCatalogService(products))
	stockHandler := v1.NewStockHandler(service.NewLedgerService(products, stock, locker, time.Now), classifier, time.Now)
	dispenseHandler := v1.NewDispenseHandler(service.NewDispenseService(products, stock, sales, locker, time.Now))
	s.MountHandlers(productHandler, stockHandler, dispenseHandler)

	return s, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(productHandler *v1.ProductHandler, stockHandler *v1.StockHandler, dispenseHandler *v1.DispenseHandler) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	canManageCatalog := middleware.RequireCapability("manage the catalog", middleware.CanManageCatalog)
	canReceiveStock := middleware.RequireCapability("receive stock", middleware.CanReceiveStock)
	canDispense := middleware.RequireCapability("dispense", middleware.CanDispense)
	canViewInventory := middleware.RequireCapability("view inventory", middleware.CanViewInventory)
	canViewSales := middleware.RequireCapability("view sales", middleware.CanViewSales)

	api := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		api.POST("/products", canManageCatalog, productHandler.HandleCreateProduct)
		api.GET("/products", canViewInventory, productHandler.HandleGetProducts)
		api.GET("/products/:productID", canViewInventory, productHandler.HandleGetProduct)
		api.GET("/products/:productID/batches", canViewInventory, stockHandler.HandleGetBatches)
		api.GET("/products/:productID/status", canViewInventory, stockHandler.HandleGetStockStatus)
		api.GET("/products/:productID/sales", canViewSales, dispenseHandler.HandleGetSales)

		api.POST("/stock", canReceiveStock, stockHandler.HandleAddStock)
		api.POST("/dispense", canDispense, dispenseHandler.HandleDispense)
		api.GET("/inventory", canViewInventory, stockHandler.HandleGetInventory)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Pharmacy ledger API"
	docs.SwaggerInfo.Description = "Stock ledger, FEFO dispensing and stock classification for a pharmacy."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"codemint/internal/config"
	"codemint/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	generate *service.GenerateService
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, generate *service.GenerateService, db *pgxpool.Pool, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		generate: generate,
		db:       db,
		cache:    cache,
	}
}

// Register wires the routes. The generate/scan paths are kept flat for
// compatibility with existing clients.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/generate_barcode", h.GenerateBarcodes)
	router.POST("/generate_qrcode", h.GenerateQRCodes)
	router.POST("/generate_barcode_new", h.GenerateBarcode)
	router.POST("/generate_qrcode_new", h.GenerateQRCode)
	router.POST("/scan_code_new", h.ScanCode)

	router.GET("/codes", h.ListCodes)
}

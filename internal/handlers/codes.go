package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codemint/internal/models"
	"codemint/internal/render"
	"codemint/internal/repository"
	"codemint/internal/service"
)

type generateRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
}

type codeResponse struct {
	Name      string `json:"name"`
	UniqueID  string `json:"unique_id"`
	ImagePath string `json:"image_path"`
}

func (h HandlerSet) GenerateBarcodes(c *gin.Context) {
	h.generateBatch(c, models.CodeKindBarcode, "Barcodes generated")
}

func (h HandlerSet) GenerateQRCodes(c *gin.Context) {
	h.generateBatch(c, models.CodeKindQR, "QR Codes generated")
}

func (h HandlerSet) generateBatch(c *gin.Context, kind models.CodeKind, message string) {
	input, ok := h.bindGenerate(c, kind)
	if !ok {
		return
	}

	result, err := h.generate.Generate(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	urls := make([]string, 0, len(result.Units))
	for _, unit := range result.Units {
		urls = append(urls, unit.URL)
	}

	body := gin.H{
		"isSuccess": true,
		"message":   message,
		"urls":      urls,
	}
	if result.BatchID != "" {
		body["batch_id"] = result.BatchID
	}
	c.JSON(http.StatusCreated, body)
}

func (h HandlerSet) GenerateBarcode(c *gin.Context) {
	h.generateSingle(c, models.CodeKindBarcode, "Barcode generated", "barcode_image_path")
}

func (h HandlerSet) GenerateQRCode(c *gin.Context) {
	h.generateSingle(c, models.CodeKindQR, "QR Code generated", "qr_code_image_path")
}

func (h HandlerSet) generateSingle(c *gin.Context, kind models.CodeKind, message, pathField string) {
	input, ok := h.bindGenerate(c, kind)
	if !ok {
		return
	}

	// The single-unit endpoints accept the batch request shape, but a
	// quantity other than one is a caller mistake, not something to
	// coerce silently.
	if input.Quantity != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"isSuccess": false, "message": "Invalid input"})
		return
	}

	result, err := h.generate.Generate(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	unit := result.Units[0]
	c.JSON(http.StatusCreated, gin.H{
		"isSuccess": true,
		"message":   message,
		"unique_id": unit.UniqueID,
		pathField:   unit.URL,
	})
}

func (h HandlerSet) bindGenerate(c *gin.Context, kind models.CodeKind) (service.GenerateInput, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"isSuccess": false, "message": "Invalid input"})
		return service.GenerateInput{}, false
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	return service.GenerateInput{
		Kind:     kind,
		Name:     req.Name,
		Quantity: quantity,
	}, true
}

type scanRequest struct {
	UniqueID string `json:"unique_id"`
}

func (h HandlerSet) ScanCode(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"isSuccess": false, "message": "Invalid input"})
		return
	}

	record, err := h.generate.Scan(c.Request.Context(), req.UniqueID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isSuccess":  true,
		"name":       record.Name,
		"image_path": record.ImagePath,
	})
}

func (h HandlerSet) ListCodes(c *gin.Context) {
	kind := models.CodeKind(c.DefaultQuery("kind", string(models.CodeKindBarcode)))

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	records, err := h.generate.ListRecent(c.Request.Context(), kind, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	codes := make([]codeResponse, 0, len(records))
	for _, record := range records {
		codes = append(codes, codeResponse{
			Name:      record.Name,
			UniqueID:  record.UniqueID,
			ImagePath: record.ImagePath,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"isSuccess": true,
		"codes":     codes,
	})
}

// respondError maps pipeline failures onto the wire contract: 400 for
// validation, 404 for unknown ids, 500 otherwise. Database detail never
// crosses the boundary.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"isSuccess": false, "message": "Invalid input"})
	case errors.Is(err, repository.ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"isSuccess": false, "message": "Product not found"})
	case errors.Is(err, service.ErrDatabase):
		h.log.Error().Err(err).Msg("database error")
		c.JSON(http.StatusInternalServerError, gin.H{"isSuccess": false, "message": "Database error"})
	case errors.Is(err, render.ErrInvalidPayload):
		h.log.Error().Err(err).Msg("render rejected payload")
		c.JSON(http.StatusInternalServerError, gin.H{"isSuccess": false, "message": "Code generation failed"})
	default:
		h.log.Error().Err(err).Msg("generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"isSuccess": false, "message": "Code generation failed"})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

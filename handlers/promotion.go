package handlers

import (
	"errors"
	"io"
	"net/http"

	"promoshow/media"
	"promoshow/middleware"
	"promoshow/models"
	"promoshow/promotions"
	"promoshow/utils"
	"promoshow/viewer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PromotionHandler struct {
	Repo *promotions.Repository
	// Viewers holds the caller's carousel, reloaded after a change.
	Viewers *viewer.Registry
	// Cache materializes images for the download endpoint.
	Cache        media.Cache
	DownloadName string
	Logger       *zap.Logger
}

func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	items, err := h.Repo.LoadAll(c.Request.Context())
	if err != nil {
		utils.OrNop(h.Logger).Error("failed to load promotions", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch promotions"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *PromotionHandler) find(c *gin.Context) (models.Promotion, bool) {
	id := c.Param("id")
	items, err := h.Repo.LoadAll(c.Request.Context())
	if err != nil {
		utils.OrNop(h.Logger).Error("failed to load promotions", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch promotions"})
		return models.Promotion{}, false
	}
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
	return models.Promotion{}, false
}

func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// DownloadImage sends the promotion image as a file attachment, the web
// flavour of saving an image.
func (h *PromotionHandler) DownloadImage(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	localPath, err := h.Cache.DownloadToLocal(c.Request.Context(), p.URL, "download_"+p.ID+".jpg")
	if err != nil {
		utils.OrNop(h.Logger).Error("failed to fetch image", zap.String("id", p.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch image"})
		return
	}

	c.FileAttachment(localPath, h.DownloadName)
}

func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	// Validate file upload (content type + size)
	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, utils.MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	if err := utils.ValidateImageBytes(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seat := h.Viewers.Seat(c.Request.Context(), viewerKey(c))
	promotion, err := seat.Screen.Add(c.Request.Context(), middleware.CurrentUser(c), data)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, promotion)
	case errors.Is(err, viewer.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, promotions.ErrUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
	case errors.Is(err, promotions.ErrWrite):
		// the image is stored but nothing points at it
		body := gin.H{"error": "Image uploaded but promotion record was not saved", "orphaned": true}
		var perr *promotions.Error
		if errors.As(err, &perr) {
			body["storage_path"] = perr.StoragePath
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promotion"})
	}
}

func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	seat := h.Viewers.Seat(c.Request.Context(), viewerKey(c))
	err := seat.Screen.Remove(c.Request.Context(), middleware.CurrentUser(c), p)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted"})
	case errors.Is(err, viewer.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, promotions.ErrDeleteDoc):
		// the image is already gone; the record is left for cleanup
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image deleted but promotion record remains", "orphaned": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promotion"})
	}
}

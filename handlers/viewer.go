package handlers

import (
	"context"
	"errors"
	"net/http"

	"promoshow/media"
	"promoshow/middleware"
	"promoshow/utils"
	"promoshow/viewer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewerHeader lets anonymous clients keep their own carousel when several
// share an address.
const ViewerHeader = "X-Viewer-ID"

// viewerKey identifies whose carousel a request drives.
func viewerKey(c *gin.Context) string {
	if u := middleware.CurrentUser(c); u != nil && u.ID != "" {
		return "user:" + u.ID
	}
	if id := c.GetHeader(ViewerHeader); id != "" && len(id) <= 64 {
		return "anon:" + id
	}
	return "ip:" + c.ClientIP()
}

// ViewerHandler exposes one carousel per viewer.
type ViewerHandler struct {
	Viewers *viewer.Registry
	Logger  *zap.Logger
}

func (h *ViewerHandler) seat(c *gin.Context) *viewer.Seat {
	return h.Viewers.Seat(c.Request.Context(), viewerKey(c))
}

func (h *ViewerHandler) state(c *gin.Context, seat *viewer.Seat) gin.H {
	actions := seat.Screen.Actions(middleware.CurrentUser(c))
	if actions == nil {
		actions = []viewer.Action{}
	}
	resp := gin.H{
		"viewer":  seat.Screen.Snapshot(),
		"actions": actions,
	}
	if seat.Feed != nil {
		resp["notices"] = seat.Feed.Recent()
	}
	return resp
}

func (h *ViewerHandler) GetViewer(c *gin.Context) {
	c.JSON(http.StatusOK, h.state(c, h.seat(c)))
}

func (h *ViewerHandler) Tap(c *gin.Context) {
	var req struct {
		X     float64 `json:"x" binding:"gte=0"`
		Width float64 `json:"width" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	seat := h.seat(c)
	seat.Screen.Tap(req.X, req.Width)
	c.JSON(http.StatusOK, h.state(c, seat))
}

func (h *ViewerHandler) Navigate(c *gin.Context) {
	var dir viewer.Direction
	switch c.Param("direction") {
	case "next":
		dir = viewer.Next
	case "prev":
		dir = viewer.Prev
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be next or prev"})
		return
	}
	seat := h.seat(c)
	seat.Screen.Advance(dir)
	c.JSON(http.StatusOK, h.state(c, seat))
}

func (h *ViewerHandler) Reload(c *gin.Context) {
	seat := h.seat(c)
	if err := seat.Screen.Load(c.Request.Context()); err != nil {
		utils.OrNop(h.Logger).Warn("reload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch promotions"})
		return
	}
	c.JSON(http.StatusOK, h.state(c, seat))
}

func (h *ViewerHandler) Share(c *gin.Context) {
	seat := h.seat(c)
	h.mediaAction(c, seat, "share", seat.Screen.Share)
}

func (h *ViewerHandler) Download(c *gin.Context) {
	seat := h.seat(c)
	h.mediaAction(c, seat, "download", seat.Screen.Download)
}

func (h *ViewerHandler) mediaAction(c *gin.Context, seat *viewer.Seat, name string, run func(context.Context) error) {
	err := run(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.state(c, seat))
	case errors.Is(err, viewer.ErrNoCurrent), errors.Is(err, media.ErrNoImage):
		c.JSON(http.StatusConflict, gin.H{"error": "No promotion on display"})
	case errors.Is(err, media.ErrDownloadInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "A download is already in progress"})
	case errors.Is(err, media.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Gallery permission denied"})
	default:
		utils.OrNop(h.Logger).Warn(name+" failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to " + name + " image"})
	}
}

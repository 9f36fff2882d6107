package handlers

import (
	"net/http"

	"promoshow/middleware"
	"promoshow/models"
	"promoshow/session"
	"promoshow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users      session.CredentialStore
	Collection string
	Logger     *zap.Logger
}

func userResponse(u models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"role":        u.Role,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"national_id": u.NationalID,
		"travel_date": u.TravelDate,
		"is_admin":    u.IsAdmin(),
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	user, err := session.Authenticate(c.Request.Context(), h.Users, h.Collection, req.Username, req.Password)
	if err != nil {
		utils.OrNop(h.Logger).Error("credential lookup failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify credentials"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	utils.OrNop(h.Logger).Info("login", zap.String("username", user.Username), zap.String("role", user.Role))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(*user),
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	claimed := middleware.CurrentUser(c)
	if claimed == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docs, err := h.Users.FindBy(c.Request.Context(), h.Collection, models.FieldUsername, claimed.Username)
	if err != nil {
		utils.OrNop(h.Logger).Error("profile lookup failed", zap.String("username", claimed.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	for _, doc := range docs {
		if doc.ID == claimed.ID {
			c.JSON(http.StatusOK, userResponse(models.UserFromDocument(doc)))
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/models"
)

func GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var user models.User
	if err := gormDB.Preload("Role").Where("id = ?", userID).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role.Name,
	})
}

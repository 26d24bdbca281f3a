package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nubngpi/resultscraper/models"
	"github.com/nubngpi/resultscraper/store"
)

// PostStudent returns a handler for POST /students/post, which registers the
// display name and image shown alongside a roll's results.
func PostStudent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StudentPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.StudentPostResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "name, img and roll are required",
					Details: err.Error(),
				},
			})
			return
		}

		rec := &models.StudentRecord{Roll: req.Roll, Name: req.Name, Img: req.Img}
		if err := st.Insert(c.Request.Context(), rec); err != nil {
			slog.Error("student insert failed", "roll", req.Roll, "error", err)
			c.JSON(http.StatusInternalServerError, models.StudentPostResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeStore,
					Message: "Failed to store student",
					Details: err.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusCreated, models.StudentPostResponse{
			Success: true,
			Student: rec,
		})
	}
}

package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockward/inventory-service/internal/apperr"
)

// Success writes the standard envelope: {"success": true, "data": ...}.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

func Paginated(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// Error maps the error taxonomy onto HTTP status codes.
func Error(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvariant, apperr.KindStateTransition:
		return http.StatusConflict
	case apperr.KindConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Page reads page/page_size query params with sane defaults.
func Page(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}

func BoolQuery(c *gin.Context, param string) bool {
	v, _ := strconv.ParseBool(c.Query(param))
	return v
}

func IntQuery(c *gin.Context, param string) (int, bool) {
	s := c.Query(param)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func StringQuery(c *gin.Context, param string) *string {
	s := c.Query(param)
	if s == "" {
		return nil
	}
	return &s
}

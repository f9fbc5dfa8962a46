package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/middleware"
	"github.com/NobreTrajes/os-control/internal/timezone"
)

// actorFromContext monta o ator de domínio a partir das claims que o
// AuthMiddleware deixou no contexto.
func actorFromContext(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID:     c.MustGet(middleware.ContextUserID).(uint),
		PersonID:   c.MustGet(middleware.ContextPersonID).(uint),
		PersonType: c.MustGet(middleware.ContextPersonType).(string),
	}
}

func requestIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextRequestID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// parseDate interpreta datas YYYY-MM-DD no fuso local.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, timezone.Location(""))
}

func parseDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

// pagination lê page/page_size da query, com os mesmos defaults em
// toda a API.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize <= 0 {
		pageSize = 50
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	totalPages := 1
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, totalPages
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], totalPages
}

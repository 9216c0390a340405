package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// GetPagination extracts the page and limit from the query parameters.
// It returns a Pagination struct using defaults if parsing fails. The limit
// is capped at maxLimit and the page so that its offset cannot overflow.
func GetPagination(c *fiber.Ctx, defaultPage, defaultLimit, maxLimit int) Pagination {
	pageStr := c.Query("page", strconv.Itoa(defaultPage))
	limitStr := c.Query("limit", strconv.Itoa(defaultLimit))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = defaultPage
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// Keep (page-1)*limit within int.
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.LastPage = int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Window returns the [start, end) bounds of the current page over n items.
func (p *Pagination) Window(n int) (int, int) {
	start := max(0, min(p.Offset, n))
	end := min(start+p.Limit, n)
	return start, end
}

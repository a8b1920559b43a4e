package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page    int
	PerPage int
	Offset  int
}

// ParsePagination reads page and per_page query params with sane defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := parseInt(c.Query("page", "1"), 1)
	perPage := parseInt(c.Query("per_page", "20"), 20)
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// Pages returns the number of pages needed for total items.
func (p Pagination) Pages(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(p.PerPage) - 1) / int64(p.PerPage)
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}

package web

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const DefaultPerPage = 5

type PageMeta struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// Paginate clamps page into range and returns the slice bounds [Start, End) for it.
func Paginate(total, page, perPage int) PageMeta {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return PageMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
}

// PageParam reads the "page" query parameter, defaulting to 1.
func PageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

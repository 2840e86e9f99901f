package web

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		total, page int
		want        PageMeta
	}{
		{
			name: "empty list", total: 0, page: 1,
			want: PageMeta{Page: 1, PerPage: 5, Total: 0, TotalPages: 1, Start: 0, End: 0, PrevPage: 0, NextPage: 2},
		},
		{
			name: "first of three", total: 12, page: 1,
			want: PageMeta{Page: 1, PerPage: 5, Total: 12, TotalPages: 3, Start: 0, End: 5, HasNext: true, PrevPage: 0, NextPage: 2},
		},
		{
			name: "last partial page", total: 12, page: 3,
			want: PageMeta{Page: 3, PerPage: 5, Total: 12, TotalPages: 3, Start: 10, End: 12, HasPrev: true, PrevPage: 2, NextPage: 4},
		},
		{
			name: "page past the end is clamped", total: 7, page: 9,
			want: PageMeta{Page: 2, PerPage: 5, Total: 7, TotalPages: 2, Start: 5, End: 7, HasPrev: true, PrevPage: 1, NextPage: 3},
		},
		{
			name: "page below one is clamped", total: 3, page: -2,
			want: PageMeta{Page: 1, PerPage: 5, Total: 3, TotalPages: 1, Start: 0, End: 3, PrevPage: 0, NextPage: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, tt.page, DefaultPerPage))
		})
	}
}

func TestPaginate_DefaultsPerPage(t *testing.T) {
	assert.Equal(t, DefaultPerPage, Paginate(10, 1, 0).PerPage)
}

func TestPageParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := map[string]int{
		"/my-bookings":         1,
		"/my-bookings?page=3":  3,
		"/my-bookings?page=0":  1,
		"/my-bookings?page=x":  1,
		"/my-bookings?page=-4": 1,
	}

	for target, want := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", target, nil)
		assert.Equal(t, want, PageParam(c), target)
	}
}

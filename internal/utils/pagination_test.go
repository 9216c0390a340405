package utils

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 50},
		{name: "explicit", query: "?page=3&limit=20", wantPage: 3, wantLimit: 20},
		{name: "invalid values", query: "?page=-2&limit=abc", wantPage: 1, wantLimit: 50},
		{name: "limit capped", query: "?limit=10000", wantPage: 1, wantLimit: 500},
		{name: "huge page capped", query: "?page=9223372036854775807&limit=500", wantPage: math.MaxInt / 500, wantLimit: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Pagination
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = GetPagination(c, 1, 50, 500)
				return nil
			})

			_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.GreaterOrEqual(t, got.Offset, 0)
		})
	}
}

func TestPagination_Window(t *testing.T) {
	tests := []struct {
		name               string
		p                  Pagination
		n                  int
		wantStart, wantEnd int
	}{
		{name: "first page", p: Pagination{Limit: 2, Offset: 0}, n: 5, wantStart: 0, wantEnd: 2},
		{name: "partial last page", p: Pagination{Limit: 2, Offset: 4}, n: 5, wantStart: 4, wantEnd: 5},
		{name: "past the end", p: Pagination{Limit: 2, Offset: 10}, n: 5, wantStart: 5, wantEnd: 5},
		{name: "negative offset", p: Pagination{Limit: 500, Offset: -500}, n: 5, wantStart: 0, wantEnd: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.p.Window(tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

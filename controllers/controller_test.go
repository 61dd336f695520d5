package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return ctx, rec
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query  string
		expect page
	}{
		{"", page{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", page{Page: 3, Limit: 10, Offset: 20}},
		{"?page=0&limit=-5", page{Page: 1, Limit: 20, Offset: 0}},
		{"?page=2&limit=500", page{Page: 2, Limit: 100, Offset: 100}},
	}
	for _, tt := range tests {
		ctx, _ := testContext("/dishes" + tt.query)
		assert.Equal(t, tt.expect, parsePage(ctx, 20), tt.query)
	}
}

func TestPageMetadata(t *testing.T) {
	meta := page{Page: 2, Limit: 10, Offset: 10}.metadata(25)
	assert.Equal(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPrevPage"])
}

func TestParseIDParam(t *testing.T) {
	ctx, rec := testContext("/dishes/abc")
	ctx.Params = gin.Params{{Key: "dishId", Value: "abc"}}

	_, ok := parseIDParam(ctx, "dishId")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ctx, _ = testContext("/dishes/12")
	ctx.Params = gin.Params{{Key: "dishId", Value: "12"}}
	id, ok := parseIDParam(ctx, "dishId")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("create: %w", &mysqldriver.MySQLError{Number: 1062})))
	assert.True(t, isDuplicateKey(fmt.Errorf("update: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, isDuplicateKey(errors.New("UNIQUE constraint failed: customers.email")))
	assert.False(t, isDuplicateKey(&mysqldriver.MySQLError{Number: 1146}))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestSortDirection(t *testing.T) {
	ctx, _ := testContext("/orders?sort=asc")
	assert.Equal(t, "asc", sortDirection(ctx))

	ctx, _ = testContext("/orders?sort=sideways")
	assert.Equal(t, "desc", sortDirection(ctx))
}

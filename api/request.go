package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

type CreateOrderRequest struct {
	Symbol string              `json:"symbol" binding:"required"`
	Type   string              `json:"type" binding:"required"`
	Side   string              `json:"side" binding:"required"`
	Amount decimal.Decimal     `json:"amount"`
	Price  decimal.NullDecimal `json:"price"`
}

type WithdrawRequest struct {
	Code    string          `json:"code" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address"`
	Tag     null.String     `json:"tag"`
}

// listQuery holds the optional since/limit pair shared by listing routes.
type listQuery struct {
	Since null.Int64
	Limit int
}

func parseListQuery(c *gin.Context) (listQuery, error) {
	var q listQuery

	if v := c.Query("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil || since < 0 {
			return listQuery{}, fmt.Errorf("since must be a non-negative epoch millisecond timestamp, got %q", v)
		}
		q.Since = null.Int64From(since)
	}

	limit, err := parseLimit(c)
	if err != nil {
		return listQuery{}, err
	}
	q.Limit = limit

	return q, nil
}

func parseLimit(c *gin.Context) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", v)
	}

	return limit, nil
}

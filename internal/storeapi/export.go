package storeapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/strandtech/storefront/internal/domain"
)

type productExportRow struct {
	ID        int64   `csv:"id"`
	Name      string  `csv:"product_name"`
	MakeModel string  `csv:"make_model"`
	Category  string  `csv:"category"`
	Price     float64 `csv:"price"`
	Quantity  int     `csv:"quantity"`
	UnitsSold int64   `csv:"units_sold"`
	UpdatedAt string  `csv:"updated_at"`
}

type orderExportRow struct {
	ID          int64  `csv:"id"`
	Username    string `csv:"username"`
	Email       string `csv:"email"`
	PhoneNumber string `csv:"phone_number"`
	Status      string `csv:"status"`
	ItemCount   int64  `csv:"item_count"`
	CreatedAt   string `csv:"created_at"`
}

func csvAttachment(c echo.Context, filename, body string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(body))
}

// exportProducts streams the whole catalog with cumulative sales as CSV.
func exportProducts(c echo.Context) error {
	db := GetDB(c).WithContext(c.Request().Context())

	var rows []struct {
		domain.Product
		Units int64
	}
	err := db.Table("products").
		Select("products.*, COALESCE(sales.units, 0) AS units").
		Joins("LEFT JOIN sales ON sales.product_id = products.id").
		Order("products.id").
		Scan(&rows).Error
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}

	out := make([]productExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, productExportRow{
			ID:        r.ID,
			Name:      r.Name,
			MakeModel: r.MakeModel,
			Category:  r.Category,
			Price:     r.Price,
			Quantity:  r.Quantity,
			UnitsSold: r.Units,
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		})
	}

	body, err := gocsv.MarshalString(&out)
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return csvAttachment(c, "products.csv", body)
}

// exportOrders streams order headers as CSV, optionally bounded by start and
// end query parameters. Timestamps are accepted in any common format.
func exportOrders(c echo.Context) error {
	start := time.Unix(0, 0)
	end := time.Now()
	if v := c.QueryParam("start"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return failMsg(c, http.StatusBadRequest, "Invalid start time")
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return failMsg(c, http.StatusBadRequest, "Invalid end time")
		}
		end = t
	}

	db := GetDB(c).WithContext(c.Request().Context())

	var rows []struct {
		domain.Order
		ItemCount int64
	}
	err := db.Table("orders").
		Select("orders.*, COALESCE(SUM(order_product.qty), 0) AS item_count").
		Joins("LEFT JOIN order_product ON order_product.order_id = orders.id").
		Where("orders.created_at BETWEEN ? AND ?", start, end).
		Group("orders.id").
		Order("orders.id DESC").
		Scan(&rows).Error
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}

	out := make([]orderExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderExportRow{
			ID:          r.ID,
			Username:    r.Username,
			Email:       r.Email,
			PhoneNumber: r.PhoneNumber,
			Status:      r.Status,
			ItemCount:   r.ItemCount,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}

	body, err := gocsv.MarshalString(&out)
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return csvAttachment(c, "orders.csv", body)
}

package storeapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/strandtech/storefront/internal/catalog"
)

// readFormFile pulls one uploaded file out of the multipart form. A missing
// file is reported through the error, the caller decides whether that is
// fatal.
func readFormFile(c echo.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}

func listProducts(c echo.Context) error {
	products, err := catalogService.ListAll(c.Request().Context())
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "Invalid product ID")
	}
	product, err := catalogService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			// The original surface answers 200 with no body for an
			// absent product; clients probe for emptiness.
			return c.NoContent(http.StatusOK)
		}
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, product)
}

func productsCount(c echo.Context) error {
	count, err := catalogService.Count(c.Request().Context())
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func categoryMetrics(c echo.Context) error {
	m, err := catalogService.CategoryMetrics(c.Request().Context())
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, m)
}

func createProduct(c echo.Context) error {
	fname, data, err := readFormFile(c, "file")
	if err != nil || len(data) == 0 {
		return failErr(c, http.StatusBadRequest, "No file uploaded")
	}

	quantity, err := cast.ToIntE(c.FormValue("quantity"))
	if err != nil {
		return failErr(c, http.StatusBadRequest, "Invalid quantity")
	}
	price, err := cast.ToFloat64E(c.FormValue("price"))
	if err != nil {
		return failErr(c, http.StatusBadRequest, "Invalid price")
	}

	product, put, err := catalogService.Create(c.Request().Context(), catalog.CreateInput{
		Name:        c.FormValue("name"),
		MakeModel:   c.FormValue("make_model"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("desc"),
		Quantity:    quantity,
		Price:       price,
		ImageName:   fname,
		ImageData:   data,
	})
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Upload failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"url":      put.URL,
		"pathname": put.Pathname,
		"name":     product.Name,
		"price":    product.Price,
	})
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return failErr(c, http.StatusBadRequest, "Invalid product ID")
	}

	params, err := c.FormParams()
	if err != nil {
		return failErr(c, http.StatusBadRequest, "Unable to parse form")
	}

	// A field counts as supplied when its form key is present, so zero and
	// empty string are legitimate updates.
	var patch catalog.ProductPatch
	if params.Has("name") {
		v := c.FormValue("name")
		patch.Name = &v
	}
	if params.Has("make_model") {
		v := c.FormValue("make_model")
		patch.MakeModel = &v
	}
	if params.Has("category") {
		v := c.FormValue("category")
		patch.Category = &v
	}
	if params.Has("desc") {
		v := c.FormValue("desc")
		patch.Description = &v
	}
	if params.Has("quantity") {
		v, err := cast.ToIntE(c.FormValue("quantity"))
		if err != nil {
			return failErr(c, http.StatusBadRequest, "Invalid quantity")
		}
		patch.Quantity = &v
	}
	if params.Has("price") {
		v, err := cast.ToFloat64E(c.FormValue("price"))
		if err != nil {
			return failErr(c, http.StatusBadRequest, "Invalid price")
		}
		patch.Price = &v
	}

	fname, data, _ := readFormFile(c, "file")

	product, err := catalogService.PartialUpdate(c.Request().Context(), id, patch, fname, data)
	switch {
	case errors.Is(err, catalog.ErrNoFields):
		return failErr(c, http.StatusBadRequest, "No fields to update")
	case errors.Is(err, catalog.ErrNotFound):
		return failErr(c, http.StatusNotFound, "Product not found")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Update failed",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"product": product,
	})
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return failErr(c, http.StatusBadRequest, "Invalid product ID")
	}
	if err := catalogService.DeleteByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return failErr(c, http.StatusNotFound, "Product not found")
		}
		return failMsg(c, http.StatusInternalServerError, "Internal Error!")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully Deleted!"})
}

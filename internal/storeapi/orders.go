package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/strandtech/storefront/internal/ordering"
)

type createOrderRequest struct {
	PostData struct {
		Username string `json:"username"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
	} `json:"postData"`
}

type attachItemsRequest struct {
	Items []struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"items"`
}

func createOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "Order Creation Error")
	}
	id, err := orderService.CreateOrder(c.Request().Context(),
		req.PostData.Username, req.PostData.Phone, req.PostData.Email)
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Order Creation Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

func attachOrderItems(c echo.Context) error {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "Invalid order ID")
	}
	var req attachItemsRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "Failed to add order items")
	}

	items := make([]ordering.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ordering.LineItemInput{ProductID: item.ID, Qty: item.Quantity})
	}

	if err := orderService.AttachLineItems(c.Request().Context(), orderID, items); err != nil {
		if errors.Is(err, ordering.ErrEmptyItems) {
			return failMsg(c, http.StatusBadRequest, "No items provided")
		}
		return failMsg(c, http.StatusInternalServerError, "Failed to add order items")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order Placed Successfully"})
}

func listOrders(c echo.Context) error {
	orders, err := orderService.ListWithItems(c.Request().Context())
	if err != nil {
		return failMsg(c, http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func processOrder(c echo.Context) error {
	orderID, err := parseIDParam(c, "orderId")
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "Invalid order ID")
	}
	processed, err := orderService.ProcessOrder(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, ordering.ErrNoItems) {
			return failMsg(c, http.StatusNotFound, "No items found for this order")
		}
		if errors.Is(err, ordering.ErrAlreadyProcessed) {
			return failMsg(c, http.StatusBadRequest, "Order already processed")
		}
		return failMsg(c, http.StatusInternalServerError, "Failed to process order")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Order processed successfully",
		"itemsProcessed": processed,
	})
}

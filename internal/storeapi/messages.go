package storeapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/strandtech/storefront/internal/domain"
)

type postMessageRequest struct {
	Blabidi struct {
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Message  string `json:"message"`
	} `json:"blabidi"`
}

func listMessages(c echo.Context) error {
	var messages []domain.Message
	if err := GetDB(c).WithContext(c.Request().Context()).Find(&messages).Error; err != nil {
		return failMsg(c, http.StatusInternalServerError, "Internal Error")
	}
	return c.JSON(http.StatusOK, messages)
}

func postMessage(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusInternalServerError, "Your Message was not posted due to an internal server Error")
	}

	msg := domain.Message{
		Fullname:  req.Blabidi.Fullname,
		Email:     req.Blabidi.Email,
		Message:   req.Blabidi.Message,
		CreatedAt: time.Now(),
	}
	if err := GetDB(c).WithContext(c.Request().Context()).Create(&msg).Error; err != nil {
		return failMsg(c, http.StatusInternalServerError, "Your Message was not posted due to an internal server Error")
	}

	// Operator notification happens off the request path; a delivery
	// failure never fails the submission.
	if notifier != nil && notifier.Enabled() {
		notify := func() {
			if err := notifier.SendMessageNotify(&msg); err != nil {
				zap.L().Warn("contact message notify failed", zap.Int64("message_id", msg.ID), zap.Error(err))
			}
		}
		if tasks == nil || tasks.Submit(notify) != nil {
			go notify()
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Your message was sent Successfully!"})
}

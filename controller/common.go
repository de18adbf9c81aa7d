package controller

import (
	"errors"
	"net/http"

	"yanalysis/client"
	"yanalysis/customerrors"
	"yanalysis/model"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gin-gonic/gin"
)

// NewResponse creates a success response with the given data and message.
func NewResponse(data any, message string) *model.DefaultResponse {
	return &model.DefaultResponse{
		Body: model.Response{
			Success: true,
			Message: message,
			Data:    data,
		},
	}
}

// NewErrorResponse creates an error envelope for handlers that report a
// failure with a 200 status.
func NewErrorResponse(err string) *model.DefaultResponse {
	return &model.DefaultResponse{
		Body: model.Response{
			Success: false,
			Error:   err,
		},
	}
}

// statusFor maps a service error to an HTTP status. Validation failures are
// the caller's fault, backend failures are reported as a bad gateway.
func statusFor(err error) int {
	var httpErr *client.HTTPError
	switch {
	case customerrors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, customerrors.ErrNoPortfolio), errors.Is(err, customerrors.ErrEmptyIndicators):
		return http.StatusNotFound
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, NewResponse(data, message).Body)
}

// respondError writes the envelope for err. The backend message wins over
// fallback when there is one.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	var msg string
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		msg = err.Error()
	} else {
		msg = customerrors.UserMessage(err, fallback)
	}
	c.JSON(status, NewErrorResponse(msg).Body)
}

// humaError is respondError for huma handlers.
func humaError(err error, fallback string) error {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return huma.Error400BadRequest(err.Error())
	case http.StatusNotFound:
		return huma.Error404NotFound(err.Error())
	case http.StatusBadGateway:
		return huma.Error502BadGateway(customerrors.UserMessage(err, fallback))
	default:
		return huma.Error500InternalServerError(fallback)
	}
}

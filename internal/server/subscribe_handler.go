package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/techsaints/landing/internal/server/middleware"
	"github.com/techsaints/landing/internal/subscription"
	"log/slog"
	"net/http"
)

const (
	subscribedMessage        = "Successfully subscribed! Check your email for a welcome message."
	alreadySubscribedMessage = "Welcome back! You're already subscribed to our newsletter."
	failedToSubscribeMessage = "Failed to subscribe"

	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
	outcomeError   = "error"
)

type (
	subscribeHandlerServicer interface {
		Subscribe(ctx context.Context, email string) (subscription.Outcome, error)
	}
	subscriptionRecorder interface {
		IncSubscription(outcome string)
	}
	subscribeRequestDTO struct {
		Email string `json:"email"`
	}
	subscribeResponseDTO struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

var errNullBody = errors.New("request body is null")

// decodeSubscribeRequest rejects trailing data after the JSON value and a null body.
func decodeSubscribeRequest(body []byte) (subscribeRequestDTO, error) {
	var reqDTO subscribeRequestDTO

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return reqDTO, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return reqDTO, errNullBody
	}
	if err := json.Unmarshal(raw, &reqDTO); err != nil {
		return reqDTO, err
	}

	return reqDTO, nil
}

func errorResponse(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"error": message})
}

func SubscribeHandler(s subscribeHandlerServicer, recorder subscriptionRecorder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logger := slog.With(
			"handler", "subscribe",
			"request_id", ctx.GetString(middleware.RequestIDContextValueKey),
		)

		body, err := ctx.GetRawData()
		if err != nil {
			logger.Error("Subscription error: could not read the request body", "error", err)
			recorder.IncSubscription(outcomeError)
			errorResponse(ctx, http.StatusInternalServerError, middleware.InternalServerErrorMessage)
			return
		}

		reqDTO, err := decodeSubscribeRequest(body)
		if err != nil {
			logger.Error("Subscription error: could not decode the request body", "error", err)
			recorder.IncSubscription(outcomeError)
			errorResponse(ctx, http.StatusInternalServerError, middleware.InternalServerErrorMessage)
			return
		}

		outcome, err := s.Subscribe(ctx.Request.Context(), reqDTO.Email)
		if err != nil {
			var validationErr *subscription.ValidationError
			switch {
			case errors.As(err, &validationErr):
				recorder.IncSubscription(outcomeInvalid)
				errorResponse(ctx, http.StatusBadRequest, validationErr.Reason)
			case errors.Is(err, subscription.ErrUpstream):
				recorder.IncSubscription(outcomeFailed)
				errorResponse(ctx, http.StatusInternalServerError, failedToSubscribeMessage)
			default:
				logger.Error("Subscription error", "error", err)
				recorder.IncSubscription(outcomeError)
				errorResponse(ctx, http.StatusInternalServerError, middleware.InternalServerErrorMessage)
			}
			return
		}

		recorder.IncSubscription(outcome.String())

		message := subscribedMessage
		if outcome == subscription.AlreadySubscribed {
			message = alreadySubscribedMessage
		}

		ctx.JSON(http.StatusOK, subscribeResponseDTO{Success: true, Message: message})
	}
}

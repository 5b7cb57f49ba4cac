package handlers

import (
	"errors"
	"net/http"

	"ukbus/internal/apperrors"
	"ukbus/internal/models"
	"ukbus/internal/utils"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps the error taxonomy onto HTTP at the request
// boundary. Anything unrecognized is an internal error.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrAmountBelowMinimum):
		utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, apperrors.ErrAuthentication),
		errors.Is(err, apperrors.ErrInvalidSignature),
		errors.Is(err, apperrors.ErrStaleWebhook):
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, apperrors.ErrAuthorization):
		utils.ForbiddenResponse(c)
	case errors.Is(err, apperrors.ErrStudentNotFound):
		utils.NotFoundResponse(c, "Student")
	case errors.Is(err, apperrors.ErrDriverNotFound):
		utils.NotFoundResponse(c, "Driver")
	case errors.Is(err, apperrors.ErrAdminNotFound):
		utils.NotFoundResponse(c, "Admin")
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		utils.NotFoundResponse(c, "Transaction")
	case errors.Is(err, apperrors.ErrPhoneAlreadyUsed):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, apperrors.ErrPaymentInitiation):
		utils.ErrorResponse(c, http.StatusBadGateway, "PAYMENT_INITIATION_FAILED", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}

// networkFromString resolves the optional network field of a recharge
// request. Unset means the provider picks the operator from the phone.
func networkFromString(s string) models.PaymentNetwork {
	switch s {
	case string(models.NetworkFlooz):
		return models.NetworkFlooz
	case string(models.NetworkTMoney):
		return models.NetworkTMoney
	default:
		return models.NetworkAuto
	}
}

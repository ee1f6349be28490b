package server

import (
	"errors"
	"net/http"
	"time"

	clientdomain "github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

// apiError is the wire form of a failure.
type apiError struct {
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *apiError) Error() string { return e.Message }

func newAPIError(status int, message string) *apiError {
	return &apiError{Message: message, Status: status}
}

func invalidRequestError() *apiError {
	return newAPIError(http.StatusBadRequest, "invalid request body")
}

// statusByError maps domain sentinels onto HTTP statuses. Validation
// and referential failures are 400/404/422, state rules 409.
var statusByError = map[error]int{
	clientdomain.ErrInvalidID:    http.StatusBadRequest,
	clientdomain.ErrInvalidName:  http.StatusBadRequest,
	clientdomain.ErrInvalidEmail: http.StatusBadRequest,
	clientdomain.ErrEmailTaken:   http.StatusConflict,
	clientdomain.ErrNotFound:     http.StatusNotFound,
	clientdomain.ErrClientInUse:  http.StatusConflict,

	invoicedomain.ErrInvalidID:            http.StatusBadRequest,
	invoicedomain.ErrNotFound:             http.StatusNotFound,
	invoicedomain.ErrClientNotFound:       http.StatusUnprocessableEntity,
	invoicedomain.ErrInvalidItems:         http.StatusBadRequest,
	invoicedomain.ErrInvalidDate:          http.StatusBadRequest,
	invoicedomain.ErrDueBeforeIssue:       http.StatusBadRequest,
	invoicedomain.ErrInvalidCurrency:      http.StatusBadRequest,
	invoicedomain.ErrInvalidStatus:        http.StatusBadRequest,
	invoicedomain.ErrNumberTaken:          http.StatusConflict,
	invoicedomain.ErrNotDraft:             http.StatusConflict,
	invoicedomain.ErrIllegalTransition:    http.StatusConflict,
	invoicedomain.ErrHasCompletedPayments: http.StatusConflict,
	invoicedomain.ErrConflict:             http.StatusConflict,

	paymentdomain.ErrInvalidID:         http.StatusBadRequest,
	paymentdomain.ErrNotFound:          http.StatusNotFound,
	paymentdomain.ErrInvalidAmount:     http.StatusBadRequest,
	paymentdomain.ErrInvalidMethod:     http.StatusBadRequest,
	paymentdomain.ErrInvalidStatus:     http.StatusBadRequest,
	paymentdomain.ErrInvalidDate:       http.StatusBadRequest,
	paymentdomain.ErrInvoiceNotFound:   http.StatusUnprocessableEntity,
	paymentdomain.ErrInvoiceNotPayable: http.StatusConflict,
	paymentdomain.ErrOverpayment:       http.StatusUnprocessableEntity,
	paymentdomain.ErrIllegalTransition: http.StatusConflict,
}

// AbortWithError translates any error into the error envelope and
// aborts the request.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	apiErr.Timestamp = time.Now().UTC()
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

func toAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var fieldErr *invoicedomain.FieldError
	if errors.As(err, &fieldErr) {
		out := newAPIError(http.StatusBadRequest, fieldErr.Error())
		out.Details = map[string]any{
			"field": fieldErr.Field,
			"code":  fieldErr.Code,
		}
		if fieldErr.Expected != "" {
			out.Details["expected"] = fieldErr.Expected
		}
		if fieldErr.Actual != "" {
			out.Details["actual"] = fieldErr.Actual
		}
		return out
	}

	for sentinel, status := range statusByError {
		if errors.Is(err, sentinel) {
			return newAPIError(status, sentinel.Error())
		}
	}

	return newAPIError(http.StatusInternalServerError, "internal server error")
}

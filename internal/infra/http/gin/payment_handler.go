package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	paymentsapp "rentbook/internal/app/handlers/payments"
	"rentbook/internal/app/queries"
	domainpayment "rentbook/internal/domain/payment"
)

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type makePaymentRequest struct {
	PaymentID     string  `json:"payment_id"`
	Amount        decimal `json:"amount" binding:"required"`
	Currency      string  `json:"currency"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transaction_id"`
}

func (h *PaymentHandler) Make(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req makePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := domainpayment.ParseMethod(req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := paymentsapp.MakePaymentCommand{
		PaymentID:       req.PaymentID,
		BookingID:       c.Param("id"),
		Amount:          string(req.Amount),
		Currency:        req.Currency,
		Method:          method,
		TransactionID:   req.TransactionID,
		Username:        user.Username,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentsapp.MakePaymentCommand, *dto.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	result, err := queries.Ask[paymentsapp.GetPaymentQuery, dto.Payment](c.Request.Context(), h.Queries,
		paymentsapp.GetPaymentQuery{BookingID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updatePaymentRequest struct {
	Status        *string `json:"status"`
	Method        *string `json:"method"`
	TransactionID *string `json:"transaction_id"`
}

func (h *PaymentHandler) Update(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd := paymentsapp.UpdatePaymentCommand{BookingID: c.Param("id"), TransactionID: req.TransactionID, Username: user.Username}
	if req.Status != nil {
		status, err := domainpayment.ParseStatus(*req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		cmd.Status = &status
	}
	if req.Method != nil {
		method, err := domainpayment.ParseMethod(*req.Method)
		if err != nil {
			writeError(c, err)
			return
		}
		cmd.Method = &method
	}
	result, err := commands.Dispatch[paymentsapp.UpdatePaymentCommand, dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req paymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := domainpayment.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := paymentsapp.UpdatePaymentStatusCommand{BookingID: c.Param("id"), Status: status, Username: user.Username}
	result, err := commands.Dispatch[paymentsapp.UpdatePaymentStatusCommand, dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type paymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

func (h *PaymentHandler) UpdateMethod(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req paymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := domainpayment.ParseMethod(req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := paymentsapp.UpdatePaymentMethodCommand{BookingID: c.Param("id"), Method: method, Username: user.Username}
	result, err := commands.Dispatch[paymentsapp.UpdatePaymentMethodCommand, dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[paymentsapp.DeletePaymentCommand, dto.Message](c.Request.Context(), h.Commands,
		paymentsapp.DeletePaymentCommand{BookingID: c.Param("id"), Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) IsOwner(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[paymentsapp.IsPaymentOwnerQuery, dto.Ownership](c.Request.Context(), h.Queries,
		paymentsapp.IsPaymentOwnerQuery{PaymentID: c.Param("id"), Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) TotalForProperty(c *gin.Context) {
	result, err := queries.Ask[paymentsapp.TotalPaidForPropertyQuery, dto.PaymentTotal](c.Request.Context(), h.Queries,
		paymentsapp.TotalPaidForPropertyQuery{PropertyID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) TotalMine(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := queries.Ask[paymentsapp.TotalPaidByUserQuery, dto.PaymentTotal](c.Request.Context(), h.Queries,
		paymentsapp.TotalPaidByUserQuery{Username: user.Username})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

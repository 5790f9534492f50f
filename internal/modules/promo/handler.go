package promo

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/pkg/response"
	"copyprocloud/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/promo/validate", h.Validate)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/promo", h.Create)
	rg.GET("/promo", h.List)
	rg.PATCH("/promo/:code/active", h.SetActive)
}

func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	v, err := h.service.Validate(c.Request.Context(), req.Code, req.OrderAmount)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	p := &domain.PromoCode{
		Code:           req.Code,
		DiscountType:   domain.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		Active:         true,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
	}
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"promo_code": p})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	codes, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list promo codes")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promo_codes": codes})
}

func (h *Handler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.SetActive(c.Request.Context(), c.Param("code"), req.Active)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promo_code": p})
}

func writeServiceError(c *gin.Context, err error) {
	switch err {
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, "PROMO_NOT_FOUND", "Promo code not found")
	case ErrInactive:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_INACTIVE", "Promo code is inactive")
	case ErrNotStarted:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_NOT_STARTED", "Promo code is not valid yet")
	case ErrExpired:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_EXPIRED", "Promo code has expired")
	case ErrExhausted:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_EXHAUSTED", "Promo code usage limit reached")
	case ErrBelowMinAmount:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_MIN_AMOUNT", "Order amount is below the promo code minimum")
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid promo code data")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

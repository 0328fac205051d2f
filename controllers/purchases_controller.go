package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

type PurchasesController struct {
	purchases *services.PurchaseService
	log       *zap.Logger
}

func NewPurchasesController(purchases *services.PurchaseService, log *zap.Logger) *PurchasesController {
	return &PurchasesController{purchases: purchases, log: log}
}

// POST /api/purchases
func (h *PurchasesController) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.PurchaseDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		purchase, err := h.purchases.Purchase(c.Request.Context(), middleware.CurrentUser(c), body)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.Created(c, "Course purchased successfully", gin.H{"purchase": purchase})
	}
}

// GET /api/purchases/my
func (h *PurchasesController) Mine() gin.HandlerFunc {
	return func(c *gin.Context) {
		purchases, err := h.purchases.ListForUser(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", gin.H{"purchases": purchases})
	}
}

// GET /api/purchases
func (h *PurchasesController) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := pageParams(c, h.log)
		if !ok {
			return
		}
		result, err := h.purchases.ListAll(c.Request.Context(), middleware.CurrentUser(c), page)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", result)
	}
}

// GET /api/purchases/:id
func (h *PurchasesController) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		purchase, err := h.purchases.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", gin.H{"purchase": purchase})
	}
}

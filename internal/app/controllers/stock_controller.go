package controllers

import (
	"net/http"
	"time"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"
	"bloodbridge-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StockController serves blood stock queries and admin adjustments
type StockController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewStockController creates a new stock controller
func NewStockController(ctx *gin.Context, container *container.ServiceContainer) *StockController {
	return &StockController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetStocks returns the current stock table. The public endpoint reads the
// Redis snapshot first and falls back to the database.
// @Summary      Blood stock levels
// @Tags         Stock
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /stocks [get]
func (c *StockController) GetStocks() {
	redisService := c.Container.GetService("redis").(services.InterfaceRedisService)
	if stocks, err := redisService.GetStockSnapshot(); err == nil && len(stocks) > 0 {
		response.Success(c.Ctx, stocks)
		return
	}

	stockService := c.Container.GetService("stock").(services.InterfaceStockService)
	stocks, err := stockService.GetAllStocks()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list stock: "+err.Error(), nil)
		return
	}

	if err := redisService.CacheStockSnapshot(stocks, 30*time.Second); err != nil {
		logger.Warning("failed to cache stock snapshot: %v", err)
	}

	response.Success(c.Ctx, stocks)
}

// GetStock returns the stock row for one blood group
// @Summary      Stock for one group
// @Tags         Stock
// @Produce      json
// @Param        group path string true "Blood group" example:"O+"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /stocks/{group} [get]
func (c *StockController) GetStock() {
	group := c.Ctx.Param("group")

	stockService := c.Container.GetService("stock").(services.InterfaceStockService)
	stock, err := stockService.GetStockByGroup(group)
	if err != nil {
		if err.Error() == "invalid blood group" {
			response.FailWithMessage(c.Ctx, code.ErrInvalidBloodGroup, err.Error(), nil)
			return
		}
		response.NotFound(c.Ctx, "stock row not found")
		return
	}

	response.Success(c.Ctx, stock)
}

// AdjustStockRequest is the manual stock correction payload
type AdjustStockRequest struct {
	BloodGroup string `json:"blood_group" binding:"required" example:"A+"`
	Delta      int    `json:"delta" binding:"required" example:"200"`
	Detail     string `json:"detail" example:"received shipment from partner bank"`
}

// AdjustStock applies a manual admin correction to one blood group
// @Summary      Adjust stock
// @Tags         Stock
// @Accept       json
// @Produce      json
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /stocks/adjust [post]
// @Security     BearerAuth
func (c *StockController) AdjustStock() {
	adminID := middleware.CurrentUserID(c.Ctx)

	var req AdjustStockRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	stockService := c.Container.GetService("stock").(services.InterfaceStockService)
	stock, err := stockService.AdjustStock(adminID, req.BloodGroup, req.Delta, req.Detail)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStockInsufficient, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, stock)
}

// HandleStockFunc returns a gin handler dispatching to the stock controller
func HandleStockFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewStockController(ctx, container)

		switch method {
		case "getStocks":
			controller.GetStocks()
		case "getStock":
			controller.GetStock()
		case "adjustStock":
			controller.AdjustStock()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}

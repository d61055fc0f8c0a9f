package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderUC domain.OrderUsecase
}

func NewOrderHandler(protected *gin.RouterGroup, guard *middleware.Guard, orderUC domain.OrderUsecase) {
	handler := &OrderHandler{orderUC: orderUC}

	orders := protected.Group("/orders")
	{
		orders.GET("", handler.List)
		orders.GET("/export", guard.Require("orders.export", "Download order reports"), handler.Export)
		orders.GET("/:id", handler.Get)
		orders.POST("", guard.Require("orders.create", "Create service orders"), handler.Create)
		orders.PATCH("/:id/status", guard.Require("orders.update_status", "Schedule, start, complete or cancel orders"), handler.ChangeStatus)
	}
}

// List godoc
// @Summary      List service orders
// @Description  Providers see orders assigned to them; companies see their own orders
// @Tags         orders
// @Produce      json
// @Param        page          query     int     false  "Page"
// @Param        limit         query     int     false  "Page size"
// @Param        company_id    query     int     false  "Client company"
// @Param        provider_id   query     int     false  "Provider"
// @Param        candidate_id  query     int     false  "Candidate"
// @Param        status        query     string  false  "Status"
// @Param        from          query     string  false  "Created from (YYYY-MM-DD)"
// @Param        to            query     string  false  "Created until, inclusive (YYYY-MM-DD)"
// @Success      200           {object}  response.Response{data=response.Page}
// @Router       /orders [get]
// @Security     BearerAuth
func (h *OrderHandler) List(c *gin.Context) {
	var f domain.OrderFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.orderUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Orders retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a service order with its items
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  response.Response{data=domain.ServiceOrder}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
// @Security     BearerAuth
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved", order)
}

// Create godoc
// @Summary      Create a service order
// @Description  Prices are copied from the catalog; the provider is notified by email
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      domain.OrderInput  true  "Order"
// @Success      201   {object}  response.Response{data=domain.ServiceOrder}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /orders [post]
// @Security     BearerAuth
func (h *OrderHandler) Create(c *gin.Context) {
	var req domain.OrderInput
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Order created", order)
}

// ChangeStatus godoc
// @Summary      Move an order through its lifecycle
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Order ID"
// @Param        body  body      domain.OrderStatusInput  true  "New status"
// @Success      200   {object}  response.Response{data=domain.ServiceOrder}
// @Failure      409   {object}  response.Response
// @Router       /orders/{id}/status [patch]
// @Security     BearerAuth
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.OrderStatusInput
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderUC.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Order status updated", order)
}

// Export godoc
// @Summary      Export service orders
// @Tags         orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format  query     string  false  "xlsx (default) or csv"
// @Param        status  query     string  false  "Status"
// @Param        from    query     string  false  "Created from (YYYY-MM-DD)"
// @Param        to      query     string  false  "Created until (YYYY-MM-DD)"
// @Success      200     {file}    file
// @Failure      400     {object}  response.Response
// @Router       /orders/export [get]
// @Security     BearerAuth
func (h *OrderHandler) Export(c *gin.Context) {
	var f domain.OrderFilter
	if !bindQuery(c, &f) {
		return
	}
	file, err := h.orderUC.Export(c.Request.Context(), f, c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}
	sendFile(c, file)
}

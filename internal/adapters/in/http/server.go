// Package http exposes the fulfillment-sync REST surface and the WebSocket
// endpoint clients subscribe to. Handlers are thin: bind, build a command or
// query, invoke the handler, map the error.
package http

import (
	"errors"
	"net/http"

	"warehouse/internal/adapters/in/ws"
	"warehouse/internal/adapters/out/postgres/orderrepo"
	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"
	"warehouse/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler  commands.CreateOrderCommandHandler
	claimOrderHandler   commands.ClaimOrderCommandHandler
	recordPickHandler   commands.RecordPickCommandHandler
	completePickHandler commands.CompletePickCommandHandler
	skipPickHandler     commands.SkipPickCommandHandler
	cancelOrderHandler  commands.CancelOrderCommandHandler

	// Query handlers
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler
	getZoneSummaryHandler  queries.GetZoneSummaryQueryHandler

	hub      *ws.Hub
	ready    func() bool
	upgrader websocket.Upgrader
}

// NewServer creates the HTTP server. The ready callback reports whether the
// process is still accepting traffic; it returns false once shutdown begins.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	claimOrderHandler commands.ClaimOrderCommandHandler,
	recordPickHandler commands.RecordPickCommandHandler,
	completePickHandler commands.CompletePickCommandHandler,
	skipPickHandler commands.SkipPickCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getZoneSummaryHandler queries.GetZoneSummaryQueryHandler,
	hub *ws.Hub,
	ready func() bool,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		claimOrderHandler:      claimOrderHandler,
		recordPickHandler:      recordPickHandler,
		completePickHandler:    completePickHandler,
		skipPickHandler:        skipPickHandler,
		cancelOrderHandler:     cancelOrderHandler,
		getActiveOrdersHandler: getActiveOrdersHandler,
		getZoneSummaryHandler:  getZoneSummaryHandler,
		hub:                    hub,
		ready:                  ready,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts all endpoints on the echo instance. The drain
// middleware must already be installed on the api group by the caller.
func (s *Server) RegisterRoutes(e *echo.Echo, middleware ...echo.MiddlewareFunc) {
	e.GET("/health", s.Health)
	e.GET("/readyz", s.Ready)
	e.GET("/ws", s.Subscribe)

	api := e.Group("/api/v1", middleware...)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetActiveOrders)
	api.GET("/zones/summary", s.GetZoneSummary)
	api.POST("/orders/:orderId/claim", s.ClaimOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/tasks/:taskId/pick", s.RecordPick)
	api.POST("/orders/:orderId/tasks/:taskId/complete", s.CompletePick)
	api.POST("/orders/:orderId/tasks/:taskId/skip", s.SkipPick)
}

// Health handles GET /health - process liveness.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz - readiness for traffic. Returns 503 once the
// shutdown sequence has begun so the load balancer stops routing before
// draining starts in earnest.
func (s *Server) Ready(ctx echo.Context) error {
	if !s.ready() {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Subscribe handles GET /ws - upgrades the connection and registers it with
// the broadcast hub.
func (s *Server) Subscribe(ctx echo.Context) error {
	conn, err := s.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	s.hub.Register(conn)
	return nil
}

// CreateOrder handles POST /api/v1/orders - registers an incoming order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	lines := make([]commands.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, commands.OrderLine{
			SKU:         line.SKU,
			BinLocation: line.BinLocation,
			ZoneID:      line.ZoneID,
			Quantity:    line.Quantity,
		})
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, lines)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{OrderID: orderID.String()})
}

// ClaimOrder handles POST /api/v1/orders/:orderId/claim.
func (s *Server) ClaimOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req ClaimOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	pickerID, err := kernel.UUIDFromString(req.PickerID)
	if err != nil {
		return badRequest(ctx, "Invalid picker id")
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, pickerID, req.PickerName)
	if err != nil {
		return badRequest(ctx, "Invalid claim data: "+err.Error())
	}

	if err = s.claimOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordPick handles POST /api/v1/orders/:orderId/tasks/:taskId/pick.
func (s *Server) RecordPick(ctx echo.Context) error {
	orderID, taskID, err := taskParams(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req RecordPickRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	picked, err := kernel.NewQuantity(req.PickedQuantity)
	if err != nil {
		return badRequest(ctx, "Invalid picked quantity: "+err.Error())
	}

	cmd, err := commands.NewRecordPickCommand(orderID, taskID, picked)
	if err != nil {
		return badRequest(ctx, "Invalid pick data: "+err.Error())
	}

	if err = s.recordPickHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompletePick handles POST /api/v1/orders/:orderId/tasks/:taskId/complete.
func (s *Server) CompletePick(ctx echo.Context) error {
	orderID, taskID, err := taskParams(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewCompletePickCommand(orderID, taskID)
	if err != nil {
		return badRequest(ctx, "Invalid completion data: "+err.Error())
	}

	if err = s.completePickHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SkipPick handles POST /api/v1/orders/:orderId/tasks/:taskId/skip.
func (s *Server) SkipPick(ctx echo.Context) error {
	orderID, taskID, err := taskParams(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewSkipPickCommand(orderID, taskID)
	if err != nil {
		return badRequest(ctx, "Invalid skip data: "+err.Error())
	}

	if err = s.skipPickHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req CancelOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation data: "+err.Error())
	}

	if err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	response := make([]ActiveOrder, len(orders))
	for i, o := range orders {
		response[i] = ActiveOrder{
			ID:        o.ID.String(),
			Status:    o.Status,
			Progress:  o.Progress,
			PickerID:  o.PickerID,
			TaskCount: o.TaskCount,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetZoneSummary handles GET /api/v1/zones/summary.
func (s *Server) GetZoneSummary(ctx echo.Context) error {
	query := queries.NewGetZoneSummaryQuery()

	zones, err := s.getZoneSummaryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve zone summary",
		})
	}

	response := make([]ZoneSummary, len(zones))
	for i, zone := range zones {
		response[i] = ZoneSummary{
			ZoneID:      zone.ZoneID,
			TaskCount:   zone.TaskCount,
			PickerCount: zone.PickerCount,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func taskParams(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid order id")
	}

	taskID, err := kernel.UUIDFromString(ctx.Param("taskId"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid task id")
	}

	return orderID, taskID, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// mapCommandError translates domain errors into HTTP statuses: missing
// aggregates are 404, duplicate creation is 409, invalid values and illegal
// transitions are 400, anything else is 500.
func mapCommandError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound), errors.Is(err, order.ErrTaskNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, orderrepo.ErrOrderAlreadyExists):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

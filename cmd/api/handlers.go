package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/inventory-lifecycle/internal/application"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/middleware"
)

// Stock item handlers

func createStockItemHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			SKU            string     `json:"sku" binding:"required,sku"`
			ProductName    string     `json:"productName" binding:"required,safe_string"`
			BatchNumber    string     `json:"batchNumber" binding:"omitempty,batch_number"`
			ConsignmentID  string     `json:"consignmentId"`
			Quantity       int        `json:"quantity" binding:"required,gt=0"`
			ExpirationDate *time.Time `json:"expirationDate"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CreateStockItemCommand{
			SKU:            req.SKU,
			ProductName:    req.ProductName,
			BatchNumber:    req.BatchNumber,
			ConsignmentID:  req.ConsignmentID,
			Quantity:       req.Quantity,
			ExpirationDate: req.ExpirationDate,
		}

		item, err := service.CreateStockItem(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

func getStockItemHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		query := application.GetStockItemQuery{StockItemID: c.Param("stockItemId")}

		item, err := service.GetStockItem(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func listStockItemsHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		if cls := c.Query("classification"); cls != "" {
			if err := middleware.GetValidator().Var(cls, "classification"); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classification filter"})
				return
			}
		}

		query := application.ListStockItemsQuery{
			SKU:            c.Query("sku"),
			Classification: c.Query("classification"),
			LocationID:     c.Query("locationId"),
			Page:           queryInt64(c, "page", 1),
			PageSize:       queryInt64(c, "pageSize", 50),
		}

		items, err := service.ListStockItems(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

func updateExpirationDateHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			ExpirationDate *time.Time `json:"expirationDate"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.UpdateExpirationDateCommand{
			StockItemID:    c.Param("stockItemId"),
			ExpirationDate: req.ExpirationDate,
		}

		item, err := service.UpdateExpirationDate(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func reclassifyStockItemHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		cmd := application.ReclassifyStockItemCommand{StockItemID: c.Param("stockItemId")}

		item, err := service.ReclassifyStockItem(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func reclassifySweepHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			HorizonDays int `json:"horizonDays"`
			Limit       int `json:"limit"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.ReclassifySweepCommand{
			HorizonDays: req.HorizonDays,
			Limit:       req.Limit,
		}

		result, err := service.ReclassifySweep(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Assignment handlers

func assignLocationsHandler(service *application.AssignmentService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			StockItemIDs []string `json:"stockItemIds"`
			ItemLimit    int      `json:"itemLimit"`
			LocationIDs  []string `json:"locationIds"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.AssignLocationsCommand{
			StockItemIDs: req.StockItemIDs,
			ItemLimit:    req.ItemLimit,
			LocationIDs:  req.LocationIDs,
		}

		result, err := service.AssignLocations(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func assignReturnLocationsHandler(service *application.AssignmentService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			StockItemIDs []string `json:"stockItemIds" binding:"required,min=1"`
			Condition    string   `json:"condition"`
			LocationIDs  []string `json:"locationIds"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.AssignReturnLocationsCommand{
			StockItemIDs: req.StockItemIDs,
			Condition:    req.Condition,
			LocationIDs:  req.LocationIDs,
		}

		result, err := service.AssignReturnLocations(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Location handlers

func createLocationHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			LocationID  string `json:"locationId" binding:"required,location_id"`
			Barcode     string `json:"barcode" binding:"required"`
			Zone        string `json:"zone" binding:"required"`
			Aisle       string `json:"aisle" binding:"required"`
			Rack        int    `json:"rack"`
			Level       int    `json:"level"`
			MaxQuantity *int   `json:"maxQuantity"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CreateLocationCommand{
			LocationID:  req.LocationID,
			Barcode:     req.Barcode,
			Zone:        req.Zone,
			Aisle:       req.Aisle,
			Rack:        req.Rack,
			Level:       req.Level,
			MaxQuantity: req.MaxQuantity,
		}

		location, err := service.CreateLocation(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, location)
	}
}

func getLocationHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		location, err := service.GetLocation(c.Request.Context(), c.Param("locationId"))
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, location)
	}
}

func getLocationByBarcodeHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		location, err := service.GetLocationByBarcode(c.Request.Context(), c.Param("barcode"))
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, location)
	}
}

func listLocationsHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		query := application.ListLocationsQuery{
			Zone:     c.Query("zone"),
			Page:     queryInt64(c, "page", 1),
			PageSize: queryInt64(c, "pageSize", 50),
		}

		locations, err := service.ListLocations(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"locations": locations, "count": len(locations)})
	}
}

func blockLocationHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.BlockLocationCommand{
			LocationID: c.Param("locationId"),
			Reason:     req.Reason,
		}

		location, err := service.BlockLocation(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, location)
	}
}

func unblockLocationHandler(service *application.LocationService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		cmd := application.UnblockLocationCommand{LocationID: c.Param("locationId")}

		location, err := service.UnblockLocation(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, location)
	}
}

// Movement handlers

func createMovementHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			StockItemID           string `json:"stockItemId" binding:"required"`
			SourceLocationID      string `json:"sourceLocationId"`
			DestinationLocationID string `json:"destinationLocationId" binding:"required"`
			Quantity              int    `json:"quantity" binding:"required,gt=0"`
			MovementType          string `json:"movementType" binding:"required,movement_type"`
			Reason                string `json:"reason"`
			InitiatedBy           string `json:"initiatedBy"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CreateStockMovementCommand{
			StockItemID:           req.StockItemID,
			SourceLocationID:      req.SourceLocationID,
			DestinationLocationID: req.DestinationLocationID,
			Quantity:              req.Quantity,
			MovementType:          req.MovementType,
			Reason:                req.Reason,
			InitiatedBy:           req.InitiatedBy,
		}

		movement, err := service.CreateStockMovement(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, movement)
	}
}

func getMovementHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		movement, err := service.GetStockMovement(c.Request.Context(), c.Param("movementId"))
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, movement)
	}
}

func listMovementsHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		query := application.ListMovementsQuery{
			StockItemID: c.Query("stockItemId"),
			Status:      c.Query("status"),
			Page:        queryInt64(c, "page", 1),
			PageSize:    queryInt64(c, "pageSize", 50),
		}

		movements, err := service.ListStockMovements(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"movements": movements, "count": len(movements)})
	}
}

func completeMovementHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			CompletedBy string `json:"completedBy"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CompleteStockMovementCommand{
			MovementID:  c.Param("movementId"),
			CompletedBy: req.CompletedBy,
		}

		movement, err := service.CompleteStockMovement(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, movement)
	}
}

func cancelMovementHandler(service *application.MovementService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			CancelledBy string `json:"cancelledBy"`
			Reason      string `json:"reason" binding:"required"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CancelStockMovementCommand{
			MovementID:         c.Param("movementId"),
			CancelledBy:        req.CancelledBy,
			CancellationReason: req.Reason,
		}

		movement, err := service.CancelStockMovement(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, movement)
	}
}

// Picking handlers

func createPickingTaskHandler(service *application.PickingService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			LoadID           string `json:"loadId" binding:"required"`
			SKU              string `json:"sku" binding:"required,sku"`
			ProductName      string `json:"productName"`
			LocationID       string `json:"locationId" binding:"required"`
			RequiredQuantity int    `json:"requiredQuantity" binding:"required,gt=0"`
			Sequence         int    `json:"sequence"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.CreatePickingTaskCommand{
			LoadID:           req.LoadID,
			SKU:              req.SKU,
			ProductName:      req.ProductName,
			LocationID:       req.LocationID,
			RequiredQuantity: req.RequiredQuantity,
			Sequence:         req.Sequence,
		}

		task, err := service.CreatePickingTask(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, task)
	}
}

func getPickingTaskHandler(service *application.PickingService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		task, err := service.GetPickingTask(c.Request.Context(), c.Param("taskId"))
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func listPickingTasksHandler(service *application.PickingService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		query := application.ListPickingTasksQuery{
			LoadID:   c.Query("loadId"),
			Status:   c.Query("status"),
			Page:     queryInt64(c, "page", 1),
			PageSize: queryInt64(c, "pageSize", 50),
		}

		tasks, err := service.ListPickingTasks(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
	}
}

func executePickHandler(service *application.PickingService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			PickedQuantity int    `json:"pickedQuantity" binding:"required,gt=0"`
			Reason         string `json:"reason"`
			PickedBy       string `json:"pickedBy"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.ExecutePickCommand{
			TaskID:         c.Param("taskId"),
			PickedQuantity: req.PickedQuantity,
			Reason:         req.Reason,
			PickedBy:       req.PickedBy,
		}

		task, err := service.ExecutePick(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

// Consignment handlers

func createConsignmentHandler(service *application.ConsignmentService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			Reference string `json:"reference"`
			Lines     []struct {
				SKU            string     `json:"sku" binding:"required,sku"`
				ProductName    string     `json:"productName" binding:"omitempty,safe_string"`
				BatchNumber    string     `json:"batchNumber" binding:"omitempty,batch_number"`
				Quantity       int        `json:"quantity" binding:"required,gt=0"`
				ExpirationDate *time.Time `json:"expirationDate"`
			} `json:"lines" binding:"required,min=1"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		lines := make([]application.ConsignmentLineInput, len(req.Lines))
		for i, line := range req.Lines {
			lines[i] = application.ConsignmentLineInput{
				SKU:            line.SKU,
				ProductName:    line.ProductName,
				BatchNumber:    line.BatchNumber,
				Quantity:       line.Quantity,
				ExpirationDate: line.ExpirationDate,
			}
		}

		cmd := application.CreateConsignmentCommand{
			Reference: req.Reference,
			Lines:     lines,
		}

		consignment, err := service.CreateConsignment(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, consignment)
	}
}

func getConsignmentHandler(service *application.ConsignmentService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		consignment, err := service.GetConsignment(c.Request.Context(), c.Param("consignmentId"))
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, consignment)
	}
}

func confirmConsignmentHandler(service *application.ConsignmentService, logger *logging.Logger) gin.HandlerFunc {
	responder := middleware.NewErrorResponder(logger)
	return func(c *gin.Context) {
		var req struct {
			ConfirmedBy string `json:"confirmedBy"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(c, appErr)
			return
		}

		cmd := application.ConfirmConsignmentCommand{
			ConsignmentID: c.Param("consignmentId"),
			ConfirmedBy:   req.ConfirmedBy,
		}

		consignment, err := service.ConfirmConsignment(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, consignment)
	}
}

func queryInt64(c *gin.Context, name string, fallback int64) int64 {
	value, err := strconv.ParseInt(c.DefaultQuery(name, ""), 10, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/configuration"
	"github.com/goliatone/go-game-config/handlers"
)

const basePath = "/api/configuration"

// ConfigurationAPI exposes the configuration handlers over HTTP.
type ConfigurationAPI struct {
	Handlers *handlers.Set
	Logger   *zap.Logger
}

func (a *ConfigurationAPI) Register(r gin.IRouter) {
	group := r.Group(basePath)
	group.GET("", a.list)
	group.GET("/test", a.test)
	group.GET("/dbtest", a.testDatabase)
	group.GET("/by-name/:name", a.getByName)
	group.GET("/:id", a.get)
	group.POST("", a.create)
	group.PUT("/:id", a.update)
	group.DELETE("/:id", a.delete)
}

func (a *ConfigurationAPI) test(c *gin.Context) {
	a.Logger.Info("Test endpoint called")
	c.Header("X-Debug", "API-Test")
	c.JSON(http.StatusOK, gin.H{"message": "API is working!"})
}

func (a *ConfigurationAPI) list(c *gin.Context) {
	skip, err := intQuery(c, "skip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip must be an integer"})
		return
	}
	take, err := intQuery(c, "take")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "take must be an integer"})
		return
	}

	resp := a.Handlers.List.Handle(c.Request.Context(), configuration.ListOptions{
		SearchTerm: strings.TrimSpace(c.Query("searchTerm")),
		Skip:       skip,
		Take:       take,
	})
	if resp.IsValidation() {
		c.JSON(http.StatusBadRequest, gin.H{"error": resp.Message, "validationErrors": resp.ValidationErrors})
		return
	}
	if !resp.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"error": resp.Message})
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}

func (a *ConfigurationAPI) get(c *gin.Context) {
	resp := a.Handlers.Get.Handle(c.Request.Context(), c.Param("id"))
	a.writeRecord(c, http.StatusOK, resp)
}

func (a *ConfigurationAPI) getByName(c *gin.Context) {
	resp := a.Handlers.GetByName.Handle(c.Request.Context(), c.Param("name"))
	a.writeRecord(c, http.StatusOK, resp)
}

func (a *ConfigurationAPI) create(c *gin.Context) {
	var cmd handlers.CreateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	resp := a.Handlers.Create.Handle(c.Request.Context(), cmd)
	if !resp.Success {
		status := http.StatusBadRequest
		if resp.IsDuplicate() {
			status = http.StatusConflict
		}
		c.JSON(status, failureBody(resp))
		return
	}

	c.Header("Location", basePath+"/"+resp.Data.ID)
	c.JSON(http.StatusCreated, resp.Data)
}

func (a *ConfigurationAPI) update(c *gin.Context) {
	id := c.Param("id")

	var rec configuration.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if rec.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ID mismatch"})
		return
	}

	resp := a.Handlers.Update.Handle(c.Request.Context(), rec)
	if !resp.Success {
		c.JSON(failureStatus(resp, http.StatusInternalServerError), failureBody(resp))
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}

func (a *ConfigurationAPI) delete(c *gin.Context) {
	resp := a.Handlers.Delete.Handle(c.Request.Context(), c.Param("id"))
	// deleting a missing record is not an error for clients
	if !resp.Success && !resp.IsNotFound() {
		c.JSON(failureStatus(resp, http.StatusInternalServerError), failureBody(resp))
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *ConfigurationAPI) testDatabase(c *gin.Context) {
	resp := a.Handlers.TestDB.Handle(c.Request.Context())
	if !resp.Success {
		msg := resp.Message
		if resp.Err != nil {
			msg = "Database connection failed: " + resp.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database connection successful"})
}

func (a *ConfigurationAPI) writeRecord(c *gin.Context, status int, resp handlers.Response[*configuration.Record]) {
	if !resp.Success {
		c.JSON(failureStatus(resp, http.StatusInternalServerError), failureBody(resp))
		return
	}
	c.JSON(status, resp.Data)
}

func failureStatus[T any](resp handlers.Response[T], fallback int) int {
	switch {
	case resp.IsValidation():
		return http.StatusBadRequest
	case resp.IsNotFound():
		return http.StatusNotFound
	case resp.IsDuplicate():
		return http.StatusConflict
	default:
		return fallback
	}
}

func failureBody[T any](resp handlers.Response[T]) gin.H {
	body := gin.H{"message": resp.Message}
	if len(resp.ValidationErrors) > 0 {
		body["validationErrors"] = resp.ValidationErrors
	}
	return body
}

func intQuery(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

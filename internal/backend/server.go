package backend

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rileyhilliard/procdash/internal/logger"
)

// ErrUnknownProcess is returned for actions on a name the backend doesn't manage.
var ErrUnknownProcess = stderrors.New("unknown process")

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewHandler exposes b over the JSON HTTP API that HTTPClient consumes.
func NewHandler(b Backend, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.Noop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	api := r.Group("/api")
	api.GET("/snapshot", func(c *gin.Context) {
		snap, err := b.GetSnapshot(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	api.POST("/processes/:name/:action", func(c *gin.Context) {
		action, err := ParseAction(c.Param("action"))
		if err != nil || !action.NeedsName() {
			c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "unknown action " + c.Param("action")})
			return
		}
		if err := Invoke(c.Request.Context(), b, action, c.Param("name")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	global := map[string]Action{
		"/restart-all": ActionRestartAll,
		"/kill/cmd":    ActionKillCMD,
		"/kill/node":   ActionKillNode,
	}
	for path, action := range global {
		api.POST(path, func(c *gin.Context) {
			if err := Invoke(c.Request.Context(), b, action, ""); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}

	api.GET("/config", func(c *gin.Context) {
		model, err := b.GetConfigModel(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	})

	api.PUT("/config", func(c *gin.Context) {
		var model ConfigModel
		if err := c.ShouldBindJSON(&model); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "invalid config body: " + err.Error()})
			return
		}
		if err := b.SaveConfigModel(c.Request.Context(), model); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	return r
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verr *ValidationError
	var berr *Error
	switch {
	case stderrors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case stderrors.Is(err, ErrUnknownProcess):
		status = http.StatusNotFound
	case stderrors.As(err, &berr):
		status = berr.Status
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody{Error: err.Error()})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			log.Warn("%s %s -> %d (%s): %s", c.Request.Method, c.Request.URL.Path, status,
				time.Since(start).Round(time.Microsecond), c.Errors.String())
			return
		}
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status,
			time.Since(start).Round(time.Microsecond))
	}
}

package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"storefront/docs"
	"storefront/internal/config"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	appmw "storefront/internal/middleware"
	"storefront/internal/validation"
)

// Register wires routes and middleware. rateLimit may be nil.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	guard *appmw.Guard,
	rateLimit echo.MiddlewareFunc,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = validation.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s request_id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(cfg.CORSOrigin),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if rateLimit != nil {
		e.Use(rateLimit)
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/health", healthHandler.Health)

	api := e.Group("/api")

	// Users
	api.POST("/users/register", userHandler.Register)
	api.POST("/users/login", userHandler.Login)
	api.POST("/users/logout", guard.Authenticated(userHandler.Logout))
	api.GET("/users/profile", guard.Authenticated(userHandler.GetProfile))
	api.PUT("/users/profile", guard.Authenticated(userHandler.UpdateProfile))
	api.GET("/users", guard.Elevated(userHandler.ListUsers))

	// Products
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/:id", productHandler.GetProduct)
	api.POST("/products", guard.Elevated(productHandler.CreateProduct))
	api.PUT("/products/:id", guard.Elevated(productHandler.UpdateProduct))
	api.DELETE("/products/:id", guard.Elevated(productHandler.DeleteProduct))

	// Orders
	api.POST("/orders", guard.Authenticated(orderHandler.CreateOrder))
	api.GET("/orders/my-orders", guard.Authenticated(orderHandler.ListMyOrders))
	api.GET("/orders", guard.Elevated(orderHandler.ListOrders))
	api.PUT("/orders/:id/status", guard.Elevated(orderHandler.UpdateOrderStatus))
}

// ErrorHandler renders every failure as an ErrorResponse.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := toHTTPError(err, c)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(httpErr.StatusCode)
	} else {
		sendErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if sendErr != nil {
		c.Logger().Error(sendErr)
	}
}

func toHTTPError(err error, c echo.Context) *apperrors.HTTPError {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.HTTPError()
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound:
			return apperrors.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request().URL.Path), "ROUTE_NOT_FOUND")
		case http.StatusMethodNotAllowed:
			return apperrors.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
		}
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(echoErr.Code), " ", "_"))
		return apperrors.NewHTTPError(echoErr.Code, fmt.Sprint(echoErr.Message), code)
	}

	return apperrors.MapErrorToHTTP(err)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

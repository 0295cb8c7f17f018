package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paygate-io/paygate"
	"github.com/paygate-io/paygate/api/middleware"
	"github.com/paygate-io/paygate/config"
)

type Api struct {
	paygate *paygate.Paygate
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/v1/get_deposit_address", a.GetDepositAddress)
	router.POST("/v1/new_in_order", a.NewInOrder)
	router.POST("/v1/new_out_order", a.NewOutOrder)
	router.POST("/v1/validate_address", a.ValidateAddress)

	router.GET("/ws", a.ServeRPC)
	return a.router
}

func NewAPI(p *paygate.Paygate) (*Api, error) {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))
	r.Use(middleware.ErrorHandler())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{paygate: p, router: r}, nil
}

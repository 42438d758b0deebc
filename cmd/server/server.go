package server

import (
	"fmt"
	"log/slog"
	"time"

	"campus-club-system/config"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/httpclient"
	"campus-club-system/internal/global/logger"
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/global/redis"
	internalSentry "campus-club-system/internal/global/sentry"
	"campus-club-system/internal/module"
	"campus-club-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	if err := internalSentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()
	redis.Init()
	httpclient.Init()

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(internalSentry.Middleware())
	r.Use(middleware.Recovery())

	// 本地存储模式下直接暴露静态资源目录
	r.Static("/static", config.Get().Storage.Home)

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}

	defer internalSentry.Flush(2 * time.Second)

	err := r.Run(config.Get().Host + ":" + config.Get().Port)
	tools.PanicOnErr(err)
}

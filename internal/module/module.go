package module

import (
	"campus-club-system/internal/module/activity"
	"campus-club-system/internal/module/ping"
	"campus-club-system/internal/module/pointrule"
	"campus-club-system/internal/module/points"
	"campus-club-system/internal/module/reward"
	"campus-club-system/internal/module/stats"
	"campus-club-system/internal/module/upload"
	"campus-club-system/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&ping.ModulePing{},
		&user.ModuleUser{},
		&activity.ModuleActivity{},
		&pointrule.ModulePointRule{},
		&reward.ModuleReward{},
		&points.ModulePoints{},
		&stats.ModuleStats{},
		&upload.ModuleUpload{},
	})
}

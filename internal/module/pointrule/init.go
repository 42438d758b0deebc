package pointrule

import (
	"log/slog"

	"campus-club-system/internal/global/logger"
)

var log *slog.Logger

type ModulePointRule struct{}

func (p *ModulePointRule) GetName() string {
	return "PointRule"
}

func (p *ModulePointRule) Init() {
	log = logger.New("PointRule")
}

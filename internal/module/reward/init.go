package reward

import (
	"log/slog"

	"campus-club-system/internal/global/logger"
)

var log *slog.Logger

type ModuleReward struct{}

func (r *ModuleReward) GetName() string {
	return "Reward"
}

func (r *ModuleReward) Init() {
	log = logger.New("Reward")
}

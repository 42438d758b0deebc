package upload

import (
	"log/slog"

	"campus-club-system/internal/global/logger"
)

var log *slog.Logger

type ModuleUpload struct{}

func (u *ModuleUpload) GetName() string {
	return "Upload"
}

func (u *ModuleUpload) Init() {
	log = logger.New("Upload")
}

package game

import (
	"log/slog"

	"github.com/hivelab/hive/components"
)

func logDeath(tick int32, id uint32, needs *components.Needs) {
	cause := "hunger"
	if needs.Thirst >= needs.Hunger {
		cause = "thirst"
	}
	slog.Info("blob died",
		"tick", tick,
		"id", id,
		"cause", cause,
		"hunger", needs.Hunger,
		"thirst", needs.Thirst,
	)
}

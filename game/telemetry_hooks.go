package game

import (
	"log/slog"

	"github.com/hivelab/hive/advisor"
)

// flushTelemetry closes out the stats window when it has elapsed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.sizeBuf = g.sizeBuf[:0]
	query := g.blobFilter.Query()
	for query.Next() {
		_, _, needs, _, _, vocab := query.Get()
		if needs.Alive {
			g.sizeBuf = append(g.sizeBuf, float64(vocab.Table.Len()))
		}
	}

	stats := g.collector.Flush(g.tick, g.aliveCount, g.sizeBuf, g.tiles.FoodCount(), g.tiles.WaterCount())
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// publishSnapshot sends the current world state over the advisor link.
func (g *Game) publishSnapshot() {
	if g.advisorClient == nil {
		return
	}

	snap := advisor.Snapshot{
		Tick:   g.tick,
		Agents: make([]advisor.AgentState, 0, len(g.byID)),
	}
	query := g.blobFilter.Query()
	for query.Next() {
		agent, pos, needs, _, _, _ := query.Get()
		snap.Agents = append(snap.Agents, advisor.AgentState{
			ID:     agent.ID,
			X:      int32(pos.X),
			Y:      int32(pos.Y),
			Hunger: uint8(needs.Hunger),
			Thirst: uint8(needs.Thirst),
			Alive:  needs.Alive,
		})
	}
	g.advisorClient.Publish(snap)
}

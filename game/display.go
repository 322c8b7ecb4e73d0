package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/config"
	"github.com/hivelab/hive/lexicon"
	"github.com/hivelab/hive/systems"
)

// AgentView is the read-only display surface for one blob: its needs, what
// it is currently doing, and the strongest entries of its lexicon.
type AgentView struct {
	ID     uint32
	X, Y   int
	Hunger int
	Thirst int
	Alive  bool

	// Activity is a human-readable classification: "dead", "wandering",
	// "seeking food (x,y)" or "seeking water (x,y)".
	Activity string

	// Lexicon holds the top entries by weight, strongest first.
	Lexicon []lexicon.Entry
}

// View builds the display surface for the agent with the given id. Returns
// false for unknown ids.
func (g *Game) View(id uint32) (AgentView, bool) {
	if int(id) >= len(g.byID) {
		return AgentView{}, false
	}
	e := g.byID[id]
	pos := g.posMap.Get(e)
	needs := g.needsMap.Get(e)
	vocab := g.vocabMap.Get(e)
	if pos == nil || needs == nil || vocab == nil {
		return AgentView{}, false
	}

	v := AgentView{
		ID:     id,
		X:      pos.X,
		Y:      pos.Y,
		Hunger: needs.Hunger,
		Thirst: needs.Thirst,
		Alive:  needs.Alive,
	}

	v.Activity = g.classifyActivity(e, needs)

	top := config.Cfg().Telemetry.TopEntries
	v.Lexicon = vocab.Table.Top(nil, top)
	return v, true
}

// Views builds display surfaces for every blob, in id order.
func (g *Game) Views() []AgentView {
	out := make([]AgentView, 0, len(g.byID))
	for id := range g.byID {
		if v, ok := g.View(uint32(id)); ok {
			out = append(out, v)
		}
	}
	return out
}

func (g *Game) classifyActivity(e ecs.Entity, needs *components.Needs) string {
	if !needs.Alive {
		return "dead"
	}
	mem := g.memMap.Get(e)
	if mem == nil {
		return "wandering"
	}
	d := systems.DecideTarget(needs, mem, g.moveParams)
	switch d.Kind {
	case systems.TargetFood:
		return fmt.Sprintf("seeking food (%d,%d)", d.Pos.X, d.Pos.Y)
	case systems.TargetWater:
		return fmt.Sprintf("seeking water (%d,%d)", d.Pos.X, d.Pos.Y)
	default:
		return "wandering"
	}
}

// selectBlobAt picks the blob nearest to a world position, within one grid
// cell of slack, for the inspector panel.
func (g *Game) selectBlobAt(x, y int) {
	slack := g.moveParams.GridStep * 2
	bestDist := slack*slack + 1
	best := -1

	query := g.blobFilter.Query()
	for query.Next() {
		agent, pos, _, _, _, _ := query.Get()
		dx, dy := pos.X-x, pos.Y-y
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = int(agent.ID)
		}
	}
	g.selected = best
}

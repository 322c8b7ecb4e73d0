package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/systems"
)

// Palette. Blobs shade from green to red as their worst need climbs.
var (
	colorBackground = rl.NewColor(24, 26, 33, 255)
	colorFood       = rl.NewColor(110, 200, 90, 255)
	colorWater      = rl.NewColor(80, 150, 235, 255)
	colorDead       = rl.NewColor(90, 90, 95, 255)
	colorChirp      = rl.NewColor(250, 230, 120, 60)
)

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	g.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))

	g.drawResources()
	g.drawChirps()
	g.drawBlobs()
	g.drawHUD()
	if g.selected >= 0 {
		g.drawInspector()
	}

	rl.EndDrawing()
}

func (g *Game) drawResources() {
	step := float32(g.moveParams.GridStep)
	size := int32(step*g.cam.Zoom) + 1
	g.tiles.ForEachResource(func(c components.Coord, kind systems.ResourceKind) {
		if !g.cam.IsVisible(float32(c.X), float32(c.Y), step) {
			return
		}
		col := colorFood
		if kind == systems.Water {
			col = colorWater
		}
		sx, sy := g.cam.WorldToScreen(float32(c.X), float32(c.Y))
		rl.DrawRectangle(int32(sx), int32(sy), size, size, col)
	})
}

// drawChirps rings every chirp origin of the current tick with its hearing
// radius.
func (g *Game) drawChirps() {
	r := float32(g.commsParams.ChirpRadius)
	for _, ev := range g.events.Events() {
		if !g.cam.IsVisible(float32(ev.Origin.X), float32(ev.Origin.Y), r) {
			continue
		}
		sx, sy := g.cam.WorldToScreen(float32(ev.Origin.X), float32(ev.Origin.Y))
		rl.DrawCircleV(rl.NewVector2(sx, sy), r*g.cam.Zoom, colorChirp)
	}
}

func (g *Game) drawBlobs() {
	half := float32(g.moveParams.GridStep) / 2
	radius := half * g.cam.Zoom
	query := g.blobFilter.Query()
	for query.Next() {
		agent, pos, needs, _, _, _ := query.Get()
		wx := float32(pos.X) + half
		wy := float32(pos.Y) + half
		if !g.cam.IsVisible(wx, wy, half) {
			continue
		}
		sx, sy := g.cam.WorldToScreen(wx, wy)
		center := rl.NewVector2(sx, sy)

		if !needs.Alive {
			rl.DrawCircleV(center, radius, colorDead)
			continue
		}

		worst := needs.Hunger
		if needs.Thirst > worst {
			worst = needs.Thirst
		}
		frac := float32(worst) / float32(g.needsParams.Max)
		col := rl.NewColor(uint8(80+175*frac), uint8(200*(1-frac)+55), 60, 255)
		rl.DrawCircleV(center, radius, col)

		if int(agent.ID) == g.selected {
			rl.DrawCircleLinesV(center, radius+3, rl.RayWhite)
		}
	}
}

func (g *Game) drawHUD() {
	conv := g.convergence.Latest()
	status := fmt.Sprintf("tick %d | alive %d/%d | food %d | water %d | convergence %.2f | %dx",
		g.tick, g.aliveCount, len(g.byID), g.tiles.FoodCount(), g.tiles.WaterCount(), conv.Value, g.stepsPerUpdate)
	gui.StatusBar(rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), 22), status)

	if g.paused {
		gui.Label(rl.NewRectangle(float32(rl.GetScreenWidth())/2-40, 26, 80, 20), "PAUSED")
	}
}

// drawInspector renders the side panel for the selected blob.
func (g *Game) drawInspector() {
	v, ok := g.View(uint32(g.selected))
	if !ok {
		g.selected = -1
		return
	}

	x := float32(rl.GetScreenWidth()) - 190
	panel := rl.NewRectangle(x, 30, 184, 170)
	gui.Panel(panel, fmt.Sprintf("blob %d", v.ID))

	line := func(i int, text string) {
		gui.Label(rl.NewRectangle(x+8, 56+float32(i)*20, 170, 18), text)
	}
	line(0, fmt.Sprintf("hunger %d  thirst %d", v.Hunger, v.Thirst))
	line(1, v.Activity)
	if g.showLexicon {
		for i, e := range v.Lexicon {
			line(2+i, fmt.Sprintf("chirp %d = %s (%.2f)", e.Chirp, e.Concept, e.Weight))
		}
	}
}

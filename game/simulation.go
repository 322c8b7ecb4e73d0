package game

import (
	"github.com/hivelab/hive/advisor"
	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/config"
	"github.com/hivelab/hive/lexicon"
	"github.com/hivelab/hive/systems"
	"github.com/hivelab/hive/telemetry"
)

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	dt := config.Cfg().Derived.DT
	g.perfCollector.StartTick()

	// 1. Resource regrowth
	g.perfCollector.StartPhase(telemetry.PhaseWorld)
	g.tiles.Regenerate(dt)

	// 2. Needs decay and death
	g.perfCollector.StartPhase(telemetry.PhaseNeeds)
	g.updateNeeds(dt)

	// 3. Memory aging and invalidation
	g.perfCollector.StartPhase(telemetry.PhaseMemory)
	g.updateMemory(dt)

	// 4. Movement: advisor nudges, remembered targets, wandering
	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	g.updateMovement()

	// 5. Rebuild the spatial index on post-movement positions
	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	// 6. Consumption, memory refresh, and chirp emission
	g.perfCollector.StartPhase(telemetry.PhaseConsumption)
	g.updateConsumption()

	// 7. Deliver this tick's chirps to everyone in range
	g.perfCollector.StartPhase(telemetry.PhaseComms)
	g.deliverChirps()

	// 8. Expire stale expectations, decay lexicons
	g.perfCollector.StartPhase(telemetry.PhaseDecay)
	g.updateDecay(dt)

	// 9. Telemetry and advisor publishing
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.updateTelemetry()

	g.perfCollector.EndTick()
	g.tick++
}

func (g *Game) updateNeeds(dt float64) {
	query := g.blobFilter.Query()
	for query.Next() {
		agent, _, needs, _, _, _ := query.Get()
		if !needs.Alive {
			continue
		}
		if systems.AccumulateNeeds(needs, g.needsParams, dt) {
			g.aliveCount--
			g.collector.RecordDeath()
			logDeath(g.tick, agent.ID, needs)
		}
	}
}

func (g *Game) updateMemory(dt float64) {
	query := g.blobFilter.Query()
	for query.Next() {
		_, _, needs, mem, _, _ := query.Get()
		if !needs.Alive {
			continue
		}
		systems.AgeMemory(mem, g.tiles, g.memorySpan, dt)
	}
}

func (g *Game) updateMovement() {
	nudges := g.advisorNudges()

	query := g.blobFilter.Query()
	for query.Next() {
		agent, pos, needs, mem, _, _ := query.Get()
		if !needs.Alive {
			continue
		}

		decision := systems.DecideTarget(needs, mem, g.moveParams)
		if decision.Kind != systems.TargetNone {
			systems.StepToward(pos, decision.Pos, g.moveParams)
			continue
		}

		// A blob with no remembered target takes the advisor's nudge over a
		// random wander; the advisor never overrides a blob's own memory.
		if n, ok := nudges[agent.ID]; ok {
			systems.StepToward(pos, components.Coord{
				X: pos.X + int(n.DX)*g.moveParams.GridStep,
				Y: pos.Y + int(n.DY)*g.moveParams.GridStep,
			}, g.moveParams)
			continue
		}

		systems.Wander(pos, g.moveParams, g.rng)
	}
}

// advisorNudges returns the current fresh suggestions keyed by agent id, or
// nil when the advisor is absent, silent, or stale.
func (g *Game) advisorNudges() map[uint32]advisor.Suggestion {
	if g.advisorClient == nil {
		return nil
	}
	reply, fresh := g.advisorClient.Latest(g.tick, g.advisorStale)
	if fresh != advisor.Fresh || len(reply.Moves) == 0 {
		return nil
	}
	nudges := make(map[uint32]advisor.Suggestion, len(reply.Moves))
	for _, m := range reply.Moves {
		nudges[m.ID] = m
	}
	return nudges
}

func (g *Game) updateSpatialGrid() {
	g.spatialGrid.Clear()

	query := g.blobFilter.Query()
	for query.Next() {
		entity := query.Entity()
		_, pos, needs, _, _, _ := query.Get()
		if needs.Alive {
			g.spatialGrid.Insert(entity, pos.X, pos.Y)
		}
	}
}

// updateConsumption lets each blob interact with the tile it stands on.
// Consuming validates pending expectations; both consumption and discovery
// (standing on a tile it has no use for) refresh the matching memory slot
// and, cooldown permitting, emit a chirp into the event buffer. A blob that
// arrives to find the tile already emptied forgets that location on the
// spot, within the same tick as the race it lost.
func (g *Game) updateConsumption() {
	g.events.Reset()

	query := g.blobFilter.Query()
	for query.Next() {
		agent, pos, needs, mem, comms, vocab := query.Get()
		if !needs.Alive {
			continue
		}

		here := pos.Coord()
		kind := g.tiles.Lookup(here)
		if kind == systems.Empty {
			systems.ForgetAt(mem, here)
			continue
		}

		if !systems.WantsKind(needs, kind) {
			systems.RememberResource(mem, kind, here)
			g.emitChirp(agent.ID, comms, vocab, conceptFor(kind), here)
			continue
		}
		if !g.tiles.Consume(here) {
			// A rival earlier in this tick's order got it.
			systems.ForgetAt(mem, here)
			continue
		}

		concept := conceptFor(kind)
		switch kind {
		case systems.Food:
			systems.Eat(needs, g.needsParams)
		case systems.Water:
			systems.Drink(needs, g.needsParams)
		}
		systems.RememberResource(mem, kind, here)
		g.collector.RecordConsumption(concept)

		if n := systems.ValidateExpectations(comms, &vocab.Table, concept, g.tick, g.commsParams); n > 0 {
			g.collector.RecordValidations(n)
		}

		g.emitChirp(agent.ID, comms, vocab, concept, here)
	}
}

// emitChirp broadcasts a concept from origin when the emitter's cooldown
// allows it.
func (g *Game) emitChirp(id uint32, comms *components.Comms, vocab *components.Vocab, concept lexicon.Concept, origin components.Coord) {
	if !systems.CanBroadcast(comms, g.tick, g.commsParams) {
		return
	}
	chirp := systems.Broadcast(id, comms, &vocab.Table, concept, origin, g.tick,
		g.events, g.moveParams.WorldW, g.moveParams.WorldH, g.commsParams, g.rng)
	g.collector.RecordBroadcast()
	g.playChirp(chirp)
}

// deliverChirps fans this tick's buffered events out to every live blob
// within hearing range of each origin.
func (g *Game) deliverChirps() {
	for _, ev := range g.events.Events() {
		emitter := g.byID[ev.Emitter]
		g.neighborBuf = g.spatialGrid.QueryRadiusInto(g.neighborBuf[:0],
			ev.Origin.X, ev.Origin.Y, g.commsParams.ChirpRadius, emitter)

		for _, n := range g.neighborBuf {
			needs := g.needsMap.Get(n.E)
			if needs == nil || !needs.Alive {
				continue
			}
			comms := g.commsMap.Get(n.E)
			vocab := g.vocabMap.Get(n.E)

			knewIt := vocab.Table.Weight(ev.Chirp, ev.Concept) > 0
			systems.Hear(comms, &vocab.Table, ev, g.commsParams)
			g.collector.RecordHeard()
			if !knewIt {
				g.collector.RecordAdoption()
			}
		}
	}
}

func (g *Game) updateDecay(dt float64) {
	query := g.blobFilter.Query()
	for query.Next() {
		_, _, needs, _, comms, vocab := query.Get()
		if !needs.Alive {
			continue
		}
		if n := systems.ExpireExpectations(comms, &vocab.Table, g.tick, g.commsParams); n > 0 {
			g.collector.RecordExpiries(n)
		}
		vocab.Table.Decay(float32(dt), g.commsParams.LexParams)
	}
}

func (g *Game) updateTelemetry() {
	if g.convergence.ShouldSample(g.tick) {
		g.tableBuf = g.tableBuf[:0]
		query := g.blobFilter.Query()
		for query.Next() {
			_, _, needs, _, _, vocab := query.Get()
			if needs.Alive {
				g.tableBuf = append(g.tableBuf, &vocab.Table)
			}
		}
		v := g.convergence.Sample(g.tick, g.tableBuf, g.aliveCount)
		g.collector.RecordConvergence(v)
	}

	g.flushTelemetry()
	g.publishSnapshot()
}

func conceptFor(kind systems.ResourceKind) lexicon.Concept {
	if kind == systems.Food {
		return lexicon.ConceptFood
	}
	return lexicon.ConceptWater
}

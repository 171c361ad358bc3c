// Package world provides the map the session is played on: its entities and
// the objectives they give the host.
package world

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/infection/internal/rules"
	"github.com/samdwyer/infection/internal/telemetry"
)

// Entity is a map entity placed by the level designer.
type Entity struct {
	Class string
	X, Y  int
}

// Map is a loaded level. Entities are candidates until Spawn runs.
type Map struct {
	Name     string
	Entities []Entity
	Spawned  []Entity
	Blocked  []Entity
}

// DefaultMap returns a bomb-defusal style map with buy zones and the usual
// objective entities.
func DefaultMap() *Map {
	return &Map{
		Name: "de_outbreak",
		Entities: []Entity{
			{Class: "info_player_start", X: 4, Y: 4},
			{Class: "info_player_start", X: 6, Y: 4},
			{Class: "info_player_deathmatch", X: 70, Y: 18},
			{Class: "info_player_deathmatch", X: 72, Y: 18},
			{Class: "func_buyzone", X: 5, Y: 5},
			{Class: "func_buyzone", X: 71, Y: 19},
			{Class: "func_bomb_target", X: 40, Y: 3},
			{Class: "info_bomb_target", X: 20, Y: 20},
			{Class: "weapon_c4", X: 71, Y: 18},
			{Class: "armoury_entity", X: 38, Y: 12},
			{Class: "hostage_entity", X: 60, Y: 6},
			{Class: "func_hostage_rescue", X: 5, Y: 6},
			{Class: "light", X: 40, Y: 12},
		},
	}
}

// Spawn creates every entity the filter allows and records the rest as
// blocked. It may be called again after a map reload.
func (m *Map) Spawn(ctx context.Context, allow func(class string) bool) int {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "map.spawn")
	defer span.End()

	m.Spawned = m.Spawned[:0]
	m.Blocked = m.Blocked[:0]
	for _, e := range m.Entities {
		if allow != nil && !allow(e.Class) {
			m.Blocked = append(m.Blocked, e)
			continue
		}
		m.Spawned = append(m.Spawned, e)
	}

	span.SetAttributes(
		attribute.String("map.name", m.Name),
		attribute.Int("map.entities", len(m.Entities)),
		attribute.Int("map.spawned", len(m.Spawned)),
		attribute.Int("map.blocked", len(m.Blocked)),
	)
	return len(m.Spawned)
}

// Conditions reports the objectives present among the spawned entities.
func (m *Map) Conditions() rules.MapConditions {
	var mc rules.MapConditions
	for _, e := range m.Spawned {
		switch e.Class {
		case "func_bomb_target", "info_bomb_target":
			mc.BombTarget = true
			mc.BombZone = true
		case "weapon_c4":
			mc.BombZone = true
		case "func_buyzone":
			mc.BuyZone = true
		case "func_hostage_rescue", "info_hostage_rescue", "hostage_entity":
			mc.RescueZone = true
		case "func_escapezone":
			mc.EscapeZone = true
		case "func_vip_safetyzone", "info_vip_start":
			mc.VIPSafetyZone = true
		}
	}
	return mc
}

// Has reports whether an entity of the class was spawned.
func (m *Map) Has(class string) bool {
	for _, e := range m.Spawned {
		if e.Class == class {
			return true
		}
	}
	return false
}

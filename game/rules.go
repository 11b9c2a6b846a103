package game

import (
	"standoff/server"
	"time"
)

type DamagePolicy int

const (
	//A participant takes at most one damaging hit per round, following hits are ignored
	DAMAGE_ONE_HIT_PER_ROUND DamagePolicy = iota
	//Every connecting shot damages
	DAMAGE_ACCUMULATE
)

func (p DamagePolicy) String() string {
	if p == DAMAGE_ACCUMULATE {
		return "accumulate"
	}
	return "one_hit"
}

//ParseDamagePolicy returns fallback for empty or unknown names
func ParseDamagePolicy(name string, fallback DamagePolicy) DamagePolicy {
	switch name {
	case "accumulate":
		return DAMAGE_ACCUMULATE
	case "one_hit":
		return DAMAGE_ONE_HIT_PER_ROUND
	}
	return fallback
}

//Rules are copied into every match on creation, so a running match never sees a change
type Rules struct {
	MinPlayers int
	MaxPlayers int

	StartingHealth int
	MaxHealth int
	StartingAmmo int
	//0 means no cap
	MaxAmmo int
	SuperShootCost int

	RoundDuration time.Duration
	IntermissionDuration time.Duration
	DamagePolicy DamagePolicy

	RoleKillThreshold int
	RoleProbability float64
	RolePassiveHeal int
	RolePartialHeal int
}

func DefaultRules() Rules {
	return Rules{
		MinPlayers: 2,
		MaxPlayers: 8,
		StartingHealth: 3,
		MaxHealth: 3,
		StartingAmmo: 1,
		SuperShootCost: 3,
		RoundDuration: 10 * time.Second,
		IntermissionDuration: 3 * time.Second,
		DamagePolicy: DAMAGE_ONE_HIT_PER_ROUND,
		RoleKillThreshold: 2,
		RoleProbability: 0.5,
		RolePassiveHeal: 1,
		RolePartialHeal: 1,
	}
}

func RulesFromConfig(config *server.Config) Rules {
	c := config.MatchConfig
	rules := Rules{
		MinPlayers: c.MinPlayers,
		MaxPlayers: c.MaxPlayers,
		StartingHealth: c.StartingHealth,
		MaxHealth: c.MaxHealth,
		StartingAmmo: c.StartingAmmo,
		MaxAmmo: c.MaxAmmo,
		SuperShootCost: c.SuperShootCost,
		RoundDuration: time.Duration(c.RoundDuration) * time.Millisecond,
		IntermissionDuration: time.Duration(c.IntermissionDuration) * time.Millisecond,
		DamagePolicy: ParseDamagePolicy(c.DamagePolicy, DAMAGE_ONE_HIT_PER_ROUND),
		RoleKillThreshold: c.RoleKillThreshold,
		RoleProbability: c.RoleProbability,
		RolePassiveHeal: c.RolePassiveHeal,
		RolePartialHeal: c.RolePartialHeal,
	}
	if rules.MaxHealth < rules.StartingHealth {
		rules.MaxHealth = rules.StartingHealth
	}
	if rules.SuperShootCost < 1 {
		rules.SuperShootCost = 1
	}
	return rules
}

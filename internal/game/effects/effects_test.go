package effects

import (
	"testing"

	"github.com/magefree/hearth-server-go/internal/game"
	"github.com/magefree/hearth-server-go/internal/game/targeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spell(t *testing.T, name string, cost int, class targeting.Class, s Spec) *game.CardDefinition {
	t.Helper()
	eff, err := Build(name, s)
	require.NoError(t, err)
	return &game.CardDefinition{
		Name:     name,
		ManaCost: cost,
		Spell: &game.SpellStats{
			Effect:         eff,
			RequiresTarget: class != targeting.ClassNone,
			TargetClass:    class,
		},
	}
}

func cast(t *testing.T, h *game.TestHarness, def *game.CardDefinition, target targeting.Ref) {
	t.Helper()
	h.SetMana(h.Alice, 10, 10)
	idx := h.GiveCard(h.Alice, def)
	require.True(t, h.Game.PlayCard(idx, target), "cast %s: %v", def.Name, h.Game.RecentLog(3))
	h.AssertInvariants()
}

// TestFrostboltFreezesMinion verifies damage with freeze
func TestFrostboltFreezesMinion(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Bob, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})

	cast(t, h, spell(t, "Frostbolt", 2, targeting.ClassAny, Spec{Type: "damage", Amount: 3, Freeze: true}), m.Ref())

	assert.Equal(t, 2, m.Health)
	assert.True(t, m.Has(game.Frozen))
	assert.Equal(t, "Frostbolt deals 3 damage and freezes Yeti!", h.LastLog())
}

// TestFrostboltOnHeroDoesNotFreeze verifies heroes cannot be frozen
func TestFrostboltOnHeroDoesNotFreeze(t *testing.T) {
	h := game.NewTestHarness(t)

	cast(t, h, spell(t, "Frostbolt", 2, targeting.ClassAny, Spec{Type: "damage", Amount: 3, Freeze: true}), h.Bob.Ref())

	assert.Equal(t, game.StartingHealth-3, h.Bob.Health())
	assert.Equal(t, "Frostbolt deals 3 damage!", h.LastLog())
}

// TestFlamestrikeHitsOnlyEnemyMinions verifies area damage scope
func TestFlamestrikeHitsOnlyEnemyMinions(t *testing.T) {
	h := game.NewTestHarness(t)
	small := h.PutMinion(h.Bob, game.MinionSpec{Name: "Raptor", Attack: 3, Health: 2})
	big := h.PutMinion(h.Bob, game.MinionSpec{Name: "Golem", Attack: 7, Health: 7})
	mine := h.PutMinion(h.Alice, game.MinionSpec{Name: "Wisp", Attack: 1, Health: 1})

	cast(t, h, spell(t, "Flamestrike", 7, targeting.ClassNone, Spec{Type: "damage_enemy_minions", Amount: 4}), targeting.Ref{})

	assert.True(t, small.IsDead())
	assert.Equal(t, 3, big.Health)
	assert.Equal(t, 1, h.Bob.BoardSize())
	assert.Equal(t, 1, mine.Health)
	assert.Equal(t, game.StartingHealth, h.Bob.Health())
}

// TestConsecrationHitsHeroAndMinions verifies damage to all enemies
func TestConsecrationHitsHeroAndMinions(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Bob, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})

	cast(t, h, spell(t, "Consecration", 4, targeting.ClassNone, Spec{Type: "damage_all_enemies", Amount: 2}), targeting.Ref{})

	assert.Equal(t, 3, m.Health)
	assert.Equal(t, game.StartingHealth-2, h.Bob.Health())
	assert.Equal(t, game.StartingHealth, h.Alice.Health())
}

// TestSwipeSplashesOtherEnemies verifies primary and splash damage
func TestSwipeSplashesOtherEnemies(t *testing.T) {
	h := game.NewTestHarness(t)
	primary := h.PutMinion(h.Bob, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})
	other := h.PutMinion(h.Bob, game.MinionSpec{Name: "Croc", Attack: 2, Health: 3})

	cast(t, h, spell(t, "Swipe", 4, targeting.ClassAny, Spec{Type: "damage_other_enemies", Amount: 4, Splash: 1}), primary.Ref())

	assert.Equal(t, 1, primary.Health)
	assert.Equal(t, 2, other.Health)
	assert.Equal(t, game.StartingHealth-1, h.Bob.Health())

	cast(t, h, spell(t, "Swipe", 4, targeting.ClassAny, Spec{Type: "damage_other_enemies", Amount: 4, Splash: 1}), h.Bob.Ref())
	assert.Equal(t, game.StartingHealth-5, h.Bob.Health(), "hero takes only the primary hit")
}

// TestConditionalRemoval verifies destroy and damage conditions
func TestConditionalRemoval(t *testing.T) {
	tests := []struct {
		name      string
		spec      Spec
		attack    int
		damaged   bool
		destroyed bool
		wantLog   string
	}{
		{name: "execute damaged", spec: Spec{Type: "destroy", Damaged: true}, attack: 4, damaged: true, destroyed: true, wantLog: "Removal destroys Target!"},
		{name: "execute undamaged", spec: Spec{Type: "destroy", Damaged: true}, attack: 4, wantLog: "Removal can only target damaged minions!"},
		{name: "pain small", spec: Spec{Type: "destroy", MaxAttack: 3}, attack: 3, destroyed: true, wantLog: "Removal destroys Target!"},
		{name: "pain big", spec: Spec{Type: "destroy", MaxAttack: 3}, attack: 4, wantLog: "Removal can only target minions with 3 or less attack!"},
		{name: "death big", spec: Spec{Type: "destroy", MinAttack: 5}, attack: 5, destroyed: true, wantLog: "Removal destroys Target!"},
		{name: "death small", spec: Spec{Type: "destroy", MinAttack: 5}, attack: 4, wantLog: "Removal can only target minions with 5 or more attack!"},
		{name: "assassinate", spec: Spec{Type: "destroy"}, attack: 1, destroyed: true, wantLog: "Removal destroys Target!"},
		{name: "backstab undamaged", spec: Spec{Type: "damage", Amount: 6, Undamaged: true}, attack: 1, destroyed: true, wantLog: "Removal deals 6 damage to Target!"},
		{name: "backstab damaged", spec: Spec{Type: "damage", Amount: 6, Undamaged: true}, attack: 1, damaged: true, wantLog: "Removal can only target undamaged minions!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := game.NewTestHarness(t)
			m := h.PutMinion(h.Bob, game.MinionSpec{Name: "Target", Attack: tt.attack, Health: 6})
			if tt.damaged {
				m.Health = 5
			}

			cast(t, h, spell(t, "Removal", 2, targeting.ClassMinionEnemy, tt.spec), m.Ref())

			if tt.destroyed {
				assert.Equal(t, 0, h.Bob.BoardSize())
			} else {
				assert.Equal(t, 1, h.Bob.BoardSize())
			}
			h.AssertLogContains(4, tt.wantLog)
		})
	}
}

// TestHolyNova verifies a sequence of area damage and healing
func TestHolyNova(t *testing.T) {
	h := game.NewTestHarness(t)
	h.Alice.SetHealth(25)
	friend := h.PutMinion(h.Alice, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})
	friend.Health = 2
	foe := h.PutMinion(h.Bob, game.MinionSpec{Name: "Croc", Attack: 2, Health: 3})

	nova := Spec{Type: "sequence", Effects: []Spec{
		{Type: "damage_enemy_minions", Amount: 2},
		{Type: "heal_friendlies", Amount: 2},
	}}
	cast(t, h, spell(t, "Holy Nova", 5, targeting.ClassNone, nova), targeting.Ref{})

	assert.Equal(t, 1, foe.Health)
	assert.Equal(t, 4, friend.Health)
	assert.Equal(t, 27, h.Alice.Health())
	assert.Equal(t, game.StartingHealth, h.Bob.Health())
}

// TestHolyLightHealsTarget verifies targeted healing is capped at max health
func TestHolyLightHealsTarget(t *testing.T) {
	h := game.NewTestHarness(t)
	h.Alice.SetHealth(26)

	cast(t, h, spell(t, "Holy Light", 2, targeting.ClassAny, Spec{Type: "heal", Amount: 8}), h.Alice.Ref())

	assert.Equal(t, game.StartingHealth, h.Alice.Health())
	assert.Equal(t, "Holy Light restores 4 health!", h.LastLog())
}

// TestShieldBlock verifies armor plus draw
func TestShieldBlock(t *testing.T) {
	h := game.NewTestHarness(t)
	block := Spec{Type: "sequence", Effects: []Spec{{Type: "armor", Amount: 5}, {Type: "draw", Count: 1}}}
	def := spell(t, "Shield Block", 3, targeting.ClassNone, block)
	handBefore := h.Alice.HandSize()

	cast(t, h, def, targeting.Ref{})

	assert.Equal(t, 5, h.Alice.Armor())
	assert.Equal(t, handBefore+1, h.Alice.HandSize(), "the draw replaces the card given and played")
}

// TestPolymorphTransforms verifies transform keeps the board slot
func TestPolymorphTransforms(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Bob, game.MinionSpec{
		Name:        "Ragnaros",
		Attack:      8,
		Health:      8,
		Deathrattle: game.EffectFunc(func(*game.PlayerState, *game.Game, game.Character) { t.Error("deathrattle must not fire") }),
	})

	cast(t, h, spell(t, "Polymorph", 4, targeting.ClassMinionAny, Spec{Type: "transform", Name: "Sheep", Attack: 1, Health: 1}), m.Ref())

	require.Equal(t, 1, h.Bob.BoardSize())
	sheep := h.Bob.Board()[0]
	assert.Equal(t, "Sheep", sheep.Name)
	assert.Equal(t, 1, sheep.Attack)
	assert.Equal(t, "Ragnaros is transformed into a Sheep!", h.LastLog())
}

// TestMindControl verifies stealing and the full-board failure
func TestMindControl(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Bob, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})
	mc := spell(t, "Mind Control", 10, targeting.ClassMinionEnemy, Spec{Type: "steal"})

	cast(t, h, mc, m.Ref())

	assert.Equal(t, h.Alice.ID, m.OwnerID())
	assert.Equal(t, "Mind Control steals Yeti!", h.LastLog())

	other := h.PutMinion(h.Bob, game.MinionSpec{Name: "Croc", Attack: 2, Health: 3})
	for h.Alice.BoardSize() < game.MaxBoardSize {
		h.PutMinion(h.Alice, game.MinionSpec{Name: "Wisp", Attack: 1, Health: 1})
	}
	cast(t, h, mc, other.Ref())
	assert.Equal(t, h.Bob.ID, other.OwnerID())
}

// TestSilenceSpell verifies silence through the effect
func TestSilenceSpell(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Bob, game.MinionSpec{Name: "Sunwalker", Attack: 4, Health: 5, Keywords: game.NewKeywords(game.Taunt, game.DivineShield)})

	cast(t, h, spell(t, "Silence", 0, targeting.ClassMinionAny, Spec{Type: "silence"}), m.Ref())

	assert.False(t, m.Has(game.Taunt))
	assert.False(t, m.Has(game.DivineShield))
	assert.Equal(t, "Sunwalker is silenced!", h.LastLog())
}

// TestBuffSpells verifies permanent buffs on a friendly minion
func TestBuffSpells(t *testing.T) {
	h := game.NewTestHarness(t)
	m := h.PutMinion(h.Alice, game.MinionSpec{Name: "Wisp", Attack: 1, Health: 1})

	cast(t, h, spell(t, "Blessing of Kings", 4, targeting.ClassMinionAny, Spec{Type: "buff", Attack: 4, Health: 4}), m.Ref())

	assert.Equal(t, 5, m.Attack)
	assert.Equal(t, 5, m.Health)
	assert.Equal(t, 5, m.MaxHealth)
	assert.Equal(t, "Wisp gains +4/+4", h.LastLog())
}

// TestAcidicSwampOozeBattlecry verifies destroying the enemy weapon from a battlecry
func TestAcidicSwampOozeBattlecry(t *testing.T) {
	h := game.NewTestHarness(t)
	h.Equip(h.Bob, "Arcanite Reaper", 5, 2)
	ooze, err := Build("Acidic Swamp Ooze", Spec{Type: "destroy_enemy_weapon"})
	require.NoError(t, err)
	def := game.Vanilla("Acidic Swamp Ooze", 2, 3, 2)
	def.Minion.Battlecry = ooze

	cast(t, h, def, targeting.Ref{})

	assert.Nil(t, h.Bob.Weapon())
	assert.Equal(t, "Arcanite Reaper is destroyed!", h.LastLog())
}

// TestDefenderOfArgusBuffsNeighbours verifies adjacent buffs use the source position
func TestDefenderOfArgusBuffsNeighbours(t *testing.T) {
	h := game.NewTestHarness(t)
	left := h.PutMinion(h.Alice, game.MinionSpec{Name: "Left", Attack: 1, Health: 1})
	far := h.PutMinion(h.Alice, game.MinionSpec{Name: "Far", Attack: 1, Health: 1})
	argus, err := Build("Defender of Argus", Spec{Type: "buff_adjacent", Attack: 1, Health: 1, Taunt: true})
	require.NoError(t, err)
	def := game.Vanilla("Defender of Argus", 4, 2, 3)
	def.Minion.Battlecry = argus

	cast(t, h, def, targeting.Ref{})

	assert.Equal(t, 1, left.Attack)
	assert.Equal(t, 2, far.Attack)
	assert.True(t, far.Has(game.Taunt))
	assert.False(t, left.Has(game.Taunt))
	assert.Equal(t, "Defender of Argus buffs adjacent minions!", h.LastLog())
}

// TestDeathrattleSummonsAndEquips verifies deathrattle effects resolve for the dead minion's owner
func TestDeathrattleSummonsAndEquips(t *testing.T) {
	h := game.NewTestHarness(t)
	baine, err := Build("Cairne", Spec{Type: "summon", Name: "Baine Bloodhoof", Attack: 4, Health: 5})
	require.NoError(t, err)
	ashbringer, err := Build("Tirion", Spec{Type: "equip_weapon", Name: "Ashbringer", Attack: 5, Durability: 3})
	require.NoError(t, err)
	cairne := h.PutMinion(h.Bob, game.MinionSpec{Name: "Cairne Bloodhoof", Attack: 4, Health: 5, Deathrattle: baine})
	tirion := h.PutMinion(h.Bob, game.MinionSpec{Name: "Tirion Fordring", Attack: 6, Health: 6, Deathrattle: ashbringer})

	cast(t, h, spell(t, "Assassinate", 5, targeting.ClassMinionEnemy, Spec{Type: "destroy"}), cairne.Ref())
	cast(t, h, spell(t, "Assassinate", 5, targeting.ClassMinionEnemy, Spec{Type: "destroy"}), tirion.Ref())

	require.Equal(t, 1, h.Bob.BoardSize())
	assert.Equal(t, "Baine Bloodhoof", h.Bob.Board()[0].Name)
	require.NotNil(t, h.Bob.Weapon())
	assert.Equal(t, "Ashbringer", h.Bob.Weapon().Name)
	assert.Nil(t, h.Alice.Weapon())
}

// TestSylvanasStealsRandomMinion verifies the random steal deathrattle
func TestSylvanasStealsRandomMinion(t *testing.T) {
	h := game.NewTestHarness(t)
	steal, err := Build("Sylvanas", Spec{Type: "steal_random"})
	require.NoError(t, err)
	sylvanas := h.PutMinion(h.Bob, game.MinionSpec{Name: "Sylvanas Windrunner", Attack: 5, Health: 5, Deathrattle: steal})
	yeti := h.PutMinion(h.Alice, game.MinionSpec{Name: "Yeti", Attack: 4, Health: 5})

	cast(t, h, spell(t, "Assassinate", 5, targeting.ClassMinionEnemy, Spec{Type: "destroy"}), sylvanas.Ref())

	assert.Equal(t, h.Bob.ID, yeti.OwnerID())
	assert.Equal(t, 0, h.Alice.BoardSize())
	assert.Equal(t, 1, h.Bob.BoardSize())
}

// TestLifeTap verifies self damage and draw
func TestLifeTap(t *testing.T) {
	h := game.NewTestHarness(t)
	tap := Spec{Type: "sequence", Effects: []Spec{{Type: "draw", Count: 1}, {Type: "damage_own_hero", Amount: 2}}}
	def := spell(t, "Life Tap", 2, targeting.ClassNone, tap)
	deckBefore := h.Alice.DeckSize()

	cast(t, h, def, targeting.Ref{})

	assert.Equal(t, game.StartingHealth-2, h.Alice.Health())
	assert.Equal(t, deckBefore-1, h.Alice.DeckSize())
}

// TestSetHeroHealth verifies setting a hero's health
func TestSetHeroHealth(t *testing.T) {
	h := game.NewTestHarness(t)

	cast(t, h, spell(t, "Alexstrasza", 9, targeting.ClassHero, Spec{Type: "set_hero_health", Amount: 15}), h.Bob.Ref())

	assert.Equal(t, 15, h.Bob.Health())
}

// TestGainMana verifies temporary mana from an effect
func TestGainMana(t *testing.T) {
	h := game.NewTestHarness(t)
	coin, err := Build("The Coin", Spec{Type: "gain_mana", Amount: 1})
	require.NoError(t, err)
	idx := h.GiveCard(h.Alice, &game.CardDefinition{Name: "The Coin", Spell: &game.SpellStats{Effect: coin}})

	require.True(t, h.Game.PlayCard(idx, targeting.Ref{}))
	assert.Equal(t, 2, h.Alice.AvailableMana())
	assert.Equal(t, 1, h.Alice.MaxMana())
	assert.Equal(t, "Alice gains 1 mana crystal this turn!", h.LastLog())
}

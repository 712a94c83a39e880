package effects

import (
	"github.com/google/uuid"
	"github.com/magefree/hearth-server-go/internal/game"
)

// EquipWeaponEffect equips the caster with a new weapon.
type EquipWeaponEffect struct {
	Source     string
	Name       string
	Attack     int
	Durability int
}

func (e *EquipWeaponEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	g.Equip(owner, &game.Weapon{
		ID:         uuid.NewString(),
		Name:       e.Name,
		Attack:     e.Attack,
		Durability: e.Durability,
	})
	g.Logf("%s equips %s!", e.Source, e.Name)
}

// DestroyEnemyWeaponEffect destroys the opponent's weapon.
type DestroyEnemyWeaponEffect struct{}

func (e *DestroyEnemyWeaponEffect) Execute(owner *game.PlayerState, g *game.Game, _ game.Character) {
	g.DestroyWeapon(g.Opponent(owner))
}

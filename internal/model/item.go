package model

// ItemNothing marks an empty drop slot.
const ItemNothing int32 = -1

// Well-known item IDs used by kill rewards.
const (
	ItemCoins            int32 = 10
	ItemBones            int32 = 20
	ItemAshes            int32 = 181
	ItemBigBones         int32 = 413
	ItemBatBones         int32 = 604
	ItemDragonBones      int32 = 814
	ItemRingOfWealth     int32 = 1307
	ItemDragon2HandSword int32 = 1346
	ItemRingOfAvarice    int32 = 1519
	ItemRingOfSplendor   int32 = 1520
)

// Item is an item stack: catalog ID, amount and noted (certificate) form.
type Item struct {
	ItemID int32
	Amount int32
	Noted  bool
}

// NewItem creates a plain (unnoted) item.
func NewItem(itemID, amount int32) Item {
	return Item{ItemID: itemID, Amount: amount}
}

// IsNothing reports whether the item is an empty slot.
func (i Item) IsNothing() bool {
	return i.ItemID == ItemNothing || i.Amount <= 0
}

// ItemDefinition is the subset of the item catalog the kernel needs.
type ItemDefinition struct {
	ID          int32  `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Stackable   bool   `yaml:"stackable" json:"stackable"`
	MembersOnly bool   `yaml:"members_only" json:"members_only"`
}

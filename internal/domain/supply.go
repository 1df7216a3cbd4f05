package domain

// Supply is a consumable stock item. Quantity is never negative.
type Supply struct {
	ID       string
	Name     string
	Unit     string
	Quantity int
	UnitCost int64
}

package vehicles

// Catalog is the read side of the Car Listing service used to resolve favorites
type Catalog interface {
	Upsert(vehicle *Vehicle) error
	GetByID(id string) (*Vehicle, error)
	List(offset, limit int) ([]*Vehicle, error)
}

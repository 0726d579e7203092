package favoritesrepo

// Repo stores each user's favorite vehicle IDs in the order they were added
type Repo interface {
	List(userID string) ([]string, error)
	Add(userID, vehicleID string) error
	Remove(userID, vehicleID string) error
	DeleteForUser(userID string) error
}

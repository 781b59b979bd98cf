package repository

// Repository aggregates all persistence interfaces.
type Repository interface {
	LifecycleInterface
	Store
	Locker
}

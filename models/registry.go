package models

// All returns every model the application migrates
func All() []interface{} {
	return []interface{}{
		&User{},
		&Case{},
		&Hearing{},
		&Evidence{},
		&Payment{},
		&PendingNotification{},
	}
}

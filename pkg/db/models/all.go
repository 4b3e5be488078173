package models

// All lists every persisted model, used for sqlite AutoMigrate in dev and tests.
func All() []any {
	return []any{
		&Drug{},
		&CartLine{},
		&Purchase{},
		&Conversation{},
	}
}

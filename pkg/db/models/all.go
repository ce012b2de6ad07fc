package models

// All lists every persisted model, in dependency order. Used by test
// harnesses that build a schema with AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Member{},
		&Restaurant{},
		&TableType{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Table{},
		&Registration{},
		&Cart{},
		&CartItem{},
		&Post{},
		&PostImage{},
		&Tag{},
		&PostLike{},
		&OutboxEvent{},
	}
}

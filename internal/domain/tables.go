package domain

var Tables = []interface{}{
	// Catalog
	&Product{},
	&Sales{},
	// Orders
	&Order{},
	&OrderLineItem{},
	// Ancillary
	&ViewCounter{},
	&Message{},
}

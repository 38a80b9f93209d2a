package query

import "gorm.io/gorm/clause"

var (
	ProductFilters = FieldSet{
		{Name: "name", Column: clause.Column{Table: "products", Name: "name"}, Kind: Text},
		{Name: "category_name", Column: clause.Column{Table: "categories", Name: "name"}, Kind: Text},
		{Name: "price", Column: clause.Column{Table: "products", Name: "price"}, Kind: Numeric},
	}

	ProductSorts = SortSet{
		PK: clause.Column{Table: "products", Name: "id"},
		Fields: map[string]clause.Column{
			"name":  {Table: "products", Name: "name"},
			"price": {Table: "products", Name: "price"},
		},
	}

	CategoryFilters = FieldSet{
		{Name: "name", Column: clause.Column{Table: "categories", Name: "name"}, Kind: Text},
	}

	CategorySorts = SortSet{
		PK: clause.Column{Table: "categories", Name: "id"},
		Fields: map[string]clause.Column{
			"name": {Table: "categories", Name: "name"},
		},
	}
)

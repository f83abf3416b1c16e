package repository

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableUsers      = "users"
	tableKitchens   = "kitchens"
	tableCategories = "categories"
	tableItems      = "items"
	tableItemLogs   = "item_logs"
)

var dateType = map[string]string{dialect.Postgres: "date"}

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "external_id", Type: field.TypeString, Unique: true, Size: 191},
		{Name: "email", Type: field.TypeString},
		{Name: "first_name", Type: field.TypeString},
		{Name: "last_name", Type: field.TypeString},
		{Name: "profile_image", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       tableUsers,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// CategoriesColumns holds the columns for the "categories" table.
	CategoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 100},
		{Name: "description", Type: field.TypeString},
		{Name: "icon", Type: field.TypeString, Size: 16},
		{Name: "color", Type: field.TypeString, Size: 16},
		{Name: "created_at", Type: field.TypeTime},
	}
	// CategoriesTable holds the schema information for the "categories" table.
	CategoriesTable = &schema.Table{
		Name:       tableCategories,
		Columns:    CategoriesColumns,
		PrimaryKey: []*schema.Column{CategoriesColumns[0]},
	}

	// KitchensColumns holds the columns for the "kitchens" table.
	KitchensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 100},
		{Name: "location", Type: field.TypeString, Size: 100},
		{Name: "description", Type: field.TypeString},
		{Name: "is_default", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeUUID},
	}
	// KitchensTable holds the schema information for the "kitchens" table.
	KitchensTable = &schema.Table{
		Name:       tableKitchens,
		Columns:    KitchensColumns,
		PrimaryKey: []*schema.Column{KitchensColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "kitchens_users_kitchens",
				Columns:    []*schema.Column{KitchensColumns[7]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "kitchen_user_id_created_at", Columns: []*schema.Column{KitchensColumns[7], KitchensColumns[5]}},
		},
	}

	// ItemsColumns holds the columns for the "items" table.
	ItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 150},
		{Name: "brand", Type: field.TypeString, Size: 100},
		{Name: "quantity", Type: field.TypeInt},
		{Name: "unit", Type: field.TypeString, Size: 50},
		{Name: "location", Type: field.TypeString, Size: 100},
		{Name: "purchase_date", Type: field.TypeTime, Nullable: true, SchemaType: dateType},
		{Name: "expiry_date", Type: field.TypeTime, Nullable: true, SchemaType: dateType},
		{Name: "notes", Type: field.TypeString},
		{Name: "barcode", Type: field.TypeString, Size: 64},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "kitchen_id", Type: field.TypeUUID},
		{Name: "category_id", Type: field.TypeUUID, Nullable: true},
	}
	// ItemsTable holds the schema information for the "items" table.
	ItemsTable = &schema.Table{
		Name:       tableItems,
		Columns:    ItemsColumns,
		PrimaryKey: []*schema.Column{ItemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "items_kitchens_items",
				Columns:    []*schema.Column{ItemsColumns[13]},
				RefColumns: []*schema.Column{KitchensColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "items_categories_items",
				Columns:    []*schema.Column{ItemsColumns[14]},
				RefColumns: []*schema.Column{CategoriesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "item_kitchen_id_expiry_date", Columns: []*schema.Column{ItemsColumns[13], ItemsColumns[7]}},
		},
	}

	// ItemLogsColumns holds the columns for the "item_logs" table.
	ItemLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "action", Type: field.TypeString, Size: 16},
		{Name: "quantity", Type: field.TypeInt},
		{Name: "previous_quantity", Type: field.TypeInt},
		{Name: "user_id", Type: field.TypeUUID, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "item_id", Type: field.TypeUUID},
	}
	// ItemLogsTable holds the schema information for the "item_logs" table.
	ItemLogsTable = &schema.Table{
		Name:       tableItemLogs,
		Columns:    ItemLogsColumns,
		PrimaryKey: []*schema.Column{ItemLogsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "item_logs_items_logs",
				Columns:    []*schema.Column{ItemLogsColumns[6]},
				RefColumns: []*schema.Column{ItemsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "itemlog_item_id_created_at", Columns: []*schema.Column{ItemLogsColumns[6], ItemLogsColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema, in dependency order.
	Tables = []*schema.Table{
		UsersTable,
		CategoriesTable,
		KitchensTable,
		ItemsTable,
		ItemLogsTable,
	}
)

func init() {
	KitchensTable.ForeignKeys[0].RefTable = UsersTable
	ItemsTable.ForeignKeys[0].RefTable = KitchensTable
	ItemsTable.ForeignKeys[1].RefTable = CategoriesTable
	ItemLogsTable.ForeignKeys[0].RefTable = ItemsTable
}

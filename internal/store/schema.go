package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// KVColumns holds the columns for the "kv" table.
	KVColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// KVTable holds the schema information for the "kv" table.
	KVTable = &schema.Table{
		Name:       "kv",
		Columns:    KVColumns,
		PrimaryKey: []*schema.Column{KVColumns[0]},
	}

	// AwardEventsColumns holds the columns for the "award_event" table.
	AwardEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "dispatch_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "mission_id", Type: field.TypeString, Nullable: true},
		{Name: "category", Type: field.TypeString, Nullable: true},
		{Name: "xp", Type: field.TypeInt, Default: 0},
		{Name: "level", Type: field.TypeInt, Default: 0},
	}
	// AwardEventsTable holds the schema information for the "award_event" table.
	AwardEventsTable = &schema.Table{
		Name:       "award_event",
		Columns:    AwardEventsColumns,
		PrimaryKey: []*schema.Column{AwardEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "awardevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{AwardEventsColumns[2]},
			},
			{
				Name:    "awardevent_kind",
				Unique:  false,
				Columns: []*schema.Column{AwardEventsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		KVTable,
		AwardEventsTable,
	}
)

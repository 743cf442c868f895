package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// LoginSessionsColumns holds the columns for the "login_sessions" table.
	LoginSessionsColumns = []*schema.Column{
		{Name: "token", Type: field.TypeString},
		{Name: "course", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "expires_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeInt},
	}
	// LoginSessionsTable holds the schema information for the "login_sessions" table.
	LoginSessionsTable = &schema.Table{
		Name:       "login_sessions",
		Columns:    LoginSessionsColumns,
		PrimaryKey: []*schema.Column{LoginSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "login_sessions_users_sessions",
				Columns:    []*schema.Column{LoginSessionsColumns[4]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "loginsession_expires_at",
				Unique:  false,
				Columns: []*schema.Column{LoginSessionsColumns[3]},
			},
		},
	}

	// UserDocumentsColumns holds the columns for the "user_documents" table.
	UserDocumentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "course", Type: field.TypeString},
		{Name: "document", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeInt},
	}
	// UserDocumentsTable holds the schema information for the "user_documents" table.
	UserDocumentsTable = &schema.Table{
		Name:       "user_documents",
		Columns:    UserDocumentsColumns,
		PrimaryKey: []*schema.Column{UserDocumentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_documents_users_documents",
				Columns:    []*schema.Column{UserDocumentsColumns[4]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "userdocument_user_id_course",
				Unique:  true,
				Columns: []*schema.Column{UserDocumentsColumns[4], UserDocumentsColumns[1]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[2]},
			},
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[5]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		LoginSessionsTable,
		UserDocumentsTable,
		LlmRequestEventsTable,
	}
)

func init() {
	LoginSessionsTable.ForeignKeys[0].RefTable = UsersTable
	UserDocumentsTable.ForeignKeys[0].RefTable = UsersTable
}

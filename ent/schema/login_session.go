package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LoginSession is a cookie login. The token is the primary key.
type LoginSession struct {
	ent.Schema
}

func (LoginSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("token").
			Immutable().
			Comment("Random UUID sent as the session cookie"),
		field.String("course").
			Default("").
			Comment("Course chosen at login"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("expires_at"),
		field.Int("user_id"),
	}
}

func (LoginSession) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("sessions").
			Field("user_id").
			Unique().
			Required(),
	}
}

func (LoginSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("expires_at"),
	}
}

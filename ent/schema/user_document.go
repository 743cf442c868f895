package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UserDocument holds the JSON user data of one learner in one course.
type UserDocument struct {
	ent.Schema
}

func (UserDocument) Fields() []ent.Field {
	return []ent.Field{
		field.String("course"),
		field.Text("document").
			Comment("UserData as JSON; progress key order is significant"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
		field.Int("user_id"),
	}
}

func (UserDocument) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("documents").
			Field("user_id").
			Unique().
			Required(),
	}
}

func (UserDocument) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course").
			Unique(),
	}
}

package database

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// InsertBuilder wraps the PostgreSQL insert builder with RETURNING support.
type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{
		sqlbuilder.PostgreSQL.NewInsertBuilder(),
	}
}

func (ib *InsertBuilder) InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.InsertInto(table)}
}

func (ib *InsertBuilder) Cols(col ...string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Cols(col...)}
}

func (ib *InsertBuilder) Returning(col ...string) *InsertBuilder {
	ib.SQL("RETURNING " + strings.Join(col, ", "))
	return ib
}

func (ib *InsertBuilder) Build() (sql string, args []interface{}) {
	return ib.InsertBuilder.Build()
}

// UpdateBuilder wraps the PostgreSQL update builder with RETURNING support.
type UpdateBuilder struct {
	*sqlbuilder.UpdateBuilder
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{
		sqlbuilder.PostgreSQL.NewUpdateBuilder(),
	}
}

func (ub *UpdateBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{ub.UpdateBuilder.Update(table)}
}

func (ub *UpdateBuilder) Returning(col ...string) *UpdateBuilder {
	ub.SQL("RETURNING " + strings.Join(col, ", "))
	return ub
}

func (ub *UpdateBuilder) Build() (sql string, args []interface{}) {
	return ub.UpdateBuilder.Build()
}

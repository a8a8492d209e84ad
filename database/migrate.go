package database

import (
	"context"
	"database/sql"

	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/statement"
	"github.com/pkg/errors"
)

// Migrate 按依赖顺序创建全部表，已存在的表保持不变
func (d *DB) Migrate(ctx context.Context) error {
	return d.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		for _, entity := range catalog.Entities() {
			schema, err := catalog.Lookup(entity)
			if err != nil {
				return err
			}
			ddl, err := statement.BuildCreateTable(schema, d.driver)
			if err != nil {
				return err
			}
			if _, err := conn.ExecContext(ctx, ddl); err != nil {
				return errors.WithMessagef(classify(err), "failed to create table %s", entity)
			}
		}
		return nil
	})
}

// DropAll 按依赖逆序删除全部表
func (d *DB) DropAll(ctx context.Context) error {
	entities := catalog.Entities()
	return d.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		for i := len(entities) - 1; i >= 0; i-- {
			ddl, err := statement.BuildDropTable(entities[i])
			if err != nil {
				return err
			}
			if _, err := conn.ExecContext(ctx, ddl); err != nil {
				return errors.WithMessagef(classify(err), "failed to drop table %s", entities[i])
			}
		}
		return nil
	})
}

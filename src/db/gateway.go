package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"gorm.io/gorm"
)

// Gateway is the archive's only route to the relational store. SQL uses
// "?" placeholders; dest arguments are pointers to models or slices of them.
type Gateway interface {
	Query(ctx context.Context, dest any, sql string, args ...any) error
	// QueryOne reports false when the statement matched no row.
	QueryOne(ctx context.Context, dest any, sql string, args ...any) (bool, error)
	// Execute returns the number of rows the statement affected.
	Execute(ctx context.Context, sql string, args ...any) (int64, error)
	Insert(ctx context.Context, row any) error
	// ConditionalUpdate writes the scalar fields of patch to the row whose
	// keyColumn equals key and scans the updated row into dest. It returns
	// apperrors.ErrNothingToUpdate when no field survives filtering and
	// otherwise the number of rows updated.
	ConditionalUpdate(ctx context.Context, dest any, table, keyColumn string, key any, patch Patch) (int64, error)
	NextSequence(ctx context.Context, name string) (int, error)
	Ping(ctx context.Context) error
}

type GormGateway struct {
	db *gorm.DB
}

// NewGateway wraps an open gorm connection.
func NewGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func (g *GormGateway) DB() *gorm.DB { return g.db }

func (g *GormGateway) Query(ctx context.Context, dest any, sql string, args ...any) error {
	return classify(g.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error)
}

func (g *GormGateway) QueryOne(ctx context.Context, dest any, sql string, args ...any) (bool, error) {
	result := g.db.WithContext(ctx).Raw(sql, args...).Scan(dest)
	if result.Error != nil {
		return false, classify(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (g *GormGateway) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	result := g.db.WithContext(ctx).Exec(sql, args...)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

func (g *GormGateway) Insert(ctx context.Context, row any) error {
	return classify(g.db.WithContext(ctx).Create(row).Error)
}

func (g *GormGateway) ConditionalUpdate(ctx context.Context, dest any, table, keyColumn string, key any, patch Patch) (int64, error) {
	fields := patch.Filtered()
	if len(fields) == 0 {
		return 0, apperrors.ErrNothingToUpdate
	}

	if err := checkIdentifier(table); err != nil {
		return 0, err
	}
	if err := checkIdentifier(keyColumn); err != nil {
		return 0, err
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		if err := checkIdentifier(f.Column); err != nil {
			return 0, err
		}
		sets = append(sets, f.Column+" = ?")
		args = append(args, f.Value)
	}
	args = append(args, key)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? RETURNING *", table, strings.Join(sets, ", "), keyColumn)

	result := g.db.WithContext(ctx).Raw(sql, args...).Scan(dest)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

// NextSequence increments the named counter in one statement and returns the new value.
func (g *GormGateway) NextSequence(ctx context.Context, name string) (int, error) {
	var value int
	result := g.db.WithContext(ctx).
		Raw("UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value", name).
		Scan(&value)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("counter %q does not exist", name)
	}
	return value, nil
}

// AdvanceSequence moves the named counter forward to at least value. Used after bulk imports.
func (g *GormGateway) AdvanceSequence(ctx context.Context, name string, value int) error {
	_, err := g.Execute(ctx, "UPDATE counters SET value = ? WHERE name = ? AND value < ?", value, name, value)
	return err
}

func (g *GormGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return classify(sqlDB.PingContext(ctx))
}

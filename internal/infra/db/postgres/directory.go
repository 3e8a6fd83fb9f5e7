package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainproperty "rentbook/internal/domain/property"
	domainuser "rentbook/internal/domain/user"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var row propertyRow
	if err := conn(ctx, r.db).Take(&row, "id = ?", string(id)).Error; err != nil {
		return nil, translate(err, domainproperty.ErrNotFound, nil)
	}
	return row.toEntity(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	row := newPropertyRow(p)
	err := conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	return translate(err, nil, nil)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.take(ctx, "id = ?", string(id))
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	return r.take(ctx, "username = ?", domainuser.NormalizeUsername(username))
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	row := newUserRow(u)
	err := conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	return translate(err, nil, nil)
}

func (r *UserRepository) take(ctx context.Context, query string, arg string) (*domainuser.User, error) {
	var row userRow
	if err := conn(ctx, r.db).Take(&row, query, arg).Error; err != nil {
		return nil, translate(err, domainuser.ErrNotFound, nil)
	}
	return row.toEntity(), nil
}

var (
	_ domainproperty.Repository = (*PropertyRepository)(nil)
	_ domainuser.Repository     = (*UserRepository)(nil)
)

package credential

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kbukum/tokengate/database"
)

type userRecord struct {
	Username string `gorm:"primaryKey;size:255"`
	Password string `gorm:"size:500;not null"`
	Enabled  bool   `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

type authorityRecord struct {
	Username  string `gorm:"primaryKey;size:255"`
	Authority string `gorm:"primaryKey;size:64"`
	Position  int    `gorm:"not null"`
}

func (authorityRecord) TableName() string { return "authorities" }

// Models returns the gorm models backing SQLStore, for auto-migration.
func Models() []interface{} {
	return []interface{}{&userRecord{}, &authorityRecord{}}
}

// SQLStore is a Manager over the users and authorities tables.
type SQLStore struct {
	db *database.DB
}

var _ Manager = (*SQLStore)(nil)

// NewSQLStore creates a store on an open database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates or updates the tables.
func (s *SQLStore) Migrate() error {
	return s.db.AutoMigrate(Models()...)
}

func (s *SQLStore) Lookup(ctx context.Context, username string) (Principal, bool, error) {
	u, ok, err := findUser(s.db.WithContext(ctx), username)
	if err != nil || !ok {
		return Principal{}, false, err
	}

	var auths []authorityRecord
	if err := s.db.WithContext(ctx).
		Where("username = ?", u.Username).
		Order("position").
		Find(&auths).Error; err != nil {
		return Principal{}, false, database.FromDatabase(err, "user")
	}

	roles := make([]string, 0, len(auths))
	for _, a := range auths {
		if a.Username == username {
			roles = append(roles, a.Authority)
		}
	}
	return Principal{
		Username:     u.Username,
		PasswordHash: u.Password,
		Roles:        roles,
		Enabled:      u.Enabled,
	}, true, nil
}

func (s *SQLStore) Create(ctx context.Context, p Principal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, ok, err := findUser(tx, p.Username); err != nil {
			return err
		} else if ok {
			return ErrAlreadyExists
		}

		u := userRecord{Username: p.Username, Password: p.PasswordHash, Enabled: p.Enabled}
		if err := tx.Create(&u).Error; err != nil {
			if database.IsDuplicateError(err) {
				return ErrAlreadyExists
			}
			return database.FromDatabase(err, "user")
		}
		return insertRoles(tx, p.Username, p.Roles)
	})
}

func (s *SQLStore) UpdateRoles(ctx context.Context, username string, roles []string) error {
	candidate := Principal{Username: username, PasswordHash: "-", Roles: roles}
	if err := candidate.Validate(); err != nil {
		return err
	}
	return s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, ok, err := findUser(tx, username); err != nil {
			return err
		} else if !ok {
			return ErrNotFound
		}
		if err := tx.Where("username = ?", username).Delete(&authorityRecord{}).Error; err != nil {
			return database.FromDatabase(err, "user")
		}
		return insertRoles(tx, username, roles)
	})
}

func (s *SQLStore) Delete(ctx context.Context, username string) error {
	return s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, ok, err := findUser(tx, username); err != nil {
			return err
		} else if !ok {
			return ErrNotFound
		}
		if err := tx.Where("username = ?", username).Delete(&authorityRecord{}).Error; err != nil {
			return database.FromDatabase(err, "user")
		}
		if err := tx.Where("username = ?", username).Delete(&userRecord{}).Error; err != nil {
			return database.FromDatabase(err, "user")
		}
		return nil
	})
}

// findUser returns the row whose username equals name byte for byte.
func findUser(db *gorm.DB, name string) (userRecord, bool, error) {
	var rows []userRecord
	if err := db.Where("username = ?", name).Find(&rows).Error; err != nil {
		return userRecord{}, false, database.FromDatabase(err, "user")
	}
	for _, r := range rows {
		if r.Username == name {
			return r, true, nil
		}
	}
	return userRecord{}, false, nil
}

func insertRoles(tx *gorm.DB, username string, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	records := make([]authorityRecord, len(roles))
	for i, r := range roles {
		records[i] = authorityRecord{Username: username, Authority: r, Position: i}
	}
	if err := tx.Create(&records).Error; err != nil {
		if database.IsDuplicateError(err) {
			return errors.Join(ErrInvalidPrincipal, err)
		}
		return database.FromDatabase(err, "authority")
	}
	return nil
}

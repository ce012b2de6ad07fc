package dbtest

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

// Fixtures creates rows with sensible defaults for tests.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

// NewFixtures binds a fixture builder to db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) next() int {
	f.n++
	return f.n
}

func (f *Fixtures) create(value any) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("create %T: %v", value, err)
	}
}

// User inserts an owner account.
func (f *Fixtures) User() models.User {
	f.t.Helper()
	u := models.User{
		Email:        fmt.Sprintf("owner%d@example.com", f.next()),
		PasswordHash: "x",
		Name:         "Owner",
	}
	f.create(&u)
	return u
}

// Member inserts a member with the given openid.
func (f *Fixtures) Member(wpOpenID string) models.Member {
	f.t.Helper()
	m := models.Member{WPOpenID: wpOpenID, Nickname: wpOpenID}
	f.create(&m)
	return m
}

// Restaurant inserts a restaurant owned by a fresh user.
func (f *Fixtures) Restaurant(openID string) models.Restaurant {
	f.t.Helper()
	owner := f.User()
	r := models.Restaurant{OpenID: openID, Name: "Restaurant " + openID, OwnerID: owner.ID}
	f.create(&r)
	return r
}

// Product inserts a product priced at price (decimal string).
func (f *Fixtures) Product(restaurantID int64, name, price string) models.Product {
	f.t.Helper()
	p := models.Product{
		RestaurantID: restaurantID,
		Category:     "mains",
		Name:         name,
		ImgKey:       "img/" + name,
		Price:        decimal.RequireFromString(price),
		Unit:         "plate",
		Description:  name + " description",
	}
	f.create(&p)
	return p
}

// TableType inserts a table type with the given seat range.
func (f *Fixtures) TableType(restaurantID int64, name string, minSeats, maxSeats int) models.TableType {
	f.t.Helper()
	tt := models.TableType{RestaurantID: restaurantID, Name: name, MinSeats: minSeats, MaxSeats: maxSeats}
	f.create(&tt)
	return tt
}

// Table inserts a table of the given type.
func (f *Fixtures) Table(tt models.TableType, name string) models.Table {
	f.t.Helper()
	tbl := models.Table{RestaurantID: tt.RestaurantID, TableTypeID: tt.ID, Name: name}
	f.create(&tbl)
	return tbl
}

// Create inserts an arbitrary model.
func (f *Fixtures) Create(value any) {
	f.t.Helper()
	f.create(value)
}

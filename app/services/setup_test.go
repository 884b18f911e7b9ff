package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/models/migrations"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services/invoice"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.AutoMigrate(db))
	return db
}

type memDisk struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemDisk() *memDisk {
	return &memDisk{files: map[string][]byte{}}
}

func (d *memDisk) Put(_ context.Context, path string, content []byte) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = content
	return nil
}

func (d *memDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	return nil
}

func (d *memDisk) URL(path string) string {
	return "/static/uploads/" + path
}

// spyMirror records every call and can be told to fail all of them.
type spyMirror struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (m *spyMirror) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	if m.fail {
		return errors.New("mirror unavailable")
	}
	return nil
}

func (m *spyMirror) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *spyMirror) UpsertUser(_ context.Context, u *models.User) error {
	return m.record("upsert_user:" + u.Email)
}

func (m *spyMirror) InsertProduct(_ context.Context, p *models.Product) error {
	return m.record("insert_product:" + p.Name)
}

func (m *spyMirror) DeleteProduct(_ context.Context, name string) error {
	return m.record("delete_product:" + name)
}

func (m *spyMirror) InsertOrder(_ context.Context, o *models.Order) error {
	return m.record(fmt.Sprintf("insert_order:%d", o.ID))
}

func (m *spyMirror) UpdateOrderStatus(_ context.Context, id uint, status string) error {
	return m.record(fmt.Sprintf("update_order_status:%d:%s", id, status))
}

func (m *spyMirror) DeleteOrder(_ context.Context, id uint) error {
	return m.record(fmt.Sprintf("delete_order:%d", id))
}

type fixture struct {
	db       *gorm.DB
	mirror   *spyMirror
	disk     *memDisk
	accounts *AccountService
	catalog  *CatalogService
	orders   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	spy := &spyMirror{}
	disk := newMemDisk()
	syncer := mirror.NewSyncer(spy, 0)

	users := repositories.NewUserRepository(db)
	categories := repositories.NewCategoryRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)

	return &fixture{
		db:       db,
		mirror:   spy,
		disk:     disk,
		accounts: NewAccountService(users, orders, disk, syncer),
		catalog:  NewCatalogService(categories, products, disk, syncer),
		orders:   NewOrderService(orders, products, invoice.NewPDFRenderer(), nil, syncer),
	}
}

func (f *fixture) seedProduct(t *testing.T, category, name string, price int) *models.Product {
	t.Helper()
	ctx := context.Background()

	cat, err := repositories.NewCategoryRepository(f.db).GetByName(ctx, category)
	require.NoError(t, err)
	if cat == nil {
		cat, err = f.catalog.AddCategory(ctx, category)
		require.NoError(t, err)
	}

	p := &models.Product{Name: name, Price: price, CategoryID: cat.ID}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func answers(vals ...string) [models.RecoverySlots]string {
	var a [models.RecoverySlots]string
	copy(a[:], vals)
	return a
}

package reservation

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
)

type recordingPublisher struct {
	slugs []string
}

func (p *recordingPublisher) Publish(slug string, data []byte) {
	p.slugs = append(p.slugs, slug)
}

type fixture struct {
	svc      *Service
	wishlist *wishlist.Service
	pub      *recordingPublisher
	manage   *wishlist.ManageView
	item     *wishlist.ItemView
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&wishlist.Wishlist{}, &wishlist.WishlistItem{},
		&wishlist.Reservation{}, &wishlist.Contribution{},
	))

	pub := &recordingPublisher{}
	cfg := &config.Config{}
	wsvc := wishlist.NewService(db, pub, cfg)

	manage, err := wsvc.Create(nil, &wishlist.CreateWishlistRequest{Title: "List"})
	require.NoError(t, err)
	item, err := wsvc.AddItem(manage.CreatorSecret, &wishlist.CreateItemRequest{Title: "Bike"})
	require.NoError(t, err)
	pub.slugs = nil

	return &fixture{
		svc:      NewService(db, pub, cfg),
		wishlist: wsvc,
		pub:      pub,
		manage:   manage,
		item:     item,
	}
}

func TestReserve(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)
	assert.Len(t, resp.ReserverSecret, 22)

	public, err := f.wishlist.GetPublic(f.manage.Slug)
	require.NoError(t, err)
	assert.True(t, public.Items[0].IsReserved)

	assert.Equal(t, []string{f.manage.Slug}, f.pub.slugs)
}

func TestReserveConflict(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)

	_, err = f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Оля"})
	assert.ErrorIs(t, err, wishlist.ErrConflict)

	// The losing attempt must not broadcast
	assert.Len(t, f.pub.slugs, 1)
}

func TestReserveUnknownSlugOrItem(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Reserve("no-such-slug", f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	assert.ErrorIs(t, err, wishlist.ErrNotFound)

	_, err = f.svc.Reserve(f.manage.Slug, f.item.ID+99, &ReserveRequest{ReserverName: "Ваня"})
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
}

func TestReserveItemFromAnotherList(t *testing.T) {
	f := setup(t)

	other, err := f.wishlist.Create(nil, &wishlist.CreateWishlistRequest{Title: "Other"})
	require.NoError(t, err)

	// Valid item id, wrong list: resolves as not found
	_, err = f.svc.Reserve(other.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
}

func TestGetReservation(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)

	view, err := f.svc.Get(resp.ReserverSecret)
	require.NoError(t, err)
	assert.Equal(t, "Ваня", view.ReserverName)
	assert.Equal(t, f.item.ID, view.WishlistItemID)
	assert.Equal(t, "Bike", view.ItemTitle)

	_, err = f.svc.Get("wrong-secret")
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
}

func TestCancelFreesItemForNewReservation(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(resp.ReserverSecret))

	public, err := f.wishlist.GetPublic(f.manage.Slug)
	require.NoError(t, err)
	assert.False(t, public.Items[0].IsReserved)

	// Freed item is reservable again, under a fresh secret
	again, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Оля"})
	require.NoError(t, err)
	assert.NotEqual(t, resp.ReserverSecret, again.ReserverSecret)

	// reserve, cancel, reserve each broadcast once
	assert.Equal(t, []string{f.manage.Slug, f.manage.Slug, f.manage.Slug}, f.pub.slugs)
}

func TestCancelTwiceIsNotFound(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Reserve(f.manage.Slug, f.item.ID, &ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(resp.ReserverSecret))
	assert.ErrorIs(t, f.svc.Cancel(resp.ReserverSecret), wishlist.ErrNotFound)
}

package contribution

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/reservation"
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
	resSvc   *reservation.Service
	wishlist *wishlist.Service
	pub      *recordingPublisher
	manage   *wishlist.ManageView
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

	return &fixture{
		svc:      NewService(db, pub, cfg),
		resSvc:   reservation.NewService(db, pub, cfg),
		wishlist: wsvc,
		pub:      pub,
		manage:   manage,
	}
}

func (f *fixture) addItem(t *testing.T, price, minContribution string) *wishlist.ItemView {
	t.Helper()

	req := &wishlist.CreateItemRequest{Title: "Bike"}
	if price != "" {
		p := decimal.RequireFromString(price)
		req.Price = &p
	}
	if minContribution != "" {
		m := decimal.RequireFromString(minContribution)
		req.MinContribution = &m
	}

	item, err := f.wishlist.AddItem(f.manage.CreatorSecret, req)
	require.NoError(t, err)
	f.pub.slugs = nil
	return item
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestContribute(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	resp, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("100.00"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.ContributorSecret, 22)

	public, err := f.wishlist.GetPublic(f.manage.Slug)
	require.NoError(t, err)
	assert.True(t, public.Items[0].TotalContributed.Equal(amount("100.00")))

	assert.Equal(t, []string{f.manage.Slug}, f.pub.slugs)
}

func TestContributeRequiresPositiveAmount(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("0"),
	})
	assert.ErrorIs(t, err, wishlist.ErrInvalidState)

	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("-5.00"),
	})
	assert.ErrorIs(t, err, wishlist.ErrInvalidState)
}

func TestContributeUnpricedItem(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "", "")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("10.00"),
	})
	assert.ErrorIs(t, err, wishlist.ErrInvalidState)
}

func TestContributeReservedItem(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	_, err := f.resSvc.Reserve(f.manage.Slug, item.ID, &reservation.ReserveRequest{ReserverName: "Ваня"})
	require.NoError(t, err)
	f.pub.slugs = nil

	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("10.00"),
	})
	assert.ErrorIs(t, err, wishlist.ErrInvalidState)
	assert.Empty(t, f.pub.slugs)
}

func TestContributeOverLimit(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("250.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Петя",
		Amount:          amount("100.00"),
	})

	var limitErr *wishlist.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.Price.Equal(amount("300.00")))
	assert.True(t, limitErr.Total.Equal(amount("250.00")))
	assert.True(t, limitErr.Remaining.Equal(amount("50.00")))
}

func TestContributeBelowMinimum(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "25.00")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("10.00"),
	})

	var minErr *wishlist.BelowMinimumError
	require.ErrorAs(t, err, &minErr)
	assert.True(t, minErr.Minimum.Equal(amount("25.00")))
}

func TestLimitCheckRunsBeforeMinimum(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "100.00", "50.00")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("90.00"),
	})
	require.NoError(t, err)

	// 40 is below the 50 minimum AND would exceed the price; headroom wins
	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Петя",
		Amount:          amount("40.00"),
	})

	var limitErr *wishlist.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.Remaining.Equal(amount("10.00")))
}

func TestExactFillThenNoHeadroom(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	_, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("300.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Петя",
		Amount:          amount("0.01"),
	})

	var limitErr *wishlist.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.Remaining.IsZero())
}

func TestGetContribution(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	resp, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("100.00"),
	})
	require.NoError(t, err)

	view, err := f.svc.Get(resp.ContributorSecret)
	require.NoError(t, err)
	assert.Equal(t, "Оля", view.ContributorName)
	assert.True(t, view.Amount.Equal(amount("100.00")))
	assert.Equal(t, "Bike", view.ItemTitle)

	_, err = f.svc.Get("wrong-secret")
	assert.ErrorIs(t, err, wishlist.ErrNotFound)
}

func TestCancelRestoresHeadroomAndBroadcasts(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	resp, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("300.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(resp.ContributorSecret))

	public, err := f.wishlist.GetPublic(f.manage.Slug)
	require.NoError(t, err)
	assert.True(t, public.Items[0].TotalContributed.IsZero())

	// Headroom is back
	_, err = f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Петя",
		Amount:          amount("300.00"),
	})
	require.NoError(t, err)

	// contribute, cancel, contribute each broadcast once
	assert.Equal(t, []string{f.manage.Slug, f.manage.Slug, f.manage.Slug}, f.pub.slugs)
}

func TestCancelTwiceIsNotFound(t *testing.T) {
	f := setup(t)
	item := f.addItem(t, "300.00", "")

	resp, err := f.svc.Contribute(f.manage.Slug, item.ID, &ContributeRequest{
		ContributorName: "Оля",
		Amount:          amount("100.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(resp.ContributorSecret))
	assert.ErrorIs(t, f.svc.Cancel(resp.ContributorSecret), wishlist.ErrNotFound)
}

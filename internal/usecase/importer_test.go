package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type importFixture struct {
	store    *memStore
	market   *fakeMarketplace
	cache    *fakeCache
	notifier *recordingNotifier
	alerts   *AlertUsecase
	importer *Importer
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := newMemStore()
	repos := store.repos()
	f := &importFixture{
		store:    store,
		market:   newFakeMarketplace(),
		cache:    newFakeCache(),
		notifier: &recordingNotifier{},
	}
	f.alerts = NewAlertUsecase(repos.Parts, repos.Alerts, store, f.notifier, fixedClock, logger)
	f.importer = NewImporter(f.market, store, f.alerts, f.cache, 0, 20, fixedClock, testZone, logger)
	return f
}

func listing(title string, low int, high *int, mall string) domain.SearchItem {
	return domain.SearchItem{
		Title:     title,
		Link:      "https://smartstore.naver.com/pcmall/products/1001",
		Image:     "https://shopping-phinf.pstatic.net/1001.jpg",
		LowPrice:  intPtr(low),
		HighPrice: high,
		MallName:  mall,
		Maker:     "AMD",
	}
}

func TestImportKeywordRepeatAppendsOffersToOnePart(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	f.market.respond("AMD 라이젠 CPU", listing("AMD <b>라이젠</b> 5 7600 CPU", 250000, nil, "컴퓨존"))

	first, err := f.importer.ImportKeyword(ctx, "AMD 라이젠 CPU", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, KeywordResult{PartsCreated: 1, PriceEntriesCreated: 1, SellersCreated: 1}, first)

	second, err := f.importer.ImportKeyword(ctx, "AMD 라이젠 CPU", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, KeywordResult{PriceEntriesCreated: 1}, second)

	parts, entries, history := f.store.counts()
	assert.Equal(t, 1, parts)
	assert.Equal(t, 2, entries)
	assert.Equal(t, 2, history)
}

func TestImportKeywordMatchesNameCaseInsensitively(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("q",
		listing("Samsung 990 PRO 1TB", 180000, nil, "A"),
		listing("samsung 990 pro 1tb", 175000, nil, "B"),
	)

	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategorySSD)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PartsCreated)
	assert.Equal(t, 2, result.PriceEntriesCreated)
	assert.Equal(t, 2, result.SellersCreated)

	parts, _, _ := f.store.counts()
	assert.Equal(t, 1, parts)
}

func TestImportKeywordSameNameInOtherCategoryIsNewPart(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("q", listing("Corsair iCUE 5000X", 210000, nil, "A"))

	_, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryCase)
	require.NoError(t, err)
	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryCooler)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PartsCreated)
	parts, _, _ := f.store.counts()
	assert.Equal(t, 2, parts)
}

func TestImportKeywordBlacklist(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("게이밍 CPU",
		listing("조립PC 풀세트", 990000, nil, "A"),
		listing("AMD 라이젠 5 CPU", 210000, nil, "A"),
	)

	result, err := f.importer.ImportKeyword(context.Background(), "게이밍 CPU", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PartsCreated)
	assert.Equal(t, 1, result.PriceEntriesCreated)
	assert.Equal(t, 1, result.Skipped)

	part, err := f.store.repos().Parts.FindByName(context.Background(), domain.CategoryCPU, "AMD 라이젠 5 CPU")
	require.NoError(t, err)
	assert.Equal(t, "AMD 라이젠 5 CPU", part.Name)
}

func TestImportKeywordBlacklistedOnlyCreatesNothing(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("q", listing("조립PC 풀세트", 990000, nil, "A"))

	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, KeywordResult{Skipped: 1}, result)

	parts, entries, history := f.store.counts()
	assert.Zero(t, parts)
	assert.Zero(t, entries)
	assert.Zero(t, history)
	assert.Empty(t, f.store.sellers)
}

func TestImportKeywordSkipsUnusableListings(t *testing.T) {
	f := newImportFixture(t)
	noPrice := listing("Crucial P3 Plus 1TB", 1, nil, "A")
	noPrice.LowPrice = nil
	f.market.respond("q",
		listing("<b> </b>", 50000, nil, "A"),
		noPrice,
		listing("WD Blue SN580 1TB", 0, nil, "A"),
	)

	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategorySSD)
	require.NoError(t, err)
	assert.Equal(t, KeywordResult{Skipped: 3}, result)
}

func TestImportKeywordWidensPriceRange(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	part := f.store.addPart(domain.Part{
		Name:         "MSI 지포스 RTX 4070 벤투스",
		Category:     domain.CategoryGPU,
		LowestPrice:  intPtr(100000),
		HighestPrice: intPtr(150000),
	})

	f.market.respond("wider", listing(part.Name, 90000, intPtr(160000), "A"))
	_, err := f.importer.ImportKeyword(ctx, "wider", domain.CategoryGPU)
	require.NoError(t, err)

	stored := f.store.part(part.ID)
	assert.Equal(t, 90000, *stored.LowestPrice)
	assert.Equal(t, 160000, *stored.HighestPrice)

	f.market.respond("inside", listing(part.Name, 120000, nil, "A"))
	_, err = f.importer.ImportKeyword(ctx, "inside", domain.CategoryGPU)
	require.NoError(t, err)

	stored = f.store.part(part.ID)
	assert.Equal(t, 90000, *stored.LowestPrice)
	assert.Equal(t, 160000, *stored.HighestPrice)
}

func TestImportKeywordNewPartRange(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("q",
		listing("ASUS PRIME B650M-A", 189000, intPtr(230000), "A"),
		listing("MSI PRO B760M-A", 159000, nil, "A"),
	)

	_, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryMotherboard)
	require.NoError(t, err)

	repos := f.store.repos()
	asus, err := repos.Parts.FindByName(context.Background(), domain.CategoryMotherboard, "ASUS PRIME B650M-A")
	require.NoError(t, err)
	assert.Equal(t, 189000, *asus.LowestPrice)
	assert.Equal(t, 230000, *asus.HighestPrice)

	msi, err := repos.Parts.FindByName(context.Background(), domain.CategoryMotherboard, "MSI PRO B760M-A")
	require.NoError(t, err)
	assert.Equal(t, 159000, *msi.LowestPrice)
	assert.Equal(t, 159000, *msi.HighestPrice)
}

func TestImportKeywordSellerAndPartDefaults(t *testing.T) {
	f := newImportFixture(t)
	item := listing("Intel Core i5-14400F", 230000, nil, "")
	item.Link = "https://search.shopping.naver.com/catalog/44012345?query=cpu"
	item.Maker = " "
	item.Brand = "Intel"
	f.market.respond("q", item)

	_, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryCPU)
	require.NoError(t, err)

	seller, err := f.store.repos().Sellers.GetByName(context.Background(), domain.DefaultSellerName)
	require.NoError(t, err)
	assert.Equal(t, "https://search.shopping.naver.com", seller.SiteURL)
	assert.Equal(t, domain.SellerActive, seller.Status)
	assert.Equal(t, 3.0, seller.ReliabilityScore)

	part, err := f.store.repos().Parts.FindByName(context.Background(), domain.CategoryCPU, "Intel Core i5-14400F")
	require.NoError(t, err)
	assert.Equal(t, "Intel", part.Manufacturer)
	assert.Equal(t, item.Image, part.ImageURL)
}

func TestImportKeywordRecordsHistoryForLocalDate(t *testing.T) {
	f := newImportFixture(t)
	late := func() time.Time { return time.Date(2026, 3, 15, 23, 30, 0, 0, testZone) }
	f.importer.now = late
	f.market.respond("q", listing("Seasonic FOCUS GX-850", 169000, nil, "A"))

	_, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryPowerSupply)
	require.NoError(t, err)

	require.Len(t, f.store.history, 1)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), f.store.history[0].RecordDate)
	assert.Equal(t, 169000, f.store.history[0].Price)
}

func TestImportKeywordTriggersAlertsOnce(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	part := f.store.addPart(domain.Part{
		Name:         "AMD 라이젠 7 7800X3D",
		Category:     domain.CategoryCPU,
		LowestPrice:  intPtr(170000),
		HighestPrice: intPtr(180000),
	})
	repos := f.store.repos()
	hit := &domain.PriceAlert{UserID: 7, PartID: part.ID, TargetPrice: 160000, Active: true}
	miss := &domain.PriceAlert{UserID: 8, PartID: part.ID, TargetPrice: 100000, Active: true}
	require.NoError(t, repos.Alerts.Create(ctx, hit))
	require.NoError(t, repos.Alerts.Create(ctx, miss))

	f.market.respond("q", listing(part.Name, 150000, nil, "A"))
	result, err := f.importer.ImportKeyword(ctx, "q", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlertsTriggered)

	fired := f.store.alert(hit.ID)
	assert.True(t, fired.Triggered)
	assert.False(t, fired.Active)
	assert.False(t, f.store.alert(miss.ID).Triggered)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, uint(7), sent[0].UserID)
	assert.Equal(t, domain.NotificationPriceAlert, sent[0].Kind)
	assert.Equal(t, "/parts/1", sent[0].Link)

	result, err = f.importer.ImportKeyword(ctx, "q", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Zero(t, result.AlertsTriggered)
	assert.Len(t, f.notifier.all(), 1)
}

func TestImportKeywordEvictsCachedComparison(t *testing.T) {
	f := newImportFixture(t)
	f.market.respond("q", listing("G.SKILL DDR5-6000 32GB", 129000, nil, "A"))

	_, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryRAM)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, f.cache.evicted)
}

func TestImportKeywordCacheFailureIsIgnored(t *testing.T) {
	f := newImportFixture(t)
	f.cache.failing = true
	f.market.respond("q", listing("G.SKILL DDR5-6000 32GB", 129000, nil, "A"))

	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryRAM)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PriceEntriesCreated)
}

func TestImportKeywordSkipsRetiredPart(t *testing.T) {
	f := newImportFixture(t)
	deleted := fixedClock()
	f.store.addPart(domain.Part{Name: "Old Cooler 120", Category: domain.CategoryCooler, DeletedAt: &deleted})
	f.market.respond("q", listing("Old Cooler 120", 30000, nil, "A"))

	result, err := f.importer.ImportKeyword(context.Background(), "q", domain.CategoryCooler)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.PriceEntriesCreated)
}

func TestImportKeywordNoResponse(t *testing.T) {
	f := newImportFixture(t)

	result, err := f.importer.ImportKeyword(context.Background(), "nothing", domain.CategoryCPU)
	require.NoError(t, err)
	assert.Equal(t, KeywordResult{}, result)
	assert.Equal(t, 1, f.market.callCount())
}

func TestImportKeywordCancelledContext(t *testing.T) {
	f := newImportFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.importer.ImportKeyword(ctx, "q", domain.CategoryCPU)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.market.callCount())
}

func TestRefreshSellerOffersOnlyRecordsThatSeller(t *testing.T) {
	f := newImportFixture(t)
	seller := f.store.addSeller(domain.Seller{Name: "컴퓨존", Status: domain.SellerActive})
	part := f.store.addPart(domain.Part{Name: "Lian Li O11 Dynamic EVO", Category: domain.CategoryCase})
	f.market.respond(part.Name,
		listing(part.Name, 199000, nil, "컴퓨존"),
		listing(part.Name, 189000, nil, "11번가"),
	)

	result, err := f.importer.RefreshSellerOffers(context.Background(), seller, part)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PriceEntriesCreated)
	assert.Zero(t, result.SellersCreated)

	require.Len(t, f.store.entries, 1)
	assert.Equal(t, seller.ID, f.store.entries[0].SellerID)
	assert.Equal(t, 199000, f.store.entries[0].Price)
}

func TestSiteURL(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://smartstore.naver.com/pcmall/products/1", "https://smartstore.naver.com"},
		{"http://www.compuzone.co.kr/product?id=3", "http://www.compuzone.co.kr"},
		{"", defaultSellerSiteURL},
		{"not a url", defaultSellerSiteURL},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, siteURL(tt.link), tt.link)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "라이젠", truncateRunes("라이젠 CPU", 3))
	assert.Equal(t, "short", truncateRunes("short", 10))
}

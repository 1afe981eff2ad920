package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
)

var testZone = time.FixedZone("KST", 9*60*60)

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 10, 30, 0, 0, testZone)
}

func intPtr(v int) *int { return &v }

// memStore backs every repository interface with plain maps. WithinTx does
// not roll back; tests that need rollback use the sqlite repositories.
type memStore struct {
	mu            sync.Mutex
	nextID        uint
	parts         map[uint]domain.Part
	sellers       map[uint]domain.Seller
	entries       []domain.PriceEntry
	history       []domain.PriceHistory
	alerts        map[uint]domain.PriceAlert
	notifications []domain.Notification
	entryReads    int
}

func newMemStore() *memStore {
	return &memStore{
		parts:   make(map[uint]domain.Part),
		sellers: make(map[uint]domain.Seller),
		alerts:  make(map[uint]domain.PriceAlert),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) repos() domain.Repositories {
	return domain.Repositories{
		Parts:         memParts{s},
		Sellers:       memSellers{s},
		Entries:       memEntries{s},
		History:       memHistory{s},
		Alerts:        memAlerts{s},
		Notifications: memNotifications{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return fn(ctx, s.repos())
}

func (s *memStore) addPart(part domain.Part) domain.Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	part.ID = s.id()
	s.parts[part.ID] = part
	return part
}

func (s *memStore) addSeller(seller domain.Seller) domain.Seller {
	s.mu.Lock()
	defer s.mu.Unlock()
	seller.ID = s.id()
	s.sellers[seller.ID] = seller
	return seller
}

func (s *memStore) addEntry(entry domain.PriceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.id()
	s.entries = append(s.entries, entry)
}

func (s *memStore) addHistory(row domain.PriceHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID = s.id()
	s.history = append(s.history, row)
}

func (s *memStore) part(id uint) domain.Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parts[id]
}

func (s *memStore) alert(id uint) domain.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts[id]
}

func (s *memStore) counts() (parts, entries, history int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.parts), len(s.entries), len(s.history)
}

func (s *memStore) reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryReads
}

type memParts struct{ s *memStore }

func (r memParts) GetByID(_ context.Context, partID uint) (*domain.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	part, ok := r.s.parts[partID]
	if !ok || part.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return &part, nil
}

func (r memParts) GetByIDs(_ context.Context, partIDs []uint) (map[uint]domain.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := make(map[uint]domain.Part)
	for _, id := range partIDs {
		if part, ok := r.s.parts[id]; ok {
			found[id] = part
		}
	}
	return found, nil
}

func (r memParts) Exists(ctx context.Context, partID uint) (bool, error) {
	_, err := r.GetByID(ctx, partID)
	return err == nil, nil
}

func (r memParts) FindByName(_ context.Context, category domain.Category, name string) (*domain.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, part := range r.s.parts {
		if part.DeletedAt == nil && part.Category == category && domain.NameKey(part.Name) == domain.NameKey(name) {
			found := part
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memParts) CreateIfAbsent(_ context.Context, part *domain.Part) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.parts {
		if existing.Category == part.Category && domain.NameKey(existing.Name) == domain.NameKey(part.Name) {
			*part = existing
			return false, nil
		}
	}
	part.ID = r.s.id()
	part.CreatedAt = fixedClock()
	r.s.parts[part.ID] = *part
	return true, nil
}

func (r memParts) UpdatePriceRange(_ context.Context, partID uint, lowest, highest *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	part, ok := r.s.parts[partID]
	if !ok {
		return domain.ErrNotFound
	}
	part.LowestPrice, part.HighestPrice = lowest, highest
	r.s.parts[partID] = part
	return nil
}

func (r memParts) ListBySeller(_ context.Context, sellerID uint, limit int) ([]domain.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make(map[uint]struct{})
	for _, entry := range r.s.entries {
		if entry.SellerID == sellerID {
			ids[entry.PartID] = struct{}{}
		}
	}
	var parts []domain.Part
	for id := range ids {
		if part, ok := r.s.parts[id]; ok && part.DeletedAt == nil {
			parts = append(parts, part)
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	if limit > 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	return parts, nil
}

type memSellers struct{ s *memStore }

func (r memSellers) GetByName(_ context.Context, name string) (*domain.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, seller := range r.s.sellers {
		if seller.Name == name {
			found := seller
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memSellers) CreateIfAbsent(ctx context.Context, seller *domain.Seller) (bool, error) {
	if existing, err := r.GetByName(ctx, seller.Name); err == nil {
		*seller = *existing
		return false, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seller.ID = r.s.id()
	r.s.sellers[seller.ID] = *seller
	return true, nil
}

func (r memSellers) ListByStatus(_ context.Context, status domain.SellerStatus) ([]domain.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sellers []domain.Seller
	for _, seller := range r.s.sellers {
		if seller.Status == status {
			sellers = append(sellers, seller)
		}
	}
	sort.Slice(sellers, func(i, j int) bool { return sellers[i].ID < sellers[j].ID })
	return sellers, nil
}

type memEntries struct{ s *memStore }

func (r memEntries) Create(_ context.Context, entry *domain.PriceEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.id()
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r memEntries) ListAvailableByPart(_ context.Context, partID uint) ([]domain.PriceOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entryReads++
	var offers []domain.PriceOffer
	for _, entry := range r.s.entries {
		if entry.PartID != partID || !entry.Available {
			continue
		}
		seller := r.s.sellers[entry.SellerID]
		offers = append(offers, domain.PriceOffer{
			EntryID:    entry.ID,
			SellerID:   entry.SellerID,
			SellerName: seller.Name,
			SiteURL:    seller.SiteURL,
			Price:      entry.Price,
			ProductURL: entry.ProductURL,
			Available:  entry.Available,
		})
	}
	return offers, nil
}

func (r memEntries) CountByPart(_ context.Context, partID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, entry := range r.s.entries {
		if entry.PartID == partID {
			count++
		}
	}
	return count, nil
}

type memHistory struct{ s *memStore }

func (r memHistory) Create(_ context.Context, row *domain.PriceHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row.ID = r.s.id()
	r.s.history = append(r.s.history, *row)
	return nil
}

func (r memHistory) ListByPartBetween(_ context.Context, partID uint, from, to time.Time) ([]domain.PriceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []domain.PriceHistory
	for _, row := range r.s.history {
		if row.PartID == partID && !row.RecordDate.Before(from) && !row.RecordDate.After(to) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RecordDate.Before(rows[j].RecordDate) })
	return rows, nil
}

type memAlerts struct{ s *memStore }

func (r memAlerts) Create(_ context.Context, alert *domain.PriceAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert.ID = r.s.id()
	alert.CreatedAt = fixedClock()
	r.s.alerts[alert.ID] = *alert
	return nil
}

func (r memAlerts) GetByID(_ context.Context, alertID uint) (*domain.PriceAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert, ok := r.s.alerts[alertID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &alert, nil
}

func (r memAlerts) list(match func(domain.PriceAlert) bool) []domain.PriceAlert {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var alerts []domain.PriceAlert
	for _, alert := range r.s.alerts {
		if match(alert) {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID < alerts[j].ID })
	return alerts
}

func (r memAlerts) ListActiveByUser(_ context.Context, userID uint) ([]domain.PriceAlert, error) {
	return r.list(func(a domain.PriceAlert) bool { return a.UserID == userID && a.Active }), nil
}

func (r memAlerts) ListPendingByPart(_ context.Context, partID uint) ([]domain.PriceAlert, error) {
	return r.list(func(a domain.PriceAlert) bool { return a.PartID == partID && a.Active && !a.Triggered }), nil
}

func (r memAlerts) Deactivate(_ context.Context, alertID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert, ok := r.s.alerts[alertID]
	if !ok {
		return domain.ErrNotFound
	}
	alert.Active = false
	r.s.alerts[alertID] = alert
	return nil
}

func (r memAlerts) MarkTriggered(_ context.Context, alertID uint, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alert, ok := r.s.alerts[alertID]
	if !ok || !alert.Active || alert.Triggered {
		return false, nil
	}
	alert.Active = false
	alert.Triggered = true
	alert.TriggeredAt = &at
	r.s.alerts[alertID] = alert
	return true, nil
}

type memNotifications struct{ s *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.id()
	n.CreatedAt = fixedClock()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r memNotifications) ListByUser(_ context.Context, userID uint, limit int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if r.s.notifications[i].UserID == userID {
			out = append(out, r.s.notifications[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, userID, notificationID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == notificationID && n.UserID == userID {
			r.s.notifications[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memNotifications) CountUnread(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for i, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			r.s.notifications[i].Read = true
			count++
		}
	}
	return count, nil
}

type fakeMarketplace struct {
	mu         sync.Mutex
	configured bool
	results    map[string]*domain.SearchResult
	panicOn    string
	calls      []string
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{configured: true, results: make(map[string]*domain.SearchResult)}
}

func (m *fakeMarketplace) Configured() bool { return m.configured }

func (m *fakeMarketplace) Search(_ context.Context, query string, _, _ int, _ string) *domain.SearchResult {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	if query == m.panicOn {
		panic("marketplace exploded")
	}
	return m.results[query]
}

func (m *fakeMarketplace) respond(query string, items ...domain.SearchItem) {
	m.results[query] = &domain.SearchResult{Total: len(items), Start: 1, Display: len(items), Items: items}
}

func (m *fakeMarketplace) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var errCacheDown = errors.New("cache down")

type fakeCache struct {
	mu      sync.Mutex
	failing bool
	data    map[uint]domain.PriceComparison
	gets    int
	sets    int
	evicted []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[uint]domain.PriceComparison)}
}

func (c *fakeCache) GetComparison(_ context.Context, partID uint) (*domain.PriceComparison, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failing {
		return nil, false, errCacheDown
	}
	cached, ok := c.data[partID]
	if !ok {
		return nil, false, nil
	}
	return &cached, true, nil
}

func (c *fakeCache) SetComparison(_ context.Context, comparison *domain.PriceComparison, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.failing {
		return errCacheDown
	}
	c.data[comparison.PartID] = *comparison
	return nil
}

func (c *fakeCache) Evict(_ context.Context, partID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, partID)
	if c.failing {
		return errCacheDown
	}
	delete(c.data, partID)
	return nil
}

type sentNotification struct {
	UserID  uint
	Kind    domain.NotificationType
	Title   string
	Message string
	Link    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, kind domain.NotificationType, title, message, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind, Title: title, Message: message, Link: link})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []string
}

func (r *recordingReporter) Report(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, text)
}

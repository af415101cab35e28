package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/sisterly-service/internal/booking"
	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
)

// memStore - хранилище в памяти для тестов сервисов; транзакция откатывает
// изменения, если fn вернула ошибку.
type memStore struct {
	mu        sync.Mutex
	seq       int
	products  map[string]models.Product
	orders    map[string]models.Order
	issues    map[string]models.Issue
	videos    []models.MediaFile
	favorites map[string]map[string]bool
	refsOK    bool
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[string]models.Product),
		orders:    make(map[string]models.Order),
		issues:    make(map[string]models.Issue),
		favorites: make(map[string]map[string]bool),
		refsOK:    true,
	}
}

func (m *memStore) nextId(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type snapshot struct {
	seq       int
	products  map[string]models.Product
	orders    map[string]models.Order
	issues    map[string]models.Issue
	videos    []models.MediaFile
	favorites map[string]map[string]bool
}

func (m *memStore) snapshot() snapshot {
	s := snapshot{
		seq:       m.seq,
		products:  make(map[string]models.Product, len(m.products)),
		orders:    make(map[string]models.Order, len(m.orders)),
		issues:    make(map[string]models.Issue, len(m.issues)),
		videos:    append([]models.MediaFile(nil), m.videos...),
		favorites: make(map[string]map[string]bool, len(m.favorites)),
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.issues {
		v.Messages = append([]models.IssueMessage(nil), v.Messages...)
		s.issues[k] = v
	}
	for k, v := range m.favorites {
		inner := make(map[string]bool, len(v))
		for p := range v {
			inner[p] = true
		}
		s.favorites[k] = inner
	}
	return s
}

func (m *memStore) restore(s snapshot) {
	m.seq = s.seq
	m.products = s.products
	m.orders = s.orders
	m.issues = s.issues
	m.videos = s.videos
	m.favorites = s.favorites
}

func (m *memStore) inTx(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// --- helpers for tests ---

func (m *memStore) putProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.nextId("product")
	}
	m.products[p.ID] = p
	return p
}

func (m *memStore) putOrder(o models.Order) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == "" {
		o.ID = m.nextId("order")
	}
	o.DateStart = booking.DateOf(o.DateStart)
	o.DateEnd = booking.DateOf(o.DateEnd)
	m.orders[o.ID] = o
	return o
}

func (m *memStore) putIssue(i models.Issue) models.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.ID == "" {
		i.ID = m.nextId("issue")
	}
	m.issues[i.ID] = i
	return i
}

func (m *memStore) product(id string) (models.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *memStore) order(id string) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	return o, ok
}

func (m *memStore) productIssues(productId string) []models.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Issue
	for _, i := range m.issues {
		if i.ProductID == productId {
			out = append(out, i)
		}
	}
	return out
}

func (m *memStore) videoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.videos)
}

func sortedOrders(orders []models.Order) []models.Order {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}

// --- unlocked primitives ---

func (m *memStore) getProduct(id string) *models.Product {
	p, ok := m.products[id]
	if !ok {
		return nil
	}
	return &p
}

func (m *memStore) getOrder(id string) *models.Order {
	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	return &o
}

func (m *memStore) confirmedAt(productId string, day time.Time) bool {
	for _, o := range m.orders {
		if o.ProductID == productId && o.State.IsConfirmed() && booking.NewDateRange(o.DateStart, o.DateEnd).Contains(day) {
			return true
		}
	}
	return false
}

func (m *memStore) confirmedWithin(productId string, period booking.DateRange) []models.Order {
	var out []models.Order
	for _, o := range m.orders {
		if o.ProductID == productId && o.State.IsConfirmed() && booking.NewDateRange(o.DateStart, o.DateEnd).Overlaps(period) {
			out = append(out, o)
		}
	}
	return sortedOrders(out)
}

func (m *memStore) openIssue(productId string) *models.Issue {
	for _, i := range m.issues {
		if i.ProductID == productId && i.Open {
			return &i
		}
	}
	return nil
}

// --- ProductRepository ---

type fakeProductRepo struct{ *memStore }

var _ repository.ProductRepository = fakeProductRepo{}

func (r fakeProductRepo) CreateProduct(_ context.Context, product models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = r.nextId("product")
	product.Status = models.PreparationProduct
	product.Version = 1
	r.products[product.ID] = product
	return &product, nil
}

func (r fakeProductRepo) GetProductById(_ context.Context, productId string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getProduct(productId), nil
}

func (r fakeProductRepo) CheckProductReferences(_ context.Context, _ string, _ models.ProductRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refsOK, nil
}

func (r fakeProductRepo) GetProducts(_ context.Context, status models.ProductStatus, limit, offset int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0)
	for _, p := range r.products {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return page(out, limit, offset), nil
}

func (r fakeProductRepo) GetOwnerProducts(_ context.Context, ownerId string, statuses []models.ProductStatus, limit, offset int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0)
	for _, p := range r.products {
		if p.OwnerID != ownerId {
			continue
		}
		for _, s := range statuses {
			if p.Status == s {
				out = append(out, p)
				break
			}
		}
	}
	return page(out, limit, offset), nil
}

func (r fakeProductRepo) SearchProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0)
	for _, p := range r.products {
		if p.Status == models.AcceptedProduct && (len(filter.BrandIDs) == 0 || contains(filter.BrandIDs, p.BrandID)) {
			out = append(out, p)
		}
	}
	return page(out, filter.Limit, filter.Start), nil
}

func (r fakeProductRepo) GetProductIssues(_ context.Context, productId string) ([]models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Issue, 0)
	for _, i := range r.issues {
		if i.ProductID == productId {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r fakeProductRepo) InTx(_ context.Context, fn func(tx repository.ProductTx) error) error {
	return r.inTx(func() error { return fn(fakeProductTx{r.memStore}) })
}

type fakeProductTx struct{ *memStore }

func (t fakeProductTx) GetProductForUpdate(_ context.Context, productId string) (*models.Product, error) {
	return t.getProduct(productId), nil
}

func (t fakeProductTx) UpdateProduct(_ context.Context, product models.Product) (*models.Product, error) {
	product.Version++
	t.products[product.ID] = product
	return &product, nil
}

func (t fakeProductTx) SetProductStatus(_ context.Context, productId string, status models.ProductStatus) error {
	p := t.products[productId]
	p.Status = status
	t.products[productId] = p
	return nil
}

func (t fakeProductTx) AddMediaFile(_ context.Context, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error) {
	file := models.MediaFile{ID: t.nextId(string(kind)), MediaID: mediaId, URL: fileReq.URL, Order: fileReq.Order, Active: true}
	if kind == models.VideoMedia {
		t.videos = append(t.videos, file)
	}
	return &file, nil
}

func (t fakeProductTx) GetOpenIssue(_ context.Context, productId string) (*models.Issue, error) {
	return t.openIssue(productId), nil
}

func (t fakeProductTx) CreateIssue(_ context.Context, productId string) (*models.Issue, error) {
	if t.openIssue(productId) != nil {
		return nil, repository.ErrAlreadyExists
	}
	issue := models.Issue{ID: t.nextId("issue"), ProductID: productId, Open: true}
	t.issues[issue.ID] = issue
	return &issue, nil
}

func (t fakeProductTx) AddIssueMessage(_ context.Context, issueId, note string) (*models.IssueMessage, error) {
	issue := t.issues[issueId]
	message := models.IssueMessage{ID: t.nextId("message"), IssueID: issueId, Note: note}
	issue.Messages = append(issue.Messages, message)
	t.issues[issueId] = issue
	return &message, nil
}

func (t fakeProductTx) CloseIssue(_ context.Context, issueId string) error {
	issue := t.issues[issueId]
	issue.Open = false
	t.issues[issueId] = issue
	return nil
}

// --- OrderRepository ---

type fakeOrderRepo struct {
	*memStore
	failDelete bool
	// afterConfirmedRead вызывается после чтения подтвержденных заказов.
	afterConfirmedRead func()
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) GetOrderById(_ context.Context, orderId string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrder(orderId), nil
}

func (r *fakeOrderRepo) GetConfirmedOrders(_ context.Context, productId string, period booking.DateRange) ([]models.Order, error) {
	r.mu.Lock()
	orders := r.confirmedWithin(productId, period)
	r.mu.Unlock()
	if r.afterConfirmedRead != nil {
		hook := r.afterConfirmedRead
		r.afterConfirmedRead = nil
		hook()
	}
	return orders, nil
}

func (r *fakeOrderRepo) HasConfirmedOrderAt(_ context.Context, productId string, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmedAt(productId, day), nil
}

func (r *fakeOrderRepo) GetProductOffers(_ context.Context, productId string, state models.OrderState, limit, offset int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.ProductID == productId && o.State == state {
			out = append(out, o)
		}
	}
	return page(sortedOrders(out), limit, offset), nil
}

func (r *fakeOrderRepo) GetUserOrders(_ context.Context, userId string, states []models.OrderState) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.UserID != userId {
			continue
		}
		for _, s := range states {
			if o.State == s {
				out = append(out, o)
			}
		}
	}
	return sortedOrders(out), nil
}

func (r *fakeOrderRepo) InTx(_ context.Context, fn func(tx repository.OrderTx) error) error {
	return r.inTx(func() error { return fn(fakeOrderTx{memStore: r.memStore, failDelete: r.failDelete}) })
}

type fakeOrderTx struct {
	*memStore
	failDelete bool
}

func (t fakeOrderTx) GetProductForUpdate(_ context.Context, productId string) (*models.Product, error) {
	return t.getProduct(productId), nil
}

func (t fakeOrderTx) GetOrderForUpdate(_ context.Context, orderId string) (*models.Order, error) {
	return t.getOrder(orderId), nil
}

func (t fakeOrderTx) HasConfirmedOrderAt(_ context.Context, productId string, day time.Time) (bool, error) {
	return t.confirmedAt(productId, day), nil
}

func (t fakeOrderTx) HasConfirmedOrderWithin(_ context.Context, productId string, period booking.DateRange) (bool, error) {
	return len(t.confirmedWithin(productId, period)) > 0, nil
}

func (t fakeOrderTx) GetPendingOverlapping(_ context.Context, productId, excludeOrderId string, period booking.DateRange) ([]models.Order, error) {
	out := make([]models.Order, 0)
	for _, o := range t.orders {
		if o.ProductID == productId && o.ID != excludeOrderId && o.State == models.WaitingForAcceptanceOrder &&
			booking.NewDateRange(o.DateStart, o.DateEnd).Overlaps(period) {
			out = append(out, o)
		}
	}
	return sortedOrders(out), nil
}

func (t fakeOrderTx) CreateOrder(_ context.Context, order models.Order) (*models.Order, error) {
	order.ID = t.nextId("order")
	order.State = models.WaitingForAcceptanceOrder
	t.orders[order.ID] = order
	return &order, nil
}

func (t fakeOrderTx) UpdateOrderState(_ context.Context, orderId string, state models.OrderState) (*models.Order, error) {
	o := t.orders[orderId]
	o.State = state
	t.orders[orderId] = o
	return &o, nil
}

func (t fakeOrderTx) DeleteOrders(_ context.Context, orderIds []string) error {
	if t.failDelete {
		return fmt.Errorf("delete failed")
	}
	for _, id := range orderIds {
		delete(t.orders, id)
	}
	return nil
}

// --- FavoriteRepository ---

type fakeFavoriteRepo struct{ *memStore }

func (r fakeFavoriteRepo) GetFavorites(_ context.Context, userId string, limit, offset int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0)
	for productId := range r.favorites[userId] {
		out = append(out, r.products[productId])
	}
	return page(out, limit, offset), nil
}

func (r fakeFavoriteRepo) AddFavorite(_ context.Context, userId, productId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.favorites[userId] == nil {
		r.favorites[userId] = make(map[string]bool)
	}
	if r.favorites[userId][productId] {
		return fmt.Errorf("failed to add favorite: %w", repository.ErrAlreadyExists)
	}
	r.favorites[userId][productId] = true
	return nil
}

func (r fakeFavoriteRepo) RemoveFavorite(_ context.Context, userId, productId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.favorites[userId][productId] {
		return false, nil
	}
	delete(r.favorites[userId], productId)
	return true, nil
}

// --- Notifier ---

type notification struct {
	recipients []string
	title      string
	body       string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(recipients []string, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{recipients: append([]string(nil), recipients...), title: title, body: body})
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

// --- AvailabilityCache ---

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]int
	generations map[string]int64
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]int), generations: make(map[string]int64)}
}

func cacheKey(productId string, generation int64, year int, month time.Month) string {
	return fmt.Sprintf("%s/%d/%04d-%02d", productId, generation, year, int(month))
}

func (c *fakeCache) Get(_ context.Context, productId string, year int, month time.Month) ([]int, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	generation := c.generations[productId]
	days, ok := c.entries[cacheKey(productId, generation, year, month)]
	return days, generation, ok, nil
}

func (c *fakeCache) Set(_ context.Context, productId string, generation int64, year int, month time.Month, days []int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[productId] != generation {
		return false, nil
	}
	c.entries[cacheKey(productId, generation, year, month)] = days
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, productId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productId)
	c.generations[productId]++
	return nil
}

// --- misc ---

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func contains(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}

package testing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
)

// FailFunc lets a test inject a storage error for a named operation; nil means succeed
type FailFunc func(op string) error

type memStore[T any] struct {
	mu    sync.Mutex
	items []*T
	Fail  FailFunc
	calls map[string]int
}

func (s *memStore[T]) enter(op string) error {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
	if s.Fail != nil {
		return s.Fail(op)
	}
	return nil
}

// Calls returns how many times op was invoked
func (s *memStore[T]) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *memStore[T]) find(match func(*T) bool) *T {
	for _, item := range s.items {
		if match(item) {
			cp := *item
			return &cp
		}
	}
	return nil
}

func (s *memStore[T]) filter(match func(*T) bool) []*T {
	out := make([]*T, 0, len(s.items))
	for _, item := range s.items {
		if match(item) {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out
}

// newestFirst orders by the given time descending; later inserts win ties
func newestFirst[T any](items []*T, at func(*T) time.Time) []*T {
	slices.Reverse(items)
	slices.SortStableFunc(items, func(a, b *T) int {
		return at(b).Compare(at(a))
	})
	return items
}

func page[T any](items []*T, limit, offset int) []*T {
	if offset > len(items) {
		return []*T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CustomerMemoryRepository is an in-memory CustomerRepository
type CustomerMemoryRepository struct {
	memStore[models.Customer]
}

var _ repository.CustomerRepository = (*CustomerMemoryRepository)(nil)

func NewCustomerMemoryRepository() *CustomerMemoryRepository {
	return &CustomerMemoryRepository{}
}

func (r *CustomerMemoryRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByID"); err != nil {
		return nil, err
	}
	return r.find(func(c *models.Customer) bool { return c.ID == id }), nil
}

func (r *CustomerMemoryRepository) ByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByEmail"); err != nil {
		return nil, err
	}
	return r.find(func(c *models.Customer) bool { return c.Email == email }), nil
}

func (r *CustomerMemoryRepository) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByFilter"); err != nil {
		return nil, err
	}
	return page(r.filter(customerMatcher(filter)), limit, offset), nil
}

func (r *CustomerMemoryRepository) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Count"); err != nil {
		return 0, err
	}
	return int64(len(r.filter(customerMatcher(filter)))), nil
}

func (r *CustomerMemoryRepository) Save(ctx context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Save"); err != nil {
		return err
	}
	_ = customer.BeforeCreate(nil)
	cp := *customer
	r.items = append(r.items, &cp)
	return nil
}

func (r *CustomerMemoryRepository) ListNewestFirst(ctx context.Context) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListNewestFirst"); err != nil {
		return nil, err
	}
	return newestFirst(r.filter(func(*models.Customer) bool { return true }),
		func(c *models.Customer) time.Time { return c.CreatedAt }), nil
}

func (r *CustomerMemoryRepository) UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpsertByEmail"); err != nil {
		return nil, err
	}
	for _, existing := range r.items {
		if existing.Email == customer.Email {
			existing.Name = customer.Name
			existing.Phone = customer.Phone
			cp := *existing
			return &cp, nil
		}
	}
	_ = customer.BeforeCreate(nil)
	cp := *customer
	r.items = append(r.items, &cp)
	out := cp
	return &out, nil
}

func customerMatcher(f models.CustomerFilter) func(*models.Customer) bool {
	return func(c *models.Customer) bool {
		if f.ID != nil && c.ID != *f.ID {
			return false
		}
		if f.Email != nil && c.Email != *f.Email {
			return false
		}
		if f.Name != nil && c.Name != *f.Name {
			return false
		}
		if f.CreatedAfter != nil && !c.CreatedAt.After(*f.CreatedAfter) {
			return false
		}
		if f.CreatedBefore != nil && !c.CreatedAt.Before(*f.CreatedBefore) {
			return false
		}
		return true
	}
}

// OrderMemoryRepository is an in-memory OrderRepository
type OrderMemoryRepository struct {
	memStore[models.Order]
}

var _ repository.OrderRepository = (*OrderMemoryRepository)(nil)

func NewOrderMemoryRepository() *OrderMemoryRepository {
	return &OrderMemoryRepository{}
}

func (r *OrderMemoryRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByID"); err != nil {
		return nil, err
	}
	return r.find(func(o *models.Order) bool { return o.ID == id }), nil
}

func (r *OrderMemoryRepository) ByFilter(ctx context.Context, filter models.OrderFilter, orderBy string, limit, offset int) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByFilter"); err != nil {
		return nil, err
	}
	return page(r.filter(orderMatcher(filter)), limit, offset), nil
}

func (r *OrderMemoryRepository) Count(ctx context.Context, filter models.OrderFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Count"); err != nil {
		return 0, err
	}
	return int64(len(r.filter(orderMatcher(filter)))), nil
}

func (r *OrderMemoryRepository) Save(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Save"); err != nil {
		return err
	}
	_ = order.BeforeCreate(nil)
	cp := *order
	r.items = append(r.items, &cp)
	return nil
}

func (r *OrderMemoryRepository) ListByCustomer(ctx context.Context, customerID *uuid.UUID) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListByCustomer"); err != nil {
		return nil, err
	}
	return newestFirst(r.filter(orderMatcher(models.OrderFilter{CustomerID: customerID})),
		func(o *models.Order) time.Time { return o.OrderDate }), nil
}

func orderMatcher(f models.OrderFilter) func(*models.Order) bool {
	return func(o *models.Order) bool {
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			return false
		}
		if f.Status != nil && o.Status != *f.Status {
			return false
		}
		return true
	}
}

// CampaignMemoryRepository is an in-memory CampaignRepository
type CampaignMemoryRepository struct {
	memStore[models.Campaign]
	// History records every status written through Update, in order
	History []models.CampaignStatus
}

var _ repository.CampaignRepository = (*CampaignMemoryRepository)(nil)

func NewCampaignMemoryRepository() *CampaignMemoryRepository {
	return &CampaignMemoryRepository{}
}

func (r *CampaignMemoryRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByID"); err != nil {
		return nil, err
	}
	return r.find(func(c *models.Campaign) bool { return c.ID == id }), nil
}

func (r *CampaignMemoryRepository) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByFilter"); err != nil {
		return nil, err
	}
	return page(r.filter(campaignMatcher(filter)), limit, offset), nil
}

func (r *CampaignMemoryRepository) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Count"); err != nil {
		return 0, err
	}
	return int64(len(r.filter(campaignMatcher(filter)))), nil
}

func (r *CampaignMemoryRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Save"); err != nil {
		return err
	}
	_ = campaign.BeforeCreate(nil)
	cp := *campaign
	r.items = append(r.items, &cp)
	return nil
}

func (r *CampaignMemoryRepository) ListNewestFirst(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListNewestFirst"); err != nil {
		return nil, err
	}
	return newestFirst(r.filter(func(*models.Campaign) bool { return true }),
		func(c *models.Campaign) time.Time { return c.CreatedAt }), nil
}

func (r *CampaignMemoryRepository) Update(ctx context.Context, id uuid.UUID, update models.CampaignUpdate) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Update"); err != nil {
		return nil, err
	}
	for _, c := range r.items {
		if c.ID != id {
			continue
		}
		if update.Sent != nil {
			c.Sent = *update.Sent
		}
		if update.Delivered != nil {
			c.Delivered = *update.Delivered
		}
		if update.Failed != nil {
			c.Failed = *update.Failed
		}
		if update.Status != nil {
			c.Status = *update.Status
			r.History = append(r.History, *update.Status)
		}
		c.UpdatedAt = utils.UTCNowPtr()
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CampaignMemoryRepository) Touch(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Touch"); err != nil {
		return err
	}
	for _, c := range r.items {
		if c.ID == id && c.Status == models.CampaignStatusSending {
			c.UpdatedAt = utils.UTCNowPtr()
		}
	}
	return nil
}

func campaignMatcher(f models.CampaignFilter) func(*models.Campaign) bool {
	return func(c *models.Campaign) bool {
		if f.ID != nil && c.ID != *f.ID {
			return false
		}
		if f.Status != nil && c.Status != *f.Status {
			return false
		}
		if f.Name != nil && c.Name != *f.Name {
			return false
		}
		if f.UpdatedBefore != nil && (c.UpdatedAt == nil || !c.UpdatedAt.Before(*f.UpdatedBefore)) {
			return false
		}
		return true
	}
}

// CommunicationMemoryRepository is an in-memory CommunicationRepository
type CommunicationMemoryRepository struct {
	memStore[models.Communication]
}

var _ repository.CommunicationRepository = (*CommunicationMemoryRepository)(nil)

func NewCommunicationMemoryRepository() *CommunicationMemoryRepository {
	return &CommunicationMemoryRepository{}
}

func (r *CommunicationMemoryRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Communication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByID"); err != nil {
		return nil, err
	}
	return r.find(func(c *models.Communication) bool { return c.ID == id }), nil
}

func (r *CommunicationMemoryRepository) ByFilter(ctx context.Context, filter models.CommunicationFilter, orderBy string, limit, offset int) ([]*models.Communication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByFilter"); err != nil {
		return nil, err
	}
	return page(r.filter(communicationMatcher(filter)), limit, offset), nil
}

func (r *CommunicationMemoryRepository) Count(ctx context.Context, filter models.CommunicationFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Count"); err != nil {
		return 0, err
	}
	return int64(len(r.filter(communicationMatcher(filter)))), nil
}

func (r *CommunicationMemoryRepository) Save(ctx context.Context, entry *models.Communication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Save"); err != nil {
		return err
	}
	_ = entry.BeforeCreate(nil)
	cp := *entry
	r.items = append(r.items, &cp)
	return nil
}

func (r *CommunicationMemoryRepository) ListByCampaign(ctx context.Context, campaignID *uuid.UUID) ([]*models.Communication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListByCampaign"); err != nil {
		return nil, err
	}
	return newestFirst(r.filter(communicationMatcher(models.CommunicationFilter{CampaignID: campaignID})),
		func(c *models.Communication) time.Time { return c.SentAt }), nil
}

// All returns every entry in insertion order
func (r *CommunicationMemoryRepository) All() []*models.Communication {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(*models.Communication) bool { return true })
}

func communicationMatcher(f models.CommunicationFilter) func(*models.Communication) bool {
	return func(c *models.Communication) bool {
		if f.CampaignID != nil && c.CampaignID != *f.CampaignID {
			return false
		}
		if f.CustomerID != nil && c.CustomerID != *f.CustomerID {
			return false
		}
		if f.Status != nil && c.Status != *f.Status {
			return false
		}
		return true
	}
}

// UserMemoryRepository is an in-memory UserRepository
type UserMemoryRepository struct {
	memStore[models.User]
}

var _ repository.UserRepository = (*UserMemoryRepository)(nil)

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{}
}

func (r *UserMemoryRepository) ByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ByGoogleID"); err != nil {
		return nil, err
	}
	return r.find(func(u *models.User) bool { return u.GoogleID == googleID }), nil
}

func (r *UserMemoryRepository) UpsertByGoogleID(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpsertByGoogleID"); err != nil {
		return nil, err
	}
	for _, existing := range r.items {
		if existing.GoogleID == user.GoogleID {
			existing.Email = user.Email
			existing.Name = user.Name
			existing.AvatarURL = user.AvatarURL
			existing.LastLogin = user.LastLogin
			if existing.LastLogin.IsZero() {
				existing.LastLogin = utils.UTCNow()
			}
			cp := *existing
			return &cp, nil
		}
	}
	_ = user.BeforeCreate(nil)
	cp := *user
	r.items = append(r.items, &cp)
	out := cp
	return &out, nil
}

// Package memstore keeps users, courses and purchases in memory behind the same
// contracts as the mongo repositories. It backs service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Memory struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users     map[bson.ObjectID]models.User
	courses   map[bson.ObjectID]models.Course
	purchases map[bson.ObjectID]models.Purchase

	// seq orders inserts that share a timestamp.
	seq   map[bson.ObjectID]int
	clock int

	Now func() time.Time
}

func New() *Memory {
	return &Memory{
		users:     make(map[bson.ObjectID]models.User),
		courses:   make(map[bson.ObjectID]models.Course),
		purchases: make(map[bson.ObjectID]models.Purchase),
		seq:       make(map[bson.ObjectID]int),
		Now:       time.Now,
	}
}

func (m *Memory) Users() *Users         { return &Users{m: m} }
func (m *Memory) Courses() *Courses     { return &Courses{m: m} }
func (m *Memory) Purchases() *Purchases { return &Purchases{m: m} }

// WithTransaction serializes transactions and restores the previous state when fn fails.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	users, courses, purchases := cloneMap(m.users), cloneMap(m.courses), cloneMap(m.purchases)
	m.mu.RUnlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.users, m.courses, m.purchases = users, courses, purchases
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) stamp(id bson.ObjectID) {
	m.clock++
	m.seq[id] = m.clock
}

// newerFirst orders by createdAt desc, then by insertion order desc.
func (m *Memory) newerFirst(a, b bson.ObjectID, ta, tb time.Time) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return m.seq[a] > m.seq[b]
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

type Users struct{ m *Memory }

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	for _, existing := range u.m.users {
		if existing.Email == user.Email {
			return database.ErrDuplicateKey
		}
	}
	now := u.m.Now().UTC()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.PurchasedCourses == nil {
		user.PurchasedCourses = []bson.ObjectID{}
	}
	user.CreatedAt, user.UpdatedAt = now, now
	u.m.users[user.ID] = cloneUser(*user)
	u.m.stamp(user.ID)
	return nil
}

func (u *Users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	_, ok := u.byEmail(email)
	return ok, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	user, ok := u.byEmail(email)
	if !ok {
		return nil, database.ErrNotFound
	}
	out := cloneUser(user)
	return &out, nil
}

func (u *Users) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	user, ok := u.m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := cloneUser(user)
	out.PasswordHash = ""
	out.RefreshTokens = nil
	return &out, nil
}

func (u *Users) AddRefreshToken(_ context.Context, userID bson.ObjectID, token models.RefreshToken, maxActive int) error {
	return u.update(userID, func(user *models.User) {
		user.RefreshTokens = append(user.RefreshTokens, token)
		if over := len(user.RefreshTokens) - maxActive; over > 0 {
			user.RefreshTokens = user.RefreshTokens[over:]
		}
	})
}

func (u *Users) ConsumeRefreshToken(_ context.Context, userID bson.ObjectID, fingerprint string) (bool, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	user, ok := u.m.users[userID]
	if !ok {
		return false, nil
	}
	now := u.m.Now().UTC()
	for i, t := range user.RefreshTokens {
		if t.Fingerprint == fingerprint && t.ExpiresAt.After(now) {
			user.RefreshTokens = append(user.RefreshTokens[:i:i], user.RefreshTokens[i+1:]...)
			u.m.users[userID] = user
			return true, nil
		}
	}
	return false, nil
}

func (u *Users) RevokeRefreshToken(_ context.Context, userID bson.ObjectID, fingerprint string) error {
	_ = u.update(userID, func(user *models.User) {
		kept := user.RefreshTokens[:0:0]
		for _, t := range user.RefreshTokens {
			if t.Fingerprint != fingerprint {
				kept = append(kept, t)
			}
		}
		user.RefreshTokens = kept
	})
	return nil
}

func (u *Users) RevokeAllRefreshTokens(_ context.Context, userID bson.ObjectID) error {
	_ = u.update(userID, func(user *models.User) { user.RefreshTokens = []models.RefreshToken{} })
	return nil
}

func (u *Users) UpdatePassword(_ context.Context, userID bson.ObjectID, passwordHash string) error {
	return u.update(userID, func(user *models.User) {
		user.PasswordHash = passwordHash
		user.RefreshTokens = []models.RefreshToken{}
	})
}

func (u *Users) PullExpiredRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	var touched int64
	for id, user := range u.m.users {
		kept := make([]models.RefreshToken, 0, len(user.RefreshTokens))
		for _, t := range user.RefreshTokens {
			if t.ExpiresAt.After(now) {
				kept = append(kept, t)
			}
		}
		if len(kept) != len(user.RefreshTokens) {
			user.RefreshTokens = kept
			u.m.users[id] = user
			touched++
		}
	}
	return touched, nil
}

func (u *Users) AddPurchasedCourse(_ context.Context, userID, courseID bson.ObjectID) error {
	return u.update(userID, func(user *models.User) {
		if !user.Owns(courseID) {
			user.PurchasedCourses = append(user.PurchasedCourses, courseID)
		}
	})
}

func (u *Users) List(_ context.Context, skip, limit int64) ([]models.UserDetail, int64, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()

	all := make([]models.User, 0, len(u.m.users))
	for _, user := range u.m.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool {
		return u.m.newerFirst(all[i].ID, all[j].ID, all[i].CreatedAt, all[j].CreatedAt)
	})

	out := make([]models.UserDetail, 0)
	for _, user := range page(all, skip, limit) {
		out = append(out, u.detail(user, false))
	}
	return out, int64(len(all)), nil
}

func (u *Users) Detail(_ context.Context, id bson.ObjectID) (*models.UserDetail, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	user, ok := u.m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	d := u.detail(user, true)
	return &d, nil
}

func (u *Users) Delete(_ context.Context, id bson.ObjectID) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if _, ok := u.m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(u.m.users, id)
	return nil
}

func (u *Users) SeedAdmin(ctx context.Context, name, email, passwordHash string) (bool, error) {
	exists, _ := u.ExistsByEmail(ctx, email)
	if exists {
		return false, nil
	}
	err := u.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: passwordHash, Role: models.RoleAdmin})
	return err == nil, err
}

func (u *Users) byEmail(email string) (models.User, bool) {
	for _, user := range u.m.users {
		if user.Email == email {
			return user, true
		}
	}
	return models.User{}, false
}

func (u *Users) update(id bson.ObjectID, fn func(user *models.User)) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	user, ok := u.m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user = cloneUser(user)
	fn(&user)
	user.UpdatedAt = u.m.Now().UTC()
	u.m.users[id] = user
	return nil
}

func (u *Users) detail(user models.User, withInstructor bool) models.UserDetail {
	owned := make([]models.CourseSummary, 0, len(user.PurchasedCourses))
	for _, id := range user.PurchasedCourses {
		c, ok := u.m.courses[id]
		if !ok {
			continue
		}
		s := models.CourseSummary{ID: c.ID, Title: c.Title, Price: c.Price}
		if withInstructor {
			s.Instructor = c.Instructor
		}
		owned = append(owned, s)
	}
	return models.UserDetail{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		PurchasedCourses: owned,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func cloneUser(u models.User) models.User {
	u.PurchasedCourses = append([]bson.ObjectID(nil), u.PurchasedCourses...)
	u.RefreshTokens = append([]models.RefreshToken(nil), u.RefreshTokens...)
	return u
}

type Courses struct{ m *Memory }

func (c *Courses) Create(_ context.Context, course *models.Course) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	now := c.m.Now().UTC()
	if course.ID.IsZero() {
		course.ID = bson.NewObjectID()
	}
	course.CreatedAt, course.UpdatedAt = now, now
	c.m.courses[course.ID] = *course
	c.m.stamp(course.ID)
	return nil
}

func (c *Courses) FindByID(_ context.Context, id bson.ObjectID) (*models.Course, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	course, ok := c.m.courses[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &course, nil
}

// List applies the same filter semantics as the mongo query; search is a plain
// case-insensitive substring match instead of a text index.
func (c *Courses) List(_ context.Context, f models.CourseFilter) ([]models.Course, int64, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()

	matched := make([]models.Course, 0)
	for _, course := range c.m.courses {
		if matches(course, f) {
			matched = append(matched, course)
		}
	}

	asc := f.SortOrder == "asc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less, equal bool
		switch f.SortBy {
		case "price":
			less, equal = a.Price < b.Price, a.Price == b.Price
		case "title":
			less, equal = a.Title < b.Title, a.Title == b.Title
		case "level":
			less, equal = a.Level < b.Level, a.Level == b.Level
		case "enrolledStudents":
			less, equal = a.EnrolledStudents < b.EnrolledStudents, a.EnrolledStudents == b.EnrolledStudents
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			less = c.m.seq[a.ID] < c.m.seq[b.ID]
		}
		if asc {
			return less
		}
		return !less
	})

	limit := int64(f.Limit)
	if limit <= 0 {
		limit = int64(len(matched))
	}
	skip := int64(0)
	if f.Page > 1 {
		skip = int64(f.Page-1) * limit
	}
	return page(matched, skip, limit), int64(len(matched)), nil
}

func (c *Courses) Update(_ context.Context, id bson.ObjectID, set bson.M) (*models.Course, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	course, ok := c.m.courses[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "title":
			course.Title = v.(string)
		case "slug":
			course.Slug = v.(string)
		case "description":
			course.Description = v.(string)
		case "price":
			course.Price = v.(float64)
		case "instructor":
			course.Instructor = v.(string)
		case "category":
			course.Category = v.(string)
		case "duration":
			course.Duration = v.(string)
		case "level":
			course.Level = v.(models.Level)
		case "isActive":
			course.IsActive = v.(bool)
		}
	}
	course.UpdatedAt = c.m.Now().UTC()
	c.m.courses[id] = course
	return &course, nil
}

func (c *Courses) Delete(_ context.Context, id bson.ObjectID) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if _, ok := c.m.courses[id]; !ok {
		return database.ErrNotFound
	}
	delete(c.m.courses, id)
	return nil
}

func (c *Courses) IncrementEnrolled(_ context.Context, id bson.ObjectID) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	course, ok := c.m.courses[id]
	if !ok {
		return database.ErrNotFound
	}
	course.EnrolledStudents++
	c.m.courses[id] = course
	return nil
}

func matches(course models.Course, f models.CourseFilter) bool {
	if !course.IsActive {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hay := strings.ToLower(course.Title + " " + course.Description + " " + course.Instructor)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(course.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.Level != "" && course.Level != f.Level {
		return false
	}
	if f.MinPrice != nil && course.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && course.Price > *f.MaxPrice {
		return false
	}
	return true
}

type Purchases struct{ m *Memory }

func (p *Purchases) Create(_ context.Context, purchase *models.Purchase) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	for _, existing := range p.m.purchases {
		if existing.UserID == purchase.UserID && existing.CourseID == purchase.CourseID {
			return database.ErrDuplicateKey
		}
	}
	now := p.m.Now().UTC()
	if purchase.ID.IsZero() {
		purchase.ID = bson.NewObjectID()
	}
	purchase.PurchaseDate, purchase.CreatedAt, purchase.UpdatedAt = now, now, now
	p.m.purchases[purchase.ID] = *purchase
	p.m.stamp(purchase.ID)
	return nil
}

func (p *Purchases) Exists(ctx context.Context, userID, courseID bson.ObjectID) (bool, error) {
	n, err := p.CountByPair(ctx, userID, courseID)
	return n > 0, err
}

func (p *Purchases) CountByPair(_ context.Context, userID, courseID bson.ObjectID) (int64, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	var n int64
	for _, existing := range p.m.purchases {
		if existing.UserID == userID && existing.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (p *Purchases) ListByUser(_ context.Context, userID bson.ObjectID) ([]models.PurchaseView, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	out := make([]models.PurchaseView, 0)
	for _, purchase := range p.sorted() {
		if purchase.UserID == userID {
			out = append(out, p.view(purchase, false, true))
		}
	}
	return out, nil
}

func (p *Purchases) List(_ context.Context, skip, limit int64) ([]models.PurchaseView, int64, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	all := p.sorted()
	out := make([]models.PurchaseView, 0)
	for _, purchase := range page(all, skip, limit) {
		v := p.view(purchase, true, false)
		if v.Course != nil {
			v.Course.Description = ""
		}
		out = append(out, v)
	}
	return out, int64(len(all)), nil
}

func (p *Purchases) View(_ context.Context, id bson.ObjectID) (*models.PurchaseView, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	purchase, ok := p.m.purchases[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	v := p.view(purchase, true, true)
	return &v, nil
}

func (p *Purchases) sorted() []models.Purchase {
	all := make([]models.Purchase, 0, len(p.m.purchases))
	for _, purchase := range p.m.purchases {
		all = append(all, purchase)
	}
	sort.Slice(all, func(i, j int) bool {
		return p.m.newerFirst(all[i].ID, all[j].ID, all[i].CreatedAt, all[j].CreatedAt)
	})
	return all
}

func (p *Purchases) view(purchase models.Purchase, withUser, withDescription bool) models.PurchaseView {
	v := models.PurchaseView{
		ID:            purchase.ID,
		UserID:        purchase.UserID,
		CourseID:      purchase.CourseID,
		Amount:        purchase.Amount,
		PurchaseDate:  purchase.PurchaseDate,
		PaymentStatus: purchase.PaymentStatus,
		PaymentMethod: purchase.PaymentMethod,
		CreatedAt:     purchase.CreatedAt,
	}
	if course, ok := p.m.courses[purchase.CourseID]; ok {
		v.Course = &models.CourseSummary{
			ID:         course.ID,
			Title:      course.Title,
			Instructor: course.Instructor,
			Price:      course.Price,
		}
		if withDescription {
			v.Course.Description = course.Description
		}
	}
	if withUser {
		if user, ok := p.m.users[purchase.UserID]; ok {
			v.User = &models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
		}
	}
	return v
}

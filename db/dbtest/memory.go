// Package dbtest provides an in-memory db.Store for tests. It mirrors the
// Mongo implementation's semantics: unique email and (owner, name) keys,
// set updates, newest-first ordering and NOT_FOUND on missed lookups.
package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/db"
	"fitshare/errs"
	"fitshare/models"
)

// Memory is a goroutine-safe in-memory Store.
type Memory struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*models.User
	posts       map[primitive.ObjectID]*models.Post
	catalog     []models.CatalogItem
	collections map[primitive.ObjectID]*models.Collection

	// Err, when set, is returned by every call.
	Err error
}

var _ db.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		users:       make(map[primitive.ObjectID]*models.User),
		posts:       make(map[primitive.ObjectID]*models.Post),
		collections: make(map[primitive.ObjectID]*models.Collection),
	}
}

func (m *Memory) lock() func() {
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) EnsureIndexes(context.Context) error { return m.Err }

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errs.AlreadyExists("inserting user: duplicate key")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Collections == nil {
		u.Collections = []primitive.ObjectID{}
	}
	cp := cloneUser(u)
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	cp := cloneUser(u)
	return &cp, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := cloneUser(u)
			return &cp, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (m *Memory) ConsumeVerificationToken(_ context.Context, token string) (*models.User, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	if token == "" {
		return nil, errs.NotFound("invalid token")
	}
	for _, u := range m.users {
		if u.VerificationToken == token {
			u.Verified = true
			u.VerificationToken = ""
			cp := cloneUser(u)
			return &cp, nil
		}
	}
	return nil, errs.NotFound("invalid token")
}

func (m *Memory) ListUsersExcept(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.User{}
	for _, u := range m.users {
		if u.ID != id {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (m *Memory) UserSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (m *Memory) AddFollower(_ context.Context, target, follower primitive.ObjectID) (bool, error) {
	var added bool
	err := m.updateUser(target, func(u *models.User) {
		u.Followers, added = db.UpdateSet(u.Followers, follower, true)
	})
	return added, err
}

func (m *Memory) RemoveFollower(_ context.Context, target, follower primitive.ObjectID) error {
	return m.updateUser(target, func(u *models.User) {
		u.Followers, _ = db.UpdateSet(u.Followers, follower, false)
	})
}

func (m *Memory) AppendUserCollection(_ context.Context, user, collection primitive.ObjectID) error {
	return m.updateUser(user, func(u *models.User) {
		u.Collections, _ = db.UpdateSet(u.Collections, collection, true)
	})
}

func (m *Memory) updateUser(id primitive.ObjectID, fn func(*models.User)) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return errs.NotFound("user not found")
	}
	fn(u)
	return nil
}

func (m *Memory) CreatePost(_ context.Context, p *models.Post) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	cp := clonePost(p)
	m.posts[p.ID] = &cp
	return nil
}

func (m *Memory) PostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, errs.NotFound("post not found")
	}
	cp := clonePost(p)
	return &cp, nil
}

func (m *Memory) ListPosts(_ context.Context, f db.PostFilter) ([]models.Post, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if f.User.IsZero() || p.User == f.User {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

func (m *Memory) AddLike(_ context.Context, post, user primitive.ObjectID) (*models.Post, bool, error) {
	return m.updateLikes(post, user, true)
}

func (m *Memory) RemoveLike(_ context.Context, post, user primitive.ObjectID) (*models.Post, bool, error) {
	return m.updateLikes(post, user, false)
}

func (m *Memory) updateLikes(postID, user primitive.ObjectID, add bool) (*models.Post, bool, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, false, m.Err
	}
	p, ok := m.posts[postID]
	if !ok {
		return nil, false, errs.NotFound("post not found")
	}
	var changed bool
	p.Likes, changed = db.UpdateSet(p.Likes, user, add)
	cp := clonePost(p)
	return &cp, changed, nil
}

func (m *Memory) PostSummaries(_ context.Context, ids []primitive.ObjectID) ([]models.PostSummary, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := []models.PostSummary{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := m.posts[id]; ok {
			out = append(out, p.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

// AddCatalogItems stocks the catalog.
func (m *Memory) AddCatalogItems(items ...models.CatalogItem) {
	defer m.lock()()
	for _, it := range items {
		if it.ID.IsZero() {
			it.ID = primitive.NewObjectID()
		}
		m.catalog = append(m.catalog, it)
	}
}

func (m *Memory) CatalogItems(_ context.Context, category models.Category) ([]models.CatalogItem, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.CatalogItem{}
	for _, it := range m.catalog {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) CreateCollection(_ context.Context, c *models.Collection) error {
	defer m.lock()()
	if m.Err != nil {
		return m.Err
	}
	if m.findNamed(c.Owner, c.Name) != nil {
		return errs.AlreadyExists("a collection with this name already exists")
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Posts == nil {
		c.Posts = []primitive.ObjectID{}
	}
	cp := cloneCollection(c)
	m.collections[c.ID] = &cp
	return nil
}

func (m *Memory) CollectionByID(_ context.Context, id primitive.ObjectID) (*models.Collection, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.collections[id]
	if !ok {
		return nil, errs.NotFound("collection not found")
	}
	cp := cloneCollection(c)
	return &cp, nil
}

func (m *Memory) FindCollections(_ context.Context, f db.CollectionFilter) ([]models.Collection, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Collection{}
	for _, c := range m.collections {
		if c.Owner != f.Owner {
			continue
		}
		if f.IsPublic != nil && c.IsPublic != *f.IsPublic {
			continue
		}
		out = append(out, cloneCollection(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (m *Memory) AddPostToNamedCollection(_ context.Context, owner primitive.ObjectID, name string, post primitive.ObjectID) (primitive.ObjectID, bool, error) {
	defer m.lock()()
	if m.Err != nil {
		return primitive.NilObjectID, false, m.Err
	}
	if c := m.findNamed(owner, name); c != nil {
		c.Posts, _ = db.UpdateSet(c.Posts, post, true)
		return c.ID, false, nil
	}
	c := &models.Collection{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Owner:     owner,
		Posts:     []primitive.ObjectID{post},
		CreatedAt: time.Now().UTC(),
	}
	m.collections[c.ID] = c
	return c.ID, true, nil
}

func (m *Memory) SetCollectionPublic(_ context.Context, id primitive.ObjectID, isPublic bool) (*models.Collection, error) {
	defer m.lock()()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.collections[id]
	if !ok {
		return nil, errs.NotFound("collection not found")
	}
	c.IsPublic = isPublic
	cp := cloneCollection(c)
	return &cp, nil
}

func (m *Memory) findNamed(owner primitive.ObjectID, name string) *models.Collection {
	for _, c := range m.collections {
		if c.Owner == owner && c.Name == name {
			return c
		}
	}
	return nil
}

func newer(at time.Time, aID primitive.ObjectID, bt time.Time, bID primitive.ObjectID) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aID.Hex() > bID.Hex()
}

func cloneUser(u *models.User) models.User {
	cp := *u
	cp.Followers = append([]primitive.ObjectID{}, u.Followers...)
	cp.Collections = append([]primitive.ObjectID{}, u.Collections...)
	return cp
}

func clonePost(p *models.Post) models.Post {
	cp := *p
	cp.Likes = append([]primitive.ObjectID{}, p.Likes...)
	cp.Tags = append([]string{}, p.Tags...)
	cp.Images = append([]string{}, p.Images...)
	return cp
}

func cloneCollection(c *models.Collection) models.Collection {
	cp := *c
	cp.Posts = append([]primitive.ObjectID{}, c.Posts...)
	return cp
}

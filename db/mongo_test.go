package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/errs"
	"fitshare/models"
)

// connectTest opens a throwaway database on MONGO_TEST_URI and drops it on
// cleanup. Tests are skipped when the variable is unset.
func connectTest(t *testing.T) *Mongo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	name := fmt.Sprintf("fitshare_test_%d", time.Now().UnixNano())
	m, err := Connect(ctx, uri, name, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, m.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = m.Client.Database(name).Drop(context.Background())
		_ = m.Close(context.Background())
	})
	return m
}

func TestMongo_UserLifecycle(t *testing.T) {
	m := connectTest(t)
	ctx := context.Background()

	u := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", VerificationToken: "tok"}
	require.NoError(t, m.CreateUser(ctx, u))
	assert.False(t, u.ID.IsZero())

	err := m.CreateUser(ctx, &models.User{Name: "Ada 2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	verified, err := m.ConsumeVerificationToken(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.VerificationToken)

	_, err = m.ConsumeVerificationToken(ctx, "tok")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = m.UserByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	follower := primitive.NewObjectID()
	added, err := m.AddFollower(ctx, u.ID, follower)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = m.AddFollower(ctx, u.ID, follower)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestMongo_LikesAreASet(t *testing.T) {
	m := connectTest(t)
	ctx := context.Background()
	owner, liker := primitive.NewObjectID(), primitive.NewObjectID()

	p := &models.Post{User: owner, OutfitName: "Sunday"}
	require.NoError(t, m.CreatePost(ctx, p))

	post, changed, err := m.AddLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, post.Likes, 1)

	post, changed, err = m.AddLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, post.Likes, 1)

	post, changed, err = m.RemoveLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, post.Likes)
}

func TestMongo_ConcurrentNamedCollectionCreatesOne(t *testing.T) {
	m := connectTest(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	posts := make([]primitive.ObjectID, 8)
	for i := range posts {
		p := &models.Post{User: owner, OutfitName: fmt.Sprintf("look %d", i)}
		require.NoError(t, m.CreatePost(ctx, p))
		posts[i] = p.ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[primitive.ObjectID]bool{}
	)
	for _, post := range posts {
		wg.Add(1)
		go func(post primitive.ObjectID) {
			defer wg.Done()
			id, isNew, err := m.AddPostToNamedCollection(ctx, owner, "Faves", post)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			ids[id] = true
			if isNew {
				created++
			}
		}(post)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	found, err := m.FindCollections(ctx, CollectionFilter{Owner: owner})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.ElementsMatch(t, posts, found[0].Posts)

	summaries, err := m.PostSummaries(ctx, found[0].Posts)
	require.NoError(t, err)
	require.Len(t, summaries, len(posts))
	for i := 1; i < len(summaries); i++ {
		assert.False(t, summaries[i].CreatedAt.After(summaries[i-1].CreatedAt))
	}
}

func TestMongo_CatalogByCategory(t *testing.T) {
	m := connectTest(t)
	ctx := context.Background()

	require.NoError(t, m.SeedCatalog(ctx, []models.CatalogItem{
		{Category: models.CategoryTop, Name: "Tee", Image: "tee.png"},
		{Category: models.CategoryBottom, Name: "Jeans", Image: "jeans.png"},
	}))

	tops, err := m.CatalogItems(ctx, models.CategoryTop)
	require.NoError(t, err)
	require.Len(t, tops, 1)
	assert.Equal(t, "Tee", tops[0].Name)

	all, err := m.CatalogItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// Package routes mounts every HTTP endpoint on an httprouter.Router.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fitshare/activity"
	"fitshare/auth"
	"fitshare/catalog"
	"fitshare/collections"
	"fitshare/feed"
	"fitshare/middleware"
	"fitshare/models"
	"fitshare/profile"
	"fitshare/ratelim"
	"fitshare/utils"
)

// Deps carries the handlers and middleware the router needs.
type Deps struct {
	Auth        *auth.Handler
	Profile     *profile.Handler
	Feed        *feed.Handler
	Catalog     *catalog.Handler
	Collections *collections.Handler
	Activity    *activity.Stream
	Authn       *middleware.Authenticator
	Limiter     *ratelim.RateLimiter
	Log         *slog.Logger
}

// Register mounts all routes on router.
func Register(router *httprouter.Router, d Deps) {
	router.GET("/health", Health)

	AddAuthRoutes(router, d)
	AddProfileRoutes(router, d)
	AddFeedRoutes(router, d)
	AddCatalogRoutes(router, d)
	AddCollectionRoutes(router, d)
	router.GET("/ws/activity", d.Authn.Authenticate(d.Activity.Serve))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithMessage(w, http.StatusNotFound, "route not found")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		d.Log.Error("handler panic", "panic", v, "path", r.URL.Path)
		utils.RespondWithMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/register", d.Limiter.Limit(d.Auth.Register))
	router.POST("/login", d.Limiter.Limit(d.Auth.Login))
	router.GET("/verify/:token", d.Auth.Verify)
	router.POST("/logout", d.Authn.Authenticate(d.Auth.Logout))
	router.GET("/me", d.Authn.Authenticate(d.Auth.Me))
}

func AddProfileRoutes(router *httprouter.Router, d Deps) {
	router.GET("/user/:userId", d.Profile.ListUsers)
	router.GET("/profile/:userId", d.Authn.OptionalAuth(d.Profile.GetProfile))
	router.POST("/follow", d.Profile.Follow)
	router.POST("/users/unfollow", d.Profile.Unfollow)
}

func AddFeedRoutes(router *httprouter.Router, d Deps) {
	router.POST("/create-post", d.Feed.CreatePost)
	router.GET("/posts", d.Feed.GetPosts)
	router.GET("/posts/user/:userId", d.Feed.GetUserPosts)
	router.PUT("/posts/:postId/:userId/like", d.Feed.LikePost)
	router.PUT("/posts/:postId/:userId/unlike", d.Feed.UnlikePost)
}

func AddCatalogRoutes(router *httprouter.Router, d Deps) {
	router.GET("/tops", d.Catalog.ByCategory(models.CategoryTop))
	router.GET("/bottoms", d.Catalog.ByCategory(models.CategoryBottom))
	router.GET("/footwear", d.Catalog.ByCategory(models.CategoryFootwear))
	router.GET("/accessories", d.Catalog.ByCategory(models.CategoryAccessory))
	router.GET("/catalog", d.Catalog.List)
}

// AddCollectionRoutes mounts the collection endpoints. /collections/:id is
// an owner id while /collections/:id/posts takes a collection id; the router
// requires both to share one wildcard name.
func AddCollectionRoutes(router *httprouter.Router, d Deps) {
	router.GET("/collections", d.Collections.QueryCollections)
	router.GET("/collections/:id", d.Collections.GetUserCollections)
	router.GET("/collections/:id/posts", d.Collections.GetCollectionPosts)
	router.POST("/createCollection", d.Collections.CreateCollection)
	router.POST("/addPostToCollection", d.Collections.AddPostToCollection)
	router.GET("/collection/:collectionId", d.Collections.GetCollection)
	router.PATCH("/collection/:collectionId/toggle-public", d.Collections.TogglePublic)
}

package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

// Users caches authenticated users by email so that token checks do not hit
// the database on every request.
type Users struct {
	cache *ristretto.Cache[string, model.User]
	ttl   time.Duration
}

func NewUsers(ttl time.Duration) (*Users, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, model.User]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto.NewCache: %v", err)
	}
	return &Users{cache: c, ttl: ttl}, nil
}

func key(email string) string {
	return "user_data:" + email
}

func (u *Users) Get(email string) (*model.User, bool) {
	user, ok := u.cache.Get(key(email))
	if !ok {
		return nil, false
	}
	return &user, true
}

// Set stores a copy of user. The write is visible once it returns.
func (u *Users) Set(user model.User) {
	// The password hash and refresh token are never needed from the cache.
	user.Password = ""
	user.RefreshToken = nil
	u.cache.SetWithTTL(key(user.Email), user, 1, u.ttl)
	u.cache.Wait()
}

func (u *Users) Invalidate(email string) {
	u.cache.Del(key(email))
}

func (u *Users) Close() {
	u.cache.Close()
}

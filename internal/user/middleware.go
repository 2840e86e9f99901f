package user

import (
	"time"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/auth"
)

const profileKey = "user_profile"

// ProfileSync keeps the visitor's profile in step with the sign-in state:
// signing in starts a background sync, signing out clears the profile.
func ProfileSync(svc Service, state func(*gin.Context) *SyncState, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := state(c)
		if st == nil {
			c.Next()
			return
		}

		identity, signedIn := auth.GetIdentity(c)
		if !signedIn {
			st.Clear()
			c.Next()
			return
		}

		st.Start(c.Request.Context(), svc, identity.Subject, timeout)
		if p := st.Profile(); p != nil {
			c.Set(profileKey, p)
		}
		c.Next()
	}
}

func ProfileFromContext(c *gin.Context) *Profile {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Profile)
	return p
}

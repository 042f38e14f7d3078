package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const PendingCookieName = "pending_registration"

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindForm(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request format",
		})
		return err
	}
	return nil
}

// Cookies writes the session and pending-registration cookies.
type Cookies struct {
	SessionName string
	Secure      bool
	PendingTTL  time.Duration
}

func (k Cookies) setSession(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.SessionName, token, int(ttl.Seconds()), "/", "", k.Secure, true)
}

func (k Cookies) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.SessionName, "", -1, "/", "", k.Secure, true)
}

func (k Cookies) setPending(c *gin.Context, intentID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(PendingCookieName, intentID, int(k.PendingTTL.Seconds()), "/", "", k.Secure, true)
}

func (k Cookies) clearPending(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(PendingCookieName, "", -1, "/", "", k.Secure, true)
}

func pendingID(c *gin.Context) string {
	id, err := c.Cookie(PendingCookieName)
	if err != nil {
		return ""
	}
	return id
}

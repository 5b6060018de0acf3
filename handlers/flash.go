package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie     = "flash"
	flashPendingKey = "flash_pending"

	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AddFlash queues a message for the next rendered page, whether that is this
// response or the one after a redirect.
func AddFlash(c *gin.Context, category, message string) {
	pending := pendingFlashes(c)
	c.Set(flashPendingKey, append(pending, Flash{Category: category, Message: message}))
}

func pendingFlashes(c *gin.Context) []Flash {
	v, ok := c.Get(flashPendingKey)
	if !ok {
		return nil
	}
	flashes, _ := v.([]Flash)
	return flashes
}

// redirect carries queued flashes across the redirect in a short-lived cookie.
func redirect(c *gin.Context, location string) {
	if pending := pendingFlashes(c); len(pending) > 0 {
		all := append(readFlashCookie(c), pending...)
		if data, err := json.Marshal(all); err == nil {
			setFlashCookie(c, base64.RawURLEncoding.EncodeToString(data), 60)
		}
		c.Set(flashPendingKey, []Flash(nil))
	}
	c.Redirect(http.StatusFound, location)
}

// consumeFlashes returns every message waiting for display and clears them.
func consumeFlashes(c *gin.Context) []Flash {
	stored := readFlashCookie(c)
	if stored != nil {
		setFlashCookie(c, "", -1)
	}
	pending := pendingFlashes(c)
	c.Set(flashPendingKey, []Flash(nil))
	return append(stored, pending...)
}

func readFlashCookie(c *gin.Context) []Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, value, maxAge, "/", "", false, true)
}

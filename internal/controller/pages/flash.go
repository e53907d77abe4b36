package pages

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "tm_flash"

// Уровни сообщений
const (
	levelSuccess = "success"
	levelInfo    = "info"
	levelError   = "error"
)

type Flash struct {
	Level string `json:"l"`
	Text  string `json:"t"`
}

// addFlash queues a message for the next rendered page
func addFlash(c *gin.Context, level, text string) {
	flashes := readFlashes(c)
	flashes = append(flashes, Flash{Level: level, Text: text})
	writeFlashes(c, flashes)
}

// popFlashes returns queued messages and clears the cookie
func popFlashes(c *gin.Context) []Flash {
	flashes := readFlashes(c)
	if len(flashes) > 0 {
		writeFlashes(c, nil)
	}
	return flashes
}

func readFlashes(c *gin.Context) []Flash {
	// сообщения, добавленные в этом же запросе
	if v, ok := c.Get(flashCookie); ok {
		flashes, _ := v.([]Flash)
		return flashes
	}

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

func writeFlashes(c *gin.Context, flashes []Flash) {
	c.Set(flashCookie, flashes)
	c.SetSameSite(http.SameSiteLaxMode)
	if len(flashes) == 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
		return
	}
	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 300, "/", "", false, true)
}

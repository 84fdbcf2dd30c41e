package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the connection and joins the viewer to the
// session's live state feed.
func HandleWebSocket(session *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			session.log.Warnf("websocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			session: session,
			send:    make(chan []byte, 32),
		}
		session.addClient(client)
	}
}

package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// HandleWebSocket upgrades connections and runs them as Hub clients.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // the API binds to loopback by default
		})
		if err != nil {
			hub.logger.Warn(config.MsgWSAccept, config.LogKeyError, err)
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}

package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/coinfeed/coinfeed/internal/news"
	"github.com/coinfeed/coinfeed/internal/rank"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The live feed is public data; cross-origin viewers are fine.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS upgrades the connection and bridges it to the broadcast hub: one
// goroutine per direction, either side ending tears down the sibling, and the
// subscription is always released with the connection.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	sub := s.hub.Subscribe()
	ctx, cancel := context.WithCancel(c.Request.Context())

	defer func() {
		cancel()
		s.hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	// Writer: drain the mailbox onto the socket. Closing the connection on
	// the way out unblocks a reader sitting in ReadMessage.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-sub.Updates():
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(u); err != nil {
					log.Printf("ws: write: %v", err)
					return
				}
			}
		}
	}()

	// Reader: each text frame names a coin; fetch it, publish the result to
	// every live subscriber, and refresh the cache as a side effect.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		coin := rank.NormalizeTerm(strings.Trim(string(msg), `"`))
		if coin == "" {
			continue
		}

		items, err := s.fetchAndStore(ctx, coin)
		if err != nil {
			log.Printf("ws: fetch %q: %v", coin, err)
			continue
		}
		s.hub.Publish(news.Update{Coin: coin, Items: items})
	}

	// Reader finished: cancel the writer, then wait so the connection is not
	// closed underneath an in-flight write.
	cancel()
	<-writeDone
}

package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(hub *Hub, userID string) *Client {
	return &Client{hub: hub, send: make(chan []byte, 64), userID: userID}
}

func register(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	hub.register <- c
	waitFor(t, func() bool { return hub.HasUser(c.userID) })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHubDeliver(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := newTestClient(hub, "77")
	tablet := newTestClient(hub, "77")
	other := newTestClient(hub, "42")
	register(t, hub, phone)
	register(t, hub, tablet)
	register(t, hub, other)

	delivered := hub.Deliver("77", []byte("hello"))
	assert.Equal(t, 2, delivered, "every connection of the user gets the message")
	assert.Equal(t, []byte("hello"), <-phone.send)
	assert.Equal(t, []byte("hello"), <-tablet.send)
	assert.Empty(t, other.send)

	assert.Zero(t, hub.Deliver("99", []byte("hello")), "unknown user delivers nowhere")
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := newTestClient(hub, "77")
	tablet := newTestClient(hub, "77")
	register(t, hub, phone)
	register(t, hub, tablet)

	hub.unregister <- phone
	waitFor(t, func() bool { return hub.Deliver("77", []byte("x")) == 1 })
	assert.True(t, hub.HasUser("77"))

	hub.unregister <- tablet
	waitFor(t, func() bool { return !hub.HasUser("77") })
}

func TestHubDeliverSkipsFullBuffers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{hub: hub, send: make(chan []byte, 1), userID: "77"}
	register(t, hub, slow)

	assert.Equal(t, 1, hub.Deliver("77", []byte("first")))
	assert.Equal(t, 0, hub.Deliver("77", []byte("second")), "full buffer drops instead of blocking")
}

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/api/handlers"
	"github.com/inventario-app/inventario-api/models"
)

func dialStream(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStream_SubscribeSendsSnapshotThenBroadcasts(t *testing.T) {
	initial := []models.Equipment{
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Type: "Notebook", Name: "Dell Latitude", Barcode: "12345"}},
	}
	stream := handlers.NewStream(newTestSnapshot(t, initial))

	server := httptest.NewServer(http.HandlerFunc(stream.SubscribeHandler))
	defer server.Close()

	conn := dialStream(t, server)

	var first []models.Equipment
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, first, 1)
	assert.Equal(t, "Dell Latitude", first[0].Details.Name)

	updated := append(initial, models.Equipment{
		ID:      primitive.NewObjectID(),
		Details: models.EquipmentDetails{Type: "Monitor", Name: "LG Monitor", Barcode: "67890"},
	})
	stream.Broadcast(updated)

	var second []models.Equipment
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, second, 2)
}

func TestStream_FirstFrameIsSnapshotUnderBroadcastLoad(t *testing.T) {
	initial := []models.Equipment{
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Type: "Notebook", Name: "initial", Barcode: "12345"}},
	}
	stream := handlers.NewStream(newTestSnapshot(t, initial))

	server := httptest.NewServer(http.HandlerFunc(stream.SubscribeHandler))
	defer server.Close()

	// Hammer the hub while clients connect. A connection must not be
	// registered until its initial frame is written, so the first frame a
	// client reads is always the snapshot, never a broadcast.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other := []models.Equipment{
			{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Type: "Monitor", Name: "broadcast", Barcode: "67890"}},
		}
		for {
			select {
			case <-done:
				return
			default:
				stream.Broadcast(other)
			}
		}
	}()

	for i := 0; i < 5; i++ {
		conn := dialStream(t, server)
		var first []models.Equipment
		if err := conn.ReadJSON(&first); err != nil {
			t.Fatal(err)
		}
		assert.Len(t, first, 1)
		assert.Equal(t, "initial", first[0].Details.Name)
		_ = conn.Close()
	}

	close(done)
	wg.Wait()
}

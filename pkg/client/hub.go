package client

import (
	"context"
	"encoding/json"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/msg"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/emirpasic/gods/maps/hashmap"
	"go.uber.org/zap"
)

// Hub fans queue snapshots out to websocket subscribers. One
// goroutine owns all subscriber state, so no lock is needed: register,
// unregister and engine notifications are serialized through channels.
type Hub struct {
	// Register requests from new subscribers.
	register chan *Client

	// Unregister requests from disconnected subscribers.
	unregister chan *Client

	// Key value: serviceId -> *hashmap.Map of client.id -> *Client.
	subscribers *hashmap.Map

	engine *queue.Engine
	logger *zap.SugaredLogger
}

func ProvideHub(engine *queue.Engine, loggerFactory *infra.LoggerFactory) *Hub {
	return &Hub{
		register:    make(chan *Client, 1024),
		unregister:  make(chan *Client, 1024),
		subscribers: hashmap.New(),
		engine:      engine,
		logger:      loggerFactory.Create("Hub").Sugar(),
	}
}

// Register hands a freshly upgraded connection to the hub. The
// subscriber receives the current snapshot right away.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.logger.Debugf("register client id[%v] service[%v]", client.id, client.serviceId)
			h.serviceClients(client.serviceId).Put(client.id, client)
			if wsMessage := h.snapshot(client.serviceId); wsMessage != nil {
				h.send(client, wsMessage)
			}

		case client := <-h.unregister:
			h.logger.Debugf("unregister client id[%v] service[%v]", client.id, client.serviceId)
			h.removeClient(client)

		case serviceId := <-h.engine.Notify:
			h.logger.Debugf("queue changed service[%v]", serviceId)
			clients := h.serviceClients(serviceId)
			if clients.Size() == 0 {
				continue
			}

			wsMessage := h.snapshot(serviceId)
			if wsMessage == nil {
				continue
			}
			for _, value := range clients.Values() {
				h.send(value.(*Client), wsMessage)
			}
		}
	}
}

// send assumes a subscriber with a full buffer is dead or stuck and
// drops it. No retry, no backlog.
func (h *Hub) send(client *Client, wsMessage *msg.WsMessage) {
	select {
	case client.sendWsMessage <- wsMessage:
	default:
		h.logger.Warnf("client id[%v] send channel is full, closing it", client.id)
		h.removeClient(client)
	}
}

func (h *Hub) snapshot(serviceId int64) *msg.WsMessage {
	detail, err := h.engine.QueueDetail(context.Background(), serviceId)
	if err != nil {
		h.logger.Errorf("cannot load queue detail for service[%v] %v", serviceId, err)
		return nil
	}

	rawEvent, err := json.Marshal(detail)
	if err != nil {
		h.logger.Errorf("cannot marshal queue detail %v", err)
		return nil
	}

	return &msg.WsMessage{
		EventCode: msg.QueueUpdateCode,
		EventData: rawEvent,
	}
}

func (h *Hub) serviceClients(serviceId int64) *hashmap.Map {
	value, ok := h.subscribers.Get(serviceId)
	if !ok {
		clients := hashmap.New()
		h.subscribers.Put(serviceId, clients)
		return clients
	}
	return value.(*hashmap.Map)
}

func (h *Hub) removeClient(client *Client) {
	clients := h.serviceClients(client.serviceId)
	if _, ok := clients.Get(client.id); !ok {
		return
	}
	clients.Remove(client.id)
	client.TryClose() // Notify client it should close now.
}

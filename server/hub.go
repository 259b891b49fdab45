package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"stenosis/model"
	"stenosis/simulator"
)

// Hub connects one websocket client to its simulation session. Requests are
// handled in order on one goroutine; every write to the connection goes
// through handleResponse.
type Hub struct {
	conn    *websocket.Conn
	session *simulator.Session

	// request
	msg chan model.Msg
	// response
	reply  chan model.Msg
	frames chan model.Msg

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(conn *websocket.Conn, session *simulator.Session) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		conn:    conn,
		session: session,
		msg:     make(chan model.Msg, 10),
		reply:   make(chan model.Msg, 10),
		frames:  make(chan model.Msg, 4),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run reads client messages until the connection fails, then stops the
// session.
func (h *Hub) Run() {
	defer h.session.Stop()
	defer h.cancel()

	go h.handleRequest()
	go h.handleResponse()

	for {
		var msg model.Msg
		if err := h.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read message")
			}
			return
		}
		select {
		case h.msg <- msg:
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			reply := h.dispatch(msg)
			select {
			case h.reply <- reply:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) handleResponse() {
	for {
		var reply model.Msg
		select {
		case reply = <-h.reply:
		case reply = <-h.frames:
		case <-h.ctx.Done():
			return
		}
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithError(err).WithField("type", reply.Type).Warn("write message")
			h.cancel()
			return
		}
	}
}

func (h *Hub) dispatch(msg model.Msg) model.Msg {
	switch msg.Type {
	case model.TypeEnv:
		env := h.session.Result().Env
		if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
			return errorMsg(fmt.Errorf("decode env: %w", err))
		}
		res, err := h.session.SetEnv(env)
		if err != nil {
			return errorMsg(err)
		}
		return encode(model.TypeEnvSet, res)
	case model.TypeResize:
		var canvas model.Canvas
		if err := json.Unmarshal([]byte(msg.Content), &canvas); err != nil {
			return errorMsg(fmt.Errorf("decode canvas: %w", err))
		}
		if err := h.session.Resize(canvas); err != nil {
			return errorMsg(err)
		}
		return encode(model.TypeResized, h.session.Frame().Geometry)
	case model.TypeStart:
		if !h.session.Start(h.ctx, h.pushFrame) {
			log.Debug("仿真已在运行")
		}
		return encode(model.TypeStarted, h.session.Result())
	case model.TypeStop:
		h.session.Stop()
		h.dropPendingFrames()
		return model.Msg{Type: model.TypeStopped, Content: "stopped"}
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		return errorMsg(fmt.Errorf("no such type: %q", msg.Type))
	}
}

// pushFrame drops the frame when the client is behind.
func (h *Hub) pushFrame(frame simulator.Frame) {
	msg := encode(model.TypeFrame, frame)
	select {
	case h.frames <- msg:
	default:
		log.WithField("tick", frame.Tick).Debug("客户端处理过慢, 丢弃帧")
	}
}

func (h *Hub) dropPendingFrames() {
	for {
		select {
		case <-h.frames:
		default:
			return
		}
	}
}

func encode(typ string, v interface{}) model.Msg {
	data, err := json.Marshal(v)
	if err != nil {
		return errorMsg(fmt.Errorf("encode %s: %w", typ, err))
	}
	return model.Msg{Type: typ, Content: string(data)}
}

func errorMsg(err error) model.Msg {
	return model.Msg{Type: model.TypeError, Content: err.Error()}
}

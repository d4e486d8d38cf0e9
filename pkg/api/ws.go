package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
)

// wsRequest is one inbound frame. Dispatch false only resolves.
type wsRequest struct {
	ID       string `json:"id,omitempty"`
	Dispatch bool   `json:"dispatch,omitempty"`
	command.Request
}

// wsReply answers one frame; exactly one of Command and Error is set
type wsReply struct {
	ID      string           `json:"id"`
	Command *command.Command `json:"command,omitempty"`
	Sent    bool             `json:"sent"`
	Status  int              `json:"status,omitempty"`
	Error   *errorResponse   `json:"error,omitempty"`
}

// handleWebSocket godoc
// @Summary Command stream
// @Description Upgrades to a WebSocket; each JSON frame is a request and is answered with a command or error frame
// @Tags commands
// @Router /api/v1/ws [get]
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	log := s.logger.With(zap.String("session_id", session))
	log.Info("websocket connected", zap.String("client_ip", c.ClientIP()))

	ctx := c.Request.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			log.Info("websocket disconnected")
			return
		}

		reply := s.handleFrame(ctx, data)
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, data []byte) wsReply {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return wsReply{Status: http.StatusBadRequest, Error: &errorResponse{
			Error: "invalid frame: " + err.Error(),
			Kind:  "frame",
		}}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	var (
		cmd command.Command
		err error
	)
	if req.Dispatch {
		cmd, err = s.dispatcher.Dispatch(ctx, req.Request)
	} else {
		cmd, err = s.dispatcher.Resolve(req.Request)
	}
	if err != nil {
		status, body := errorFor(err)
		return wsReply{ID: req.ID, Status: status, Error: &body}
	}
	return wsReply{ID: req.ID, Command: &cmd, Sent: req.Dispatch, Status: http.StatusOK}
}

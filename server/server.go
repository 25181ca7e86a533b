// Package server wires the relay together: websocket intake, matchmaking,
// room traffic, leaderboard and the admin RPC surface.
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/yamb/broadcast"
	"github.com/wfunc/yamb/config"
	"github.com/wfunc/yamb/logger"
	"github.com/wfunc/yamb/models"
	"github.com/wfunc/yamb/monitor"
	"github.com/wfunc/yamb/network"
	"github.com/wfunc/yamb/room"
	yambrpc "github.com/wfunc/yamb/rpc"
	"github.com/wfunc/yamb/services"
	"github.com/wfunc/yamb/session"
	"github.com/wfunc/yamb/timer"
)

type GameServer struct {
	addr           string
	metricsAddr    string
	gracePeriod    time.Duration
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	matchmaker     *room.Matchmaker
	leaderboard    *services.LeaderboardService
	broadcaster    broadcast.Broadcaster
	timers         *timer.Manager
	monitor        *monitor.Monitor
	rpcServer      *yambrpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, leaderboard *services.LeaderboardService) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		metricsAddr:    cfg.Server.MetricsAddress,
		gracePeriod:    cfg.Game.GracePeriod(),
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		matchmaker:     room.NewMatchmaker(),
		leaderboard:    leaderboard,
		timers:         timer.NewManager(),
		monitor:        monitor.NewMonitor("yamb"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // no cookie auth, any origin may connect
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	rpcServer, err := yambrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	adminService := yambrpc.NewAdminService(s.leaderboard, s.roomManager, s.sessionManager, s.matchmaker)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.metricsAddr)

	// Keep the gauges honest even when nothing happens.
	s.timers.Schedule(5*time.Second, 5*time.Second, func() {
		s.monitor.SetActiveRooms(s.roomManager.Count())
		s.monitor.SetWaitingPlayers(s.matchmaker.WaitingCount())
	})

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Yamb relay listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	// Every client sees the board the moment they connect.
	sess.SendJSON(network.MsgTypeHighscoreUpdate, s.leaderboard.Top())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.handleDisconnect(sess)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	defer func() {
		s.monitor.ObserveRelayLatency(time.Since(start))
	}()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeFindGame:
		s.handleFindGame(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeRejoinRequest:
		s.handleRejoin(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeSubmitScore:
		s.handleSubmitScore(sess, packet)
	case network.MsgTypePlayerMove, network.MsgTypeChat:
		s.relayToOpponent(sess, packet)
	case network.MsgTypeGameAction:
		s.handleGameAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// handleFindGame runs quick match: the first seeker waits, the second is
// paired with them.
func (s *GameServer) handleFindGame(sess *session.Session, packet *network.Packet) {
	var req models.FindGameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "bad_request", "malformed find_game payload")
		return
	}
	if req.Nickname == "" {
		req.Nickname = "Player"
	}

	match := s.matchmaker.Enqueue(sess, req.Nickname)
	s.monitor.SetWaitingPlayers(s.matchmaker.WaitingCount())
	if match == nil {
		logger.Log.Infof("Session %s (%s) is waiting for a match", sess.GetID(), req.Nickname)
		return
	}

	r := s.roomManager.CreateRoom(match.RoomID, s.broadcaster)
	for seat, player := range match.Sessions {
		r.Seat(player, seat, match.Names[seat])
	}
	s.monitor.SetActiveRooms(s.roomManager.Count())

	logger.Log.Infof("Matched %s vs %s in room %s", match.Names[0], match.Names[1], match.RoomID)

	for seat, player := range match.Sessions {
		player.SendJSON(network.MsgTypeGameStart, models.GameStart{
			RoomID:  match.RoomID,
			Players: match.Names[:],
			MyIndex: seat,
		})
	}
}

// handleJoinRoom creates or joins a private room by its code. The first
// visitor creates the room and waits; the second one starts the game.
func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.RoomID == "" {
		s.sendError(sess, "bad_request", "malformed join_room payload")
		return
	}
	if req.Nickname == "" {
		req.Nickname = "Player"
	}

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		r = s.roomManager.CreateRoom(req.RoomID, s.broadcaster)
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}

	seat := r.SeatAny(sess, req.Nickname)
	if seat < 0 {
		s.sendError(sess, "room_full", "room is full")
		return
	}

	logger.Log.Infof("Session %s joined room %s on seat %d", sess.GetID(), req.RoomID, seat)

	if r.OccupantCount() < room.Seats {
		return
	}

	for i := 0; i < room.Seats; i++ {
		if player := r.SessionAt(i); player != nil {
			player.SendJSON(network.MsgTypeGameStart, models.GameStart{
				RoomID:  r.ID,
				Players: r.Names[:],
				MyIndex: i,
			})
		}
	}
}

// handleRejoin reclaims a vacated seat during the grace period.
func (s *GameServer) handleRejoin(sess *session.Session, packet *network.Packet) {
	var req models.RejoinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "bad_request", "malformed rejoin payload")
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		sess.SendJSON(network.MsgTypeRejoinFailed, models.ErrorMessage{
			Code: "room_gone", Message: "the game has expired",
		})
		return
	}

	seat := r.SeatOf(req.Nickname)
	if seat < 0 || !r.Reseat(sess, seat, req.Nickname) {
		sess.SendJSON(network.MsgTypeRejoinFailed, models.ErrorMessage{
			Code: "seat_taken", Message: "no seat to reclaim",
		})
		return
	}

	if taskID := r.GraceTask(seat); taskID != 0 {
		s.timers.Cancel(taskID)
		r.SetGraceTask(seat, 0)
	}

	logger.Log.Infof("Session %s rejoined room %s as %s", sess.GetID(), req.RoomID, req.Nickname)

	sess.SendJSON(network.MsgTypeRejoinSuccess, models.GameStart{
		RoomID:  r.ID,
		Players: r.Names[:],
		MyIndex: seat,
	})

	if other := r.Other(seat); other != nil {
		other.SendJSON(network.MsgTypeOpponentRejoined, models.OpponentNotice{Nickname: req.Nickname})
	}
}

// handleLeaveRoom is a voluntary exit: no grace period, the opponent is told
// the game is over.
func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	roomID, seat := sess.Room()
	if roomID == "" {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		sess.Unseat()
		return
	}

	nickname := r.Names[seat]
	r.Vacate(seat)

	if other := r.Other(seat); other != nil {
		other.SendJSON(network.MsgTypeOpponentLeft, models.OpponentNotice{Nickname: nickname})
	} else if r.OccupantCount() == 0 {
		// The last occupant walked out on purpose; no grace task exists for
		// a voluntary exit, so tear the room down now.
		if taskID := r.GraceTask(1 - seat); taskID != 0 {
			s.timers.Cancel(taskID)
		}
		s.roomManager.RemoveRoom(roomID)
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}

	logger.Log.Infof("Session %s left room %s", sess.GetID(), roomID)
}

// handleDisconnect runs when a connection dies. A seated player gets a grace
// window to come back before the room is torn down.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	if s.matchmaker.Leave(sess.GetID()) {
		s.monitor.SetWaitingPlayers(s.matchmaker.WaitingCount())
	}

	roomID, seat := sess.Room()
	if roomID == "" {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return
	}

	nickname := r.Names[seat]
	r.Vacate(seat)

	if other := r.Other(seat); other != nil {
		other.SendJSON(network.MsgTypeOpponentLeftTemp, models.OpponentNotice{Nickname: nickname})
	}

	// The deadline is scheduled even when the room is now empty; an empty
	// room survives the whole grace window so either player can rejoin.
	taskID := s.timers.Schedule(s.gracePeriod, 0, func() {
		s.expireSeat(roomID, seat, nickname)
	})
	r.SetGraceTask(seat, taskID)

	logger.Log.Infof("Session %s dropped from room %s, grace window %s", sess.GetID(), roomID, s.gracePeriod)
}

// expireSeat fires when a seat's grace window closes without a rejoin.
func (s *GameServer) expireSeat(roomID string, seat int, nickname string) {
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return
	}
	if r.SessionAt(seat) != nil {
		// Reclaimed just as the task fired; the rejoin path already
		// cleared the slot.
		return
	}

	data, _ := json.Marshal(models.OpponentNotice{Nickname: nickname})
	r.Broadcast(network.MsgTypeOpponentLeft, data)

	s.roomManager.RemoveRoom(roomID)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	logger.Log.Infof("Room %s expired, %s never came back", roomID, nickname)
}

// handleSubmitScore records a finished game's total and pushes the board to
// everyone when it changes.
func (s *GameServer) handleSubmitScore(sess *session.Session, packet *network.Packet) {
	var req models.ScoreSubmission
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.Name == "" {
		s.sendError(sess, "bad_request", "malformed score payload")
		return
	}

	top, changed, err := s.leaderboard.Submit(req.Name, req.Score)
	if err != nil {
		logger.Log.Warnf("Score write-through failed for %s: %v", req.Name, err)
	}
	if !changed {
		return
	}

	data, err := json.Marshal(top)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastToAll(network.MsgTypeHighscoreUpdate, data)
}

// handleGameAction relays the action and archives the match when it carries
// the final result.
func (s *GameServer) handleGameAction(sess *session.Session, packet *network.Packet) {
	s.relayToOpponent(sess, packet)

	var action models.GameAction
	if err := json.Unmarshal(packet.Data, &action); err != nil {
		return
	}
	if action.Action != "game_over" || len(action.Data) == 0 {
		return
	}

	var players []models.MatchPlayer
	if err := json.Unmarshal(action.Data, &players); err != nil {
		return
	}

	record := models.MatchRecord{
		RoomID:    action.RoomID,
		Players:   players,
		CreatedAt: time.Now(),
	}
	if err := s.leaderboard.RecordMatch(record); err != nil {
		logger.Log.Warnf("Failed to archive match in room %s: %v", action.RoomID, err)
	}
}

// relayToOpponent is the relay's core: forward the packet untouched to the
// other seat.
func (s *GameServer) relayToOpponent(sess *session.Session, packet *network.Packet) {
	roomID, _ := sess.Room()
	if roomID == "" {
		logger.Log.Warnf("Session %s sent msg %d but is not in a room", sess.GetID(), packet.MsgID)
		return
	}

	if err := s.broadcaster.SendToOthers(roomID, sess.GetID(), packet.MsgID, packet.Data); err != nil {
		logger.Log.Errorf("Relay failed in room %s: %v", roomID, err)
		return
	}
	s.monitor.IncMessagesRelayed()
}

func (s *GameServer) sendError(sess *session.Session, code string, message string) {
	sess.SendJSON(network.MsgTypeError, models.ErrorMessage{Code: code, Message: message})
}

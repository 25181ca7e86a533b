// Package rpc exposes a small admin surface over net/rpc: leaderboard reads
// and live relay stats.
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/yamb/logger"
	"github.com/wfunc/yamb/models"
	"github.com/wfunc/yamb/room"
	"github.com/wfunc/yamb/services"
	"github.com/wfunc/yamb/session"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService is the struct that exposes RPC methods. Methods follow the
// net/rpc signature: exported method, exported arguments, second argument a
// pointer, error return.
type AdminService struct {
	leaderboard    *services.LeaderboardService
	roomManager    *room.Manager
	sessionManager *session.Manager
	matchmaker     *room.Matchmaker
}

func NewAdminService(lb *services.LeaderboardService, rooms *room.Manager, sessions *session.Manager, mm *room.Matchmaker) *AdminService {
	return &AdminService{
		leaderboard:    lb,
		roomManager:    rooms,
		sessionManager: sessions,
		matchmaker:     mm,
	}
}

type TopScoresArgs struct {
	Limit int
}

type TopScoresReply struct {
	Scores []models.ScoreEntry
}

func (as *AdminService) TopScores(args *TopScoresArgs, reply *TopScoresReply) error {
	scores := as.leaderboard.Top()
	if args.Limit > 0 && args.Limit < len(scores) {
		scores = scores[:args.Limit]
	}
	reply.Scores = scores
	return nil
}

type StatsArgs struct{}

type StatsReply struct {
	Sessions int
	Rooms    int
	Waiting  int
}

func (as *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.Sessions = as.sessionManager.Count()
	reply.Rooms = as.roomManager.Count()
	reply.Waiting = as.matchmaker.WaitingCount()
	return nil
}

package state

// WaitingState: the room exists but only one seat is taken. A private room
// sits here until the second player joins with the code; a matched room
// passes through it for a single tick.
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{RoomStateBase{ID: "waiting", Room: room}}
}

func (s *WaitingState) OnUpdate() {
	switch s.Room.OccupantCount() {
	case 2:
		s.Room.ChangeState(NewPlayingState(s.Room))
	case 0:
		// A creator who blipped still owns their seat until the grace
		// timer gives up on them; only never-used rooms die here.
		if !s.Room.EverSeated() {
			s.Room.Expire()
		}
	}
}

// PlayingState: both seats occupied, traffic is relayed between them.
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{RoomStateBase{ID: "playing", Room: room}}
}

func (s *PlayingState) OnUpdate() {
	if s.Room.OccupantCount() < 2 {
		s.Room.ChangeState(NewGraceState(s.Room))
	}
}

// GraceState: one or both players dropped; the room is held so they can
// rejoin. The expiry deadline is a timer task owned by the server, not the
// state, so a rejoin can cancel it — even a fully empty room survives until
// that task fires.
type GraceState struct {
	RoomStateBase
}

func NewGraceState(room RoomContext) *GraceState {
	return &GraceState{RoomStateBase{ID: "grace", Room: room}}
}

func (s *GraceState) OnUpdate() {
	if s.Room.OccupantCount() == 2 {
		s.Room.ChangeState(NewPlayingState(s.Room))
	}
}

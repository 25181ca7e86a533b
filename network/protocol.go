package network

// Message ids of the relay protocol. Client-to-server requests sit in the
// 100 range, relayed room traffic in the 200 range, server notifications in
// the 300 range.
const (
	MsgTypeHeartbeat = 1

	MsgTypeFindGame      = 101
	MsgTypeJoinRoom      = 102
	MsgTypeRejoinRequest = 103
	MsgTypeLeaveRoom     = 104
	MsgTypeSubmitScore   = 105

	MsgTypePlayerMove = 201
	MsgTypeGameAction = 202
	MsgTypeChat       = 203

	MsgTypeGameStart        = 301
	MsgTypeRejoinSuccess    = 302
	MsgTypeRejoinFailed     = 303
	MsgTypeOpponentLeftTemp = 304
	MsgTypeOpponentLeft     = 305
	MsgTypeHighscoreUpdate  = 306
	MsgTypeError            = 307
	MsgTypeOpponentRejoined = 308
)

// Terminal client for the Yamb relay. Plays offline against the built-in
// opponent (or solo), saves and restores games, and connects to a relay for
// head-to-head play.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/yamb/ai"
	"github.com/wfunc/yamb/game"
	"github.com/wfunc/yamb/models"
	"github.com/wfunc/yamb/network"
	"github.com/wfunc/yamb/timer"
)

var (
	serverAddr = flag.String("server", "", "relay address (host:port); empty plays offline")
	nickname   = flag.String("name", "Player", "display name")
	roomCode   = flag.String("room", "", "private room code to create or join")
	rejoinRoom = flag.String("rejoin", "", "room id to rejoin after a disconnect")
	aiLevel    = flag.String("ai", "medium", "offline opponent: easy, medium, hard, insane or none for solo")
	loadFile   = flag.String("load", "", "snapshot file to resume from")
)

func main() {
	flag.Parse()

	if *serverAddr != "" {
		runOnline()
		return
	}
	runOffline()
}

// --- offline play ---

type offlineClient struct {
	game   *game.Game
	engine *ai.Engine
	timers *timer.Manager
	reader *bufio.Reader
}

func runOffline() {
	c := &offlineClient{
		timers: timer.NewManager(),
		reader: bufio.NewReader(os.Stdin),
	}
	defer c.timers.Stop()

	if *loadFile != "" {
		data, err := os.ReadFile(*loadFile)
		if err != nil {
			log.Fatalf("Cannot read snapshot: %v", err)
		}
		snap, err := game.DecodeSnapshot(data)
		if err != nil {
			log.Fatalf("Cannot decode snapshot: %v", err)
		}
		g, err := game.Restore(snap)
		if err != nil {
			log.Fatalf("Cannot restore game: %v", err)
		}
		c.game = g
	} else {
		players := []game.Player{{Name: *nickname, Kind: game.Human}}
		if *aiLevel != "none" {
			difficulty := game.Difficulty(*aiLevel)
			if !difficulty.Valid() {
				log.Fatalf("Unknown difficulty %q", *aiLevel)
			}
			botName := "Bot_" + strings.ToUpper((*aiLevel)[:1]) + (*aiLevel)[1:]
			players = append(players, game.Player{
				Name:       botName,
				Kind:       game.AI,
				Difficulty: difficulty,
			})
		}
		g, err := game.NewGame(players, game.Options{})
		if err != nil {
			log.Fatalf("Cannot start game: %v", err)
		}
		c.game = g
	}

	for _, p := range c.game.Players {
		if p.Kind == game.AI {
			c.engine = ai.New(p.Difficulty)
		}
	}

	fmt.Println("Commands: roll, hold <1-6>, announce, write <col> <cat>, undo, sheet, save <file>, quit")
	c.loop()
}

func (c *offlineClient) loop() {
	for {
		if c.game.Over() {
			c.printResult()
			return
		}
		if c.game.CurrentPlayer().Kind == game.AI {
			c.playAITurn()
			continue
		}

		turn := c.game.Turn()
		fmt.Printf("[%s] dice %v held %s rolls %d> ",
			c.game.CurrentPlayer().Name, turn.Dice, heldString(turn.Held), turn.RollCount)

		line, err := c.reader.ReadString('\n')
		if err != nil {
			return
		}
		if !c.handleCommand(strings.Fields(strings.TrimSpace(line))) {
			return
		}
	}
}

func (c *offlineClient) handleCommand(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "roll":
		dice, err := c.game.Roll()
		if err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Printf("Rolled %v\n", dice)
	case "hold":
		if len(args) < 2 {
			fmt.Println("hold <1-6>")
			return true
		}
		die, err := strconv.Atoi(args[1])
		if err != nil || die < 1 || die > 6 {
			fmt.Println("hold <1-6>")
			return true
		}
		if err := c.game.ToggleHold(die - 1); err != nil {
			fmt.Println(err)
		}
	case "announce":
		if err := c.game.ToggleAnnounce(); err != nil {
			fmt.Println(err)
			return true
		}
		if c.game.Turn().AnnouncementActive {
			fmt.Println("Announcing: write the target cell in the Announced column")
		} else {
			fmt.Println("Announcement cancelled")
		}
	case "write":
		c.handleWrite(args)
	case "undo":
		if err := c.game.Undo(); err != nil {
			fmt.Println(err)
		}
	case "sheet":
		c.printSheet()
	case "save":
		if len(args) < 2 {
			fmt.Println("save <file>")
			return true
		}
		data, err := game.EncodeSnapshot(c.game.Snapshot())
		if err != nil {
			fmt.Println(err)
			return true
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Printf("Saved to %s\n", args[1])
	case "quit":
		return false
	default:
		fmt.Printf("Unknown command %q\n", args[0])
	}
	return true
}

func (c *offlineClient) handleWrite(args []string) {
	if len(args) < 3 {
		fmt.Println("write <col> <cat>, e.g. write Free Yamb")
		return
	}
	col, ok := game.ColumnFromString(args[1])
	if !ok {
		fmt.Printf("Unknown column %q\n", args[1])
		return
	}
	cat, ok := game.CategoryFromString(args[2])
	if !ok {
		fmt.Printf("Unknown category %q\n", args[2])
		return
	}

	res, err := c.game.Write(col, cat, false)
	if err == game.ErrManualNeedsConfirm {
		fmt.Print("Writing Manual now scores zero. Confirm? (y/n) ")
		answer, _ := c.reader.ReadString('\n')
		if strings.TrimSpace(answer) != "y" {
			return
		}
		res, err = c.game.Write(col, cat, true)
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	if res.Bound {
		fmt.Printf("Announced %s, keep rolling\n", cat)
		return
	}
	fmt.Printf("Wrote %d into %s/%s\n", res.Points, col, cat)
}

// playAITurn drives one full computer turn, paced so the moves are readable.
func (c *offlineClient) playAITurn() {
	seat := c.game.Current
	totals := c.game.Totals()
	engine := c.engine

	for !c.game.Over() && c.game.Current == seat {
		c.pause(engine.ThinkDelay())

		dice, err := c.game.Roll()
		if err != nil && err != game.ErrNoRollsLeft {
			log.Printf("AI roll failed: %v", err)
			return
		}

		turn := c.game.Turn()
		decision := engine.Decide(dice, turn.RollCount, c.game.Sheet(seat),
			turn.AnnouncedCell, totals[seat], totals[1-seat])

		switch decision.Type {
		case ai.Write:
			res, err := c.game.Write(decision.Cell.Col, decision.Cell.Cat, true)
			if err != nil {
				log.Printf("AI write failed: %v", err)
				return
			}
			fmt.Printf("%s writes %d into %s\n", c.game.Players[seat].Name, res.Points, decision.Cell)
			if line := engine.Reaction(res.Points); line != "" {
				fmt.Printf("%s: %s\n", c.game.Players[seat].Name, line)
			}
		case ai.Announce:
			if err := c.game.ToggleAnnounce(); err != nil {
				log.Printf("AI announce failed: %v", err)
				return
			}
			if _, err := c.game.Write(game.Announced, decision.Cell.Cat, false); err != nil {
				log.Printf("AI announce bind failed: %v", err)
				return
			}
			c.game.SetHeld(decision.Hold)
			fmt.Printf("%s announces %s\n", c.game.Players[seat].Name, decision.Cell.Cat)
		case ai.Hold:
			c.game.SetHeld(decision.Hold)
		case ai.Pass:
			return
		}
	}
}

// pause blocks through the shared timer wheel instead of sleeping, so every
// delay in the client runs on one clock.
func (c *offlineClient) pause(d time.Duration) {
	done := make(chan struct{})
	c.timers.Schedule(d, 0, func() { close(done) })
	<-done
}

func (c *offlineClient) printSheet() {
	sheet := c.game.Sheet(c.game.Current)
	fmt.Printf("%-8s", "")
	for col := game.Column(0); col < game.NumColumns; col++ {
		fmt.Printf("%9s", col)
	}
	fmt.Println()
	for cat := game.Category(0); cat < game.NumCategories; cat++ {
		fmt.Printf("%-8s", cat)
		for col := game.Column(0); col < game.NumColumns; col++ {
			if v, filled := sheet.Value(col, cat); filled {
				fmt.Printf("%9d", v)
			} else {
				fmt.Printf("%9s", "-")
			}
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d\n", sheet.Total())
}

func (c *offlineClient) printResult() {
	totals := c.game.Totals()
	for i, p := range c.game.Players {
		fmt.Printf("%s: %d\n", p.Name, totals[i])
	}
	if len(totals) == 2 {
		switch {
		case totals[0] > totals[1]:
			fmt.Printf("%s wins!\n", c.game.Players[0].Name)
		case totals[1] > totals[0]:
			fmt.Printf("%s wins!\n", c.game.Players[1].Name)
		default:
			fmt.Println("Draw!")
		}
	}
}

func heldString(held [6]bool) string {
	var b strings.Builder
	for _, h := range held {
		if h {
			b.WriteByte('*')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// --- online play ---

type onlineClient struct {
	conn   network.Connection
	game   *game.Game
	roomID string
	seat   int
	reader *bufio.Reader
}

func runOnline() {
	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	wsConn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}

	c := &onlineClient{
		conn:   network.NewWSConnection(wsConn),
		seat:   -1,
		reader: bufio.NewReader(os.Stdin),
	}
	defer c.conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			packet, err := c.conn.ReadPacket()
			if err != nil {
				log.Printf("Connection lost: %v", err)
				return
			}
			c.handlePacket(packet)
		}
	}()

	switch {
	case *rejoinRoom != "":
		c.conn.SendJSON(network.MsgTypeRejoinRequest, models.RejoinRequest{
			RoomID: *rejoinRoom, Nickname: *nickname,
		})
	case *roomCode != "":
		c.conn.SendJSON(network.MsgTypeJoinRoom, models.JoinRoomRequest{
			RoomID: *roomCode, Nickname: *nickname,
		})
		log.Printf("Waiting in room %s...", *roomCode)
	default:
		c.conn.SendJSON(network.MsgTypeFindGame, models.FindGameRequest{Nickname: *nickname})
		log.Println("Looking for an opponent...")
	}

	c.inputLoop(done)
}

func (c *onlineClient) handlePacket(packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeGameStart, network.MsgTypeRejoinSuccess:
		var start models.GameStart
		if err := json.Unmarshal(packet.Data, &start); err != nil {
			return
		}
		c.startGame(start)
	case network.MsgTypeRejoinFailed:
		var msg models.ErrorMessage
		json.Unmarshal(packet.Data, &msg)
		log.Printf("Rejoin failed: %s", msg.Message)
	case network.MsgTypePlayerMove:
		var move models.Move
		if err := json.Unmarshal(packet.Data, &move); err != nil || c.game == nil {
			return
		}
		col := game.Column(move.Col)
		cat := game.Category(move.Row)
		if err := c.game.ApplyRemoteMove(1-c.seat, col, cat, move.Points); err != nil {
			log.Printf("Bad opponent move: %v", err)
			return
		}
		log.Printf("Opponent wrote %d into %s/%s", move.Points, col, cat)
		if c.game.Over() {
			c.finishGame()
		}
	case network.MsgTypeGameAction:
		var action models.GameAction
		if err := json.Unmarshal(packet.Data, &action); err != nil {
			return
		}
		log.Printf("Opponent: %s", action.Action)
	case network.MsgTypeChat:
		var chat models.ChatMessage
		if err := json.Unmarshal(packet.Data, &chat); err != nil {
			return
		}
		log.Printf("[%s] %s", chat.Sender, chat.Text)
	case network.MsgTypeHighscoreUpdate:
		var scores []models.ScoreEntry
		if err := json.Unmarshal(packet.Data, &scores); err != nil {
			return
		}
		log.Println("--- Highscores ---")
		for i, entry := range scores {
			log.Printf("%2d. %-20s %d", i+1, entry.Name, entry.Score)
		}
	case network.MsgTypeOpponentLeftTemp:
		var notice models.OpponentNotice
		json.Unmarshal(packet.Data, &notice)
		log.Printf("%s disconnected, waiting for them to come back...", notice.Nickname)
	case network.MsgTypeOpponentRejoined:
		var notice models.OpponentNotice
		json.Unmarshal(packet.Data, &notice)
		log.Printf("%s is back.", notice.Nickname)
	case network.MsgTypeOpponentLeft:
		log.Println("Opponent left the game.")
	case network.MsgTypeError:
		var msg models.ErrorMessage
		json.Unmarshal(packet.Data, &msg)
		log.Printf("Server error: %s (%s)", msg.Message, msg.Code)
	}
}

func (c *onlineClient) startGame(start models.GameStart) {
	players := make([]game.Player, len(start.Players))
	for i, name := range start.Players {
		players[i] = game.Player{Name: name, Kind: game.Human}
	}

	g, err := game.NewGame(players, game.Options{
		Online:    true,
		LocalSeat: start.MyIndex,
		RoomID:    start.RoomID,
	})
	if err != nil {
		log.Printf("Cannot start game: %v", err)
		return
	}

	c.game = g
	c.roomID = start.RoomID
	c.seat = start.MyIndex
	log.Printf("Game on! Room %s, you are %s, opponent is %s",
		start.RoomID, start.Players[start.MyIndex], start.Players[1-start.MyIndex])
}

func (c *onlineClient) inputLoop(done chan struct{}) {
	fmt.Println("Commands: roll, hold <1-6>, announce, write <col> <cat>, chat <text>, quit")
	for {
		select {
		case <-done:
			return
		default:
		}

		line, err := c.reader.ReadString('\n')
		if err != nil {
			return
		}
		args := strings.Fields(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}

		if args[0] == "quit" {
			c.conn.Send(network.MsgTypeLeaveRoom, nil)
			return
		}
		if args[0] == "chat" && len(args) > 1 {
			c.conn.SendJSON(network.MsgTypeChat, models.ChatMessage{
				RoomID: c.roomID,
				Sender: *nickname,
				Text:   strings.Join(args[1:], " "),
			})
			continue
		}

		if c.game == nil {
			log.Println("No game yet.")
			continue
		}
		if !c.game.LocalActing() {
			log.Println("Waiting for the opponent.")
			continue
		}
		c.handleGameCommand(args)
	}
}

func (c *onlineClient) handleGameCommand(args []string) {
	switch args[0] {
	case "roll":
		dice, err := c.game.Roll()
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Rolled %v\n", dice)
		c.sendAction("roll", dice)
	case "hold":
		if len(args) < 2 {
			fmt.Println("hold <1-6>")
			return
		}
		die, err := strconv.Atoi(args[1])
		if err != nil || die < 1 || die > 6 {
			fmt.Println("hold <1-6>")
			return
		}
		if err := c.game.ToggleHold(die - 1); err != nil {
			fmt.Println(err)
			return
		}
		c.sendAction("hold", die-1)
	case "announce":
		if err := c.game.ToggleAnnounce(); err != nil {
			fmt.Println(err)
			return
		}
		c.sendAction("announce", nil)
	case "write":
		if len(args) < 3 {
			fmt.Println("write <col> <cat>")
			return
		}
		col, ok := game.ColumnFromString(args[1])
		if !ok {
			fmt.Printf("Unknown column %q\n", args[1])
			return
		}
		cat, ok := game.CategoryFromString(args[2])
		if !ok {
			fmt.Printf("Unknown category %q\n", args[2])
			return
		}
		res, err := c.game.Write(col, cat, true)
		if err != nil {
			fmt.Println(err)
			return
		}
		if res.Bound {
			fmt.Printf("Announced %s, keep rolling\n", cat)
			c.sendAction("announce_bind", cat.String())
			return
		}
		fmt.Printf("Wrote %d into %s/%s\n", res.Points, col, cat)
		c.conn.SendJSON(network.MsgTypePlayerMove, models.Move{
			RoomID: c.roomID,
			Row:    int(cat),
			Col:    int(col),
			Points: res.Points,
		})
		if c.game.Over() {
			c.finishGame()
		}
	default:
		fmt.Printf("Unknown command %q\n", args[0])
	}
}

func (c *onlineClient) sendAction(action string, payload interface{}) {
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	c.conn.SendJSON(network.MsgTypeGameAction, models.GameAction{
		RoomID: c.roomID,
		Action: action,
		Data:   data,
	})
}

// finishGame reports the totals and feeds the leaderboard and match archive.
func (c *onlineClient) finishGame() {
	totals := c.game.Totals()
	myTotal, oppTotal := totals[c.seat], totals[1-c.seat]
	log.Printf("Game over. You %d : %d opponent", myTotal, oppTotal)

	c.conn.SendJSON(network.MsgTypeSubmitScore, models.ScoreSubmission{
		Name:  *nickname,
		Score: myTotal,
	})

	outcome := func(a, b int) string {
		switch {
		case a > b:
			return "win"
		case a < b:
			return "lose"
		}
		return "draw"
	}
	players := []models.MatchPlayer{
		{Name: c.game.Players[c.seat].Name, Score: myTotal, Outcome: outcome(myTotal, oppTotal)},
		{Name: c.game.Players[1-c.seat].Name, Score: oppTotal, Outcome: outcome(oppTotal, myTotal)},
	}
	data, _ := json.Marshal(players)
	c.sendAction("game_over", json.RawMessage(data))
}

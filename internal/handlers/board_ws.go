package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/quizboard/internal/game"
	"github.com/jason-s-yu/quizboard/internal/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	boardSubprotocol = "board"
	wsWriteTimeout   = 5 * time.Second
	wsPingInterval   = 30 * time.Second

	// A console may burst commands but is held to ten per second overall.
	commandRate  = 100 * time.Millisecond
	commandBurst = 20
)

// BoardMessage is an incoming console command. Only the fields relevant to
// Type are read.
type BoardMessage struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	Index      int    `json:"index,omitempty"`
	OnYear     *int   `json:"onYear,omitempty"`
	Direction  string `json:"direction,omitempty"`
	Correct    bool   `json:"correct,omitempty"`
	Delta      int    `json:"delta,omitempty"`
	Score      int    `json:"score,omitempty"`
}

// BoardWSHandler upgrades a host console. The console receives the current
// snapshot right away and then every snapshot and cue the session emits.
func BoardWSHandler(bs *BoardServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := bs.Logger.WithField("remote", r.RemoteAddr)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{boardSubprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != boardSubprotocol {
			c.Close(BadSubprotocolError, "client must speak the board subprotocol")
			return
		}
		if err := bs.Auth.Verify(requestToken(r)); err != nil {
			logger.WithError(err).Warn("console rejected")
			c.Close(InvalidAuthTokenError, "host login required")
			return
		}

		middleware.LogWebSocketConnect(bs.Logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &boardClient{
			conn:    c,
			out:     make(chan []byte, outboundBuffer),
			dropped: make(chan struct{}),
		}
		bs.addClient(client)
		defer bs.removeClient(client)

		snap := bs.Session.State()
		sendWsMessage(client, logger, game.BoardEvent{Type: game.EventSnapshot, State: &snap})

		go writePump(ctx, client, logger)
		err = readBoardMessages(ctx, client, bs.Session, logger)

		middleware.LogWebSocketDisconnect(bs.Logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readBoardMessages blocks until the console goes away. A normal close
// returns nil.
func readBoardMessages(ctx context.Context, client *boardClient, sess *game.Session, logger logrus.FieldLogger) error {
	l := rate.NewLimiter(rate.Every(commandRate), commandBurst)
	for {
		if err := l.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		msgType, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("ignoring non-text message type %d", msgType)
			continue
		}

		var msg BoardMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.WithError(err).Warn("invalid JSON from console")
			sendWsError(client, logger, "Invalid JSON format.")
			continue
		}
		if msg.Type == "ping" {
			sendWsMessage(client, logger, map[string]string{"type": "pong"})
			continue
		}
		if err := handleBoardMessage(sess, msg); err != nil {
			logger.WithError(err).WithField("type", msg.Type).Debug("console command rejected")
			sendWsError(client, logger, err.Error())
		}
	}
}

// handleBoardMessage maps a console command onto the session. Successful
// transitions reach every console through the broadcast.
func handleBoardMessage(sess *game.Session, msg BoardMessage) error {
	var err error
	switch msg.Type {
	case "open_question":
		_, err = sess.OpenQuestion(msg.QuestionID)
	case "close_question":
		sess.CloseQuestion()
	case "reveal_answer":
		_, err = sess.RevealAnswer()
	case "select_team":
		_, err = sess.SelectTeam(msg.TeamID)
	case "judge":
		_, err = sess.Judge(msg.Correct)

	case "reveal_lyrics_line":
		_, err = sess.RevealLyricsLine(msg.Index)
	case "pass_lyrics_turn":
		_, err = sess.PassLyricsTurn()
	case "reveal_all_lyrics":
		_, err = sess.RevealAllLyrics()

	case "toggle_geo_lock":
		_, err = sess.ToggleGeoLock()

	case "guess_joker":
		dir, perr := game.ParseJokerDirection(msg.Direction)
		if perr != nil {
			return perr
		}
		_, err = sess.GuessJoker(dir)
	case "apply_joker_score":
		_, err = sess.ApplyJokerScore()

	case "place_timeline_event":
		_, err = sess.PlaceTimelineEvent(game.TimelineSlot{Index: msg.Index, OnYear: msg.OnYear})

	case "select_mcq_option":
		_, err = sess.SelectMcqOption(msg.Index)

	case "play_audio":
		_, err = sess.PlayAudioClip()
	case "stop_audio":
		_, err = sess.StopAudioClip()

	case "spin_turn_order":
		sess.SpinTurnOrder()
	case "reset_turn_order":
		sess.ResetTurnOrder()

	case "adjust_score":
		_, err = sess.AdjustScore(msg.TeamID, msg.Delta)
	case "set_score":
		_, err = sess.SetScore(msg.TeamID, msg.Score)
	case "dismiss_leaderboard":
		sess.DismissFinalLeaderboard()

	default:
		return fmt.Errorf("Unknown message type: %s", msg.Type)
	}
	return err
}

// writePump is the only writer of data frames for a console.
func writePump(ctx context.Context, client *boardClient, logger logrus.FieldLogger) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.dropped:
			client.conn.Close(SlowConsumerError, "console fell too far behind")
			return
		case data := <-client.out:
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := client.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.WithError(err).Warn("failed to write to console")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithError(err).Warn("console ping failed")
				return
			}
		}
	}
}

// sendWsMessage queues a direct reply for one console.
func sendWsMessage(client *boardClient, logger logrus.FieldLogger, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logger.WithError(err).Error("error marshaling websocket message")
		return
	}
	select {
	case client.out <- msgBytes:
	default:
		client.drop()
	}
}

func sendWsError(client *boardClient, logger logrus.FieldLogger, errorMsg string) {
	sendWsMessage(client, logger, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"livescribe/internal/audio"
	"livescribe/internal/domain"
	"livescribe/internal/ports"
)

type callbacks struct {
	onResult ports.ResultHandler
	onLevel  ports.SoundLevelHandler
	onStatus ports.StatusHandler
	onError  ports.ErrorHandler
}

// liveSession owns one websocket conversation and the audio pump feeding it.
// It terminates through a graceful stop (audio closed, final results
// flushed), a discard, or a transport failure. Every path funnels into
// finish, which emits the terminal status once.
type liveSession struct {
	conn   *websocket.Conn
	audio  ports.AudioSession
	cancel context.CancelFunc
	cb     callbacks
	log    *slog.Logger

	chunkSize     int
	cancelOnError bool

	writeMu   sync.Mutex
	closeOnce sync.Once

	mu        sync.Mutex
	sawText   bool
	discarded bool
	silent    bool

	wg         sync.WaitGroup
	finishOnce sync.Once
}

func (s *liveSession) run(ctx context.Context) {
	s.wg.Add(2)
	go s.pumpLoop(ctx)
	go s.readLoop()
	go func() {
		s.wg.Wait()
		s.finish()
	}()
}

// pumpLoop streams captured PCM chunks into the websocket and feeds the
// level meter. It ends when the audio session is stopped or errors out.
func (s *liveSession) pumpLoop(ctx context.Context) {
	defer s.wg.Done()

	buf := make([]byte, s.chunkSize)
	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if s.cb.onLevel != nil {
				s.cb.onLevel(audio.Level(buf[:n]))
			}
			if writeErr := s.writeBinary(buf[:n]); writeErr != nil {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil && !s.wasDiscarded() {
				s.reportError(domain.EngineError{Message: fmt.Sprintf("audio capture error: %v", err)})
			}
			s.closeStream()
			return
		}
	}
}

func (s *liveSession) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) && !s.wasDiscarded() {
				s.reportError(domain.EngineError{Message: fmt.Sprintf("lost connection to recognition service: %v", err)})
			}
			return
		}

		var response listenResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			s.log.Warn("undecodable event from recognition service", "error", err)
			continue
		}

		switch {
		case strings.EqualFold(response.Type, "Error"):
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "recognition service reported an unknown error"
			}
			s.reportError(domain.EngineError{Message: message})
			if s.cancelOnError {
				s.discard()
				return
			}
		case strings.EqualFold(response.Type, "UtteranceEnd"):
			// Informational; the terminal status is emitted when the
			// socket conversation ends.
		default:
			text := response.transcript()
			if text == "" {
				continue
			}
			s.mu.Lock()
			s.sawText = true
			s.mu.Unlock()
			if s.cb.onResult != nil {
				s.cb.onResult(text, response.IsFinal || response.SpeechFinal)
			}
		}
	}
}

// stop closes the audio side; the pump then signals CloseStream so the
// service flushes its final result before closing the socket.
func (s *liveSession) stop() {
	_ = s.audio.Stop()
}

// discard tears the session down immediately, dropping unflushed results.
func (s *liveSession) discard() {
	s.mu.Lock()
	s.discarded = true
	s.mu.Unlock()
	s.teardown()
}

// supersede is discard without a terminal status; the replacing session
// reports its own lifecycle.
func (s *liveSession) supersede() {
	s.mu.Lock()
	s.discarded = true
	s.silent = true
	s.mu.Unlock()
	s.teardown()
}

func (s *liveSession) teardown() {
	s.cancel()
	_ = s.audio.Stop()
	_ = s.conn.Close()
}

func (s *liveSession) finish() {
	s.finishOnce.Do(func() {
		_ = s.audio.Stop()
		_ = s.conn.Close()
		s.cancel()

		s.mu.Lock()
		sawText := s.sawText
		discarded := s.discarded
		silent := s.silent
		s.mu.Unlock()

		s.log.Info("listening session closed", "got_text", sawText, "discarded", discarded)
		if silent || s.cb.onStatus == nil {
			return
		}
		switch {
		case discarded:
			s.cb.onStatus(domain.StatusNotListening)
		case sawText:
			s.cb.onStatus(domain.StatusDone)
		default:
			s.cb.onStatus(domain.StatusDoneNoResult)
		}
	})
}

func (s *liveSession) writeBinary(chunk []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, chunk)
}

func (s *liveSession) closeStream() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
	})
}

func (s *liveSession) wasDiscarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

func (s *liveSession) reportError(err domain.EngineError) {
	if s.cb.onError != nil {
		s.cb.onError(err)
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, net.ErrClosed)
}

// listenResponse covers both live-API response shapes Deepgram emits.
type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r listenResponse) transcript() string {
	if len(r.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(r.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(r.Results.Channels) > 0 && len(r.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(r.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

package voice

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/archive"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/history"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/llm"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/protocol"
)

// DefaultEmotion is reported when the model reply carries no leading tag.
const DefaultEmotion = "NEUTRAL"

// apologyReply replaces the model output when the completion service fails.
// It is displayed and synthesized like a normal reply but never recorded in
// history, so the failed turn does not poison the next turn's context.
const apologyReply = "[NEUTRAL] I'm sorry, I'm having trouble thinking right now."

const archiveWriteTimeout = 2 * time.Second

var bracketSpanPattern = regexp.MustCompile(`\[(.*?)\]`)

var errReplyInterrupted = errors.New("reply interrupted")

// stripBracketSpans removes every bracket-delimited span and trims the
// surrounding whitespace. Applied to all user-visible and synthesis-bound
// text.
func stripBracketSpans(text string) string {
	return strings.TrimSpace(bracketSpanPattern.ReplaceAllString(text, ""))
}

// replyRun is the ephemeral state for one user turn: accumulated raw text,
// the recorded emotion tag, the last emitted display snapshot, and the
// sentence buffer. Discarded when the turn completes or is cancelled.
type replyRun struct {
	session     *Session
	ctx         context.Context
	raw         strings.Builder
	emotion     string
	tagged      bool
	lastDisplay string
	scanner     sentenceScanner
	startedAt   time.Time
	audioSent   bool
}

// runReply drives one full reply run: completion stream in, interleaved
// display snapshots and audio segments out, history finalization at the end.
// Runs inline on the session loop, so no two runs for a session overlap.
func (s *Session) runReply(ctx context.Context, userText string) {
	s.interrupt.Clear()

	run := &replyRun{
		session:   s,
		ctx:       ctx,
		emotion:   DefaultEmotion,
		startedAt: time.Now(),
	}

	_, err := s.llm.StreamChat(ctx, s.contextMessages(userText), run.consume)
	if err != nil && !errors.Is(err, errReplyInterrupted) {
		log.Printf("session %s: completion failed: %v", s.ID, err)
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("llm", "stream").Inc()
			s.metrics.Replies.WithLabelValues("failed").Inc()
		}
		s.sendApology(ctx)
		return
	}

	if s.interrupt.Interrupted() {
		// Barge-in: the run ends with nothing finalized. Not an error.
		if s.metrics != nil {
			s.metrics.Replies.WithLabelValues("interrupted").Inc()
		}
		return
	}

	if rest := run.scanner.Flush(); rest != "" {
		run.speak(ctx, rest)
	}

	final := stripBracketSpans(run.raw.String())
	if final == "" {
		if s.metrics != nil {
			s.metrics.Replies.WithLabelValues("empty").Inc()
		}
		return
	}

	s.history.Append(s.ID, history.RoleUser, userText)
	s.history.Append(s.ID, history.RoleAssistant, final)
	s.archiveTurn(ctx, history.RoleUser, userText)
	s.archiveTurn(ctx, history.RoleAssistant, final)

	s.sendFrame(protocol.AIResponse{
		Type:    protocol.TypeAIResponse,
		Text:    final,
		Emotion: run.emotion,
	})
	if s.metrics != nil {
		s.metrics.Replies.WithLabelValues("completed").Inc()
	}
}

// consume handles one streamed delta: interrupt poll, tag detection, display
// snapshot emission, sentence dispatch.
func (r *replyRun) consume(delta string) error {
	if r.session.interrupt.Interrupted() {
		return errReplyInterrupted
	}

	r.raw.WriteString(delta)
	full := r.raw.String()

	// Only the first complete bracket pair becomes the tag; later pairs are
	// stripped from output but never change it.
	if !r.tagged {
		if m := bracketSpanPattern.FindStringSubmatch(full); m != nil {
			r.emotion = m[1]
			r.tagged = true
		}
	}

	if display := stripBracketSpans(full); display != r.lastDisplay {
		r.lastDisplay = display
		r.session.sendFrame(protocol.AIStreamChunk{
			Type: protocol.TypeAIStreamChunk,
			Text: display,
		})
	}

	for _, sentence := range r.scanner.Feed(delta) {
		r.speak(r.ctx, sentence)
	}
	return nil
}

func (r *replyRun) speak(ctx context.Context, sentence string) {
	if !r.session.speakSentence(ctx, sentence) {
		return
	}
	if !r.audioSent {
		r.audioSent = true
		if r.session.metrics != nil {
			r.session.metrics.ObserveFirstAudioLatency(time.Since(r.startedAt))
		}
	}
}

// sendApology surfaces a degraded reply after a completion failure: shown
// and spoken, skipped by history.
func (s *Session) sendApology(ctx context.Context) {
	display := stripBracketSpans(apologyReply)
	s.sendFrame(protocol.AIStreamChunk{Type: protocol.TypeAIStreamChunk, Text: display})
	s.speakSentence(ctx, apologyReply)
	s.sendFrame(protocol.AIResponse{
		Type:    protocol.TypeAIResponse,
		Text:    display,
		Emotion: DefaultEmotion,
	})
}

// contextMessages builds the completion request: system prompt, the bounded
// history window, then the new user turn.
func (s *Session) contextMessages(userText string) []llm.Message {
	msgs := make([]llm.Message, 0, history.MaxEntries+2)
	if prompt := strings.TrimSpace(s.settings[KeySystemPrompt]); prompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: prompt})
	}
	for _, m := range s.history.Messages(s.ID) {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return append(msgs, llm.Message{Role: history.RoleUser, Content: userText})
}

func (s *Session) archiveTurn(ctx context.Context, role, content string) {
	if s.archive == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, archiveWriteTimeout)
	defer cancel()
	err := s.archive.SaveTurn(saveCtx, archive.TurnRecord{
		SessionID: s.ID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		log.Printf("session %s: archive write failed: %v", s.ID, err)
	}
}

// Package engine drives the per-user dialogue state machine: it consumes
// classified inbound messages, mutates session state, and emits outbound
// text and media through the chat transport.
package engine

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"popbot-backend/internal/ai"
	"popbot-backend/internal/classify"
	"popbot-backend/internal/offers"
	"popbot-backend/internal/price"
	"popbot-backend/internal/session"
	"popbot-backend/internal/transcribe"
	"popbot-backend/internal/transport"
)

// pauseBetweenImages spaces out offer image sends to avoid flooding the
// transport.
const pauseBetweenImages = 1 * time.Second

// OfferArchive is the read-only image listing the offer sub-flow consumes.
type OfferArchive interface {
	List(day string) ([]offers.Image, error)
}

// Deps carries everything the engine needs. Rand, Now and Pause are
// injectable so tests can run deterministically; nil means production
// defaults.
type Deps struct {
	Store       *session.Store
	Classifier  *classify.Classifier
	Completer   ai.Completer
	Persona     *ai.PersonaSpec
	Transcriber transcribe.Transcriber
	Catalog     price.Catalog
	Archive     OfferArchive
	Transport   transport.Transport
	AttendantID string
	TempDir     string

	Rand  *rand.Rand
	Now   func() time.Time
	Pause func(time.Duration)
}

type Engine struct {
	store       *session.Store
	classifier  *classify.Classifier
	completer   ai.Completer
	persona     *ai.PersonaSpec
	transcriber transcribe.Transcriber
	catalog     price.Catalog
	archive     OfferArchive
	transport   transport.Transport
	attendantID string
	tempDir     string

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
	pause func(time.Duration)

	// One mutex per user id: events for the same user are never
	// interleaved, events for different users run in parallel.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(d Deps) *Engine {
	e := &Engine{
		store:       d.Store,
		classifier:  d.Classifier,
		completer:   d.Completer,
		persona:     d.Persona,
		transcriber: d.Transcriber,
		catalog:     d.Catalog,
		archive:     d.Archive,
		transport:   d.Transport,
		attendantID: d.AttendantID,
		tempDir:     d.TempDir,
		rng:         d.Rand,
		now:         d.Now,
		pause:       d.Pause,
		locks:       make(map[string]*sync.Mutex),
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.pause == nil {
		e.pause = time.Sleep
	}
	return e
}

// HandleInbound processes one chat event end to end. Group messages, self
// echoes, non-individual ids and revoked messages are dropped. The turn
// always leaves the session in a safe state and the user always gets some
// reply, even on unanticipated failures.
func (e *Engine) HandleInbound(ctx context.Context, msg transport.Inbound) {
	if msg.From == "" || msg.IsGroupMsg || msg.FromMe ||
		!strings.HasSuffix(msg.From, "@c.us") || msg.Type == "revoked" {
		return
	}

	lock := e.userLock(msg.From)
	lock.Lock()
	defer lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] panic handling message from %s: %v", msg.From, r)
			e.failTurn(ctx, msg.From)
		}
	}()

	var err error
	if msg.Type == "audio" || msg.Type == "ptt" {
		err = e.handleAudio(ctx, msg)
	} else {
		err = e.handleText(ctx, msg.From, msg.Body)
	}
	if err != nil {
		log.Printf("[engine] turn failed for %s: %v", msg.From, err)
		e.failTurn(ctx, msg.From)
	}
}

func (e *Engine) userLock(id string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// failTurn is the catch-all: reset to a safe state and apologize so a bad
// turn never leaves the session stuck in a processing state.
func (e *Engine) failTurn(ctx context.Context, userID string) {
	e.store.Update(userID, func(s *session.Session) { s.State = session.StateIdle })
	if err := e.transport.SendText(ctx, userID, replyUnexpectedError); err != nil {
		log.Printf("[engine] failed to send error reply to %s: %v", userID, err)
	}
}

func (e *Engine) handleText(ctx context.Context, userID, text string) error {
	sess := e.store.Get(userID)
	log.Printf("[engine] message from %s (name=%q state=%s): %q", userID, sess.Name, sess.State, text)

	if err := e.transport.SendSeen(ctx, userID); err != nil {
		log.Printf("[engine] sendSeen failed for %s: %v", userID, err)
	}

	res := e.classifier.Classify(classify.Input{
		Text:    text,
		State:   sess.State,
		HasName: sess.Name != "",
	})

	// State-priority rows come first: confirmation and silent absorption
	// override every other intent.
	switch sess.State {
	case session.StateAwaitingConfirmation:
		return e.handleConfirmationReply(ctx, userID, sess, res.Intent)
	case session.StateHumanRequested:
		log.Printf("[engine] %s is waiting for a human; staying silent", userID)
		return nil
	}

	switch res.Intent {
	case classify.IntentRequestHandoff:
		return e.askHandoffConfirmation(ctx, userID, sess)
	case classify.IntentProvideName:
		return e.captureName(ctx, userID, text, res.Name)
	}

	if sess.State == session.StateIdle && sess.Name == "" && len(sess.History) == 0 {
		return e.askForName(ctx, userID, text)
	}
	if sess.State == session.StateAwaitingName {
		return e.acceptName(ctx, userID, text)
	}

	if res.Intent == classify.IntentProfanity {
		log.Printf("[engine] profanity from %s: %q", userID, res.Term)
		// No history, no AI dispatch; just a polite redirect.
		return e.transport.SendText(ctx, userID, e.pick(politeRedirects))
	}

	if sess.State == session.StateIdle {
		return e.dispatchQuery(ctx, userID, sess, text)
	}

	log.Printf("[engine] unexpected state %s for %s, resetting to IDLE", sess.State, userID)
	e.store.Update(userID, func(s *session.Session) { s.State = session.StateIdle })
	return nil
}

// pick selects one template at random; the source is injected so tests can
// pin the choice.
func (e *Engine) pick(options []string) string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return options[e.rng.Intn(len(options))]
}

// displayName is what replies call the user before a name is captured.
func displayName(sess *session.Session) string {
	if sess.Name != "" {
		return sess.Name
	}
	return "cliente"
}

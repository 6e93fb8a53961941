package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"popbot-backend/internal/transport"
)

// handleAudio downloads and transcribes a voice note, then routes the
// transcript through the normal text path. Audio is a pure adapter, not a
// separate semantic path.
func (e *Engine) handleAudio(ctx context.Context, msg transport.Inbound) error {
	userID := msg.From
	sess := e.store.Get(userID)
	name := displayName(sess)
	log.Printf("[engine] audio from %s, downloading", userID)

	if err := e.transport.StartTyping(ctx, userID); err != nil {
		log.Printf("[engine] startTyping failed for %s: %v", userID, err)
	}
	defer func() {
		if err := e.transport.StopTyping(ctx, userID); err != nil {
			log.Printf("[engine] stopTyping failed for %s: %v", userID, err)
		}
	}()

	ack := fmt.Sprintf("Obrigado pelo áudio, %s! Estou transcrevendo... 🎧", name)
	if err := e.transport.SendText(ctx, userID, ack); err != nil {
		return err
	}

	audio, err := e.transport.DownloadMedia(ctx, msg.MediaID)
	if err != nil {
		log.Printf("[engine] media download failed for %s: %v", userID, err)
		return e.transport.SendText(ctx, userID, audioErrorMessage(name))
	}

	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(e.tempDir, uuid.NewString()+".ogg")
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Printf("[engine] failed to remove temp audio %s: %v", path, err)
		}
	}()

	text, err := e.transcriber.Transcribe(ctx, path)
	if err != nil || text == "" {
		log.Printf("[engine] transcription failed for %s: %v", userID, err)
		msg := fmt.Sprintf("Desculpe, %s, não consegui transcrever seu áudio. 😔 Poderia tentar novamente ou digitar sua mensagem?", name)
		return e.transport.SendText(ctx, userID, msg)
	}

	echo := fmt.Sprintf("🎤 Sua mensagem de áudio: \"%s\"", text)
	if err := e.transport.SendText(ctx, userID, echo); err != nil {
		return err
	}
	return e.handleText(ctx, userID, text)
}

func audioErrorMessage(name string) string {
	return fmt.Sprintf("Ops! Houve um erro ao processar seu áudio, %s. Por favor, tente novamente mais tarde ou digite sua mensagem.", name)
}

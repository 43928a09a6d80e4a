package stt

import "context"

// Provider re-transcribes a call recording when the telephony provider's
// own speech result is missing or low-confidence.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

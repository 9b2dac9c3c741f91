package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Inbound (client -> server).
	TypeUpdateSettings MessageType = "update_settings"
	TypeChatMessage    MessageType = "chat_message"
	TypeAudioComplete  MessageType = "audio_complete"
	TypeUserSpeaking   MessageType = "user_speaking"

	// Outbound (server -> client).
	TypeSessionInit   MessageType = "session_init"
	TypeAIProcessing  MessageType = "ai_processing"
	TypeTranscript    MessageType = "transcript"
	TypeSTTError      MessageType = "stt_error"
	TypeAIStreamChunk MessageType = "ai_stream_chunk"
	TypeAIResponse    MessageType = "ai_response"
	TypeAudio         MessageType = "audio"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UpdateSettings merges the provided keys into the session settings.
type UpdateSettings struct {
	Type     MessageType       `json:"type"`
	Settings map[string]string `json:"settings"`
}

// ChatMessage carries a typed user utterance.
type ChatMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// AudioComplete carries one fully recorded utterance as base64 audio.
type AudioComplete struct {
	Type     MessageType `json:"type"`
	Data     string      `json:"data"`
	MimeType string      `json:"mimeType"`
}

// UserSpeaking signals barge-in: the user started talking again.
type UserSpeaking struct {
	Type MessageType `json:"type"`
}

type SessionInit struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type AIProcessing struct {
	Type         MessageType `json:"type"`
	IsProcessing bool        `json:"isProcessing"`
}

type Transcript struct {
	Type    MessageType `json:"type"`
	Text    string      `json:"text"`
	IsFinal bool        `json:"isFinal"`
}

type STTError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

type AIStreamChunk struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type AIResponse struct {
	Type    MessageType `json:"type"`
	Text    string      `json:"text"`
	Emotion string      `json:"emotion"`
}

type Audio struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
}

// ParseClientMessage decodes one inbound frame into its typed struct.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUpdateSettings:
		var msg UpdateSettings
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Settings == nil {
			msg.Settings = map[string]string{}
		}
		return msg, nil
	case TypeChatMessage:
		var msg ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeAudioComplete:
		var msg AudioComplete
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.MimeType == "" {
			msg.MimeType = "audio/webm"
		}
		return msg, nil
	case TypeUserSpeaking:
		return UserSpeaking{Type: TypeUserSpeaking}, nil
	default:
		return nil, ErrUnsupportedType
	}
}

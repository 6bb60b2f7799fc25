package domain

import (
	interfaces "chatseal/internal/domain/interfaces"
	types "chatseal/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID            = types.UserID
	ConversationID    = types.ConversationID
	MessageID         = types.MessageID
	Fingerprint       = types.Fingerprint
	PublicKeySnapshot = types.PublicKeySnapshot
	SerializedKeyPair = types.SerializedKeyPair
	UserProfile       = types.UserProfile
	PublishKeyRequest = types.PublishKeyRequest
	Envelope          = types.Envelope
	EncryptedMessage  = types.EncryptedMessage
	MessageRecord     = types.MessageRecord
	DisplayMessage    = types.DisplayMessage
	DecryptResult     = types.DecryptResult
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyStore          = interfaces.KeyStore
	KeyDirectory      = interfaces.KeyDirectory
	MessageTransport  = interfaces.MessageTransport
	RelayClient       = interfaces.RelayClient
	KeyPairService    = interfaces.KeyPairService
	EncryptionService = interfaces.EncryptionService
	MessageService    = interfaces.MessageService
)

// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The turn pipeline is ChatService -> DialogueTracker -> SessionManager,
// then Retriever (backed by QueryCache) and ResponseGenerator.
package services

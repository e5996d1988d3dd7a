package httpapi

import (
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// Ports aggregates the driving ports the API calls into.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Index reports collection statistics.
	Index driving.IndexService

	// Dataset summarises the loaded tables. Optional.
	Dataset driving.DatasetService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}

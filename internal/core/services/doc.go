// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question pipeline is ScopeFilter, then IndexService.Search, then one
// LLMService.Chat call inside ChatService. DocumentBuilder and DatasetService
// feed IndexService.Index on the offline path.
//
// Services are pure Go with no CGO or external dependencies.
package services

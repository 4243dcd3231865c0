// Package http provides the REST API for the tab engine.
//
// Endpoints cover the tab lifecycle: generation through the AI
// collaborator, direct descriptor opening, rendering to HTML,
// refinement rounds, the refinement log, surface navigation decisions
// and disposal. Handlers bind with gin and return JSON throughout.
package http

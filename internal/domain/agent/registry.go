package agent

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"agent-server/services/agent-api/internal/domain/tool"
)

// Registry manages registered agents. Registration validates that every tool
// an agent names exists in the tool registry.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	tools  *tool.Registry
}

// NewRegistry creates an agent registry backed by the given tool registry.
func NewRegistry(tools *tool.Registry) *Registry {
	return &Registry{
		agents: make(map[string]Agent),
		tools:  tools,
	}
}

// Register adds an agent. It fails with ErrDuplicateAgent when the name is
// taken and rejects agents referencing unknown tools.
func (r *Registry) Register(a Agent) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("register agent: name is required")
	}
	for _, toolName := range a.Tools {
		if _, ok := r.tools.Get(toolName); !ok {
			return fmt.Errorf("register agent %q: %w: %q", a.Name, tool.ErrToolNotFound, toolName)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[a.Name]; exists {
		return fmt.Errorf("register agent %q: %w", a.Name, ErrDuplicateAgent)
	}
	r.agents[a.Name] = a
	return nil
}

// Get retrieves an agent by name.
func (r *Registry) Get(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[name]
	return a, ok
}

// List returns all registered agents, sorted by name.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents
}

// Remove deletes an agent by name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[name]; !ok {
		return false
	}
	delete(r.agents, name)
	return true
}

// AssignTools replaces the tool list of an existing agent. Every tool must
// exist in the tool registry.
func (r *Registry) AssignTools(agentName string, toolNames []string) error {
	for _, toolName := range toolNames {
		if _, ok := r.tools.Get(toolName); !ok {
			return fmt.Errorf("assign tools to %q: %w: %q", agentName, tool.ErrToolNotFound, toolName)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[agentName]
	if !ok {
		return fmt.Errorf("assign tools to %q: %w", agentName, ErrAgentNotFound)
	}
	a.Tools = toolNames
	r.agents[agentName] = a
	return nil
}

// RelevantTools returns the agent's tools whose name or description shares a
// keyword with the query. Plain keyword matching, nothing smarter.
func (r *Registry) RelevantTools(agentName, query string) []tool.Descriptor {
	a, ok := r.Get(agentName)
	if !ok {
		return nil
	}

	words := strings.Fields(strings.ToLower(query))
	var relevant []tool.Descriptor
	for _, toolName := range a.Tools {
		desc, ok := r.tools.Get(toolName)
		if !ok {
			continue
		}
		haystack := strings.ToLower(desc.Description + " " + desc.Name)
		for _, word := range words {
			if strings.Contains(haystack, word) {
				relevant = append(relevant, desc)
				break
			}
		}
	}
	return relevant
}

// toolIndicators suggest a query is likely to need tool support.
var toolIndicators = []string{
	"data", "table", "query", "find", "search", "count", "show", "list",
	"get", "retrieve", "check", "analyze", "how many", "what is",
}

// ShouldUseTools reports whether a query looks like it needs tool support.
func ShouldUseTools(query string) bool {
	lowered := strings.ToLower(query)
	for _, indicator := range toolIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}
